package services

import (
	"sync"
	"testing"

	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/events"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePositionsSurviveCallCreation(t *testing.T) {
	f := newFixture(t)
	j := f.addSeeker(t, "J")
	k := f.addSeeker(t, "K")

	jEntry := f.join(t, j)
	kEntry := f.join(t, k)
	assert.Equal(t, 1, jEntry.Position)
	assert.Equal(t, 2, kEntry.Position)

	_, err := f.calls.Create(f.ctx, jEntry.ID, f.recruiter.ID)
	require.NoError(t, err)

	assert.Equal(t, queue.StatusInMeeting, f.entry(t, jEntry.ID).Status)
	k2 := f.entry(t, kEntry.ID)
	assert.Equal(t, queue.StatusWaiting, k2.Status)
	assert.Equal(t, 2, k2.Position)
}

func TestQueueJoinRejectsSecondActiveEntry(t *testing.T) {
	f := newFixture(t)
	j := f.addSeeker(t, "J")
	first := f.join(t, j)

	_, err := f.queue.Join(f.ctx, JoinQueueInput{BoothID: f.boothID, JobSeekerID: j.ID, EventID: f.eventID})
	assert.ErrorIs(t, err, jobfair_errors.ErrDuplicateActiveEntry)

	// another booth is fine
	_, err = f.queue.Join(f.ctx, JoinQueueInput{BoothID: uuid.New(), JobSeekerID: j.ID, EventID: f.eventID})
	assert.NoError(t, err)

	_, err = f.queue.Leave(f.ctx, first.ID)
	require.NoError(t, err)
	again := f.join(t, j)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestQueueJoinValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.queue.Join(f.ctx, JoinQueueInput{BoothID: f.boothID, EventID: f.eventID})
	assert.ErrorIs(t, err, jobfair_errors.ErrInvalidInput)
}

func TestQueueWaitingPositionsStayIncreasing(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, f.addSeeker(t, "A"))
	b := f.join(t, f.addSeeker(t, "B"))

	_, err := f.queue.Leave(f.ctx, a.ID)
	require.NoError(t, err)

	c := f.join(t, f.addSeeker(t, "C"))
	assert.Greater(t, c.Position, b.Position)

	waiting, err := f.queue.ListByBooth(f.ctx, f.boothID)
	require.NoError(t, err)
	require.Len(t, waiting, 2)
	assert.Equal(t, b.ID, waiting[0].ID)
	assert.Equal(t, c.ID, waiting[1].ID)
}

func TestQueueConcurrentJoinsGetDistinctPositions(t *testing.T) {
	f := newFixture(t)
	const seekers = 20
	ids := make([]uuid.UUID, seekers)
	for i := range ids {
		ids[i] = f.addSeeker(t, "Seeker").ID
	}

	var wg sync.WaitGroup
	positions := make([]int, seekers)
	errs := make([]error, seekers)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			e, err := f.queue.Join(f.ctx, JoinQueueInput{BoothID: f.boothID, JobSeekerID: id, EventID: f.eventID})
			positions[i], errs[i] = e.Position, err
		}(i, id)
	}
	wg.Wait()

	seen := make(map[int]bool, seekers)
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[positions[i]], "position %d assigned twice", positions[i])
		seen[positions[i]] = true
	}
	for p := 1; p <= seekers; p++ {
		assert.True(t, seen[p], "position %d missing", p)
	}
}

func TestQueueLeaveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	e := f.join(t, f.addSeeker(t, "J"))

	left, err := f.queue.Leave(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusLeftWithMessage, left.Status)
	published := f.publisher.count(events.EventTypeQueueEntryUpdated)

	again, err := f.queue.Leave(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusLeftWithMessage, again.Status)
	assert.Equal(t, published, f.publisher.count(events.EventTypeQueueEntryUpdated), "no-op leave must not publish")
}

func TestQueueLeaveKeepsCompleted(t *testing.T) {
	f := newFixture(t)
	e := f.join(t, f.addSeeker(t, "J"))
	_, err := f.queue.MarkInMeeting(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.queue.Complete(f.ctx, e.ID)
	require.NoError(t, err)

	got, err := f.queue.Leave(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, got.Status)
}

func TestQueueTransitionsAreValidated(t *testing.T) {
	f := newFixture(t)
	e := f.join(t, f.addSeeker(t, "J"))

	_, err := f.queue.Complete(f.ctx, e.ID)
	assert.ErrorIs(t, err, jobfair_errors.ErrInvalidTransition)

	invited, err := f.queue.Invite(f.ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusInvited, invited.Status)

	_, err = f.queue.MarkInMeeting(f.ctx, e.ID)
	require.NoError(t, err)
	_, err = f.queue.MarkInMeeting(f.ctx, e.ID)
	assert.ErrorIs(t, err, jobfair_errors.ErrInvalidTransition)

	_, err = f.queue.Invite(f.ctx, uuid.New())
	assert.ErrorIs(t, err, jobfair_errors.ErrNotFound)
}

func TestQueueUpdatesReachSeekerAndBoothChannels(t *testing.T) {
	f := newFixture(t)
	j := f.addSeeker(t, "J")
	f.join(t, j)

	assert.ElementsMatch(t, []string{
		events.UserChannel(j.ID),
		events.BoothChannel(f.boothID),
		events.BoothManagementChannel(f.boothID),
	}, f.publisher.channels(events.EventTypeQueueEntryUpdated))
}
