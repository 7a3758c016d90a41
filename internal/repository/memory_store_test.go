package repository

import (
	"context"
	"testing"
	"time"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueRejectsSecondActiveEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Queue()
	seeker, booth := uuid.New(), uuid.New()

	first := queue.NewEntry(seeker, booth, uuid.New(), 1, "", time.Now())
	require.NoError(t, repo.Create(ctx, first))

	second := queue.NewEntry(seeker, booth, uuid.New(), 2, "", time.Now())
	assert.ErrorIs(t, repo.Create(ctx, second), jobfair_errors.ErrDuplicateActiveEntry)

	_, err := repo.UpdateStatus(ctx, first.ID, queue.StatusWaiting, queue.StatusLeftWithMessage, time.Now())
	require.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, second))
}

func TestMemoryQueueUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Queue()
	e := queue.NewEntry(uuid.New(), uuid.New(), uuid.New(), 1, "", time.Now())
	require.NoError(t, repo.Create(ctx, e))

	_, err := repo.UpdateStatus(ctx, e.ID, queue.StatusInvited, queue.StatusInMeeting, time.Now())
	assert.ErrorIs(t, err, jobfair_errors.ErrInvalidTransition)

	_, err = repo.UpdateStatus(ctx, uuid.New(), queue.StatusWaiting, queue.StatusInMeeting, time.Now())
	assert.ErrorIs(t, err, jobfair_errors.ErrNotFound)
}

func TestMemoryCallsAppendMessageKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Calls()
	s := &call.Session{ID: uuid.New(), QueueEntryID: uuid.New(), Status: call.StatusActive, StartedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, s))

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, repo.AppendMessage(ctx, &call.ChatMessage{SessionID: s.ID, Text: text}))
	}

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "one", got.Messages[0].Text)
	assert.Equal(t, "three", got.Messages[2].Text)
	assert.Less(t, got.Messages[0].ID, got.Messages[1].ID)
}

func TestMemoryCallsMarkEndedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Calls()
	s := call.Session{ID: uuid.New(), QueueEntryID: uuid.New(), Status: call.StatusActive, StartedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &s))

	s.MarkEnded(time.Now(), call.EndReasonRecruiter)
	ended, err := repo.MarkEnded(ctx, s)
	require.NoError(t, err)
	assert.True(t, ended)

	ended, err = repo.MarkEnded(ctx, s)
	require.NoError(t, err)
	assert.False(t, ended)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMemoryUsersListInterpretersOrdersBoothFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	booth := uuid.New()

	global := user.User{ID: uuid.New(), Name: "Ana", Role: user.RoleGlobalInterpreter, Active: true}
	local := user.User{ID: uuid.New(), Name: "Zed", Role: user.RoleInterpreter, Active: true, BoothID: uuid.NullUUID{UUID: booth, Valid: true}}
	otherBooth := user.User{ID: uuid.New(), Name: "Bo", Role: user.RoleInterpreter, Active: true, BoothID: uuid.NullUUID{UUID: uuid.New(), Valid: true}}
	inactive := user.User{ID: uuid.New(), Name: "Cy", Role: user.RoleGlobalInterpreter, Active: false}
	for _, u := range []user.User{global, local, otherBooth, inactive} {
		u := u
		require.NoError(t, repo.Upsert(ctx, &u))
	}

	list, err := repo.ListInterpreters(ctx, booth)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, local.ID, list[0].ID)
	assert.Equal(t, global.ID, list[1].ID)
}
