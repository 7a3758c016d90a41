package events

import (
	"encoding/json"
	"testing"
	"time"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() call.Session {
	return call.Session{
		ID:          uuid.New(),
		BoothID:     uuid.New(),
		RecruiterID: uuid.New(),
		JobSeekerID: uuid.New(),
		Status:      call.StatusActive,
	}
}

func TestQueueEntryGoesToSeekerAndBothBoothChannels(t *testing.T) {
	entry := queue.Entry{ID: uuid.New(), JobSeekerID: uuid.New(), BoothID: uuid.New()}
	channels := NewAudienceResolver().ResolveChannels(&QueueEntryUpdated{Entry: entry})
	assert.Equal(t, []string{
		UserChannel(entry.JobSeekerID),
		BoothChannel(entry.BoothID),
		BoothManagementChannel(entry.BoothID),
	}, channels)
}

func TestCallEndedReachesInterpreters(t *testing.T) {
	s := testSession()
	interpreter := uuid.New()
	channels := NewAudienceResolver().ResolveChannels(NewCallEnded(s, []uuid.UUID{interpreter}))
	assert.Contains(t, channels, UserChannel(s.JobSeekerID))
	assert.Contains(t, channels, UserChannel(s.RecruiterID))
	assert.Contains(t, channels, UserChannel(interpreter))
	assert.Contains(t, channels, BoothChannel(s.BoothID))
	assert.Contains(t, channels, BoothManagementChannel(s.BoothID))
}

func TestInterpreterInvitationOnlyToInterpreter(t *testing.T) {
	s := testSession()
	interpreter := uuid.New()
	channels := NewAudienceResolver().ResolveChannels(NewInterpreterInvited(s, interpreter, "ASL", "token"))
	assert.Equal(t, []string{UserChannel(interpreter), BoothManagementChannel(s.BoothID)}, channels)
}

func TestMessageAddedDedupesParticipants(t *testing.T) {
	s := testSession()
	s.JobSeekerID = s.RecruiterID
	channels := NewAudienceResolver().ResolveChannels(NewMessageAdded(s, call.ChatMessage{}))
	assert.Equal(t, []string{UserChannel(s.RecruiterID)}, channels)
}

func TestEnvelopeCarriesFullSnapshot(t *testing.T) {
	s := testSession()
	env, err := NewEnvelope(NewCallInvitation(s), time.Now())
	require.NoError(t, err)
	assert.Equal(t, EventTypeCallInvitation, env.EventType)
	assert.Equal(t, AggregateCallSession, env.AggregateType)
	assert.Equal(t, s.ID.String(), env.AggregateID)

	var decoded struct {
		Session call.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &decoded))
	assert.Equal(t, s.RecruiterID, decoded.Session.RecruiterID)
}
