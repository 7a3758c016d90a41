package call

import (
	"testing"
	"time"

	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *Session {
	return &Session{
		ID:          uuid.New(),
		RecruiterID: uuid.New(),
		JobSeekerID: uuid.New(),
		Status:      StatusActive,
		StartedAt:   time.Now().Add(-10 * time.Minute),
	}
}

func TestResolveRole(t *testing.T) {
	s := newSession()
	interpreter := uuid.New()
	s.Interpreters = append(s.Interpreters, InterpreterParticipation{
		SessionID: s.ID, InterpreterID: interpreter, Status: ParticipationInvited,
	})

	assert.Equal(t, RoleRecruiter, s.ResolveRole(s.RecruiterID).Kind)
	assert.Equal(t, RoleJobSeeker, s.ResolveRole(s.JobSeekerID).Kind)
	assert.Equal(t, RoleUnrelated, s.ResolveRole(uuid.New()).Kind)
	assert.Equal(t, RoleUnrelated, s.ResolveRole(uuid.Nil).Kind)

	role := s.ResolveRole(interpreter)
	require.Equal(t, RoleInterpreter, role.Kind)
	require.NotNil(t, role.Participation)
	role.Participation.Status = ParticipationJoined
	assert.Equal(t, ParticipationJoined, s.Interpreters[0].Status)
}

func TestParticipationSubMachine(t *testing.T) {
	now := time.Now()
	p := &InterpreterParticipation{InterpreterID: uuid.New(), Status: ParticipationInvited}

	changed, err := p.Transition(ParticipationJoined, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.Transition(ParticipationJoined, now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = p.Transition(ParticipationInvited, now)
	assert.ErrorIs(t, err, jobfair_errors.ErrAlreadyInvited)

	_, err = p.Transition(ParticipationDeclined, now)
	assert.ErrorIs(t, err, jobfair_errors.ErrInvalidTransition)

	changed, err = p.Transition(ParticipationLeft, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.Transition(ParticipationLeft, now)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = p.Transition(ParticipationInvited, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, p.JoinedAt)
	assert.Nil(t, p.LeftAt)

	changed, err = p.Transition(ParticipationDeclined, now)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestMarkEnded(t *testing.T) {
	s := newSession()
	joined := uuid.New()
	invited := uuid.New()
	s.Interpreters = []InterpreterParticipation{
		{InterpreterID: joined, Status: ParticipationJoined},
		{InterpreterID: invited, Status: ParticipationInvited},
	}
	now := s.StartedAt.Add(90 * time.Second)

	s.MarkEnded(now, EndReasonRecruiter)

	assert.Equal(t, StatusEnded, s.Status)
	assert.Equal(t, EndReasonRecruiter, s.EndReason)
	assert.Equal(t, int64(90), s.DurationSeconds)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, ParticipationLeft, s.Interpreters[0].Status)
	assert.Equal(t, ParticipationInvited, s.Interpreters[1].Status)
}

func TestParticipantIDsSkipsTerminalInterpreters(t *testing.T) {
	s := newSession()
	active := uuid.New()
	s.Interpreters = []InterpreterParticipation{
		{InterpreterID: active, Status: ParticipationJoined},
		{InterpreterID: uuid.New(), Status: ParticipationDeclined},
	}
	assert.ElementsMatch(t, []uuid.UUID{s.RecruiterID, s.JobSeekerID, active}, s.ParticipantIDs())
	assert.True(t, s.HoldsInterpreter(active))
}

func TestRoomNameIsUnique(t *testing.T) {
	booth, seeker := uuid.New(), uuid.New()
	stamp := time.Now().UnixNano()
	a := RoomName(booth, seeker, stamp)
	b := RoomName(booth, seeker, stamp+1)
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, booth.String())
}
