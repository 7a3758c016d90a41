package proxy

import (
	"testing"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/services"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanManageBooth(t *testing.T) {
	a := NewAccessControl()
	booth := uuid.New()
	staff := func(role user.Role, b uuid.UUID) services.Identity {
		return services.Identity{UserID: uuid.New(), Role: role, BoothID: uuid.NullUUID{UUID: b, Valid: true}}
	}

	assert.NoError(t, a.CanManageBooth(staff(user.RoleRecruiter, booth), booth))
	assert.NoError(t, a.CanManageBooth(staff(user.RoleBoothAdmin, booth), booth))
	assert.NoError(t, a.CanManageBooth(services.Identity{Role: user.RoleAdmin}, booth))
	assert.ErrorIs(t, a.CanManageBooth(staff(user.RoleRecruiter, uuid.New()), booth), jobfair_errors.ErrUnauthorized)
	assert.ErrorIs(t, a.CanManageBooth(staff(user.RoleJobSeeker, booth), booth), jobfair_errors.ErrUnauthorized)
	assert.ErrorIs(t, a.CanManageBooth(staff(user.RoleGlobalInterpreter, booth), booth), jobfair_errors.ErrUnauthorized)
}

func TestCanViewEntryAndCall(t *testing.T) {
	a := NewAccessControl()
	seeker := services.Identity{UserID: uuid.New(), Role: user.RoleJobSeeker}
	other := services.Identity{UserID: uuid.New(), Role: user.RoleJobSeeker}
	e := queue.Entry{ID: uuid.New(), JobSeekerID: seeker.UserID, BoothID: uuid.New()}

	assert.NoError(t, a.CanViewEntry(seeker, e))
	assert.NoError(t, a.CanLeaveEntry(seeker, e))
	assert.ErrorIs(t, a.CanViewEntry(other, e), jobfair_errors.ErrUnauthorized)

	interpreter := services.Identity{UserID: uuid.New(), Role: user.RoleGlobalInterpreter}
	s := call.Session{
		ID:           uuid.New(),
		BoothID:      e.BoothID,
		JobSeekerID:  seeker.UserID,
		RecruiterID:  uuid.New(),
		Interpreters: []call.InterpreterParticipation{{InterpreterID: interpreter.UserID, Status: call.ParticipationInvited}},
	}
	assert.NoError(t, a.CanViewCall(seeker, s))
	assert.NoError(t, a.CanViewCall(interpreter, s))
	assert.ErrorIs(t, a.CanViewCall(other, s), jobfair_errors.ErrUnauthorized)
}
