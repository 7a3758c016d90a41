package proxy

import (
	"fmt"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/services"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
)

// AccessControl decides read and management access to booths, queue
// entries and calls. Rules that are part of an operation itself (only the
// recruiter invites, only participants chat) stay in the services.
type AccessControl struct{}

func NewAccessControl() *AccessControl {
	return &AccessControl{}
}

// CanManageBooth allows privileged operators and staff assigned to the booth.
func (a *AccessControl) CanManageBooth(id services.Identity, boothID uuid.UUID) error {
	if id.Role.IsPrivileged() {
		return nil
	}
	if id.Role.IsBoothStaff() && id.BoothID.Valid && id.BoothID.UUID == boothID {
		return nil
	}
	return fmt.Errorf("%w: not staff of booth %s", jobfair_errors.ErrUnauthorized, boothID)
}

// CanViewEntry allows the entry's job seeker and whoever manages its booth.
func (a *AccessControl) CanViewEntry(id services.Identity, e queue.Entry) error {
	if id.UserID == e.JobSeekerID {
		return nil
	}
	return a.CanManageBooth(id, e.BoothID)
}

// CanLeaveEntry allows the job seeker to drop out and booth staff to remove
// them.
func (a *AccessControl) CanLeaveEntry(id services.Identity, e queue.Entry) error {
	return a.CanViewEntry(id, e)
}

// CanViewCall allows the call's participants and whoever manages its booth.
func (a *AccessControl) CanViewCall(id services.Identity, s call.Session) error {
	if s.ResolveRole(id.UserID).IsParticipant() {
		return nil
	}
	return a.CanManageBooth(id, s.BoothID)
}
