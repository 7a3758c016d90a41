package call

import "github.com/google/uuid"

type RoleKind string

const (
	RoleUnrelated   RoleKind = "unrelated"
	RoleRecruiter   RoleKind = "recruiter"
	RoleJobSeeker   RoleKind = "job_seeker"
	RoleInterpreter RoleKind = "interpreter"
)

// Role is the caller's relationship to a session. Participation is set only
// for RoleInterpreter and points into the session's interpreter list.
type Role struct {
	Kind          RoleKind
	Participation *InterpreterParticipation
}

func (r Role) String() string {
	return string(r.Kind)
}

func (r Role) IsParticipant() bool {
	return r.Kind != RoleUnrelated
}

// ResolveRole matches userID against the session's recruiter, job seeker and
// listed interpreters, in that order.
func (s *Session) ResolveRole(userID uuid.UUID) Role {
	switch {
	case userID == uuid.Nil:
		return Role{Kind: RoleUnrelated}
	case userID == s.RecruiterID:
		return Role{Kind: RoleRecruiter}
	case userID == s.JobSeekerID:
		return Role{Kind: RoleJobSeeker}
	}
	if p, ok := s.Participation(userID); ok {
		return Role{Kind: RoleInterpreter, Participation: p}
	}
	return Role{Kind: RoleUnrelated}
}

// ParticipantIDs lists the recruiter, the job seeker and every interpreter
// holding a non-terminal record.
func (s *Session) ParticipantIDs() []uuid.UUID {
	ids := []uuid.UUID{s.RecruiterID, s.JobSeekerID}
	return append(ids, s.ActiveInterpreterIDs()...)
}
