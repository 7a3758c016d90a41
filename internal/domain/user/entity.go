package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin             Role = "admin"
	RoleAdminEvent        Role = "admin_event"
	RoleBoothAdmin        Role = "booth_admin"
	RoleRecruiter         Role = "recruiter"
	RoleSupport           Role = "support"
	RoleGlobalSupport     Role = "global_support"
	RoleInterpreter       Role = "interpreter"
	RoleGlobalInterpreter Role = "global_interpreter"
	RoleJobSeeker         Role = "job_seeker"
)

// InterpreterScope says which booths an interpreter may be invited from.
type InterpreterScope string

const (
	ScopeBooth  InterpreterScope = "booth"
	ScopeGlobal InterpreterScope = "global"
)

// CanInterpret reports whether the role carries the interpreter capability
// and with which scope.
func (r Role) CanInterpret() (InterpreterScope, bool) {
	switch r {
	case RoleInterpreter:
		return ScopeBooth, true
	case RoleGlobalInterpreter:
		return ScopeGlobal, true
	}
	return "", false
}

// IsPrivileged reports whether the role may end any call.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleAdminEvent, RoleSupport, RoleGlobalSupport:
		return true
	}
	return false
}

// IsBoothStaff reports whether the role works a booth (sees its queue).
func (r Role) IsBoothStaff() bool {
	switch r {
	case RoleBoothAdmin, RoleRecruiter, RoleInterpreter, RoleSupport:
		return true
	}
	return false
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAdminEvent, RoleBoothAdmin, RoleRecruiter, RoleSupport,
		RoleGlobalSupport, RoleInterpreter, RoleGlobalInterpreter, RoleJobSeeker:
		return true
	}
	return false
}

// User represents the users table. The directory is owned by the portal;
// this service only reads it.
type User struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	Email     string        `gorm:"uniqueIndex" json:"email"`
	Role      Role          `gorm:"type:varchar(32);not null;index" json:"role"`
	BoothID   uuid.NullUUID `gorm:"type:uuid;index" json:"booth_id"`
	EventID   uuid.NullUUID `gorm:"type:uuid" json:"event_id"`
	Active    bool          `gorm:"not null" json:"active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// InterpreterScope returns the interpreter scope for an active interpreter
// account, or false when the user cannot be invited as an interpreter.
func (u User) InterpreterScope() (InterpreterScope, bool) {
	if !u.Active {
		return "", false
	}
	return u.Role.CanInterpret()
}
