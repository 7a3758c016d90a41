package call

import (
	"fmt"
	"time"

	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

type EndReason string

const (
	EndReasonRecruiter  EndReason = "ended_by_recruiter"
	EndReasonOperator   EndReason = "ended_by_operator"
	EndReasonSuperseded EndReason = "superseded"
	EndReasonStale      EndReason = "stale"
	// EndReasonAborted marks a session whose queue entry left while the
	// call was being set up.
	EndReasonAborted EndReason = "aborted"
)

type ParticipationStatus string

const (
	ParticipationInvited  ParticipationStatus = "invited"
	ParticipationJoined   ParticipationStatus = "joined"
	ParticipationDeclined ParticipationStatus = "declined"
	ParticipationLeft     ParticipationStatus = "left"
)

func (s ParticipationStatus) IsTerminal() bool {
	return s == ParticipationDeclined || s == ParticipationLeft
}

// Session represents call_sessions. One row per video room instance.
type Session struct {
	ID              uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	RoomName        string                     `gorm:"uniqueIndex;not null" json:"room_name"`
	RoomSID         string                     `json:"room_sid"`
	EventID         uuid.UUID                  `gorm:"type:uuid;not null" json:"event_id"`
	BoothID         uuid.UUID                  `gorm:"type:uuid;not null;index" json:"booth_id"`
	RecruiterID     uuid.UUID                  `gorm:"type:uuid;not null;index" json:"recruiter_id"`
	JobSeekerID     uuid.UUID                  `gorm:"type:uuid;not null;index" json:"job_seeker_id"`
	QueueEntryID    uuid.UUID                  `gorm:"type:uuid;not null;index" json:"queue_entry_id"`
	Status          Status                     `gorm:"type:varchar(16);not null;index" json:"status"`
	EndReason       EndReason                  `gorm:"type:varchar(32)" json:"end_reason,omitempty"`
	StartedAt       time.Time                  `gorm:"not null;index" json:"started_at"`
	EndedAt         *time.Time                 `json:"ended_at,omitempty"`
	DurationSeconds int64                      `json:"duration_seconds"`
	Interpreters    []InterpreterParticipation `gorm:"foreignKey:SessionID" json:"interpreters"`
	Messages        []ChatMessage              `gorm:"foreignKey:SessionID" json:"messages"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// InterpreterParticipation represents call_interpreters. The composite key
// keeps one record per interpreter per session.
type InterpreterParticipation struct {
	SessionID     uuid.UUID           `gorm:"type:uuid;primaryKey" json:"session_id"`
	InterpreterID uuid.UUID           `gorm:"type:uuid;primaryKey;index" json:"interpreter_id"`
	Category      string              `json:"category"`
	Status        ParticipationStatus `gorm:"type:varchar(16);not null" json:"status"`
	InvitedAt     time.Time           `gorm:"not null" json:"invited_at"`
	JoinedAt      *time.Time          `json:"joined_at,omitempty"`
	LeftAt        *time.Time          `json:"left_at,omitempty"`
}

// ChatMessage represents call_messages. ID is a sequence, so ordering by ID
// is server-side append order.
type ChatMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	SenderID   uuid.UUID `gorm:"type:uuid" json:"sender_id"`
	SenderRole string    `gorm:"type:varchar(32);not null" json:"sender_role"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// SystemSender is the role recorded on messages authored by the service.
const SystemSender = "system"

func (Session) TableName() string {
	return "call_sessions"
}

func (InterpreterParticipation) TableName() string {
	return "call_interpreters"
}

func (ChatMessage) TableName() string {
	return "call_messages"
}

func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}

// Participation returns the interpreter's record in this session.
func (s *Session) Participation(interpreterID uuid.UUID) (*InterpreterParticipation, bool) {
	for i := range s.Interpreters {
		if s.Interpreters[i].InterpreterID == interpreterID {
			return &s.Interpreters[i], true
		}
	}
	return nil, false
}

// HoldsInterpreter reports whether the interpreter has a non-terminal record.
func (s *Session) HoldsInterpreter(interpreterID uuid.UUID) bool {
	p, ok := s.Participation(interpreterID)
	return ok && !p.Status.IsTerminal()
}

// ActiveInterpreterIDs lists interpreters with invited or joined records.
func (s *Session) ActiveInterpreterIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, p := range s.Interpreters {
		if !p.Status.IsTerminal() {
			ids = append(ids, p.InterpreterID)
		}
	}
	return ids
}

// MarkEnded stamps the end of the session. Joined interpreters are moved to
// left since everyone is removed from the room.
func (s *Session) MarkEnded(now time.Time, reason EndReason) {
	s.Status = StatusEnded
	s.EndReason = reason
	s.EndedAt = &now
	s.DurationSeconds = int64(now.Sub(s.StartedAt).Seconds())
	if s.DurationSeconds < 0 {
		s.DurationSeconds = 0
	}
	for i := range s.Interpreters {
		if s.Interpreters[i].Status == ParticipationJoined {
			s.Interpreters[i].Status = ParticipationLeft
			s.Interpreters[i].LeftAt = &now
		}
	}
}

// Transition validates a participation change. changed=false with a nil
// error is an idempotent no-op.
func (p *InterpreterParticipation) Transition(to ParticipationStatus, now time.Time) (changed bool, err error) {
	from := p.Status
	switch to {
	case ParticipationInvited:
		if from.IsTerminal() {
			p.Status = ParticipationInvited
			p.InvitedAt = now
			p.JoinedAt = nil
			p.LeftAt = nil
			return true, nil
		}
		return false, fmt.Errorf("%w: interpreter %s", jobfair_errors.ErrAlreadyInvited, p.InterpreterID)
	case ParticipationJoined:
		switch from {
		case ParticipationInvited:
			p.Status = ParticipationJoined
			p.JoinedAt = &now
			return true, nil
		case ParticipationJoined:
			return false, nil
		}
	case ParticipationDeclined:
		switch from {
		case ParticipationInvited:
			p.Status = ParticipationDeclined
			p.LeftAt = &now
			return true, nil
		case ParticipationDeclined:
			return false, nil
		}
	case ParticipationLeft:
		switch from {
		case ParticipationInvited, ParticipationJoined:
			p.Status = ParticipationLeft
			p.LeftAt = &now
			return true, nil
		case ParticipationLeft, ParticipationDeclined:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: interpreter %s -> %s", jobfair_errors.ErrInvalidTransition, from, to)
}

// RoomName composes a readable room name. stamp must never repeat for the
// same booth and job seeker.
func RoomName(boothID, jobSeekerID uuid.UUID, stamp int64) string {
	return fmt.Sprintf("booth_%s_js_%s_%d", boothID, jobSeekerID, stamp)
}
