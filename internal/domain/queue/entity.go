package queue

import (
	"fmt"
	"time"

	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
)

type Status string

const (
	StatusWaiting         Status = "waiting"
	StatusInvited         Status = "invited"
	StatusInMeeting       Status = "in_meeting"
	StatusCompleted       Status = "completed"
	StatusLeftWithMessage Status = "left_with_message"
)

// ActiveStatuses are the statuses counted by the one-active-entry rule.
var ActiveStatuses = []Status{StatusWaiting, StatusInvited, StatusInMeeting}

func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusInvited || s == StatusInMeeting
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusLeftWithMessage
}

// Entry represents queue_entries. Entries are never deleted.
type Entry struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobSeekerID         uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_entries_seeker_booth" json:"job_seeker_id"`
	BoothID             uuid.UUID `gorm:"type:uuid;not null;index:idx_queue_entries_seeker_booth;index:idx_queue_entries_booth_status" json:"booth_id"`
	EventID             uuid.UUID `gorm:"type:uuid;not null" json:"event_id"`
	Status              Status    `gorm:"type:varchar(32);not null;index:idx_queue_entries_booth_status" json:"status"`
	Position            int       `gorm:"not null" json:"position"`
	InterpreterCategory string    `json:"interpreter_category,omitempty"`
	JoinedAt            time.Time `gorm:"not null" json:"joined_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "queue_entries"
}

// NewEntry builds a waiting entry at the given position.
func NewEntry(jobSeekerID, boothID, eventID uuid.UUID, position int, category string, now time.Time) *Entry {
	return &Entry{
		ID:                  uuid.New(),
		JobSeekerID:         jobSeekerID,
		BoothID:             boothID,
		EventID:             eventID,
		Status:              StatusWaiting,
		Position:            position,
		InterpreterCategory: category,
		JoinedAt:            now,
		UpdatedAt:           now,
	}
}

// Transition validates a status change. A nil error with changed=false means
// the change is an idempotent no-op.
func (e Entry) Transition(to Status) (changed bool, err error) {
	from := e.Status
	switch to {
	case StatusInvited:
		if from == StatusWaiting {
			return true, nil
		}
		if from == StatusInvited {
			return false, nil
		}
	case StatusInMeeting:
		if from == StatusWaiting || from == StatusInvited {
			return true, nil
		}
	case StatusCompleted:
		if from == StatusInMeeting {
			return true, nil
		}
		if from == StatusCompleted {
			return false, nil
		}
	case StatusLeftWithMessage:
		if from.IsTerminal() {
			return false, nil
		}
		return true, nil
	}
	return false, fmt.Errorf("%w: queue entry %s -> %s", jobfair_errors.ErrInvalidTransition, from, to)
}

// NextPosition returns the position for a new waiting entry given the
// positions currently held by waiting entries of the same booth.
func NextPosition(maxWaiting int) int {
	if maxWaiting < 0 {
		maxWaiting = 0
	}
	return maxWaiting + 1
}
