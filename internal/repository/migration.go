package repository

import (
	"fmt"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"

	"gorm.io/gorm"
)

// InitSchema runs gorm auto-migration and adds the partial unique indexes
// gorm tags cannot express.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&queue.Entry{},
		&call.Session{},
		&call.InterpreterParticipation{},
		&call.ChatMessage{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	indexes := []string{
		// One active queue entry per job seeker per booth.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_queue_entries_active
			ON queue_entries (job_seeker_id, booth_id)
			WHERE status IN ('waiting', 'invited', 'in_meeting');`,
		// One active call per queue entry.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_call_sessions_active_entry
			ON call_sessions (queue_entry_id)
			WHERE status = 'active';`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
