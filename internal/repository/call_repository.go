package repository

import (
	"context"
	"fmt"
	"time"

	"jobfair-live/internal/domain/call"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresCallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) CallRepository {
	return &PostgresCallRepository{db: db}
}

// withRoster preloads interpreter records and the chat log in append order.
func (r *PostgresCallRepository) withRoster(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Interpreters").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("call_messages.id ASC")
		})
}

func (r *PostgresCallRepository) Create(ctx context.Context, s *call.Session) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: queue entry %s already has an active call", jobfair_errors.ErrInvalidTransition, s.QueueEntryID)
		}
		return err
	}
	return nil
}

func (r *PostgresCallRepository) GetByID(ctx context.Context, id uuid.UUID) (call.Session, error) {
	var s call.Session
	err := r.withRoster(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if isNotFound(err) {
			return call.Session{}, jobfair_errors.ErrNotFound
		}
		return call.Session{}, err
	}
	return s, nil
}

func (r *PostgresCallRepository) FindActiveByQueueEntry(ctx context.Context, queueEntryID uuid.UUID) (call.Session, error) {
	var s call.Session
	err := r.withRoster(ctx).
		Where("queue_entry_id = ? AND status = ?", queueEntryID, call.StatusActive).
		First(&s).Error
	if err != nil {
		if isNotFound(err) {
			return call.Session{}, jobfair_errors.ErrNotFound
		}
		return call.Session{}, err
	}
	return s, nil
}

func (r *PostgresCallRepository) ListByQueueEntry(ctx context.Context, queueEntryID uuid.UUID) ([]call.Session, error) {
	var sessions []call.Session
	err := r.withRoster(ctx).
		Where("queue_entry_id = ?", queueEntryID).
		Order("started_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *PostgresCallRepository) activeInterpreterSessions(interpreterID uuid.UUID) *gorm.DB {
	return r.db.Model(&call.InterpreterParticipation{}).
		Select("session_id").
		Where("interpreter_id = ? AND status IN ?", interpreterID,
			[]call.ParticipationStatus{call.ParticipationInvited, call.ParticipationJoined})
}

func (r *PostgresCallRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]call.Session, error) {
	var sessions []call.Session
	err := r.withRoster(ctx).
		Where("status = ? AND (recruiter_id = ? OR job_seeker_id = ? OR id IN (?))",
			call.StatusActive, userID, userID, r.activeInterpreterSessions(userID)).
		Order("started_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *PostgresCallRepository) ListActiveByInterpreter(ctx context.Context, interpreterID uuid.UUID) ([]call.Session, error) {
	var sessions []call.Session
	err := r.withRoster(ctx).
		Where("status = ? AND id IN (?)", call.StatusActive, r.activeInterpreterSessions(interpreterID)).
		Find(&sessions).Error
	return sessions, err
}

func (r *PostgresCallRepository) ListActive(ctx context.Context) ([]call.Session, error) {
	var sessions []call.Session
	err := r.withRoster(ctx).
		Where("status = ?", call.StatusActive).
		Order("started_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *PostgresCallRepository) ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]call.Session, error) {
	var sessions []call.Session
	err := r.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", call.StatusActive, cutoff).
		Order("started_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *PostgresCallRepository) MarkEnded(ctx context.Context, s call.Session) (bool, error) {
	ended := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&call.Session{}).
			Where("id = ? AND status = ?", s.ID, call.StatusActive).
			Updates(map[string]interface{}{
				"status":           call.StatusEnded,
				"end_reason":       s.EndReason,
				"ended_at":         s.EndedAt,
				"duration_seconds": s.DurationSeconds,
				"updated_at":       time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		ended = true
		return tx.Model(&call.InterpreterParticipation{}).
			Where("session_id = ? AND status = ?", s.ID, call.ParticipationJoined).
			Updates(map[string]interface{}{
				"status":  call.ParticipationLeft,
				"left_at": s.EndedAt,
			}).Error
	})
	return ended, err
}

func (r *PostgresCallRepository) SaveParticipation(ctx context.Context, p call.InterpreterParticipation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&p).Error
}

func (r *PostgresCallRepository) AppendMessage(ctx context.Context, m *call.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}
