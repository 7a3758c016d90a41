package repository

import (
	"context"
	"fmt"
	"time"

	"jobfair-live/internal/domain/queue"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresQueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &PostgresQueueRepository{db: db}
}

func (r *PostgresQueueRepository) Create(ctx context.Context, e *queue.Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return jobfair_errors.ErrDuplicateActiveEntry
		}
		return err
	}
	return nil
}

func (r *PostgresQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (queue.Entry, error) {
	var e queue.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if isNotFound(err) {
			return queue.Entry{}, jobfair_errors.ErrNotFound
		}
		return queue.Entry{}, err
	}
	return e, nil
}

func (r *PostgresQueueRepository) FindActive(ctx context.Context, jobSeekerID, boothID uuid.UUID) (queue.Entry, error) {
	var e queue.Entry
	err := r.db.WithContext(ctx).
		Where("job_seeker_id = ? AND booth_id = ? AND status IN ?", jobSeekerID, boothID, queue.ActiveStatuses).
		First(&e).Error
	if err != nil {
		if isNotFound(err) {
			return queue.Entry{}, jobfair_errors.ErrNotFound
		}
		return queue.Entry{}, err
	}
	return e, nil
}

func (r *PostgresQueueRepository) MaxWaitingPosition(ctx context.Context, boothID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&queue.Entry{}).
		Where("booth_id = ? AND status = ?", boothID, queue.StatusWaiting).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *PostgresQueueRepository) ListActiveByBooth(ctx context.Context, boothID uuid.UUID) ([]queue.Entry, error) {
	var entries []queue.Entry
	err := r.db.WithContext(ctx).
		Where("booth_id = ? AND status IN ?", boothID, queue.ActiveStatuses).
		Order("position ASC, joined_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *PostgresQueueRepository) ListActiveByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]queue.Entry, error) {
	var entries []queue.Entry
	err := r.db.WithContext(ctx).
		Where("job_seeker_id = ? AND status IN ?", jobSeekerID, queue.ActiveStatuses).
		Order("joined_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *PostgresQueueRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to queue.Status, at time.Time) (queue.Entry, error) {
	res := r.db.WithContext(ctx).
		Model(&queue.Entry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": at})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return queue.Entry{}, jobfair_errors.ErrDuplicateActiveEntry
		}
		return queue.Entry{}, res.Error
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return queue.Entry{}, err
	}
	if res.RowsAffected == 0 {
		return current, fmt.Errorf("%w: queue entry is %s, expected %s", jobfair_errors.ErrInvalidTransition, current.Status, from)
	}
	return current, nil
}
