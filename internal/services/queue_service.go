package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/events"
	"jobfair-live/internal/metrics"
	"jobfair-live/internal/repository"
	jobfair_errors "jobfair-live/pkg/errors"
	"jobfair-live/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueueService keeps each booth's waiting line. Every mutation is published
// as a full entry snapshot to the job seeker and both booth channels.
type QueueService struct {
	repo     repository.QueueRepository
	locker   Locker
	notifier *Notifier
	clock    func() time.Time
	log      *logger.Logger
}

func NewQueueService(repo repository.QueueRepository, locker Locker, notifier *Notifier, l *logger.Logger) *QueueService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &QueueService{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		clock:    func() time.Time { return time.Now().UTC() },
		log:      l.Named("queue"),
	}
}

type JoinQueueInput struct {
	BoothID             uuid.UUID
	JobSeekerID         uuid.UUID
	EventID             uuid.UUID
	InterpreterCategory string
}

// Join appends the job seeker to the booth's line. Positions are assigned in
// server-observed order under the booth lock.
func (s *QueueService) Join(ctx context.Context, in JoinQueueInput) (entry queue.Entry, err error) {
	defer func() { metrics.QueueOperations.WithLabelValues("join", metrics.Outcome(err)).Inc() }()

	if in.BoothID == uuid.Nil || in.JobSeekerID == uuid.Nil || in.EventID == uuid.Nil {
		return queue.Entry{}, fmt.Errorf("%w: booth, job seeker and event are required", jobfair_errors.ErrInvalidInput)
	}

	unlock, err := s.locker.Lock(ctx, boothQueueLockKey(in.BoothID))
	if err != nil {
		return queue.Entry{}, err
	}
	defer unlock()

	existing, err := s.repo.FindActive(ctx, in.JobSeekerID, in.BoothID)
	switch {
	case err == nil:
		return existing, fmt.Errorf("%w: entry %s is %s", jobfair_errors.ErrDuplicateActiveEntry, existing.ID, existing.Status)
	case !errors.Is(err, jobfair_errors.ErrNotFound):
		return queue.Entry{}, err
	}

	maxWaiting, err := s.repo.MaxWaitingPosition(ctx, in.BoothID)
	if err != nil {
		return queue.Entry{}, err
	}

	e := queue.NewEntry(in.JobSeekerID, in.BoothID, in.EventID, queue.NextPosition(maxWaiting), in.InterpreterCategory, s.clock())
	if err := s.repo.Create(ctx, e); err != nil {
		return queue.Entry{}, err
	}

	s.log.WithContext(ctx).Info("job seeker joined queue",
		zap.String("entry_id", e.ID.String()),
		zap.String("booth_id", e.BoothID.String()),
		zap.Int("position", e.Position))
	s.notifier.Notify(ctx, &events.QueueEntryUpdated{Entry: *e})
	return *e, nil
}

// Invite flags a waiting entry as called by the booth.
func (s *QueueService) Invite(ctx context.Context, entryID uuid.UUID) (queue.Entry, error) {
	return s.transition(ctx, "invite", entryID, queue.StatusInvited)
}

// MarkInMeeting is valid only from waiting or invited.
func (s *QueueService) MarkInMeeting(ctx context.Context, entryID uuid.UUID) (queue.Entry, error) {
	return s.transition(ctx, "mark_in_meeting", entryID, queue.StatusInMeeting)
}

func (s *QueueService) Complete(ctx context.Context, entryID uuid.UUID) (queue.Entry, error) {
	return s.transition(ctx, "complete", entryID, queue.StatusCompleted)
}

// Leave releases the entry. Leaving an entry that already reached a terminal
// status is a no-op because explicit leaves routinely race with call-end
// cleanup.
func (s *QueueService) Leave(ctx context.Context, entryID uuid.UUID) (queue.Entry, error) {
	return s.transition(ctx, "leave", entryID, queue.StatusLeftWithMessage)
}

func (s *QueueService) Get(ctx context.Context, entryID uuid.UUID) (queue.Entry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// ListByBooth returns the booth's active entries ordered by position.
func (s *QueueService) ListByBooth(ctx context.Context, boothID uuid.UUID) ([]queue.Entry, error) {
	return s.repo.ListActiveByBooth(ctx, boothID)
}

func (s *QueueService) ActiveForJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]queue.Entry, error) {
	return s.repo.ListActiveByJobSeeker(ctx, jobSeekerID)
}

func (s *QueueService) transition(ctx context.Context, op string, entryID uuid.UUID, to queue.Status) (entry queue.Entry, err error) {
	defer func() { metrics.QueueOperations.WithLabelValues(op, metrics.Outcome(err)).Inc() }()

	unlock, err := s.locker.Lock(ctx, queueEntryLockKey(entryID))
	if err != nil {
		return queue.Entry{}, err
	}
	defer unlock()

	current, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return queue.Entry{}, err
	}
	changed, err := current.Transition(to)
	if err != nil {
		return current, err
	}
	if !changed {
		return current, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, entryID, current.Status, to, s.clock())
	if err != nil {
		return current, err
	}

	s.log.WithContext(ctx).Info("queue entry updated",
		zap.String("entry_id", updated.ID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)))
	s.notifier.Notify(ctx, &events.QueueEntryUpdated{Entry: updated})
	return updated, nil
}
