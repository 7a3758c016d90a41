package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/metrics"
	"jobfair-live/internal/presence"
	"jobfair-live/internal/repository"
	jobfair_errors "jobfair-live/pkg/errors"
	"jobfair-live/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusStore keeps the availability interpreters report for themselves.
type StatusStore interface {
	SetStatus(ctx context.Context, interpreterID uuid.UUID, status user.InterpreterStatus) error
	GetStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.InterpreterStatus, error)
}

// CoarseStatus is what a recruiter sees next to each interpreter.
type CoarseStatus string

const (
	CoarseOnline  CoarseStatus = "online"
	CoarseBusy    CoarseStatus = "busy"
	CoarseOffline CoarseStatus = "offline"
)

type InterpreterAvailability struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Scope        user.InterpreterScope `json:"scope"`
	Status       CoarseStatus          `json:"status"`
	Available    bool                  `json:"available"`
	ActiveCallID *uuid.UUID            `json:"active_call_id,omitempty"`
}

// InterpreterService answers "who can I invite right now" for a booth.
type InterpreterService struct {
	users      repository.UserRepository
	calls      repository.CallRepository
	callSvc    *CallService
	registry   *presence.Registry
	statuses   StatusStore
	staleAfter time.Duration
	clock      func() time.Time
	log        *logger.Logger
}

func NewInterpreterService(
	users repository.UserRepository,
	calls repository.CallRepository,
	callSvc *CallService,
	registry *presence.Registry,
	statuses StatusStore,
	staleAfter time.Duration,
	l *logger.Logger,
) *InterpreterService {
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &InterpreterService{
		users:      users,
		calls:      calls,
		callSvc:    callSvc,
		registry:   registry,
		statuses:   statuses,
		staleAfter: staleAfter,
		clock:      func() time.Time { return time.Now().UTC() },
		log:        l.Named("interpreter"),
	}
}

// ListAvailable returns the booth's interpreters followed by global ones,
// available first. Stale sessions are swept before anything is evaluated so
// an orphaned call cannot keep an interpreter marked busy.
func (s *InterpreterService) ListAvailable(ctx context.Context, boothID uuid.UUID) ([]InterpreterAvailability, error) {
	if _, err := s.SweepStale(ctx); err != nil {
		return nil, err
	}

	interpreters, err := s.users.ListInterpreters(ctx, boothID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(interpreters))
	for _, u := range interpreters {
		ids = append(ids, u.ID)
	}
	selfReported, err := s.statuses.GetStatuses(ctx, ids)
	if err != nil {
		s.log.WithContext(ctx).Warn("interpreter.ListAvailable: status store", zap.Error(err))
		selfReported = map[uuid.UUID]user.InterpreterStatus{}
	}

	active, err := s.calls.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	busyIn := make(map[uuid.UUID]uuid.UUID)
	for _, session := range active {
		for _, id := range session.ActiveInterpreterIDs() {
			busyIn[id] = session.ID
		}
	}

	out := make([]InterpreterAvailability, 0, len(interpreters))
	for _, u := range interpreters {
		scope, ok := u.InterpreterScope()
		if !ok {
			continue
		}
		item := InterpreterAvailability{ID: u.ID, Name: u.Name, Scope: scope}

		self, reported := selfReported[u.ID]
		if !reported {
			self = user.InterpreterOnline
		}
		online := s.registry.IsOnline(u.ID)
		callID, busy := busyIn[u.ID]

		switch {
		case busy:
			item.Status = CoarseBusy
			item.ActiveCallID = &callID
		case !online:
			item.Status = CoarseOffline
		case self == user.InterpreterOnline:
			item.Status = CoarseOnline
			item.Available = true
		case self == user.InterpreterBusy:
			item.Status = CoarseBusy
		default:
			item.Status = CoarseOffline
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Available != b.Available {
			return a.Available
		}
		if a.Scope != b.Scope {
			return a.Scope == user.ScopeBooth
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// SetStatus records the interpreter's self-reported availability.
func (s *InterpreterService) SetStatus(ctx context.Context, caller Identity, status user.InterpreterStatus) error {
	if _, ok := caller.Role.CanInterpret(); !ok {
		return fmt.Errorf("%w: only interpreters report a status", jobfair_errors.ErrUnauthorized)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", jobfair_errors.ErrInvalidInput, status)
	}
	return s.statuses.SetStatus(ctx, caller.UserID, status)
}

// SweepStale force-ends active sessions older than the staleness threshold.
// A session that fails to end is logged and left for the next sweep.
func (s *InterpreterService) SweepStale(ctx context.Context) (int, error) {
	cutoff := s.clock().Add(-s.staleAfter)
	stale, err := s.calls.ListActiveStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, session := range stale {
		if _, err := s.callSvc.ForceEnd(ctx, session.ID, call.EndReasonStale); err != nil {
			s.log.WithContext(ctx).Error("interpreter.SweepStale: end session",
				zap.String("call_id", session.ID.String()), zap.Error(err))
			continue
		}
		swept++
		metrics.StaleSessionsSwept.Inc()
	}
	if swept > 0 {
		s.log.WithContext(ctx).Info("stale sessions swept", zap.Int("count", swept))
	}
	if err := s.callSvc.SyncActiveCalls(ctx); err != nil {
		s.log.WithContext(ctx).Warn("interpreter.SweepStale: sync active calls", zap.Error(err))
	}
	return swept, nil
}

// RunSweeper sweeps on a fixed interval until ctx is done. It complements
// the sweep every availability query performs.
func (s *InterpreterService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepStale(ctx); err != nil {
				s.log.WithContext(ctx).Error("interpreter.RunSweeper", zap.Error(err))
			}
		}
	}
}
