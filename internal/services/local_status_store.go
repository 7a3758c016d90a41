package services

import (
	"context"
	"fmt"
	"sync"

	"jobfair-live/internal/domain/user"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
)

// LocalStatusStore keeps interpreter statuses in process memory. It is only
// correct when a single instance serves every interpreter.
type LocalStatusStore struct {
	mu       sync.RWMutex
	statuses map[uuid.UUID]user.InterpreterStatus
}

func NewLocalStatusStore() *LocalStatusStore {
	return &LocalStatusStore{statuses: make(map[uuid.UUID]user.InterpreterStatus)}
}

func (s *LocalStatusStore) SetStatus(_ context.Context, interpreterID uuid.UUID, status user.InterpreterStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", jobfair_errors.ErrInvalidInput, status)
	}
	s.mu.Lock()
	s.statuses[interpreterID] = status
	s.mu.Unlock()
	return nil
}

func (s *LocalStatusStore) GetStatuses(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.InterpreterStatus, error) {
	out := make(map[uuid.UUID]user.InterpreterStatus, len(ids))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range ids {
		if status, ok := s.statuses[id]; ok {
			out[id] = status
		}
	}
	return out, nil
}
