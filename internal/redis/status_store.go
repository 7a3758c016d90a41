package redis

import (
	"context"
	"errors"
	"fmt"

	"jobfair-live/internal/domain/user"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const interpreterStatusKeyPrefix = "interpreter:status:"

// StatusStore keeps interpreters' self-reported availability in Redis so
// every instance sees the same value.
type StatusStore struct {
	client *goredis.Client
}

func NewStatusStore(client *goredis.Client) *StatusStore {
	return &StatusStore{client: client}
}

func statusKey(id uuid.UUID) string {
	return interpreterStatusKeyPrefix + id.String()
}

func (s *StatusStore) SetStatus(ctx context.Context, interpreterID uuid.UUID, status user.InterpreterStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", jobfair_errors.ErrInvalidInput, status)
	}
	return s.client.Set(ctx, statusKey(interpreterID), string(status), 0).Err()
}

// GetStatus returns the stored status; ok is false when none was reported.
func (s *StatusStore) GetStatus(ctx context.Context, interpreterID uuid.UUID) (user.InterpreterStatus, bool, error) {
	val, err := s.client.Get(ctx, statusKey(interpreterID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.InterpreterStatus(val), true, nil
}

// GetStatuses fetches many statuses in one round trip. Interpreters without
// a stored status are absent from the result.
func (s *StatusStore) GetStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.InterpreterStatus, error) {
	out := make(map[uuid.UUID]user.InterpreterStatus, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = statusKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[ids[i]] = user.InterpreterStatus(str)
		}
	}
	return out, nil
}

func (s *StatusStore) Clear(ctx context.Context, interpreterID uuid.UUID) error {
	return s.client.Del(ctx, statusKey(interpreterID)).Err()
}
