package redis

import (
	"context"
	"fmt"
	"time"

	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:"

// releaseLockScript deletes the key only if we still own it.
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a SET NX based mutex shared by every instance. It serializes
// read-modify-write sequences on the same queue entry, call or interpreter.
type Locker struct {
	client *goredis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	token  func() string
}

func NewLocker(client *goredis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{
		client: client,
		ttl:    ttl,
		wait:   ttl,
		retry:  25 * time.Millisecond,
		token:  uuid.NewString,
	}
}

// Lock blocks until the key is acquired or the wait budget runs out.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := lockKeyPrefix + key
	token := l.token()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: lock %s", jobfair_errors.ErrServiceUnavailable, key)
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(fullKey, token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: lock %s", jobfair_errors.ErrServiceUnavailable, key)
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) release(fullKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = l.client.Eval(ctx, releaseLockScript, []string{fullKey}, token).Err()
}
