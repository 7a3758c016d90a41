package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/repository"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherPublishes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	payload := []byte(`{"event_type":"call.ended"}`)
	mock.ExpectPublish("user:abc", payload).SetVal(1)

	err := NewPublisher(db).Publish(context.Background(), "user:abc", payload)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusStoreSetAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStatusStore(db)
	ctx := context.Background()
	id := uuid.New()
	key := "interpreter:status:" + id.String()

	mock.ExpectSet(key, "away", 0).SetVal("OK")
	require.NoError(t, store.SetStatus(ctx, id, user.InterpreterAway))

	mock.ExpectGet(key).SetVal("away")
	status, ok, err := store.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.InterpreterAway, status)

	mock.ExpectGet(key).RedisNil()
	_, ok, err = store.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusStoreRejectsUnknownStatus(t *testing.T) {
	db, _ := redismock.NewClientMock()
	err := NewStatusStore(db).SetStatus(context.Background(), uuid.New(), "sleeping")
	assert.ErrorIs(t, err, jobfair_errors.ErrInvalidInput)
}

func TestStatusStoreGetStatuses(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStatusStore(db)
	a, b := uuid.New(), uuid.New()

	mock.ExpectMGet("interpreter:status:"+a.String(), "interpreter:status:"+b.String()).
		SetVal([]interface{}{"busy", nil})

	got, err := store.GetStatuses(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]user.InterpreterStatus{a: user.InterpreterBusy}, got)
	assert.NoError(t, mock.ExpectationsWereMet())

	empty, err := store.GetStatuses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLockerAcquireAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, 5*time.Second)
	locker.token = func() string { return "token-1" }

	mock.ExpectSetNX("lock:call:1", "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseLockScript, []string{"lock:call:1"}, "token-1").SetVal(int64(1))

	unlock, err := locker.Lock(context.Background(), "call:1")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockerRetriesUntilFree(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, 5*time.Second)
	locker.token = func() string { return "token-2" }
	locker.retry = time.Millisecond

	mock.ExpectSetNX("lock:interpreter:x", "token-2", 5*time.Second).SetVal(false)
	mock.ExpectSetNX("lock:interpreter:x", "token-2", 5*time.Second).SetVal(true)

	unlock, err := locker.Lock(context.Background(), "interpreter:x")
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockerSurfacesRedisErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, 5*time.Second)
	locker.token = func() string { return "token-3" }

	mock.ExpectSetNX("lock:k", "token-3", 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := locker.Lock(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRateLimiterAllowCall(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, RateLimitConfig{CallLimit: 5, CallWindow: time.Minute})

	mock.ExpectEvalSha(rateLimitScript.Hash(), []string{"ratelimit:u1:calls"}, 5, 60).
		SetVal([]interface{}{int64(1), int64(4), int64(60)})

	res, err := limiter.AllowCall(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
	assert.Equal(t, time.Minute, res.ResetIn)
	assert.Equal(t, 5, res.Limit)

	mock.ExpectEvalSha(rateLimitScript.Hash(), []string{"ratelimit:u1:calls"}, 5, 60).
		SetVal([]interface{}{int64(0), int64(0), int64(12)})

	res, err = limiter.AllowCall(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type countingUsers struct {
	repository.UserRepository
	users map[uuid.UUID]user.User
	reads int
}

func (c *countingUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	c.reads++
	u, ok := c.users[id]
	if !ok {
		return user.User{}, jobfair_errors.ErrNotFound
	}
	return u, nil
}

func (c *countingUsers) Upsert(_ context.Context, u *user.User) error {
	c.users[u.ID] = *u
	return nil
}

func TestCachedUsersReadThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	u := user.User{ID: uuid.New(), Name: "Rita", Role: user.RoleRecruiter, Active: true}
	next := &countingUsers{users: map[uuid.UUID]user.User{u.ID: u}}
	cache := NewCachedUsers(db, next, CacheConfig{UserTTL: time.Minute})
	ctx := context.Background()
	key := "user:profile:" + u.ID.String()

	data, err := json.Marshal(u)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, data, time.Minute).SetVal("OK")
	got, err := cache.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rita", got.Name)

	mock.ExpectGet(key).SetVal(string(data))
	got, err = cache.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 1, next.reads)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedUsersFallsBackOnRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	u := user.User{ID: uuid.New(), Name: "Rita"}
	next := &countingUsers{users: map[uuid.UUID]user.User{u.ID: u}}
	cache := NewCachedUsers(db, next, DefaultCacheConfig())
	key := "user:profile:" + u.ID.String()

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	got, err := cache.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestCachedUsersUpsertInvalidates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	next := &countingUsers{users: map[uuid.UUID]user.User{}}
	cache := NewCachedUsers(db, next, DefaultCacheConfig())
	u := user.User{ID: uuid.New(), Name: "Ivan"}

	mock.ExpectDel("user:profile:" + u.ID.String()).SetVal(1)
	require.NoError(t, cache.Upsert(context.Background(), &u))
	assert.Contains(t, next.users, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedUsersPassesNotFound(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCachedUsers(db, &countingUsers{users: map[uuid.UUID]user.User{}}, DefaultCacheConfig())
	id := uuid.New()

	mock.ExpectGet("user:profile:" + id.String()).RedisNil()
	_, err := cache.GetUserByID(context.Background(), id)
	assert.ErrorIs(t, err, jobfair_errors.ErrNotFound)
}
