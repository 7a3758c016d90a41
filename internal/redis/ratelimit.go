package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key patterns:
// - ratelimit:{user_id}:calls - call creation and interpreter invites
// - ratelimit:{user_id}:chat - in-call chat messages

// RateLimitConfig contains configuration for rate limiting
type RateLimitConfig struct {
	CallLimit  int           // Max call actions per window
	CallWindow time.Duration // Call action window
	ChatLimit  int           // Max chat messages per window
	ChatWindow time.Duration // Chat window
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		CallLimit:  30,
		CallWindow: 60 * time.Second,
		ChatLimit:  60,
		ChatWindow: 60 * time.Second,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool          // Whether the action is allowed
	Remaining int           // Remaining actions in the window
	ResetIn   time.Duration // Time until the window resets
	Limit     int           // The limit for this action
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// rateLimitScript increments a fixed-window counter atomically.
var rateLimitScript = goredis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = redis.call('GET', key)
	if current == false then
		current = 0
	else
		current = tonumber(current)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if current < limit then
		redis.call('INCR', key)
		if ttl == window then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - current - 1, ttl}
	else
		return {0, 0, ttl}
	end
`)

// AllowCall checks if a user may create a call or invite an interpreter
func (r *RateLimiter) AllowCall(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:calls", userID)
	return r.checkLimit(ctx, key, r.config.CallLimit, r.config.CallWindow)
}

// AllowChat checks if a user may post another chat message
func (r *RateLimiter) AllowChat(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:chat", userID)
	return r.checkLimit(ctx, key, r.config.ChatLimit, r.config.ChatWindow)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	result, err := rateLimitScript.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}
	allowed, _ := resultSlice[0].(int64)
	remaining, _ := resultSlice[1].(int64)
	resetIn, _ := resultSlice[2].(int64)

	return &RateLimitResult{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetIn:   time.Duration(resetIn) * time.Second,
		Limit:     limit,
	}, nil
}
