// Package redisstore puts a Redis read-through cache in front of the
// progression ledger. Only user_goals snapshots are cached; every other
// store call goes straight to the wrapped store.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/infra/metrics"
)

const (
	// DefaultTTL bounds how long a cached ledger survives without a write.
	DefaultTTL = 10 * time.Minute
	// KeyPrefix namespaces all ledger keys.
	KeyPrefix = "jobtrail:goals:"
)

// Options configures the Redis connection.
type Options struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries uint64 // connection attempts during Dial
}

// Dial connects to Redis, retrying the initial ping with exponential backoff.
func Dial(ctx context.Context, opts Options, log *zap.Logger) (*redis.Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	retries := opts.MaxRetries
	if retries == 0 {
		retries = 5
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)

	err := backoff.Retry(func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed, retrying", zap.String("addr", opts.Addr), zap.Error(err))
			return err
		}
		return nil
	}, b)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	log.Info("redis connected", zap.String("addr", opts.Addr))
	return client, nil
}

// GoalsCache wraps a ProgressStore and caches GetGoals results in Redis.
// The wrapped store stays the source of truth: cache failures are logged
// and the call falls through.
type GoalsCache struct {
	domain.ProgressStore
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ domain.ProgressStore = (*GoalsCache)(nil)

// NewGoalsCache wraps store. A non-positive ttl uses DefaultTTL.
func NewGoalsCache(store domain.ProgressStore, client *redis.Client, ttl time.Duration, log *zap.Logger) *GoalsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GoalsCache{ProgressStore: store, client: client, ttl: ttl, log: log}
}

func makeKey(userID string) string {
	return KeyPrefix + userID
}

// GetGoals reads the cached snapshot, falling back to the wrapped store on a
// miss and populating the cache from it.
func (c *GoalsCache) GetGoals(ctx context.Context, userID string) (*domain.UserGoals, error) {
	data, err := c.client.Get(ctx, makeKey(userID)).Bytes()
	switch {
	case err == nil:
		var g domain.UserGoals
		if jsonErr := json.Unmarshal(data, &g); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return &g, nil
		}
		c.log.Warn("discarding corrupt cached goals", zap.String("user_id", userID))
	case err == redis.Nil:
	default:
		c.log.Warn("redis get failed", zap.String("user_id", userID), zap.Error(err))
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	g, err := c.ProgressStore.GetGoals(ctx, userID)
	if err != nil || g == nil {
		return g, err
	}
	c.put(ctx, *g)
	return g, nil
}

// SaveGoals writes through to the wrapped store, then refreshes the cache.
func (c *GoalsCache) SaveGoals(ctx context.Context, g domain.UserGoals) error {
	if err := c.ProgressStore.SaveGoals(ctx, g); err != nil {
		c.invalidate(ctx, g.UserID)
		return err
	}
	c.put(ctx, g)
	return nil
}

// Ping checks Redis connectivity.
func (c *GoalsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *GoalsCache) put(ctx context.Context, g domain.UserGoals) {
	data, err := json.Marshal(g)
	if err != nil {
		c.log.Warn("marshal goals for cache", zap.String("user_id", g.UserID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, makeKey(g.UserID), data, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", zap.String("user_id", g.UserID), zap.Error(err))
		c.invalidate(ctx, g.UserID)
	}
}

func (c *GoalsCache) invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, makeKey(userID)).Err(); err != nil {
		c.log.Warn("redis del failed", zap.String("user_id", userID), zap.Error(err))
	}
}
