package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the key/value store behind CachedOrderRepository.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache implements Cache with go-redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// NewRedisClient parses a redis URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// CachedOrderRepository is a read-through cache over an OrderRepository for
// per-owner order lists. Creating an order drops the owner's cached list.
// Cache failures are logged and fall back to the underlying repository.
type CachedOrderRepository struct {
	next   OrderRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger

	// OnHit and OnMiss, when set, are called for every list lookup.
	OnHit  func(ctx context.Context)
	OnMiss func(ctx context.Context)
}

func NewCachedOrderRepository(next OrderRepository, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedOrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOrderRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func ordersKey(userID uuid.UUID) string {
	return "orders:user:" + userID.String()
}

func (r *CachedOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.next.Create(ctx, order); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, ordersKey(order.UserID)); err != nil {
		r.logger.Warn("order cache invalidation failed", zap.String("user_id", order.UserID.String()), zap.Error(err))
	}
	return nil
}

func (r *CachedOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	key := ordersKey(userID)

	b, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var orders []models.Order
		if jsonErr := json.Unmarshal(b, &orders); jsonErr == nil {
			if r.OnHit != nil {
				r.OnHit(ctx)
			}
			return orders, nil
		}
		r.logger.Warn("discarding corrupt order cache entry", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		r.logger.Warn("order cache read failed", zap.String("key", key), zap.Error(err))
	}
	if r.OnMiss != nil {
		r.OnMiss(ctx)
	}

	orders, err := r.next.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(orders); err == nil {
		if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
			r.logger.Warn("order cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return orders, nil
}

// FindByIDAndUserID bypasses the cache.
func (r *CachedOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return r.next.FindByIDAndUserID(ctx, orderID, userID)
}
