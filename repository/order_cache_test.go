package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("connection refused")
	}
	b, ok := c.data[key]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return b, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type countingOrderRepo struct {
	orders map[uuid.UUID][]models.Order
	lists  int
}

func (r *countingOrderRepo) Create(_ context.Context, o *models.Order) error {
	o.ID = uuid.New()
	r.orders[o.UserID] = append([]models.Order{*o}, r.orders[o.UserID]...)
	return nil
}

func (r *countingOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	r.lists++
	return append([]models.Order(nil), r.orders[userID]...), nil
}

func (r *countingOrderRepo) FindByIDAndUserID(_ context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	for _, o := range r.orders[userID] {
		if o.ID == orderID {
			return &o, nil
		}
	}
	return nil, errors.New("not found")
}

func TestCachedOrderRepository_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	inner := &countingOrderRepo{orders: map[uuid.UUID][]models.Order{}}
	repo := repository.NewCachedOrderRepository(inner, newMemoryCache(), time.Minute, nil)

	var hits, misses int
	repo.OnHit = func(context.Context) { hits++ }
	repo.OnMiss = func(context.Context) { misses++ }

	require.NoError(t, repo.Create(ctx, &models.Order{UserID: userID, Date: time.Now(), Status: models.OrderStatusPending}))

	first, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	second, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, inner.lists)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	require.NoError(t, repo.Create(ctx, &models.Order{UserID: userID, Date: time.Now(), Status: models.OrderStatusPending}))
	third, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, inner.lists)
}

func TestCachedOrderRepository_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	inner := &countingOrderRepo{orders: map[uuid.UUID][]models.Order{
		userID: {{ID: uuid.New(), UserID: userID}},
	}}
	cache := newMemoryCache()
	cache.failGet = true
	repo := repository.NewCachedOrderRepository(inner, cache, time.Minute, nil)

	orders, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, inner.lists)
}
