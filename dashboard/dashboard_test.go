package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/navigation"
	"github.com/maxwellzeha/jonduplastics/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
	calls  int
}

func (f *fakeOrders) Orders(context.Context, string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Order(nil), f.orders...), nil
}

func (f *fakeOrders) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu   sync.Mutex
	snap session.Snapshot
	subs []func(session.Snapshot)
}

func (f *fakeStore) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeStore) Subscribe(fn func(session.Snapshot)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.subs[idx] = nil
		f.mu.Unlock()
	}
}

func (f *fakeStore) set(snap session.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	subs := append(([]func(session.Snapshot))(nil), f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(snap)
		}
	}
}

func signedInAs(id string) session.Snapshot {
	return session.Snapshot{State: session.StateAuthenticated, Identity: &session.Identity{ID: id}}
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func order(status models.OrderStatus, color string, artwork bool, age time.Duration) models.Order {
	o := models.Order{ID: uuid.New(), Status: status, Color: color, Date: base.Add(-age)}
	if artwork {
		url := "https://cdn.example.com/artworks/u1/" + o.ID.String() + ".png"
		o.ArtworkURL = &url
	}
	return o
}

func TestLoad_SortsAndFiltersByTab(t *testing.T) {
	oldest := order(models.OrderStatusCompleted, "#FFFFFF", false, 3*time.Hour)
	newest := order(models.OrderStatusPending, "#FFFFFF", false, time.Hour)
	middle := order(models.OrderStatusCancelled, "#FFFFFF", false, 2*time.Hour)
	src := &fakeOrders{orders: []models.Order{oldest, newest, middle}}
	store := &fakeStore{snap: signedInAs("u1")}
	d := New(src, store, nil)

	require.NoError(t, d.Load(context.Background()))

	all := d.Orders()
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldest.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	d.SetTab(TabCompleted)
	require.Len(t, d.Orders(), 1)
	assert.Equal(t, oldest.ID, d.Orders()[0].ID)

	d.SetTab(TabCancelled)
	assert.Equal(t, middle.ID, d.Orders()[0].ID)
	assert.Equal(t, 1, src.callCount(), "switching tabs never fetches")

	got, ok := d.Order(newest.ID)
	assert.True(t, ok)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	_, ok = d.Order(uuid.New())
	assert.False(t, ok)
}

func TestRecentDesigns(t *testing.T) {
	var orders []models.Order
	orders = append(orders, order(models.OrderStatusPending, "#FFFFFF", false, 0))
	for i := 0; i < 12; i++ {
		orders = append(orders, order(models.OrderStatusPending, fmt.Sprintf("#00%04X", i), i%2 == 0, time.Duration(i+1)*time.Minute))
	}
	d := New(&fakeOrders{orders: orders}, &fakeStore{snap: signedInAs("u1")}, nil)
	require.NoError(t, d.Load(context.Background()))

	recent := d.RecentDesigns()
	require.Len(t, recent, RecentDesignsLimit)
	assert.Equal(t, orders[1].ID, recent[0].ID)
	assert.Equal(t, orders[9].ID, recent[8].ID)

	plain := order(models.OrderStatusPending, "#FFFFFF", false, 0)
	withArt := order(models.OrderStatusPending, "#FFFFFF", true, time.Minute)
	lowercase := order(models.OrderStatusPending, "#ffffff", false, 2*time.Minute)
	d = New(&fakeOrders{orders: []models.Order{plain, withArt, lowercase}}, &fakeStore{snap: signedInAs("u1")}, nil)
	require.NoError(t, d.Load(context.Background()))
	require.Len(t, d.RecentDesigns(), 2)
	assert.Equal(t, withArt.ID, d.RecentDesigns()[0].ID)
	// the colour is compared exactly as it was stored
	assert.Equal(t, lowercase.ID, d.RecentDesigns()[1].ID)
}

func TestLoad_FailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &fakeOrders{orders: []models.Order{order(models.OrderStatusPending, "#FF0000", false, 0)}}
	d := New(src, &fakeStore{snap: signedInAs("u1")}, zap.New(core))
	require.NoError(t, d.Load(context.Background()))
	require.Len(t, d.Orders(), 1)

	src.err = errors.New("connection reset")
	err := d.Load(context.Background())

	assert.Error(t, err)
	view := d.View()
	assert.Empty(t, view.Orders)
	assert.Empty(t, view.RecentDesigns)
	assert.False(t, view.Loading)
	assert.True(t, view.Loaded)
	assert.Equal(t, 1, logs.FilterMessage("Failed to fetch orders").Len())
}

func TestLoad_Anonymous(t *testing.T) {
	src := &fakeOrders{}
	d := New(src, &fakeStore{snap: session.Snapshot{State: session.StateAnonymous}}, nil)

	assert.False(t, d.View().Loaded)
	require.NoError(t, d.Load(context.Background()))

	assert.Zero(t, src.callCount())
	assert.True(t, d.View().Loaded)
	assert.Empty(t, d.Orders())
}

func TestWatch_RefetchesOnIdentityAndNavigation(t *testing.T) {
	src := &fakeOrders{orders: []models.Order{order(models.OrderStatusPending, "#FFFFFF", false, 0)}}
	store := &fakeStore{snap: session.Snapshot{State: session.StateLoading, Loading: true}}
	router := navigation.NewRouter(navigation.Home)
	d := New(src, store, nil)
	d.Watch(context.Background(), router)

	store.set(session.Snapshot{State: session.StateLoading, Loading: true})
	assert.Zero(t, src.callCount(), "loading snapshots are ignored")

	store.set(signedInAs("u1"))
	assert.Equal(t, 1, src.callCount())
	assert.Len(t, d.Orders(), 1)

	store.set(signedInAs("u1"))
	assert.Equal(t, 1, src.callCount(), "same user does not refetch")

	router.Navigate(navigation.Dashboard)
	assert.Equal(t, 2, src.callCount())
	router.Navigate(navigation.Products)
	assert.Equal(t, 2, src.callCount())

	store.set(session.Snapshot{State: session.StateAnonymous})
	assert.Empty(t, d.Orders())

	d.Close()
	store.set(signedInAs("u2"))
	router.Navigate(navigation.Dashboard)
	assert.Equal(t, 2, src.callCount())
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabPending, ParseTab("pending"))
	assert.Equal(t, TabCancelled, ParseTab("Cancelled"))
	assert.Equal(t, TabAll, ParseTab("bogus"))
	assert.Len(t, Tabs(), 4)
}
