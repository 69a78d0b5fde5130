// Package dashboard is the view model behind the signed-in user's order
// history: tabs by status, recently used designs and order detail.
package dashboard

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/catalog"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/navigation"
	"github.com/maxwellzeha/jonduplastics/session"
	"go.uber.org/zap"
)

type Tab string

const (
	TabAll       Tab = "All"
	TabPending   Tab = Tab(models.OrderStatusPending)
	TabCompleted Tab = Tab(models.OrderStatusCompleted)
	TabCancelled Tab = Tab(models.OrderStatusCancelled)
)

func Tabs() []Tab {
	return []Tab{TabAll, TabPending, TabCompleted, TabCancelled}
}

// ParseTab matches a tab name case-insensitively. Unknown names select All.
func ParseTab(s string) Tab {
	for _, t := range Tabs() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return TabAll
}

// RecentDesignsLimit caps the recent designs strip.
const RecentDesignsLimit = 9

// OrderSource lists the caller's orders. An empty status lists every order.
type OrderSource interface {
	Orders(ctx context.Context, status string) ([]models.Order, error)
}

// IdentityStore is satisfied by *session.Store.
type IdentityStore interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// RefreshSignal is satisfied by *navigation.Router.
type RefreshSignal interface {
	OnEnter(path string, fn func(location string)) (unsubscribe func())
}

// View is a snapshot of the dashboard for rendering.
type View struct {
	Loading       bool
	Loaded        bool
	Tab           Tab
	Orders        []models.Order
	RecentDesigns []models.Order
}

type Dashboard struct {
	orders OrderSource
	store  IdentityStore
	logger *zap.Logger

	mu      sync.Mutex
	ownerID string
	all     []models.Order
	tab     Tab
	loading bool
	loaded  bool
	seq     uint64
	unsubs  []func()
}

func New(orders OrderSource, store IdentityStore, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{orders: orders, store: store, logger: logger, tab: TabAll}
}

// Watch refetches whenever the signed-in user changes and whenever the
// dashboard is navigated to. Close stops watching.
func (d *Dashboard) Watch(ctx context.Context, refresh RefreshSignal) {
	unsubStore := d.store.Subscribe(func(snap session.Snapshot) {
		if snap.Loading {
			return
		}
		if d.ownerChanged(snap.Identity) {
			d.Load(ctx)
		}
	})

	d.mu.Lock()
	d.unsubs = append(d.unsubs, unsubStore)
	d.mu.Unlock()

	if refresh != nil {
		unsubNav := refresh.OnEnter(navigation.Dashboard, func(string) { d.Load(ctx) })
		d.mu.Lock()
		d.unsubs = append(d.unsubs, unsubNav)
		d.mu.Unlock()
	}
}

func (d *Dashboard) Close() {
	d.mu.Lock()
	unsubs := d.unsubs
	d.unsubs = nil
	d.mu.Unlock()
	for _, fn := range unsubs {
		fn()
	}
}

func (d *Dashboard) ownerChanged(id *session.Identity) bool {
	owner := ""
	if id != nil {
		owner = id.ID
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return owner != d.ownerID || !d.loaded
}

// Load fetches every order of the signed-in user, newest first. A failed
// fetch is logged and leaves the list empty; the error is returned for
// callers that want to show it.
func (d *Dashboard) Load(ctx context.Context) error {
	identity := d.store.Snapshot().Identity

	d.mu.Lock()
	d.seq++
	seq := d.seq
	if identity == nil {
		d.ownerID = ""
		d.all = nil
		d.loading = false
		d.loaded = true
		d.mu.Unlock()
		return nil
	}
	d.ownerID = identity.ID
	d.loading = true
	d.mu.Unlock()

	orders, err := d.orders.Orders(ctx, "")
	if err != nil {
		d.logger.Error("Failed to fetch orders", zap.String("user_id", identity.ID), zap.Error(err))
		orders = nil
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })

	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return err
	}
	d.all = orders
	d.loading = false
	d.loaded = true
	return err
}

// SetTab changes the status filter. It never fetches.
func (d *Dashboard) SetTab(t Tab) {
	d.mu.Lock()
	d.tab = t
	d.mu.Unlock()
}

// Orders returns the fetched orders matching the current tab.
func (d *Dashboard) Orders() []models.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return filter(d.all, d.tab)
}

// RecentDesigns returns up to RecentDesignsLimit orders that carry artwork or
// a non-default color, in fetch order.
func (d *Dashboard) RecentDesigns() []models.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return recentDesigns(d.all)
}

// Order is the read-only detail of one fetched order.
func (d *Dashboard) Order(id uuid.UUID) (models.Order, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range d.all {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return View{
		Loading:       d.loading,
		Loaded:        d.loaded,
		Tab:           d.tab,
		Orders:        filter(d.all, d.tab),
		RecentDesigns: recentDesigns(d.all),
	}
}

func filter(orders []models.Order, t Tab) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if t == TabAll || string(o.Status) == string(t) {
			out = append(out, o)
		}
	}
	return out
}

func recentDesigns(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, RecentDesignsLimit)
	for _, o := range orders {
		if len(out) == RecentDesignsLimit {
			break
		}
		if o.HasArtwork() || o.Color != catalog.DefaultColor {
			out = append(out, o)
		}
	}
	return out
}
