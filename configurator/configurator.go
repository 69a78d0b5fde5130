// Package configurator holds the custom-order draft a customer edits, prices
// it live and submits it as an order.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/maxwellzeha/jonduplastics/catalog"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/navigation"
	"github.com/maxwellzeha/jonduplastics/pricing"
	"github.com/maxwellzeha/jonduplastics/session"
	"go.uber.org/zap"
)

// RedirectDelay is how long the success acknowledgement stays up before the
// dashboard opens.
const RedirectDelay = 3 * time.Second

const SuccessMessage = "Your order has been placed successfully! Redirecting to dashboard..."

var (
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrAlreadyPlaced      = errors.New("this order has already been placed")
	ErrLoginRequired      = errors.New("sign in to place an order")
	ErrClosed             = errors.New("configurator closed")
)

// Artwork is a file picked for printing. It is never persisted by the
// configurator itself. A Body that is also an io.Seeker is rewound before each
// upload attempt.
type Artwork struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Draft struct {
	BagType         string
	Material        pricing.Material
	Width           int
	Height          int
	Color           string
	HandleType      string
	Quantity        int
	BusinessAddress string
	Artwork         *Artwork
}

func (d Draft) selection() pricing.Selection {
	return pricing.Selection{
		Material:   d.Material,
		Width:      d.Width,
		Height:     d.Height,
		HasArtwork: d.Artwork != nil,
		Quantity:   d.Quantity,
	}
}

// Backend stores artwork and orders.
type Backend interface {
	UploadArtwork(ctx context.Context, filename, contentType string, body io.Reader, size int64) (*models.ArtworkUploadResponse, error)
	PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error)
}

// IdentitySource is satisfied by *session.Store.
type IdentitySource interface {
	Snapshot() session.Snapshot
}

type Navigator interface {
	Navigate(location string)
}

// SubmitError reports which step of a submission failed. The draft is kept.
type SubmitError struct {
	Step string
	Err  error
}

// uploadedArtwork remembers where an attached file went so a retry after a
// failed insert reuses the object instead of uploading it again.
type uploadedArtwork struct {
	artwork *Artwork
	name    string
	url     string
}

const (
	StepUpload = "Artwork upload failed"
	StepInsert = "Failed to place order"
)

func (e *SubmitError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *SubmitError) Unwrap() error { return e.Err }

type Configurator struct {
	backend  Backend
	identity IdentitySource
	nav      Navigator
	logger   *zap.Logger

	afterFunc func(time.Duration, func()) *time.Timer

	mu         sync.Mutex
	draft      Draft
	submitting bool
	placed     *models.Order
	uploaded   *uploadedArtwork
	message    string
	errMessage string
	redirect   *time.Timer
	closed     bool
}

func New(backend Backend, identity IdentitySource, nav Navigator, logger *zap.Logger) *Configurator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Configurator{
		backend:   backend,
		identity:  identity,
		nav:       nav,
		logger:    logger,
		afterFunc: time.AfterFunc,
		draft:     defaultDraft(),
	}
	if identity != nil {
		c.PrefillFromIdentity(identity.Snapshot().Identity)
	}
	return c
}

func defaultDraft() Draft {
	d := catalog.DraftDefaults()
	return Draft{
		BagType:    d.BagType,
		Material:   d.Material,
		Width:      d.Width,
		Height:     d.Height,
		Color:      d.Color,
		HandleType: d.HandleType,
		Quantity:   d.Quantity,
	}
}

// FromProduct seeds the bag type from the category of the product the
// customer started from.
func (c *Configurator) FromProduct(category catalog.Category) {
	c.mu.Lock()
	c.draft.BagType = catalog.BagTypeFor(category)
	c.mu.Unlock()
}

// PrefillFromIdentity copies the business address of a signed-in user into an
// empty delivery address.
func (c *Configurator) PrefillFromIdentity(id *session.Identity) {
	if id == nil || id.BusinessAddress == "" {
		return
	}
	c.mu.Lock()
	if c.draft.BusinessAddress == "" {
		c.draft.BusinessAddress = id.BusinessAddress
	}
	c.mu.Unlock()
}

// Draft returns a copy of the current draft.
func (c *Configurator) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Update edits the draft in place. Quantity is clamped to the minimum order.
func (c *Configurator) Update(fn func(*Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
	c.draft.Quantity = clampQuantity(c.draft.Quantity)
}

func (c *Configurator) SetQuantity(q int) {
	c.Update(func(d *Draft) { d.Quantity = q })
}

// SetArtwork attaches or, with nil, removes the artwork file.
func (c *Configurator) SetArtwork(a *Artwork) {
	c.Update(func(d *Draft) { d.Artwork = a })
}

func clampQuantity(q int) int {
	if q < catalog.MinOrderQuantity {
		return catalog.MinOrderQuantity
	}
	return q
}

// Price prices the current draft.
func (c *Configurator) Price() pricing.Quote {
	return pricing.Calculate(c.Draft().selection())
}

// Submitting reports whether a submission is pending.
func (c *Configurator) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Message is the success acknowledgement, empty until an order is placed.
func (c *Configurator) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// ErrorMessage is the message of the last failed submission.
func (c *Configurator) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMessage
}

// Submit uploads the artwork (if any), places the order and schedules the
// move to the dashboard. Anonymous callers are sent to login instead.
func (c *Configurator) Submit(ctx context.Context) (*models.Order, error) {
	var identity *session.Identity
	if c.identity != nil {
		identity = c.identity.Snapshot().Identity
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return nil, ErrClosed
	case c.submitting:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case c.placed != nil:
		c.mu.Unlock()
		return nil, ErrAlreadyPlaced
	}
	if identity == nil {
		c.mu.Unlock()
		c.navigate(navigation.LoginRedirect(navigation.CustomOrder))
		return nil, ErrLoginRequired
	}
	c.submitting = true
	c.errMessage = ""
	draft := c.draft
	uploaded := c.uploaded
	c.mu.Unlock()

	order, uploaded, err := c.submit(ctx, identity, draft, uploaded)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.uploaded = uploaded
	if err != nil {
		c.errMessage = err.Error()
		return nil, err
	}
	c.placed = order
	c.message = SuccessMessage
	c.draft.Artwork = nil
	c.uploaded = nil
	if !c.closed {
		c.redirect = c.afterFunc(RedirectDelay, c.redirectToDashboard)
	}
	return order, nil
}

func (c *Configurator) submit(ctx context.Context, identity *session.Identity, d Draft, uploaded *uploadedArtwork) (*models.Order, *uploadedArtwork, error) {
	var artworkURL, artworkName *string
	if d.Artwork != nil {
		if uploaded == nil || uploaded.artwork != d.Artwork {
			up, err := c.uploadArtwork(ctx, d.Artwork)
			if err != nil {
				c.logger.Warn("Artwork upload failed", zap.String("user_id", identity.ID), zap.Error(err))
				return nil, nil, &SubmitError{Step: StepUpload, Err: err}
			}
			uploaded = up
		}
		artworkURL, artworkName = &uploaded.url, &uploaded.name
	} else {
		uploaded = nil
	}

	quote := pricing.Calculate(d.selection())
	order, err := c.backend.PlaceOrder(ctx, models.PlaceOrderRequest{
		BagType:         d.BagType,
		Material:        d.Material,
		Width:           d.Width,
		Height:          d.Height,
		Color:           d.Color,
		HandleType:      d.HandleType,
		Quantity:        d.Quantity,
		ArtworkURL:      artworkURL,
		ArtworkName:     artworkName,
		BusinessAddress: d.BusinessAddress,
		TotalPrice:      quote.Total,
	})
	if err != nil {
		c.logger.Warn("Order insert failed", zap.String("user_id", identity.ID), zap.Error(err))
		return nil, uploaded, &SubmitError{Step: StepInsert, Err: err}
	}

	c.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", identity.ID),
		zap.Float64("total", quote.Total),
	)
	return order, uploaded, nil
}

func (c *Configurator) uploadArtwork(ctx context.Context, a *Artwork) (*uploadedArtwork, error) {
	name := path.Base(strings.ReplaceAll(a.Name, "\\", "/"))
	contentType := a.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(name))
	}
	if seeker, ok := a.Body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind artwork: %w", err)
		}
	}
	slot, err := c.backend.UploadArtwork(ctx, name, contentType, a.Body, a.Size)
	if err != nil {
		return nil, err
	}
	return &uploadedArtwork{artwork: a, name: name, url: slot.PublicURL}, nil
}

func (c *Configurator) redirectToDashboard() {
	c.mu.Lock()
	closed := c.closed
	c.redirect = nil
	c.mu.Unlock()
	if !closed {
		c.navigate(navigation.Dashboard)
	}
}

func (c *Configurator) navigate(location string) {
	if c.nav != nil {
		c.nav.Navigate(location)
	}
}

// Close cancels a pending dashboard redirect. Submissions after Close fail.
func (c *Configurator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.redirect != nil {
		c.redirect.Stop()
		c.redirect = nil
	}
}
