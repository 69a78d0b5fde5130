package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/pricing"
)

// OrderStatus is the lifecycle state of an order. Clients only ever create Pending orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is an immutable snapshot of a submitted custom-order configuration.
type Order struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_orders_user_date,priority:1" json:"user_id"`
	Date            time.Time        `gorm:"not null;index:idx_orders_user_date,priority:2,sort:desc" json:"date"`
	Status          OrderStatus      `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	BagType         string           `gorm:"type:text;not null" json:"bag_type"`
	Material        pricing.Material `gorm:"type:text;not null" json:"material"`
	Width           int              `gorm:"not null" json:"width"`
	Height          int              `gorm:"not null" json:"height"`
	Color           string           `gorm:"type:text;not null" json:"color"`
	HandleType      string           `gorm:"type:text;not null" json:"handle_type"`
	Quantity        int              `gorm:"not null" json:"quantity"`
	ArtworkURL      *string          `gorm:"type:text" json:"artwork_url,omitempty"`
	ArtworkName     *string          `gorm:"type:text" json:"artwork_name,omitempty"`
	BusinessAddress string           `gorm:"type:text;not null" json:"business_address"`
	TotalPrice      float64          `gorm:"type:numeric;not null" json:"total_price"`
}

// HasArtwork reports whether an artwork reference is attached.
func (o *Order) HasArtwork() bool {
	return o.ArtworkURL != nil && *o.ArtworkURL != ""
}

// PlaceOrderRequest is the payload for creating an order from a draft.
type PlaceOrderRequest struct {
	BagType         string           `json:"bag_type" binding:"required"`
	Material        pricing.Material `json:"material" binding:"required"`
	Width           int              `json:"width" binding:"required,gt=0"`
	Height          int              `json:"height" binding:"required,gt=0"`
	Color           string           `json:"color" binding:"required"`
	HandleType      string           `json:"handle_type" binding:"required"`
	Quantity        int              `json:"quantity" binding:"required,gt=0"`
	ArtworkURL      *string          `json:"artwork_url,omitempty"`
	ArtworkName     *string          `json:"artwork_name,omitempty"`
	BusinessAddress string           `json:"business_address" binding:"required"`
	TotalPrice      float64          `json:"total_price" binding:"required,gt=0"`
}

// Selection extracts the price-relevant fields.
func (r *PlaceOrderRequest) Selection() pricing.Selection {
	return pricing.Selection{
		Material:   r.Material,
		Width:      r.Width,
		Height:     r.Height,
		HasArtwork: r.ArtworkURL != nil && *r.ArtworkURL != "",
		Quantity:   r.Quantity,
	}
}

// QuoteRequest asks for a live price.
type QuoteRequest struct {
	Material   pricing.Material `json:"material"`
	Width      int              `json:"width" binding:"gte=0"`
	Height     int              `json:"height" binding:"gte=0"`
	HasArtwork bool             `json:"has_artwork"`
	Quantity   int              `json:"quantity" binding:"gte=0"`
}

// ArtworkUploadRequest asks for a presigned upload slot.
type ArtworkUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ArtworkUploadResponse tells the caller where to PUT the file and how it will be served.
type ArtworkUploadResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	PublicURL string            `json:"public_url"`
	ExpiresIn int64             `json:"expires_in"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

// OrderPlacedEvent is published to SNS after an order is stored.
type OrderPlacedEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	BagType    string    `json:"bag_type"`
	Material   string    `json:"material"`
	Quantity   int       `json:"quantity"`
	HasArtwork bool      `json:"has_artwork"`
	TotalPrice float64   `json:"total_price"`
	Timestamp  time.Time `json:"timestamp"`
}
