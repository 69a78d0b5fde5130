package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/models"
)

// UploadArtwork reserves an upload slot under the caller's prefix and PUTs
// the file to it. The returned PublicURL is what an order should reference.
func (c *Client) UploadArtwork(ctx context.Context, filename, contentType string, body io.Reader, size int64) (*models.ArtworkUploadResponse, error) {
	var slot models.ArtworkUploadResponse
	req := models.ArtworkUploadRequest{Filename: filename, ContentType: contentType}
	if err := c.do(ctx, http.MethodPost, "/orders/artwork-uploads", req, &slot, true); err != nil {
		return nil, err
	}

	put, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.UploadURL, body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if size > 0 {
		put.ContentLength = size
	}
	put.Header.Set("Content-Type", contentType)
	for k, v := range slot.Headers {
		put.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(put)
	if err != nil {
		return nil, fmt.Errorf("upload artwork: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Status: resp.StatusCode, Code: "upload_failed", Message: fmt.Sprintf("storage returned %s: %s", resp.Status, msg)}
	}
	return &slot, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &o, true); err != nil {
		return nil, err
	}
	return &o, nil
}

// Orders lists the caller's orders newest first. An empty status lists all.
func (c *Client) Orders(ctx context.Context, status string) ([]models.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp models.OrderListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) Order(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+id.String(), nil, &o, true); err != nil {
		return nil, err
	}
	return &o, nil
}

// SubmitInquiry sends a contact-form message. Signed-in callers have their
// name and email filled in by the server.
func (c *Client) SubmitInquiry(ctx context.Context, req models.InquiryRequest) (*models.InquiryResponse, error) {
	var resp models.InquiryResponse
	if err := c.do(ctx, http.MethodPost, "/inquiries", req, &resp, c.accessToken() != ""); err != nil {
		return nil, err
	}
	return &resp, nil
}
