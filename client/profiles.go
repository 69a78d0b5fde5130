package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/maxwellzeha/jonduplastics/models"
)

// Profile loads the caller's profile. The server scopes the lookup to the
// access token, so userID only guards against a stale session. A missing row
// is (nil, nil).
func (c *Client) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	if held := c.Tokens().UserID; held != "" && userID != "" && held != userID {
		return nil, ErrUnauthorized
	}
	var p models.Profile
	err := c.do(ctx, http.MethodGet, "/profiles/me", nil, &p, true)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPut, "/profiles/me", req, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}
