package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/session"
)

// Signup registers a new account. The account still has to sign in.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	var resp models.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	return c.do(ctx, http.MethodPost, "/auth/verify", models.VerifyEmailRequest{Email: email, Code: code}, nil, false)
}

// Login signs in and notifies auth listeners.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var resp models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return nil, err
	}
	sess := c.store(resp)
	c.emit(session.EventSignedIn, sess)
	return sess, nil
}

// Refresh rotates the token pair.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.Tokens().RefreshToken
	if refresh == "" {
		return ErrNotSignedIn
	}
	var resp models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", models.RefreshRequest{RefreshToken: refresh}, &resp, false); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.setTokens(Tokens{})
			c.emit(session.EventSignedOut, nil)
		}
		return err
	}
	c.emit(session.EventTokenRefreshed, c.store(resp))
	return nil
}

// SignOut revokes the session on the server. Local tokens are dropped and
// listeners notified even when the request fails.
func (c *Client) SignOut(ctx context.Context) error {
	var err error
	if c.accessToken() != "" {
		err = c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
	}
	c.setTokens(Tokens{})
	c.emit(session.EventSignedOut, nil)
	return err
}

// CurrentSession asks the server who the held access token belongs to. It
// returns (nil, nil) when no valid session exists.
func (c *Client) CurrentSession(ctx context.Context) (*session.Session, error) {
	if c.accessToken() == "" {
		return nil, nil
	}
	var resp models.SessionResponse
	err := c.do(ctx, http.MethodGet, "/auth/session", nil, &resp, true)
	switch {
	case errors.Is(err, ErrUnauthorized):
		c.setTokens(Tokens{})
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &session.Session{UserID: resp.UserID, Email: resp.Email}, nil
}

func (c *Client) store(resp models.TokenResponse) *session.Session {
	c.setTokens(Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
		Email:        resp.Email,
	})
	return &session.Session{UserID: resp.UserID, Email: resp.Email}
}
