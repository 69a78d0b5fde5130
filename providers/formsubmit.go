package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const formSubmitBaseURL = "https://formsubmit.co"

// FormSubmitRelay posts forms to formsubmit.co, which emails them to the recipient.
type FormSubmitRelay struct {
	endpoint   string
	httpClient *http.Client
}

// NewFormSubmitRelay targets {baseURL}/{recipient}. An empty baseURL uses formsubmit.co.
func NewFormSubmitRelay(baseURL, recipient string) *FormSubmitRelay {
	if baseURL == "" {
		baseURL = formSubmitBaseURL
	}
	return &FormSubmitRelay{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(recipient),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			// the relay answers with a redirect to _next; the redirect target is the site itself
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

func (r *FormSubmitRelay) Endpoint() string { return r.endpoint }

func (r *FormSubmitRelay) Submit(ctx context.Context, fields url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(fields.Encode()))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
