package providers

import (
	"context"
	"net/url"
)

// FormRelay forwards a submitted form to a third-party form endpoint.
type FormRelay interface {
	Submit(ctx context.Context, fields url.Values) error
}
