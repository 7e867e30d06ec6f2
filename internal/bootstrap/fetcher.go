package bootstrap

import (
	"context"
	"time"

	"tailor-portal/internal/backend"
)

// timedFetcher bounds artifact downloads by the backend timeout.
type timedFetcher struct {
	client  *backend.Client
	timeout time.Duration
}

func (f *timedFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.client.Fetch(ctx, rawURL)
}
