package vodtolive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ManifestSource yields the raw playlist text behind a URI. The engine never
// retries on its own; implementations decide their retry policy. Injectable
// so tests run without a network.
type ManifestSource interface {
	Fetch(ctx context.Context, uri string) (io.ReadCloser, error)
}

// HTTPSource fetches manifests over HTTP with exponential backoff on
// transport errors and non-200 responses.
type HTTPSource struct {
	client   *http.Client
	maxTries uint64
	interval time.Duration
}

// NewHTTPSource returns an HTTPSource using the given client, or a client
// with a 10 second timeout when nil.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{client: client, maxTries: 3, interval: 500 * time.Millisecond}
}

// Fetch implements ManifestSource. The returned body must be closed by the
// caller. Failures after all retries surface as a *FetchError.
func (s *HTTPSource) Fetch(ctx context.Context, uri string) (io.ReadCloser, error) {
	var body io.ReadCloser
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		body = resp.Body
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.interval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, s.maxTries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	return body, nil
}
