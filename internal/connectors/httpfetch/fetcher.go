// Package httpfetch downloads document bytes over HTTP(S).
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBytes caps a single download at 512 MiB. A response
	// that exceeds the cap fails rather than truncating silently.
	DefaultMaxBytes = 512 << 20

	// Conservative politeness limit towards the document host.
	DefaultRequestsPerSecond = 2.0
	DefaultBurstSize         = 4
)

// Config holds configuration for the HTTP fetcher.
type Config struct {
	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxBytes caps the downloaded size (default: 512 MiB).
	MaxBytes int64

	// RequestsPerSecond is the sustained request rate (default: 2).
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 4).
	BurstSize int
}

// Fetcher downloads documents with a bounded timeout and a token
// bucket rate limit.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
}

// New creates a new HTTP fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch downloads the document at url. Non-success statuses and
// network failures are reported as domain.ErrFetch; a timed-out call
// returns no partial content.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", domain.ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}

	logger.Debug("Downloading %s", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetch, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d byte limit", domain.ErrFetch, f.maxBytes)
	}

	logger.Debug("Downloaded %d bytes", len(data))
	return data, nil
}
