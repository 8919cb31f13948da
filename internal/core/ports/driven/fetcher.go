package driven

import "context"

// Fetcher downloads raw document bytes from a URL.
type Fetcher interface {
	// Fetch downloads the document at url. A non-success status or a
	// network failure is reported as domain.ErrFetch; the call honours
	// the context deadline and never returns partial content.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
