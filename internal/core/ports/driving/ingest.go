package driving

import (
	"context"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// IngestService ingests PDF documents into the store.
type IngestService interface {
	// Ingest downloads the document at url, detects content changes by
	// checksum, and when changed re-chunks, re-embeds and replaces the
	// document's stored chunks. Repeated ingestion of unchanged
	// content is cheap and side-effect-free beyond the lookup.
	Ingest(ctx context.Context, url string, opts domain.IngestOptions) (*domain.IngestResult, error)
}
