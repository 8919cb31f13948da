package driven

import (
	"context"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// DocumentStore persists documents and their chunks, and answers
// similarity queries over stored chunk embeddings. It is the sole
// mutator of both entities.
type DocumentStore interface {
	// GetBySourceURL retrieves the document for a source URL.
	// Returns domain.ErrNotFound when no document exists for it.
	GetBySourceURL(ctx context.Context, url string) (*domain.Document, error)

	// UpsertDocument inserts a new document for url or, when one
	// already exists, updates its checksum in place. The returned
	// identifier is stable across upserts: last-writer-wins on the
	// checksum, identity never changes. The operation is atomic with
	// respect to concurrent calls on the same url.
	UpsertDocument(ctx context.Context, url, checksum string) (string, error)

	// UpsertChunks replaces chunk rows keyed by (DocumentID, ChunkID).
	// Content, tokens, embedding and metadata are fully overwritten on
	// conflict, and stale rows of the affected documents beyond the new
	// batch are removed: after the call each document holds exactly the
	// chunks passed in, so re-ingestion fully replaces earlier chunk
	// sets even when the count shrinks. The batch is applied as a
	// single all-or-nothing unit: either every row commits or none do.
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// MatchChunks returns up to topK stored chunks ranked by cosine
	// similarity to query, descending, with rows below minSimilarity
	// discarded. Implementations may over-fetch unordered candidates;
	// final ordering is guaranteed regardless of what the backing
	// store returns.
	MatchChunks(ctx context.Context, query []float32, topK int, minSimilarity float64) ([]domain.ChunkMatch, error)

	// Close releases resources.
	Close() error
}
