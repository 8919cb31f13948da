package domain

import "time"

// Metadata keys set on every stored chunk.
const (
	// MetaPage is the 1-based page number the chunk was extracted from.
	MetaPage = "page"

	// MetaSourceURL is the URL of the owning document.
	MetaSourceURL = "source_url"
)

// Document represents an ingested PDF document.
// There is at most one Document per SourceURL; re-ingesting the same
// URL updates the existing record rather than creating a new one.
type Document struct {
	// ID is the unique identifier for the document.
	// It is assigned on first ingestion and never changes afterwards.
	ID string

	// SourceURL is the download location and the document's unique key.
	SourceURL string

	// Title is a best-effort human-readable title derived from the URL.
	Title string

	// Checksum is the SHA-256 hex digest of the last successfully
	// ingested bytes. Used for change detection, not security.
	Checksum string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents an embedded unit of document text.
// A document's chunks are identified by (DocumentID, ChunkID) and are
// replaced wholesale whenever the document is re-ingested with changed
// content. A chunk never spans two pages.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// ChunkID is the zero-based sequence number in document-traversal
	// order: page order first, then intra-page offset order.
	ChunkID int

	// Content is the trimmed, non-empty chunk text.
	Content string

	// Tokens is an approximate token count of Content.
	Tokens int

	// Embedding is the vector representation of Content.
	// Its length always equals the embedding model's dimension.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	// At minimum it carries MetaPage and MetaSourceURL.
	Metadata map[string]any
}

// Page is a page of text extracted from a PDF before chunking.
type Page struct {
	// Number is the 1-based physical page number.
	Number int

	// Text is the extracted text, trimmed of surrounding whitespace.
	Text string
}
