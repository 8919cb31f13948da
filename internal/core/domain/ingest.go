package domain

// Default chunking parameters, in characters.
const (
	DefaultChunkSize = 2000
	DefaultOverlap   = 200
)

// IngestOptions configures a single ingestion run.
// Zero values fall back to the defaults above.
type IngestOptions struct {
	// ChunkSize is the chunk window size in characters.
	ChunkSize int

	// Overlap is the number of characters shared between adjacent
	// chunks. Must be smaller than ChunkSize.
	Overlap int
}

// IngestResult summarises a completed ingestion call.
type IngestResult struct {
	// DocumentID identifies the document, whether freshly created,
	// updated, or skipped.
	DocumentID string `json:"documentId"`

	// ChunkCount is the number of chunks stored by this call.
	// Zero when the document was skipped or produced no text.
	ChunkCount int `json:"chunkCount"`

	// Skipped is true when the downloaded bytes matched the stored
	// checksum and no re-parsing, re-embedding or storage occurred.
	Skipped bool `json:"skipped,omitempty"`
}
