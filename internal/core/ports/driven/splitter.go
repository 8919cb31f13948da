package driven

// Splitter produces overlapping text chunks from page text.
type Splitter interface {
	// Split divides text into chunks. Chunks are trimmed of surrounding
	// whitespace and empty chunks are dropped.
	Split(text string) []string

	// ChunkSize returns the window size in characters.
	ChunkSize() int

	// Overlap returns the number of characters shared between
	// consecutive chunks.
	Overlap() int
}

// SplitterFactory builds a Splitter for the given window parameters.
// Non-positive values fall back to defaults; implementations fail with
// domain.ErrInvalidInput when overlap is not smaller than the chunk size.
type SplitterFactory func(chunkSize, overlap int) (Splitter, error)
