// Package chunker provides a fixed-size overlapping text splitter.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// Splitter splits page text into fixed-size overlapping chunks.
// Splitting is deterministic: identical input always produces the same
// chunk sequence.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap > 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options. Defaults are
// domain.DefaultChunkSize / domain.DefaultOverlap. The overlap must be
// smaller than the chunk size; otherwise the cursor could never
// advance, so the combination is rejected up front.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, s.overlap, s.chunkSize)
	}

	return s, nil
}

// FromWindow creates a splitter from explicit window parameters.
// Non-positive values fall back to the defaults.
func FromWindow(chunkSize, overlap int) (*Splitter, error) {
	return New(WithChunkSize(chunkSize), WithOverlap(overlap))
}

// ChunkSize returns the configured window size in characters.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap in characters.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts text into overlapping windows of at most chunkSize
// characters, trimming surrounding whitespace and dropping windows that
// trim to nothing. Output preserves left-to-right order; adjacent
// chunks share up to overlap characters of source span. Empty text
// yields no chunks; text shorter than the window yields exactly one.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	length := len(runes)

	var chunks []string
	i := 0
	for i < length {
		end := i + s.chunkSize
		if end > length {
			end = length
		}

		piece := strings.TrimSpace(string(runes[i:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end == length {
			break
		}

		// Back the cursor up by the overlap, clamped so it can never
		// move before the start of the text.
		i = end - s.overlap
		if i < 0 {
			i = 0
		}
	}

	return chunks
}
