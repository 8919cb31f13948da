// Package embedding provides the provider-independent embedding plumbing:
// batch splitting, order restoration, and result validation.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag-cli/internal/logger"
)

// Ensure Batcher implements the interface.
var _ driven.EmbeddingService = (*Batcher)(nil)

// Default batching parameters.
const (
	DefaultBatchSize     = 64
	DefaultMaxConcurrent = 4
)

// Batcher wraps a provider EmbeddingService with batch splitting and
// strict result validation. Large inputs are cut into provider batches
// that may be dispatched concurrently; each batch is tagged with its
// input offset before dispatch, so batch boundaries and completion
// order never change output order or count.
//
// Every returned vector is checked for the configured dimension and
// for non-finite values. Any provider misbehaviour surfaces as
// domain.ErrEmbedding; there is no silent fallback vector.
type Batcher struct {
	inner         driven.EmbeddingService
	batchSize     int
	maxConcurrent int
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithBatchSize sets how many texts are submitted per provider call.
func WithBatchSize(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithMaxConcurrent caps how many provider calls run at once.
func WithMaxConcurrent(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.maxConcurrent = n
		}
	}
}

// NewBatcher wraps a provider service.
func NewBatcher(inner driven.EmbeddingService, opts ...BatcherOption) *Batcher {
	b := &Batcher{
		inner:         inner,
		batchSize:     DefaultBatchSize,
		maxConcurrent: DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Embed generates and validates a single embedding.
func (b *Batcher) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for texts, preserving input order.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, b.maxConcurrent)

	batches := 0
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches++

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vectors, err := b.inner.EmbedBatch(ctx, texts[start:end])
			if err == nil && len(vectors) != end-start {
				err = fmt.Errorf("%w: provider returned %d vectors for %d texts",
					domain.ErrEmbedding, len(vectors), end-start)
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			// Indices were assigned before dispatch; completion order
			// is irrelevant.
			copy(results[start:end], vectors)
		}(start, end)
	}

	wg.Wait()
	logger.Debug("Embedded %d texts in %d batches of up to %d", len(texts), batches, b.batchSize)

	if firstErr != nil {
		if errors.Is(firstErr, domain.ErrEmbedding) || errors.Is(firstErr, context.Canceled) ||
			errors.Is(firstErr, context.DeadlineExceeded) {
			return nil, firstErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, firstErr)
	}

	dims := b.inner.Dimensions()
	for i, vec := range results {
		if err := ValidateVector(vec, dims); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}

	return results, nil
}

// Dimensions returns the provider's embedding vector size.
func (b *Batcher) Dimensions() int {
	return b.inner.Dimensions()
}

// ModelName returns the provider's model name.
func (b *Batcher) ModelName() string {
	return b.inner.ModelName()
}

// Ping validates the provider is reachable.
func (b *Batcher) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

// Close releases provider resources.
func (b *Batcher) Close() error {
	return b.inner.Close()
}

// ValidateVector checks that a vector has the expected dimension and
// contains only finite values. A malformed vector must never silently
// produce a nonsensical similarity ranking.
func ValidateVector(vec []float32, dims int) error {
	if len(vec) != dims {
		return fmt.Errorf("%w: got %d dimensions, expected %d", domain.ErrEmbedding, len(vec), dims)
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite value at dimension %d", domain.ErrEmbedding, i)
		}
	}
	return nil
}
