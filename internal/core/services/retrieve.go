package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag-cli/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever answers questions by embedding them and ranking stored
// chunks by cosine similarity.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.DocumentStore
	defaults domain.RetrieveOptions
}

// NewRetriever creates a new retrieval service. The defaults are applied
// wherever a per-call option is left zero.
func NewRetriever(
	embedder driven.EmbeddingService,
	store driven.DocumentStore,
	defaults domain.RetrieveOptions,
) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		defaults: defaults,
	}
}

// Retrieve embeds question and returns up to TopK chunks at or above the
// similarity threshold, most similar first.
func (s *Retriever) Retrieve(ctx context.Context, question string, opts domain.RetrieveOptions) ([]domain.RetrievedContext, error) {
	logger.Section("Retrieval")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaults.TopK
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	minSimilarity := opts.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = s.defaults.MinSimilarity
	}
	logger.Debug("TopK: %d, MinSimilarity: %.2f", topK, minSimilarity)

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	// A malformed query embedding must never reach the store; a wrong
	// shape would silently produce a nonsensical ranking.
	if err := s.validateQueryVector(vector); err != nil {
		return nil, err
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	matches, err := s.store.MatchChunks(ctx, vector, topK, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("matching chunks: %w", err)
	}
	logger.Info("Matched %d chunks", len(matches))

	results := make([]domain.RetrievedContext, len(matches))
	for i, match := range matches {
		results[i] = domain.RetrievedContext{
			Content:    match.Content,
			Page:       metadataInt(match.Metadata, domain.MetaPage),
			Similarity: match.Similarity,
			SourceURL:  metadataString(match.Metadata, domain.MetaSourceURL),
		}
	}

	return results, nil
}

// validateQueryVector checks shape and finiteness against the provider's
// declared dimensionality.
func (s *Retriever) validateQueryVector(vector []float32) error {
	want := s.embedder.Dimensions()
	if len(vector) != want {
		return fmt.Errorf("%w: query embedding has %d dimensions, want %d",
			domain.ErrEmbedding, len(vector), want)
	}
	for i, v := range vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: query embedding contains non-finite value at index %d",
				domain.ErrEmbedding, i)
		}
	}
	return nil
}

// metadataInt reads an integer metadata value. JSON round-trips store
// numbers as float64, so both forms are accepted.
func metadataInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// metadataString reads a string metadata value.
func metadataString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
