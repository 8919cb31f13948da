package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

func TestDocumentStore_GetBySourceURL_NotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetBySourceURL(context.Background(), "https://example.com/missing.pdf")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentStore_UpsertDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/report.pdf", "abc123")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.GetBySourceURL(ctx, "https://example.com/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "abc123", doc.Checksum)
	assert.Equal(t, "report.pdf", doc.Title)

	// Upserting the same URL keeps the identifier stable.
	id2, err := store.UpsertDocument(ctx, "https://example.com/report.pdf", "def456")
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	doc, err = store.GetBySourceURL(ctx, "https://example.com/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "def456", doc.Checksum)
}

func TestDocumentStore_UpsertChunks_Replaces(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/doc.pdf", "v1")
	require.NoError(t, err)

	first := []domain.Chunk{
		{DocumentID: id, ChunkID: 0, Content: "alpha", Embedding: []float32{1, 0}},
		{DocumentID: id, ChunkID: 1, Content: "beta", Embedding: []float32{0, 1}},
		{DocumentID: id, ChunkID: 2, Content: "gamma", Embedding: []float32{1, 1}},
	}
	require.NoError(t, store.UpsertChunks(ctx, first))
	assert.Equal(t, 3, store.ChunkCount(id))

	// Re-ingesting with fewer chunks leaves no stale rows behind.
	second := []domain.Chunk{
		{DocumentID: id, ChunkID: 0, Content: "alpha v2", Embedding: []float32{1, 0}},
	}
	require.NoError(t, store.UpsertChunks(ctx, second))
	assert.Equal(t, 1, store.ChunkCount(id))
}

func TestDocumentStore_UpsertChunks_Empty(t *testing.T) {
	store := NewDocumentStore()
	require.NoError(t, store.UpsertChunks(context.Background(), nil))
}

func TestDocumentStore_MatchChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/doc.pdf", "v1")
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{DocumentID: id, ChunkID: 0, Content: "exact", Embedding: []float32{1, 0}, Metadata: map[string]any{domain.MetaPage: 1}},
		{DocumentID: id, ChunkID: 1, Content: "orthogonal", Embedding: []float32{0, 1}, Metadata: map[string]any{domain.MetaPage: 2}},
		{DocumentID: id, ChunkID: 2, Content: "diagonal", Embedding: []float32{1, 1}, Metadata: map[string]any{domain.MetaPage: 3}},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks))

	matches, err := store.MatchChunks(ctx, []float32{1, 0}, 2, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Content)
	assert.Equal(t, "diagonal", matches[1].Content)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
}

func TestDocumentStore_MatchChunks_EmptyStore(t *testing.T) {
	store := NewDocumentStore()

	matches, err := store.MatchChunks(context.Background(), []float32{1, 0}, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
