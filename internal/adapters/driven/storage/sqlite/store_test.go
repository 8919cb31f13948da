package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// Invalid path should fail to create the directory
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, "pdfrag.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	// Verify database connection is working
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same directory must not re-run applied migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	row := store.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	require.NoError(t, row.Scan(&version))
	assert.Equal(t, 1, version)
}

func TestStore_GetBySourceURL_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetBySourceURL(context.Background(), "https://example.com/missing.pdf")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpsertDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/report.pdf", "abc123")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.GetBySourceURL(ctx, "https://example.com/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "abc123", doc.Checksum)
	assert.Equal(t, "report.pdf", doc.Title)
	assert.False(t, doc.CreatedAt.IsZero())

	// Upserting the same URL updates the checksum but keeps the identifier.
	id2, err := store.UpsertDocument(ctx, "https://example.com/report.pdf", "def456")
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	doc, err = store.GetBySourceURL(ctx, "https://example.com/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "def456", doc.Checksum)
}

func TestStore_UpsertChunks_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/doc.pdf", "v1")
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{
			DocumentID: id,
			ChunkID:    0,
			Content:    "first chunk",
			Tokens:     2,
			Embedding:  []float32{1, 0, 0},
			Metadata:   map[string]any{domain.MetaPage: 1, domain.MetaSourceURL: "https://example.com/doc.pdf"},
		},
		{
			DocumentID: id,
			ChunkID:    1,
			Content:    "second chunk",
			Tokens:     2,
			Embedding:  []float32{0, 1, 0},
			Metadata:   map[string]any{domain.MetaPage: 2, domain.MetaSourceURL: "https://example.com/doc.pdf"},
		},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks))

	matches, err := store.MatchChunks(ctx, []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "first chunk", matches[0].Content)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
	assert.Equal(t, "https://example.com/doc.pdf", matches[0].Metadata[domain.MetaSourceURL])
}

func TestStore_UpsertChunks_ReplacesStaleRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/doc.pdf", "v1")
	require.NoError(t, err)

	first := []domain.Chunk{
		{DocumentID: id, ChunkID: 0, Content: "a", Embedding: []float32{1, 0}},
		{DocumentID: id, ChunkID: 1, Content: "b", Embedding: []float32{0, 1}},
		{DocumentID: id, ChunkID: 2, Content: "c", Embedding: []float32{1, 1}},
	}
	require.NoError(t, store.UpsertChunks(ctx, first))

	// The document shrank on re-ingestion.
	second := []domain.Chunk{
		{DocumentID: id, ChunkID: 0, Content: "a2", Embedding: []float32{1, 0}},
	}
	require.NoError(t, store.UpsertChunks(ctx, second))

	var count int
	row := store.db.QueryRow("SELECT COUNT(*) FROM chunks WHERE document_id = ?", id)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)

	matches, err := store.MatchChunks(ctx, []float32{1, 0}, 10, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a2", matches[0].Content)
}

func TestStore_UpsertChunks_Empty(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.UpsertChunks(context.Background(), nil))
}

func TestStore_MatchChunks_ThresholdAndTopK(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertDocument(ctx, "https://example.com/doc.pdf", "v1")
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{DocumentID: id, ChunkID: 0, Content: "exact", Embedding: []float32{1, 0}},
		{DocumentID: id, ChunkID: 1, Content: "close", Embedding: []float32{1, 0.2}},
		{DocumentID: id, ChunkID: 2, Content: "orthogonal", Embedding: []float32{0, 1}},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks))

	matches, err := store.MatchChunks(ctx, []float32{1, 0}, 2, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Content)
	assert.Equal(t, "close", matches[1].Content)
	assert.GreaterOrEqual(t, matches[1].Similarity, 0.5)
}

func TestStore_MatchChunks_EmptyStore(t *testing.T) {
	store := setupTestStore(t)

	matches, err := store.MatchChunks(context.Background(), []float32{1, 0}, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFloat32SliceRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"nil", nil},
		{"single", []float32{3.14}},
		{"vector", []float32{0.1, -0.2, 0.3, -0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bytesToFloat32Slice(float32SliceToBytes(tt.input))
			assert.Equal(t, tt.input, got)
		})
	}
}
