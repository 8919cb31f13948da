// Package memory provides in-memory storage adapters, used by tests
// and for zero-setup local runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Similarity is computed exactly over every stored chunk.
type DocumentStore struct {
	mu     sync.RWMutex
	byURL  map[string]*domain.Document
	chunks map[string]map[int]domain.Chunk // documentID -> chunkID -> chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		byURL:  make(map[string]*domain.Document),
		chunks: make(map[string]map[int]domain.Chunk),
	}
}

// GetBySourceURL retrieves the document for a source URL.
func (s *DocumentStore) GetBySourceURL(_ context.Context, url string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.byURL[url]
	if !ok {
		return nil, fmt.Errorf("%w: document for %s", domain.ErrNotFound, url)
	}
	copied := *doc
	return &copied, nil
}

// UpsertDocument inserts or updates the document for url.
// The identifier is stable across upserts.
func (s *DocumentStore) UpsertDocument(_ context.Context, url, checksum string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if doc, ok := s.byURL[url]; ok {
		doc.Checksum = checksum
		doc.UpdatedAt = now
		return doc.ID, nil
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		SourceURL: url,
		Title:     domain.TitleFromURL(url),
		Checksum:  checksum,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byURL[url] = doc
	return doc.ID, nil
}

// UpsertChunks replaces chunk rows keyed by (DocumentID, ChunkID).
// Stale rows of the affected documents that are not part of the batch
// are removed, so a shorter re-ingestion fully replaces a longer one.
func (s *DocumentStore) UpsertChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byDoc := make(map[string]map[int]domain.Chunk)
	for _, c := range chunks {
		if byDoc[c.DocumentID] == nil {
			byDoc[c.DocumentID] = make(map[int]domain.Chunk)
		}
		byDoc[c.DocumentID][c.ChunkID] = c
	}

	for docID, rows := range byDoc {
		s.chunks[docID] = rows
	}
	return nil
}

// MatchChunks ranks every stored chunk by cosine similarity to query.
func (s *DocumentStore) MatchChunks(_ context.Context, query []float32, topK int, minSimilarity float64) ([]domain.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []domain.ChunkMatch
	for _, rows := range s.chunks {
		for _, c := range rows {
			candidates = append(candidates, domain.ChunkMatch{
				Content:    c.Content,
				Metadata:   c.Metadata,
				Similarity: domain.CosineSimilarity(query, c.Embedding),
			})
		}
	}

	return domain.RankMatches(candidates, topK, minSimilarity), nil
}

// ChunkCount reports how many chunks a document currently has.
// Test helper.
func (s *DocumentStore) ChunkCount(documentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID])
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}
