package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.DocumentStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pdfrag/data/pdfrag.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pdfrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pdfrag.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// GetBySourceURL retrieves the document for a source URL.
func (s *Store) GetBySourceURL(ctx context.Context, url string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, title, checksum, created_at, updated_at
		FROM documents WHERE source_url = ?
	`, url)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.SourceURL, &doc.Title, &doc.Checksum,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: document for %s", domain.ErrNotFound, url)
		}
		return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStorage, err)
	}

	return &doc, nil
}

// UpsertDocument inserts or updates the document row for url. The document
// identifier is stable across upserts; only checksum and updated_at change
// on conflict.
func (s *Store) UpsertDocument(ctx context.Context, url, checksum string) (string, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_url, title, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			checksum = excluded.checksum,
			updated_at = excluded.updated_at
	`, uuid.New().String(), url, domain.TitleFromURL(url), checksum, now, now)
	if err != nil {
		return "", fmt.Errorf("%w: upserting document: %v", domain.ErrStorage, err)
	}

	var id string
	row := s.db.QueryRowContext(ctx, "SELECT id FROM documents WHERE source_url = ?", url)
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("%w: reading document id: %v", domain.ErrStorage, err)
	}

	return id, nil
}

// UpsertChunks stores chunk rows keyed by (document_id, chunk_id) in a single
// transaction. Stale rows of the affected documents with chunk identifiers
// beyond the new batch are removed, so re-ingesting a shorter document leaves
// no orphaned chunks behind.
func (s *Store) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, chunk_id, content, tokens, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, chunk_id) DO UPDATE SET
			content = excluded.content,
			tokens = excluded.tokens,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", domain.ErrStorage, err)
	}
	defer stmt.Close()

	counts := make(map[string]int)
	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshalling chunk metadata: %v", domain.ErrStorage, err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.DocumentID, chunk.ChunkID, chunk.Content,
			chunk.Tokens, embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("%w: saving chunk: %v", domain.ErrStorage, err)
		}

		if chunk.ChunkID+1 > counts[chunk.DocumentID] {
			counts[chunk.DocumentID] = chunk.ChunkID + 1
		}
	}

	// Chunk identifiers are contiguous from zero, so anything at or past the
	// batch size is left over from a previous, longer ingestion.
	for docID, count := range counts {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM chunks WHERE document_id = ? AND chunk_id >= ?", docID, count); err != nil {
			return fmt.Errorf("%w: removing stale chunks: %v", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStorage, err)
	}
	return nil
}

// MatchChunks computes cosine similarity in process across every stored
// chunk, then ranks, filters and truncates the results.
func (s *Store) MatchChunks(ctx context.Context, query []float32, topK int, minSimilarity float64) ([]domain.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content, embedding, metadata FROM chunks WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var candidates []domain.ChunkMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var content string
		var embeddingBlob []byte
		var metadataJSON sql.NullString
		if err := rows.Scan(&content, &embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrStorage, err)
		}

		match := domain.ChunkMatch{
			Content:    content,
			Similarity: domain.CosineSimilarity(query, bytesToFloat32Slice(embeddingBlob)),
		}

		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &match.Metadata); err != nil {
				return nil, fmt.Errorf("%w: unmarshalling chunk metadata: %v", domain.ErrStorage, err)
			}
		}

		candidates = append(candidates, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", domain.ErrStorage, err)
	}

	return domain.RankMatches(candidates, topK, minSimilarity), nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
