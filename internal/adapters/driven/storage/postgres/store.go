package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
)

// DefaultOverfetch is the candidate multiplier applied to top-k when
// querying. Fetching more rows than requested leaves headroom for the
// similarity threshold applied during ranking.
const DefaultOverfetch = domain.DefaultOverfetch

// Store is a PostgreSQL-backed document store using pgvector for
// embedding storage.
type Store struct {
	db        *sql.DB
	overfetch int
}

var _ driven.DocumentStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithOverfetch sets the candidate multiplier used by MatchChunks.
// Values below one are ignored.
func WithOverfetch(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.overfetch = n
		}
	}
}

// NewStore connects to PostgreSQL at connString and runs pending
// migrations. The pgvector extension must be installable on the target
// database.
func NewStore(connString string, opts ...Option) (*Store, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{
		db:        db,
		overfetch: DefaultOverfetch,
	}
	for _, opt := range opts {
		opt(s)
	}

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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

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
		FROM documents WHERE source_url = $1
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

	var id string
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, source_url, title, checksum, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_url) DO UPDATE SET
			checksum = excluded.checksum,
			updated_at = excluded.updated_at
		RETURNING id
	`, uuid.New().String(), url, domain.TitleFromURL(url), checksum, now, now)
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("%w: upserting document: %v", domain.ErrStorage, err)
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
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, chunk_id) DO UPDATE SET
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

		if _, err := stmt.ExecContext(ctx, chunk.DocumentID, chunk.ChunkID, chunk.Content,
			chunk.Tokens, pgvector.NewVector(chunk.Embedding), string(metadataJSON)); err != nil {
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
			"DELETE FROM chunks WHERE document_id = $1 AND chunk_id >= $2", docID, count); err != nil {
			return fmt.Errorf("%w: removing stale chunks: %v", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStorage, err)
	}
	return nil
}

// MatchChunks fetches up to topK * overfetch candidate rows with their
// cosine similarity to query, then ranks, filters and truncates the
// results in the application.
func (s *Store) MatchChunks(ctx context.Context, query []float32, topK int, minSimilarity float64) ([]domain.ChunkMatch, error) {
	limit := topK * s.overfetch
	if limit < topK {
		limit = topK
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE embedding IS NOT NULL
		LIMIT $2
	`, pgvector.NewVector(query), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var candidates []domain.ChunkMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var match domain.ChunkMatch
		var metadataJSON sql.NullString
		if err := rows.Scan(&match.Content, &metadataJSON, &match.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrStorage, err)
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
