package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/askdoc-io/askdoc/internal/domain"
)

// ChunkRepository persists document chunks and their embeddings in a
// pgvector-backed table. Metadata is stored as jsonb so lookups tolerate
// the document ID being tagged under any of its historical key aliases.
type ChunkRepository struct {
	db         dbtx
	dimensions int
}

func NewChunkRepository(pool *pgxpool.Pool, dimensions int) *ChunkRepository {
	return &ChunkRepository{db: pool, dimensions: dimensions}
}

func NewChunkRepositoryWithTx(tx dbtx, dimensions int) *ChunkRepository {
	return &ChunkRepository{db: tx, dimensions: dimensions}
}

// EnsureSchema creates the chunk table, the vector extension and the
// metadata index if they do not exist. Failures are logged and returned,
// but callers treat them as warnings: the table usually already exists
// via migrations, and a read-only role should not stop startup.
func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
			id uuid PRIMARY KEY,
			content text NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}',
			embedding vector(%d),
			created_at timestamptz NOT NULL DEFAULT now()
		)`, r.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id
			ON document_chunks ((metadata->>'documentId'))`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			log.Printf("chunk repository: schema statement failed: %v", err)
			return err
		}
	}
	return nil
}

func (r *ChunkRepository) Insert(ctx context.Context, chunk *domain.Chunk) error {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}

	metadata, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk metadata: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO document_chunks (id, content, metadata, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		chunk.ID, chunk.Content, metadata, pgvector.NewVector(chunk.Embedding), chunk.CreatedAt,
	)
	return err
}

// FindByDocumentID returns chunks whose metadata carries the given document
// ID under any known alias. Results are capped at limit.
func (r *ChunkRepository) FindByDocumentID(ctx context.Context, documentID string, limit int) ([]*domain.ChunkMatch, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT content, metadata
		 FROM document_chunks
		 WHERE metadata->>'documentId' = $1
		    OR metadata->>'document_id' = $1
		    OR metadata->>'id' = $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		documentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunkMatches(rows)
}

// FindByMetadataSubstring matches chunks whose serialized metadata contains
// the given fragment anywhere. Last-resort lookup for when structured
// retrieval fails.
func (r *ChunkRepository) FindByMetadataSubstring(ctx context.Context, fragment string, limit int) ([]*domain.ChunkMatch, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT content, metadata
		 FROM document_chunks
		 WHERE metadata::text ILIKE '%' || $1 || '%'
		 ORDER BY created_at ASC
		 LIMIT $2`,
		fragment, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunkMatches(rows)
}

// SimilaritySearch returns up to k chunks whose cosine similarity to the
// query vector is at least floor, most similar first.
func (r *ChunkRepository) SimilaritySearch(ctx context.Context, query []float32, k int, floor float64) ([]*domain.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, content, metadata, created_at, 1 - (embedding <=> $1) AS similarity
		 FROM document_chunks
		 WHERE embedding IS NOT NULL
		   AND 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(query), floor, k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ScoredChunk
	for rows.Next() {
		var sc domain.ScoredChunk
		var metadata []byte
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.Content, &metadata, &sc.Chunk.CreatedAt, &sc.Similarity); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &sc.Chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
		}
		results = append(results, &sc)
	}
	return results, rows.Err()
}

func (r *ChunkRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`DELETE FROM document_chunks WHERE id = ANY($1)`,
		ids,
	)
	return err
}

// DeleteByDocumentID removes every chunk tagged with the given document ID
// under any alias.
func (r *ChunkRepository) DeleteByDocumentID(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM document_chunks
		 WHERE metadata->>'documentId' = $1
		    OR metadata->>'document_id' = $1
		    OR metadata->>'id' = $1`,
		documentID,
	)
	return err
}

func (r *ChunkRepository) TableStats(ctx context.Context) (*domain.ChunkTableStats, error) {
	var stats domain.ChunkTableStats
	err := r.db.QueryRow(ctx,
		`SELECT count(*), count(DISTINCT metadata->>'documentId')
		 FROM document_chunks`,
	).Scan(&stats.TotalChunks, &stats.Documents)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanChunkMatches(rows pgx.Rows) ([]*domain.ChunkMatch, error) {
	var results []*domain.ChunkMatch
	for rows.Next() {
		var m domain.ChunkMatch
		var metadata []byte
		if err := rows.Scan(&m.Content, &metadata); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
		}
		results = append(results, &m)
	}
	return results, rows.Err()
}
