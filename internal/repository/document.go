package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/pagination"
)

// DocumentRepository persists the document registry: original name, where
// the extracted text lives and whether vectorization has completed.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, original_name, text_key, text, vectorized, chunk_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.OriginalName, nullableString(d.TextKey), nullableString(d.Text), d.Vectorized, d.ChunkCount, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var textKey, text pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, original_name, text_key, text, vectorized, chunk_count, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.OriginalName, &textKey, &text, &d.Vectorized, &d.ChunkCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if textKey.Valid {
		d.TextKey = textKey.String
	}
	if text.Valid {
		d.Text = text.String
	}
	return &d, nil
}

// SetVectorized flips the vectorized flag and records the chunk count.
// Called only after every chunk of the document has been stored.
func (r *DocumentRepository) SetVectorized(ctx context.Context, id string, chunkCount int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET vectorized = true, chunk_count = $1, updated_at = $2 WHERE id = $3`,
		chunkCount, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SetTextKey records where the extracted text was stored after upload.
func (r *DocumentRepository) SetTextKey(ctx context.Context, id, textKey string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET text_key = $1, updated_at = $2 WHERE id = $3`,
		textKey, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, original_name, text_key, text, vectorized, chunk_count, created_at, updated_at
			 FROM documents
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, original_name, text_key, text, vectorized, chunk_count, created_at, updated_at
			 FROM documents
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &pagination.PageResult[*domain.Document]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		var textKey, text pgtype.Text
		if err := rows.Scan(&d.ID, &d.OriginalName, &textKey, &text, &d.Vectorized, &d.ChunkCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if textKey.Valid {
			d.TextKey = textKey.String
		}
		if text.Valid {
			d.Text = text.String
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
