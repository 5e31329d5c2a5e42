package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdoc-io/askdoc/internal/domain"
)

var ErrIngestJobNotFound = errors.New("ingest job not found")

// IngestJobRepository persists the background vectorization queue.
type IngestJobRepository struct {
	db dbtx
}

func NewIngestJobRepository(pool *pgxpool.Pool) *IngestJobRepository {
	return &IngestJobRepository{db: pool}
}

func NewIngestJobRepositoryWithTx(tx pgx.Tx) *IngestJobRepository {
	return &IngestJobRepository{db: tx}
}

func (r *IngestJobRepository) Create(ctx context.Context, job *domain.IngestJob) error {
	if err := domain.ValidateIngestJob(job); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO ingest_jobs (id, document_id, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.DocumentID, job.Status, job.Retries, nullableString(job.Error), job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *IngestJobRepository) GetByID(ctx context.Context, id string) (*domain.IngestJob, error) {
	var job domain.IngestJob
	var errMsg pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, document_id, status, retries, error, created_at, processed_at
		 FROM ingest_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.DocumentID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIngestJobNotFound
		}
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

// ClaimPending atomically moves up to limit pending jobs to processing and
// returns them. SKIP LOCKED lets multiple workers poll the same queue
// without claiming the same job twice.
func (r *IngestJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM ingest_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE ingest_jobs
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE ingest_jobs.id = cte.id
		 RETURNING ingest_jobs.id, ingest_jobs.document_id, ingest_jobs.status,
		           ingest_jobs.retries, ingest_jobs.error, ingest_jobs.created_at, ingest_jobs.processed_at`,
		domain.IngestJobStatusPending, limit, domain.IngestJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.IngestJob
	for rows.Next() {
		var job domain.IngestJob
		var errMsg pgtype.Text
		if err := rows.Scan(&job.ID, &job.DocumentID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			job.Error = errMsg.String
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *IngestJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error {
	var processedAt *time.Time
	if status == domain.IngestJobStatusCompleted || status == domain.IngestJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingest_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(errMsg), processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrIngestJobNotFound
	}
	return nil
}

func (r *IngestJobRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE ingest_jobs SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrIngestJobNotFound
	}
	return nil
}
