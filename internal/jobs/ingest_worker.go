package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/service"
)

// MaxRetries is the maximum number of attempts for a failed ingest job.
const MaxRetries = 3

// IngestJobRepository defines the interface for ingest job persistence
type IngestJobRepository interface {
	// ClaimPending atomically claims pending jobs for processing
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error)

	// UpdateStatus updates the status of an ingest job
	UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, id string) error
}

// DocumentProcessor runs ingestion for one registered document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, id, overrideText string) (*service.IngestResult, error)
}

// IngestWorker drains the ingest job queue.
type IngestWorker struct {
	repo      IngestJobRepository
	processor DocumentProcessor
	batchSize int
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestJobRepository, processor DocumentProcessor) *IngestWorker {
	return &IngestWorker{
		repo:      repo,
		processor: processor,
		batchSize: 10,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("processing %d pending ingest jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	log.Printf("processing job %s for document %s", job.ID, job.DocumentID)

	result, err := w.processor.ProcessDocument(ctx, job.DocumentID, "")
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("job %s completed: %d chunks stored", job.ID, result.ChunkCount)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestJob, jobErr error) error {
	log.Printf("job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
