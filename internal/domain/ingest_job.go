package domain

import "time"

// IngestJobStatus represents the lifecycle state of an ingest job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob queues a document for background vectorization.
type IngestJob struct {
	ID          string
	DocumentID  string
	Status      IngestJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ValidateIngestJob checks required fields and status before persistence.
func ValidateIngestJob(j *IngestJob) error {
	if j.ID == "" || j.DocumentID == "" {
		return ErrMissingRequiredField
	}
	switch j.Status {
	case IngestJobStatusPending, IngestJobStatusProcessing, IngestJobStatusCompleted, IngestJobStatusFailed:
		return nil
	}
	return ErrInvalidIngestStatus
}
