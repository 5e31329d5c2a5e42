package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeNotVectorized = "NOT_VECTORIZED"
	ErrCodeNoChunks      = "NO_CHUNKS_FOUND"
	ErrCodeIngestion     = "INGESTION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidIngestStatus  = NewDomainError(ErrCodeValidation, "invalid ingest job status")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question cannot be empty")
)

// Retrieval errors
var (
	ErrDocumentNotFound      = NewDomainError(ErrCodeNotFound, "document not found")
	ErrDocumentNotVectorized = NewDomainError(ErrCodeNotVectorized, "document has not been vectorized yet")
	ErrNoChunksFound         = NewDomainError(ErrCodeNoChunks, "no relevant chunks found for document")
)

// IngestionError reports a partially-completed ingestion. ChunksStored is the
// number of chunks durably written before the failure; already-inserted chunks
// are not rolled back.
type IngestionError struct {
	DocumentID   string
	ChunksStored int
	Err          error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("[%s] ingestion failed for document %s after %d chunks: %v",
		ErrCodeIngestion, e.DocumentID, e.ChunksStored, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}
