package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/pagination"
)

// DocumentRepositoryInterface is the registry surface the service needs.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	SetTextKey(ctx context.Context, id, textKey string) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error)
	Delete(ctx context.Context, id string) error
}

// IngestJobCreator enqueues background vectorization work.
type IngestJobCreator interface {
	Create(ctx context.Context, job *domain.IngestJob) error
}

// TextStore holds extracted document text outside the database. Optional;
// without it the text stays inline on the document row.
type TextStore interface {
	PutText(ctx context.Context, key, text string) error
	GetText(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// ChunkMaintenance is the chunk store surface for deletes and stats.
type ChunkMaintenance interface {
	DeleteByDocumentID(ctx context.Context, documentID string) error
	TableStats(ctx context.Context) (*domain.ChunkTableStats, error)
}

// Ingestor runs the chunk-embed-store pipeline for one document.
type Ingestor interface {
	Ingest(ctx context.Context, documentID, documentName, rawText string) (*IngestResult, error)
}

// DocumentService owns the document lifecycle: registration, processing,
// listing and removal.
type DocumentService struct {
	documents DocumentRepositoryInterface
	jobs      IngestJobCreator
	chunks    ChunkMaintenance
	ingestor  Ingestor
	texts     TextStore
}

func NewDocumentService(
	documents DocumentRepositoryInterface,
	jobs IngestJobCreator,
	chunks ChunkMaintenance,
	ingestor Ingestor,
	texts TextStore,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		jobs:      jobs,
		chunks:    chunks,
		ingestor:  ingestor,
		texts:     texts,
	}
}

// Register records a new document with its extracted text and enqueues a
// background ingest job. The text goes to object storage when a store is
// configured, otherwise it stays inline on the row.
func (s *DocumentService) Register(ctx context.Context, originalName, text string) (*domain.Document, error) {
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:           uuid.NewString(),
		OriginalName: originalName,
		Vectorized:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.texts != nil {
		doc.TextKey = textStorageKey(doc.ID)
		if err := s.texts.PutText(ctx, doc.TextKey, text); err != nil {
			return nil, fmt.Errorf("failed to store document text: %w", err)
		}
	} else {
		doc.Text = text
	}

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	job := &domain.IngestJob{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Status:     domain.IngestJobStatusPending,
		CreatedAt:  now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		// The document exists; processing can still be triggered explicitly.
		log.Printf("document service: failed to enqueue ingest job for %s: %v", doc.ID, err)
	}

	return doc, nil
}

// ProcessDocument runs ingestion for an already-registered document. When
// overrideText is non-empty it replaces the stored text for this run.
func (s *DocumentService) ProcessDocument(ctx context.Context, id, overrideText string) (*IngestResult, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	text := overrideText
	if text == "" {
		text, err = s.LoadText(ctx, doc)
		if err != nil {
			return nil, err
		}
	}

	return s.ingestor.Ingest(ctx, doc.ID, doc.OriginalName, text)
}

// LoadText resolves a document's extracted text from object storage or the
// inline column.
func (s *DocumentService) LoadText(ctx context.Context, doc *domain.Document) (string, error) {
	if doc.TextKey != "" {
		if s.texts == nil {
			return "", fmt.Errorf("document %s has stored text but no text store is configured", doc.ID)
		}
		text, err := s.texts.GetText(ctx, doc.TextKey)
		if err != nil {
			return "", fmt.Errorf("failed to load document text: %w", err)
		}
		return text, nil
	}
	return doc.Text, nil
}

func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return s.documents.GetByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, cursorToken string, limit int) (*pagination.PageResult[*domain.Document], error) {
	cursor, err := pagination.DecodeCursor(cursorToken)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	return s.documents.ListWithCursor(ctx, cursor, limit)
}

// Delete removes the document, its chunks and its stored text.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.chunks.DeleteByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}

	if doc.TextKey != "" && s.texts != nil {
		if err := s.texts.DeleteObject(ctx, doc.TextKey); err != nil {
			log.Printf("document service: failed to delete stored text for %s: %v", id, err)
		}
	}
	return nil
}

func (s *DocumentService) Stats(ctx context.Context) (*domain.ChunkTableStats, error) {
	return s.chunks.TableStats(ctx)
}

func textStorageKey(documentID string) string {
	return "documents/" + documentID + ".txt"
}
