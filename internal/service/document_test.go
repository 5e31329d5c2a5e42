package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/pagination"
)

// MockDocumentRepo mocks the document registry
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) SetTextKey(ctx context.Context, id, textKey string) error {
	args := m.Called(ctx, id, textKey)
	return args.Error(0)
}

func (m *MockDocumentRepo) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.Document]), args.Error(1)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockJobCreator mocks ingest job enqueueing
type MockJobCreator struct {
	mock.Mock
}

func (m *MockJobCreator) Create(ctx context.Context, job *domain.IngestJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockTextStore mocks object storage for extracted text
type MockTextStore struct {
	mock.Mock
}

func (m *MockTextStore) PutText(ctx context.Context, key, text string) error {
	args := m.Called(ctx, key, text)
	return args.Error(0)
}

func (m *MockTextStore) GetText(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockTextStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockChunkMaintenance mocks chunk deletes and stats
type MockChunkMaintenance struct {
	mock.Mock
}

func (m *MockChunkMaintenance) DeleteByDocumentID(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockChunkMaintenance) TableStats(ctx context.Context) (*domain.ChunkTableStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChunkTableStats), args.Error(1)
}

// MockIngestor mocks the ingestion pipeline
type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) Ingest(ctx context.Context, documentID, documentName, rawText string) (*IngestResult, error) {
	args := m.Called(ctx, documentID, documentName, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*IngestResult), args.Error(1)
}

func newDocumentService(repo *MockDocumentRepo, jobs *MockJobCreator, chunks *MockChunkMaintenance, ingestor *MockIngestor, texts TextStore) *DocumentService {
	return NewDocumentService(repo, jobs, chunks, ingestor, texts)
}

func TestDocumentService_RegisterInlineText(t *testing.T) {
	repo := new(MockDocumentRepo)
	jobs := new(MockJobCreator)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	jobs.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newDocumentService(repo, jobs, nil, nil, nil)
	doc, err := svc.Register(context.Background(), "report.txt", "document body")

	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "report.txt", doc.OriginalName)
	assert.Equal(t, "document body", doc.Text)
	assert.Empty(t, doc.TextKey)
	assert.False(t, doc.Vectorized)

	jobs.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(job *domain.IngestJob) bool {
		return job.DocumentID == doc.ID && job.Status == domain.IngestJobStatusPending
	}))
}

func TestDocumentService_RegisterStoresTextExternally(t *testing.T) {
	repo := new(MockDocumentRepo)
	jobs := new(MockJobCreator)
	texts := new(MockTextStore)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	jobs.On("Create", mock.Anything, mock.Anything).Return(nil)
	texts.On("PutText", mock.Anything, mock.Anything, "document body").Return(nil)

	svc := newDocumentService(repo, jobs, nil, nil, texts)
	doc, err := svc.Register(context.Background(), "report.txt", "document body")

	require.NoError(t, err)
	assert.Equal(t, "documents/"+doc.ID+".txt", doc.TextKey)
	assert.Empty(t, doc.Text)
	texts.AssertExpectations(t)
}

func TestDocumentService_RegisterSurvivesJobEnqueueFailure(t *testing.T) {
	repo := new(MockDocumentRepo)
	jobs := new(MockJobCreator)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	jobs.On("Create", mock.Anything, mock.Anything).Return(errors.New("queue full"))

	svc := newDocumentService(repo, jobs, nil, nil, nil)
	doc, err := svc.Register(context.Background(), "report.txt", "document body")

	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestDocumentService_ProcessDocumentLoadsStoredText(t *testing.T) {
	repo := new(MockDocumentRepo)
	texts := new(MockTextStore)
	ingestor := new(MockIngestor)
	repo.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{
		ID: "doc-1", OriginalName: "report.txt", TextKey: "documents/doc-1.txt",
	}, nil)
	texts.On("GetText", mock.Anything, "documents/doc-1.txt").Return("stored body", nil)
	ingestor.On("Ingest", mock.Anything, "doc-1", "report.txt", "stored body").
		Return(&IngestResult{ChunkCount: 2}, nil)

	svc := newDocumentService(repo, new(MockJobCreator), nil, ingestor, texts)
	result, err := svc.ProcessDocument(context.Background(), "doc-1", "")

	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunkCount)
	ingestor.AssertExpectations(t)
}

func TestDocumentService_ProcessDocumentOverrideSkipsLoad(t *testing.T) {
	repo := new(MockDocumentRepo)
	texts := new(MockTextStore)
	ingestor := new(MockIngestor)
	repo.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{
		ID: "doc-1", OriginalName: "report.txt", TextKey: "documents/doc-1.txt",
	}, nil)
	ingestor.On("Ingest", mock.Anything, "doc-1", "report.txt", "override body").
		Return(&IngestResult{ChunkCount: 1}, nil)

	svc := newDocumentService(repo, new(MockJobCreator), nil, ingestor, texts)
	_, err := svc.ProcessDocument(context.Background(), "doc-1", "override body")

	require.NoError(t, err)
	texts.AssertNotCalled(t, "GetText", mock.Anything, mock.Anything)
}

func TestDocumentService_ProcessDocumentUnknownID(t *testing.T) {
	repo := new(MockDocumentRepo)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	svc := newDocumentService(repo, new(MockJobCreator), nil, new(MockIngestor), nil)
	_, err := svc.ProcessDocument(context.Background(), "missing", "")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_ListRejectsBadCursor(t *testing.T) {
	svc := newDocumentService(new(MockDocumentRepo), new(MockJobCreator), nil, nil, nil)

	_, err := svc.List(context.Background(), "garbage cursor !!!", 20)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentService_DeleteRemovesChunksDocumentAndText(t *testing.T) {
	repo := new(MockDocumentRepo)
	chunks := new(MockChunkMaintenance)
	texts := new(MockTextStore)
	repo.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{
		ID: "doc-1", TextKey: "documents/doc-1.txt",
	}, nil)
	chunks.On("DeleteByDocumentID", mock.Anything, "doc-1").Return(nil)
	repo.On("Delete", mock.Anything, "doc-1").Return(nil)
	texts.On("DeleteObject", mock.Anything, "documents/doc-1.txt").Return(nil)

	svc := newDocumentService(repo, new(MockJobCreator), chunks, nil, texts)
	err := svc.Delete(context.Background(), "doc-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	chunks.AssertExpectations(t)
	texts.AssertExpectations(t)
}

func TestDocumentService_DeleteToleratesTextDeleteFailure(t *testing.T) {
	repo := new(MockDocumentRepo)
	chunks := new(MockChunkMaintenance)
	texts := new(MockTextStore)
	repo.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{
		ID: "doc-1", TextKey: "documents/doc-1.txt",
	}, nil)
	chunks.On("DeleteByDocumentID", mock.Anything, "doc-1").Return(nil)
	repo.On("Delete", mock.Anything, "doc-1").Return(nil)
	texts.On("DeleteObject", mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

	svc := newDocumentService(repo, new(MockJobCreator), chunks, nil, texts)
	err := svc.Delete(context.Background(), "doc-1")

	assert.NoError(t, err)
}
