package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/askdoc-io/askdoc/internal/domain"
)

// MockRetriever mocks structured retrieval
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) FindRelevant(ctx context.Context, documentID, question string, topK int) ([]*domain.ChunkMatch, error) {
	args := m.Called(ctx, documentID, question, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChunkMatch), args.Error(1)
}

// MockScanner mocks the metadata substring fallback
type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) FindByMetadataSubstring(ctx context.Context, fragment string, limit int) ([]*domain.ChunkMatch, error) {
	args := m.Called(ctx, fragment, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChunkMatch), args.Error(1)
}

// MockChat mocks the language model
type MockChat struct {
	mock.Mock
}

func (m *MockChat) Chat(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

func TestSynthesizer_UnknownDocumentGetsFriendlyAnswer(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	retriever.On("FindRelevant", mock.Anything, "missing", "what is this", 5).
		Return(nil, domain.ErrDocumentNotFound)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "missing", "what is this", 5)

	require.NotNil(t, result)
	assert.Equal(t, documentNotFoundAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	scanner.AssertNotCalled(t, "FindByMetadataSubstring", mock.Anything, mock.Anything, mock.Anything)
	chat.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestSynthesizer_NotVectorizedGetsFriendlyAnswer(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	retriever.On("FindRelevant", mock.Anything, "doc-1", "anything", 5).
		Return(nil, domain.ErrDocumentNotVectorized)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "anything", 5)

	assert.Equal(t, notVectorizedAnswer, result.Answer)
	scanner.AssertNotCalled(t, "FindByMetadataSubstring", mock.Anything, mock.Anything, mock.Anything)
}

func TestSynthesizer_RetrievalFailureFallsBackToMetadataScan(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	retriever.On("FindRelevant", mock.Anything, "doc-1", "what is the total", 5).
		Return(nil, errors.New("connection reset"))
	scanner.On("FindByMetadataSubstring", mock.Anything, "doc-1", 100).Return([]*domain.ChunkMatch{
		{Content: "shipping address"},
		{Content: "invoice total $500"},
	}, nil)
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("The total is $500.", nil)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "what is the total", 5)

	assert.Equal(t, "The total is $500.", result.Answer)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "invoice total $500", result.Sources[0].Content)
	scanner.AssertExpectations(t)
}

func TestSynthesizer_ScanAlsoEmptyGetsNothingRelevant(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	retriever.On("FindRelevant", mock.Anything, "doc-1", "anything", 5).
		Return(nil, errors.New("connection reset"))
	scanner.On("FindByMetadataSubstring", mock.Anything, "doc-1", 100).
		Return([]*domain.ChunkMatch{}, nil)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "anything", 5)

	assert.Equal(t, nothingRelevantAnswer, result.Answer)
	chat.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestSynthesizer_NoChunksFoundGetsNothingRelevant(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	retriever.On("FindRelevant", mock.Anything, "doc-1", "anything", 5).
		Return(nil, domain.ErrNoChunksFound)
	scanner.On("FindByMetadataSubstring", mock.Anything, "doc-1", 100).
		Return(nil, errors.New("down too"))

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "anything", 5)

	assert.Equal(t, nothingRelevantAnswer, result.Answer)
}

func TestSynthesizer_ChatSuccessReturnsTrimmedAnswer(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	chunks := []*domain.ChunkMatch{{Content: "The invoice total is $500."}}
	retriever.On("FindRelevant", mock.Anything, "doc-1", "what is the total", 5).
		Return(chunks, nil)
	chat.On("Chat", mock.Anything, groundingSystemPrompt, mock.Anything).
		Return("  The total is $500.\n", nil)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "what is the total", 5)

	assert.Equal(t, "The total is $500.", result.Answer)
	assert.Equal(t, chunks, result.Sources)
}

func TestSynthesizer_ChatFailureUsesHeuristics(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	chunks := []*domain.ChunkMatch{
		{Content: "The report was prepared by Jane Smith together with John Doe."},
	}
	retriever.On("FindRelevant", mock.Anything, "doc-1", "who wrote this report", 5).
		Return(chunks, nil)
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("model unavailable"))

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "who wrote this report", 5)

	assert.Equal(t, "The document mentions: Jane Smith, John Doe", result.Answer)
	assert.Equal(t, chunks, result.Sources)
}

func TestSynthesizer_BlankChatResponseUsesHeuristics(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	chunks := []*domain.ChunkMatch{
		{Content: "The contract was signed in 2024 and renewed on 03/15/2025."},
	}
	retriever.On("FindRelevant", mock.Anything, "doc-1", "when was it signed", 5).
		Return(chunks, nil)
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("   \n", nil)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "when was it signed", 5)

	assert.Contains(t, result.Answer, "Dates found in the document:")
	assert.Contains(t, result.Answer, "2024")
}

func TestSynthesizer_DefaultsTopK(t *testing.T) {
	retriever := new(MockRetriever)
	scanner := new(MockScanner)
	chat := new(MockChat)
	retriever.On("FindRelevant", mock.Anything, "doc-1", "anything", 5).
		Return([]*domain.ChunkMatch{{Content: "something"}}, nil)
	chat.On("Chat", mock.Anything, mock.Anything, mock.Anything).Return("answer", nil)

	s := NewSynthesizer(retriever, scanner, chat)
	result := s.Answer(context.Background(), "doc-1", "anything", 0)

	assert.Equal(t, "answer", result.Answer)
	retriever.AssertExpectations(t)
}
