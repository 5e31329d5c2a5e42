package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/llm"
	"github.com/askdoc-io/askdoc/internal/telemetry"
)

const (
	documentNotFoundAnswer = "I couldn't find that document. It may have been deleted, or the ID may be wrong."
	notVectorizedAnswer    = "That document hasn't been processed yet. Please process it first, then ask again."
	nothingRelevantAnswer  = "I couldn't find relevant information in the document to answer that question."

	groundingSystemPrompt = `You are a document assistant. Answer the question using ONLY the provided document context. If the context does not contain the information needed, say you don't have enough information. Do not invent facts.`
)

// RelevanceRetriever is the retrieval surface the synthesizer depends on.
type RelevanceRetriever interface {
	FindRelevant(ctx context.Context, documentID, question string, topK int) ([]*domain.ChunkMatch, error)
}

// MetadataScanner is the last-resort lookup used when structured retrieval
// fails outright.
type MetadataScanner interface {
	FindByMetadataSubstring(ctx context.Context, fragment string, limit int) ([]*domain.ChunkMatch, error)
}

// AnswerResult is what the ask endpoint returns, failure or not.
type AnswerResult struct {
	Answer  string
	Sources []*domain.ChunkMatch
}

// Synthesizer answers questions about a document. It is the outermost
// boundary the user sees: every failure below it resolves to answer text,
// never an error.
type Synthesizer struct {
	retriever RelevanceRetriever
	scanner   MetadataScanner
	chat      llm.ChatClient
}

func NewSynthesizer(retriever RelevanceRetriever, scanner MetadataScanner, chat llm.ChatClient) *Synthesizer {
	return &Synthesizer{
		retriever: retriever,
		scanner:   scanner,
		chat:      chat,
	}
}

// Answer produces a best-effort answer with the chunks it was derived from.
func (s *Synthesizer) Answer(ctx context.Context, documentID, question string, topK int) *AnswerResult {
	if topK <= 0 {
		topK = 5
	}

	ctx, span := telemetry.StartSpan(ctx, "synthesizer.answer", telemetry.SpanAttributes{DocumentID: documentID})
	defer span.End()

	chunks, err := s.retrieve(ctx, documentID, question, topK)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDocumentNotFound):
			return &AnswerResult{Answer: documentNotFoundAnswer}
		case errors.Is(err, domain.ErrDocumentNotVectorized):
			return &AnswerResult{Answer: notVectorizedAnswer}
		default:
			return &AnswerResult{Answer: nothingRelevantAnswer}
		}
	}
	if len(chunks) == 0 {
		return &AnswerResult{Answer: nothingRelevantAnswer}
	}

	answer := s.synthesize(ctx, question, chunks)
	return &AnswerResult{Answer: answer, Sources: chunks}
}

// retrieve runs the retriever and, when it fails for any reason other than a
// structural one, tries a loose substring scan over serialized metadata. The
// scan catches rows whose document tag the exact-key lookup missed.
func (s *Synthesizer) retrieve(ctx context.Context, documentID, question string, topK int) ([]*domain.ChunkMatch, error) {
	chunks, err := s.retriever.FindRelevant(ctx, documentID, question, topK)
	if err == nil {
		return chunks, nil
	}
	if errors.Is(err, domain.ErrDocumentNotFound) || errors.Is(err, domain.ErrDocumentNotVectorized) {
		return nil, err
	}

	log.Printf("synthesizer: retrieval failed for document %s, trying metadata substring scan: %v", documentID, err)
	telemetry.AddBreadcrumb(ctx, "retrieval", "falling back to metadata substring scan")

	matches, scanErr := s.scanner.FindByMetadataSubstring(ctx, documentID, 100)
	if scanErr != nil || len(matches) == 0 {
		if scanErr != nil {
			log.Printf("synthesizer: metadata substring scan failed: %v", scanErr)
		}
		return nil, err
	}
	return rankByTerms(matches, question, topK), nil
}

// synthesize asks the language model to answer from the chunk context and
// degrades to keyword heuristics when the call fails.
func (s *Synthesizer) synthesize(ctx context.Context, question string, chunks []*domain.ChunkMatch) string {
	context := joinChunkContents(chunks)

	userPrompt := fmt.Sprintf("Document context:\n%s\n\nQuestion: %s", context, question)
	answer, err := s.chat.Chat(ctx, groundingSystemPrompt, userPrompt)
	if err == nil && strings.TrimSpace(answer) != "" {
		return strings.TrimSpace(answer)
	}
	if err != nil {
		log.Printf("synthesizer: chat completion failed, using heuristic extraction: %v", err)
		telemetry.CaptureError(ctx, err)
	}

	return heuristicAnswer(question, chunks)
}
