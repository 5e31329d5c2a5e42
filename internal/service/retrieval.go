package service

import (
	"context"
	"fmt"
	"log"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/embedding"
	"github.com/askdoc-io/askdoc/internal/telemetry"
)

// DocumentGetter resolves a document from the registry.
type DocumentGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// ChunkSearchRepository is the chunk store surface retrieval needs.
type ChunkSearchRepository interface {
	FindByDocumentID(ctx context.Context, documentID string, limit int) ([]*domain.ChunkMatch, error)
	SimilaritySearch(ctx context.Context, query []float32, k int, floor float64) ([]*domain.ScoredChunk, error)
}

// QueryEmbedder turns a question into a vector for similarity search.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) []float32
}

// RetrieverConfig tunes the retrieval tiers.
type RetrieverConfig struct {
	// SimilarityFloor is the minimum cosine similarity for the vector tier.
	// Kept permissive because chunks may have been embedded by different
	// backends over time.
	SimilarityFloor float64

	// MetadataScanLimit bounds the direct metadata lookup.
	MetadataScanLimit int
}

func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		SimilarityFloor:   0.1,
		MetadataScanLimit: 100,
	}
}

// Retriever finds the chunks of a document most relevant to a question.
//
// Tier 1 fetches the document's chunks by exact metadata match and ranks them
// lexically. Vector search is only attempted when the metadata lookup comes
// back empty: lexical scoring over an already-identified candidate set is
// cheap and deterministic, while embedding the question is slow and may fail.
type Retriever struct {
	documents DocumentGetter
	chunks    ChunkSearchRepository
	embedder  QueryEmbedder
	cfg       RetrieverConfig
}

func NewRetriever(documents DocumentGetter, chunks ChunkSearchRepository, embedder QueryEmbedder, cfg RetrieverConfig) *Retriever {
	if cfg.MetadataScanLimit <= 0 {
		cfg.MetadataScanLimit = 100
	}
	return &Retriever{
		documents: documents,
		chunks:    chunks,
		embedder:  embedder,
		cfg:       cfg,
	}
}

// FindRelevant returns up to topK chunks of the document ranked by relevance
// to the question. Fails with ErrDocumentNotFound for unknown documents,
// ErrDocumentNotVectorized when ingestion has not completed, and
// ErrNoChunksFound when both tiers come up empty.
func (r *Retriever) FindRelevant(ctx context.Context, documentID, question string, topK int) ([]*domain.ChunkMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	ctx, span := telemetry.StartSpan(ctx, "retriever.find_relevant", telemetry.SpanAttributes{DocumentID: documentID})
	defer span.End()

	doc, err := r.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Vectorized {
		return nil, domain.ErrDocumentNotVectorized
	}

	// Tier 1: direct metadata lookup plus lexical ranking.
	matches, err := r.chunks.FindByDocumentID(ctx, documentID, r.cfg.MetadataScanLimit)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w", err)
	}
	if len(matches) > 0 {
		return rankByTerms(matches, question, topK), nil
	}

	// Tier 2: vector similarity over the whole store, post-filtered to the
	// requested document.
	queryVec := r.embedder.EmbedOne(ctx, question)
	if embedding.IsZeroVector(queryVec) {
		log.Printf("retriever: question embedding is a null vector, skipping similarity search (document %s)", documentID)
		return nil, domain.ErrNoChunksFound
	}

	scored, err := r.chunks.SimilaritySearch(ctx, queryVec, topK*2, r.cfg.SimilarityFloor)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	var results []*domain.ChunkMatch
	for _, sc := range scored {
		if id, ok := sc.Chunk.Metadata.DocumentID(); ok && id == documentID {
			results = append(results, &domain.ChunkMatch{
				Content:  sc.Chunk.Content,
				Metadata: sc.Chunk.Metadata,
			})
		}
		if len(results) == topK {
			break
		}
	}
	if len(results) == 0 {
		return nil, domain.ErrNoChunksFound
	}
	return results, nil
}
