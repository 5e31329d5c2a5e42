package service

import (
	"context"
	"fmt"

	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/telemetry"
)

// ChunkInserter is the chunk store surface ingestion needs.
type ChunkInserter interface {
	Insert(ctx context.Context, chunk *domain.Chunk) error
}

// VectorizedMarker flips a document's vectorized flag after ingestion.
type VectorizedMarker interface {
	SetVectorized(ctx context.Context, id string, chunkCount int) error
}

// IngestResult reports how many chunks a document produced.
type IngestResult struct {
	ChunkCount int
}

// Coordinator drives chunking, embedding and storage for one document.
type Coordinator struct {
	chunks    ChunkInserter
	documents VectorizedMarker
	embedder  QueryEmbedder
	chunkCfg  ChunkConfig
}

func NewCoordinator(chunks ChunkInserter, documents VectorizedMarker, embedder QueryEmbedder, chunkCfg ChunkConfig) *Coordinator {
	if chunkCfg.Size <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &Coordinator{
		chunks:    chunks,
		documents: documents,
		embedder:  embedder,
		chunkCfg:  chunkCfg,
	}
}

// Ingest splits rawText, embeds each chunk sequentially and stores it tagged
// with the document ID. The vectorized flag flips only after every chunk is
// durably written; a mid-document failure returns an IngestionError carrying
// how many chunks made it. Already-inserted chunks are not rolled back.
func (c *Coordinator) Ingest(ctx context.Context, documentID, documentName, rawText string) (*IngestResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "coordinator.ingest", telemetry.SpanAttributes{DocumentID: documentID})
	defer span.End()

	pieces := SplitText(rawText, c.chunkCfg)

	for i, piece := range pieces {
		vec := c.embedder.EmbedOne(ctx, piece)

		chunk := &domain.Chunk{
			Content:   piece,
			Metadata:  domain.NewChunkMetadata(documentID, documentName),
			Embedding: vec,
		}
		if err := c.chunks.Insert(ctx, chunk); err != nil {
			ingErr := &domain.IngestionError{
				DocumentID:   documentID,
				ChunksStored: i,
				Err:          fmt.Errorf("insert chunk %d of %d: %w", i+1, len(pieces), err),
			}
			span.SetError(ingErr)
			return nil, ingErr
		}
	}

	if err := c.documents.SetVectorized(ctx, documentID, len(pieces)); err != nil {
		ingErr := &domain.IngestionError{
			DocumentID:   documentID,
			ChunksStored: len(pieces),
			Err:          fmt.Errorf("mark vectorized: %w", err),
		}
		span.SetError(ingErr)
		return nil, ingErr
	}

	return &IngestResult{ChunkCount: len(pieces)}, nil
}
