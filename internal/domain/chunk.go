package domain

import "time"

// Metadata is the JSON object stored alongside each chunk.
type Metadata map[string]any

// documentIDKeys is the prioritized list of metadata keys that may carry the
// parent document id. Older rows were tagged with document_id or id instead of
// documentId, so lookups must tolerate all three.
var documentIDKeys = []string{"documentId", "document_id", "id"}

// DocumentID resolves the parent document id from the metadata, trying each
// historical alias in priority order.
func (m Metadata) DocumentID() (string, bool) {
	for _, key := range documentIDKeys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Source returns the document name the chunk was ingested from, if tagged.
func (m Metadata) Source() string {
	if v, ok := m["source"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// NewChunkMetadata tags a chunk with the parent document id under every alias
// a lookup may use, plus the source document name.
func NewChunkMetadata(documentID, source string) Metadata {
	return Metadata{
		"documentId":  documentID,
		"document_id": documentID,
		"id":          documentID,
		"source":      source,
	}
}

// Chunk is a bounded slice of a document's text stored with its embedding.
type Chunk struct {
	ID        string
	Content   string
	Metadata  Metadata
	Embedding []float32
	CreatedAt time.Time
}

// ChunkMatch is a retrieved chunk as returned to callers; the embedding is not
// exposed.
type ChunkMatch struct {
	Content  string
	Metadata Metadata
}

// ScoredChunk is a chunk paired with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float64
}

// ChunkTableStats summarizes the chunk store.
type ChunkTableStats struct {
	TotalChunks int64
	Documents   int64
}
