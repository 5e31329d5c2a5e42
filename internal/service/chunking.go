package service

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how document text is split before embedding.
type ChunkConfig struct {
	Size      int
	Overlap   int
	MaxChunks int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1000,
		Overlap: 200,
	}
}

// SplitText splits text into overlapping chunks of at most cfg.Size runes.
// Cut points prefer, in order, a paragraph break, a sentence end, then any
// whitespace; only when none exists in the window does it cut mid-word.
func SplitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	runes := []rune(clean)
	if len(runes) <= cfg.Size {
		return []string{clean}
	}

	chunks := make([]string, 0, len(runes)/cfg.Size+1)
	start := 0
	for start < len(runes) {
		if cfg.MaxChunks > 0 && len(chunks) >= cfg.MaxChunks {
			break
		}

		end := start + cfg.Size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}

		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

// cutPoint picks where to end a chunk inside runes[start:end]. The search is
// bounded to the back half of the window so chunks stay near the target size.
func cutPoint(runes []rune, start, end int) int {
	minCut := start + (end-start)/2

	// Paragraph break
	for i := end; i > minCut; i-- {
		if runes[i-1] == '\n' && i-2 >= start && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence end followed by space
	for i := end; i > minCut; i-- {
		if i < len(runes) && unicode.IsSpace(runes[i-1]) && i-2 >= start && isSentenceEnd(runes[i-2]) {
			return i
		}
	}

	// Any whitespace
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
