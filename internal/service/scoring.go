package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/askdoc-io/askdoc/internal/domain"
)

// queryTerms lowercases the question and keeps terms longer than 2 runes.
// Short terms match too promiscuously to contribute a useful signal.
func queryTerms(question string) []string {
	fields := strings.Fields(strings.ToLower(question))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"()[]")
		if len([]rune(f)) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// scoreChunk counts occurrences of each term in the chunk's lowercased
// content. Monotonic in term frequency.
func scoreChunk(content string, terms []string) int {
	lowered := strings.ToLower(content)
	score := 0
	for _, term := range terms {
		re, err := regexp.Compile(regexp.QuoteMeta(term))
		if err != nil {
			continue
		}
		score += len(re.FindAllStringIndex(lowered, -1))
	}
	return score
}

// rankByTerms orders chunks by descending term-frequency score. Ties keep
// retrieval order. With no usable terms the first topK chunks are returned
// unscored.
func rankByTerms(chunks []*domain.ChunkMatch, question string, topK int) []*domain.ChunkMatch {
	if topK <= 0 {
		topK = 5
	}

	terms := queryTerms(question)
	if len(terms) == 0 {
		if len(chunks) > topK {
			return chunks[:topK]
		}
		return chunks
	}

	type scored struct {
		chunk *domain.ChunkMatch
		score int
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{chunk: c, score: scoreChunk(c.Content, terms)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := topK
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]*domain.ChunkMatch, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].chunk
	}
	return out
}
