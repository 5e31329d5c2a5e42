package embedding

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	fallbackTopWords   = 100
	fallbackScatter    = 16
	fallbackBiasStride = 200
)

// HashStrategy builds a deterministic local embedding from word frequencies.
// It needs no network and never fails, so it terminates every cascade.
func HashStrategy(dimensions int) Strategy {
	return Strategy{
		Name: "hash-fallback",
		Embed: func(_ context.Context, text string) ([]float32, error) {
			return hashEmbed(text, dimensions), nil
		},
	}
}

func hashEmbed(text string, dimensions int) []float32 {
	vec := make([]float32, dimensions)
	if dimensions == 0 {
		return vec
	}

	words := topWordsByFrequency(text, fallbackTopWords)

	for _, wf := range words {
		h := xxhash.Sum64String(wf.word)
		for i := 0; i < fallbackScatter; i++ {
			pos := (h * uint64(i+1)) % uint64(dimensions)
			vec[pos] += float32(wf.freq) / float32(i+1)
		}
	}

	// Length bias so documents of different sizes with the same vocabulary
	// still separate slightly.
	bias := float32(len(text)%100) * 0.001
	for i := 0; i < dimensions; i += fallbackBiasStride {
		vec[i] += bias
	}

	return l2Normalize(vec)
}

type wordFreq struct {
	word string
	freq int
}

func topWordsByFrequency(text string, limit int) []wordFreq {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)

	counts := make(map[string]int)
	for _, w := range strings.Fields(normalized) {
		counts[w]++
	}

	words := make([]wordFreq, 0, len(counts))
	for w, c := range counts {
		words = append(words, wordFreq{word: w, freq: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].freq != words[j].freq {
			return words[i].freq > words[j].freq
		}
		return words[i].word < words[j].word
	})

	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
