package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashStrategy_Deterministic(t *testing.T) {
	s := HashStrategy(256)
	ctx := context.Background()

	a, err := s.Embed(ctx, "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashStrategy_ProducesRequestedDimensions(t *testing.T) {
	s := HashStrategy(1536)

	vec, err := s.Embed(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Len(t, vec, 1536)
}

func TestHashStrategy_L2Normalized(t *testing.T) {
	s := HashStrategy(512)

	vec, err := s.Embed(context.Background(), "invoices are due on the first of the month")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestHashStrategy_DifferentTextsDiffer(t *testing.T) {
	s := HashStrategy(256)
	ctx := context.Background()

	a, err := s.Embed(ctx, "shipping address and delivery notes")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "quarterly revenue projections for 2025")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashStrategy_CaseAndPunctuationInsensitive(t *testing.T) {
	s := HashStrategy(256)
	ctx := context.Background()

	// Same words, same total length, differing only in case and punctuation
	// placement.
	a, err := s.Embed(ctx, "Hello, World-")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "hello;; world")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTopWordsByFrequency_OrdersAndLimits(t *testing.T) {
	words := topWordsByFrequency("b b b a a c", 2)

	require.Len(t, words, 2)
	assert.Equal(t, "b", words[0].word)
	assert.Equal(t, 3, words[0].freq)
	assert.Equal(t, "a", words[1].word)
}
