package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingStrategy(name string) Strategy {
	return Strategy{
		Name: name,
		Embed: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New(name + " unavailable")
		},
	}
}

func fixedStrategy(name string, vec []float32) Strategy {
	return Strategy{
		Name: name,
		Embed: func(ctx context.Context, text string) ([]float32, error) {
			return vec, nil
		},
	}
}

func TestProvider_FirstSuccessWins(t *testing.T) {
	secondCalled := false
	p := NewProvider(4,
		fixedStrategy("first", []float32{1, 2, 3, 4}),
		Strategy{
			Name: "second",
			Embed: func(ctx context.Context, text string) ([]float32, error) {
				secondCalled = true
				return []float32{9, 9, 9, 9}, nil
			},
		},
	)

	vec := p.EmbedOne(context.Background(), "text")

	assert.Equal(t, []float32{1, 2, 3, 4}, vec)
	assert.False(t, secondCalled)
}

func TestProvider_CascadesPastFailures(t *testing.T) {
	p := NewProvider(4,
		failingStrategy("first"),
		failingStrategy("second"),
		fixedStrategy("third", []float32{1, 1, 1, 1}),
	)

	vec := p.EmbedOne(context.Background(), "text")

	assert.Equal(t, []float32{1, 1, 1, 1}, vec)
}

func TestProvider_AllFailReturnsZeroVector(t *testing.T) {
	p := NewProvider(8,
		failingStrategy("first"),
		failingStrategy("second"),
	)

	vec := p.EmbedOne(context.Background(), "text")

	require.Len(t, vec, 8)
	assert.True(t, IsZeroVector(vec))
}

func TestProvider_ResizesStrategyOutput(t *testing.T) {
	// Strategy returns 8 values, store expects 4.
	p := NewProvider(4, fixedStrategy("wide", []float32{1, 3, 2, 4, 0, 10, 6, 8}))

	vec := p.EmbedOne(context.Background(), "text")

	assert.Equal(t, []float32{2, 3, 5, 7}, vec)
}

func TestProvider_EmptyResultTreatedAsFailure(t *testing.T) {
	p := NewProvider(4,
		fixedStrategy("empty", nil),
		fixedStrategy("fallback", []float32{1, 2, 3, 4}),
	)

	vec := p.EmbedOne(context.Background(), "text")

	assert.Equal(t, []float32{1, 2, 3, 4}, vec)
}

func TestProvider_EmbedManyPreservesOrder(t *testing.T) {
	p := NewProvider(2, Strategy{
		Name: "length",
		Embed: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text)), 1}, nil
		},
	})

	vecs := p.EmbedMany(context.Background(), []string{"a", "bb", "ccc"})

	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{1, 1}, vecs[0])
	assert.Equal(t, []float32{2, 1}, vecs[1])
	assert.Equal(t, []float32{3, 1}, vecs[2])
}

func TestProvider_HashFallbackTerminatesCascade(t *testing.T) {
	p := NewProvider(128,
		failingStrategy("remote"),
		HashStrategy(128),
	)

	vec := p.EmbedOne(context.Background(), "some document text about invoices")

	require.Len(t, vec, 128)
	assert.False(t, IsZeroVector(vec))
}
