// Package embedding produces fixed-length vectors from text using an ordered
// cascade of backends, degrading all the way to a local hash when every
// network strategy fails.
package embedding

import (
	"context"
	"log"

	"github.com/askdoc-io/askdoc/internal/telemetry"
)

// Strategy is one way to turn text into a vector. Strategies are tried in
// order until one succeeds.
type Strategy struct {
	Name  string
	Embed func(ctx context.Context, text string) ([]float32, error)
}

// Provider runs the strategy cascade and enforces the store-wide vector
// dimensionality on every result.
type Provider struct {
	strategies []Strategy
	dimensions int
}

func NewProvider(dimensions int, strategies ...Strategy) *Provider {
	return &Provider{strategies: strategies, dimensions: dimensions}
}

// Dimensions returns the store-wide vector length.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// EmbedOne returns a vector of exactly Dimensions() length. It never returns
// an error: strategy failures are logged and the cascade continues. If every
// strategy fails the result is all zeros, which callers treat as a total
// failure signal.
func (p *Provider) EmbedOne(ctx context.Context, text string) []float32 {
	for _, s := range p.strategies {
		spanCtx, span := telemetry.StartSpan(ctx, "embedding.strategy", telemetry.SpanAttributes{Strategy: s.Name})
		vec, err := s.Embed(spanCtx, text)
		if err != nil {
			span.SetError(err)
			span.End()
			log.Printf("embedding: strategy %s failed: %v", s.Name, err)
			continue
		}
		span.End()
		if len(vec) == 0 {
			log.Printf("embedding: strategy %s returned empty vector", s.Name)
			continue
		}
		return Resize(vec, p.dimensions)
	}

	log.Printf("embedding: all strategies exhausted, returning zero vector")
	return make([]float32, p.dimensions)
}

// EmbedMany embeds texts sequentially. Order of results matches inputs.
func (p *Provider) EmbedMany(ctx context.Context, texts []string) [][]float32 {
	results := make([][]float32, len(texts))
	for i, t := range texts {
		results[i] = p.EmbedOne(ctx, t)
	}
	return results
}
