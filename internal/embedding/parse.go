package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractFloatArray pulls a vector out of model-generated text. The whole
// response is tried as JSON first; failing that, the first balanced bracketed
// array found in the text is parsed. Models wrap arrays in prose or code
// fences more often than not.
func ExtractFloatArray(text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)

	var direct []float32
	if err := json.Unmarshal([]byte(trimmed), &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	start := strings.IndexByte(trimmed, '[')
	if start < 0 {
		return nil, fmt.Errorf("no array found in response")
	}

	depth := 0
	for i := start; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				var vec []float32
				if err := json.Unmarshal([]byte(trimmed[start:i+1]), &vec); err != nil {
					return nil, fmt.Errorf("failed to parse array: %w", err)
				}
				if len(vec) == 0 {
					return nil, fmt.Errorf("parsed array is empty")
				}
				return vec, nil
			}
		}
	}
	return nil, fmt.Errorf("unbalanced array in response")
}

// completionFunc produces free text for a prompt.
type completionFunc func(ctx context.Context, prompt string) (string, error)

// FromTextCompletion builds a strategy that asks a text interface to emit a
// JSON array of floats and extracts it from whatever comes back.
func FromTextCompletion(name string, dimensions int, complete completionFunc) Strategy {
	return Strategy{
		Name: name,
		Embed: func(ctx context.Context, text string) ([]float32, error) {
			prompt := fmt.Sprintf(
				"Produce a JSON array of exactly %d floating point numbers between -1 and 1 that semantically summarizes the following text. Respond with only the array, no explanation.\n\nText:\n%s",
				dimensions, text,
			)
			out, err := complete(ctx, prompt)
			if err != nil {
				return nil, err
			}
			return ExtractFloatArray(out)
		},
	}
}
