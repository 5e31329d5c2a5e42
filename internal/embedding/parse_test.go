package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFloatArray_WholeResponseIsArray(t *testing.T) {
	vec, err := ExtractFloatArray("[0.1, -0.2, 0.3]")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, vec)
}

func TestExtractFloatArray_ArrayEmbeddedInProse(t *testing.T) {
	text := "Sure! Here is the vector you asked for:\n\n[1.0, 2.0, 3.0]\n\nLet me know if you need anything else."

	vec, err := ExtractFloatArray(text)

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestExtractFloatArray_CodeFence(t *testing.T) {
	text := "```json\n[0.5, 0.25]\n```"

	vec, err := ExtractFloatArray(text)

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestExtractFloatArray_FirstBalancedArrayWins(t *testing.T) {
	text := "[1, 2] and later [3, 4]"

	vec, err := ExtractFloatArray(text)

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)
}

func TestExtractFloatArray_NoArray(t *testing.T) {
	_, err := ExtractFloatArray("I cannot produce a vector for that text.")

	assert.Error(t, err)
}

func TestExtractFloatArray_MalformedArray(t *testing.T) {
	_, err := ExtractFloatArray(`["not", "numbers"]`)

	assert.Error(t, err)
}

func TestExtractFloatArray_UnbalancedArray(t *testing.T) {
	_, err := ExtractFloatArray("[1, 2, 3")

	assert.Error(t, err)
}

func TestFromTextCompletion_ExtractsVector(t *testing.T) {
	s := FromTextCompletion("chat-json", 3, func(ctx context.Context, prompt string) (string, error) {
		assert.Contains(t, prompt, "3 floating point numbers")
		return "here you go: [0.1, 0.2, 0.3]", nil
	})

	vec, err := s.Embed(context.Background(), "some document text")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestFromTextCompletion_PropagatesBackendError(t *testing.T) {
	backendErr := errors.New("model not loaded")
	s := FromTextCompletion("chat-json", 3, func(ctx context.Context, prompt string) (string, error) {
		return "", backendErr
	})

	_, err := s.Embed(context.Background(), "text")

	assert.ErrorIs(t, err, backendErr)
}
