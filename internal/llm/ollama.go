package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient talks to a local Ollama-compatible server over HTTP.
type OllamaClient struct {
	baseURL    string
	chatModel  string
	embedModel string
	client     *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaEmbedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate,omitempty"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type ollamaLegacyEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaLegacyEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaClient(baseURL, chatModel, embedModel string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		chatModel:  chatModel,
		embedModel: embedModel,
		client: &http.Client{
			Timeout: 5 * time.Minute, // model loads and completions can be slow
		},
	}
}

// Chat generates a completion for a system/user prompt pair via /api/chat.
func (c *OllamaClient) Chat(ctx context.Context, system, user string) (string, error) {
	reqBody := ollamaChatRequest{
		Model: c.chatModel,
		Messages: []ollamaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	}

	var result ollamaChatResponse
	if err := c.post(ctx, "/api/chat", reqBody, &result); err != nil {
		return "", err
	}
	return result.Message.Content, nil
}

// Generate runs a raw prompt completion via /api/generate.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  c.chatModel,
		Prompt: prompt,
		Stream: false,
	}

	var result ollamaGenerateResponse
	if err := c.post(ctx, "/api/generate", reqBody, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

// Embed generates an embedding via the batch /api/embed endpoint.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollamaEmbedRequest{
		Model:    c.embedModel,
		Input:    []string{text},
		Truncate: true,
	}

	var result ollamaEmbedResponse
	if err := c.post(ctx, "/api/embed", reqBody, &result); err != nil {
		return nil, err
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return result.Embeddings[0], nil
}

// EmbedLegacy generates an embedding via the older /api/embeddings endpoint,
// which some servers still expose when /api/embed is absent.
func (c *OllamaClient) EmbedLegacy(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollamaLegacyEmbedRequest{
		Model:  c.embedModel,
		Prompt: text,
	}

	var result ollamaLegacyEmbedResponse
	if err := c.post(ctx, "/api/embeddings", reqBody, &result); err != nil {
		return nil, err
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return result.Embedding, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, reqBody, out any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
