package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Embedder turns a piece of text into a fixed-length vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder generates embeddings with the Gemini embedding API.
// One remote call per text, no retries and no batching; rate limits are
// the remote service's concern.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// EmbedText implements Embedder. Blank input is rejected before any
// network call is made.
func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding call failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}
	return result.Embeddings[0].Values, nil
}

// NewGeminiEmbedder creates an embedder backed by the given Gemini client.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}
