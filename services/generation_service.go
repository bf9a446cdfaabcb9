package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// TextGenerator produces a grounded answer for a query given the
// retrieved context text.
type TextGenerator interface {
	Generate(ctx context.Context, contextText, query string) (string, error)
}

// GeminiGenerator implements TextGenerator with a single-shot Gemini
// call: the grounding prompt goes in as the system instruction and the
// bare query as the user turn.
type GeminiGenerator struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
	temperature     float32
}

// Generate implements TextGenerator.
func (g *GeminiGenerator) Generate(ctx context.Context, contextText, query string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: GetSystemPrompt(contextText, query),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   g.maxOutputTokens,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(query), config)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "I'm sorry, I couldn't generate a response.", nil
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}

// NewGeminiGenerator creates a generator bound to a Gemini chat model.
func NewGeminiGenerator(client *genai.Client, model string, maxOutputTokens int, temperature float32) *GeminiGenerator {
	return &GeminiGenerator{
		client:          client,
		model:           model,
		maxOutputTokens: int32(maxOutputTokens),
		temperature:     temperature,
	}
}
