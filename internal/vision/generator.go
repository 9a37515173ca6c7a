// Package vision adapts an external multimodal model to receipt extraction.
// The adapter is an optional capability: every failure mode here is designed
// to be swallowed by the caller, which falls back to the deterministic
// OCR path. Model unavailability must never block extraction.
package vision

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Generator is the minimal text/vision generation capability the adapter
// needs. It is synchronous and may fail or return malformed text at any
// time; callers impose timeouts via ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string, image []byte, mime string) (string, error)
}

// GeminiGenerator implements Generator on top of the Gen AI SDK. Credentials
// and Vertex routing come from the standard environment variables
// (GEMINI_API_KEY, GOOGLE_GENAI_USE_VERTEXAI, ...).
type GeminiGenerator struct {
	model string
}

// NewGeminiGenerator returns a generator bound to the given model name.
func NewGeminiGenerator(model string) *GeminiGenerator {
	return &GeminiGenerator{model: model}
}

// Generate sends the prompt, with an optional inline image, and returns the
// model's text response.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, image []byte, mime string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("vision: create genai client: %w", err)
	}

	parts := []*genai.Part{{Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mime,
				Data:     image,
			},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("vision: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("vision: empty response from model")
	}
	return text, nil
}
