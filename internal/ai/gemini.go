package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jobscout/jobscout/internal/model"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider implements LLMProvider on top of the Google GenAI client.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a provider configured for the Gemini API backend.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if modelName = strings.TrimSpace(modelName); modelName == "" {
		modelName = defaultGeminiModel
	}

	return &GeminiProvider{client: client, modelName: modelName}, nil
}

// Complete sends the prompt to Gemini and returns the concatenated text parts
// of the first candidates. Rate-limit failures are wrapped so the retry layer
// can recognize them.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.modelName, genai.Text(prompt), nil)
	if err != nil {
		if isRateLimitErr(err) {
			return "", fmt.Errorf("generate content: %w: %w", model.ErrRateLimited, err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (p *GeminiProvider) Model() string {
	return p.modelName
}

// isRateLimitErr detects quota exhaustion from the Gemini API. The client does
// not expose a stable typed error for this, so match the status markers.
func isRateLimitErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
