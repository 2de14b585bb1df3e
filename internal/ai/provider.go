package ai

import "context"

// LLMProvider sends a prompt to an LLM and returns the raw text response.
// Implementations must surface upstream rate limits in a way that
// model.IsRateLimited recognizes.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
