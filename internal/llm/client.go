// Package llm provides the minimal LLM client contract the capability
// providers call through, plus concrete Gemini and OpenAI-compatible
// implementations. Failures are ordinary errors; a caller can never
// mistake an error message for model output.
package llm

import "context"

// Client is the minimal interface capability providers use to call an LLM.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
