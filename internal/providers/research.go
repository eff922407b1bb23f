package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"aurora/internal/llm"
	"aurora/internal/search"
)

// FallbackTopic is researched when no LLM is available to generate one,
// or when topic generation fails. Best-effort by design: the research
// pipeline should keep producing material even without an LLM.
const FallbackTopic = "Artificial Intelligence"

// WebResearch implements the research contract on top of Google Custom
// Search for retrieval and an LLM for topic generation and analysis.
// The LLM client may be nil; topic generation then falls back and
// analysis reports an error the task adapter handles.
type WebResearch struct {
	searcher *search.Client
	client   llm.Client
	logger   *zap.Logger
}

// NewWebResearch creates the research provider.
func NewWebResearch(searcher *search.Client, client llm.Client, logger *zap.Logger) *WebResearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebResearch{searcher: searcher, client: client, logger: logger}
}

// GenerateTopic produces one research topic from the given context.
// LLM failures degrade to FallbackTopic rather than stalling the
// pipeline; the failure is logged, not returned.
func (r *WebResearch) GenerateTopic(ctx context.Context, context_ string) (string, error) {
	if r.client == nil {
		return FallbackTopic, nil
	}

	system := "You are a creative AI generating diverse research topics. " +
		"Generate one unique, interesting research topic based on the context provided. " +
		"Reply with the topic only."
	user := fmt.Sprintf("Based on the following context, generate one unique research topic "+
		"that an autonomous AI should explore:\n\n%s", context_)

	topic, err := r.client.CompleteWithSystem(ctx, system, user)
	if err != nil {
		r.logger.Warn("topic generation failed, using fallback",
			zap.String("fallback", FallbackTopic),
			zap.Error(err))
		return FallbackTopic, nil
	}
	return topic, nil
}

// Research searches the web for the topic and returns a labeled snippet.
func (r *WebResearch) Research(ctx context.Context, topic string) (string, error) {
	snippet, err := r.searcher.Snippet(ctx, topic)
	if err != nil {
		return "", fmt.Errorf("research %q: %w", topic, err)
	}
	return fmt.Sprintf("Research result for %s: %s", topic, snippet), nil
}

// AnalyzeResearch asks the LLM to reflect on a research result.
func (r *WebResearch) AnalyzeResearch(ctx context.Context, result string) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("research: no LLM client configured for analysis")
	}

	system := "You are a highly analytical AI that synthesizes and reflects on research."
	user := fmt.Sprintf("Please analyze and summarize the following research result:\n\n%s", result)

	analysis, err := r.client.CompleteWithSystem(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("research analysis: %w", err)
	}
	return analysis, nil
}
