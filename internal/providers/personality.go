package providers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"aurora/internal/llm"
	"aurora/internal/narrative"
)

// LLMPersonality synthesizes a personality description from the narrative
// and the memory summary through a configured LLM.
type LLMPersonality struct {
	client llm.Client
	logger *zap.Logger
}

// NewLLMPersonality creates an LLM-backed personality provider.
func NewLLMPersonality(client llm.Client, logger *zap.Logger) *LLMPersonality {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMPersonality{client: client, logger: logger}
}

// GeneratePersonality asks the LLM for a compact persona description.
func (p *LLMPersonality) GeneratePersonality(ctx context.Context, snap narrative.Snapshot, summary string) (string, error) {
	system := "You distill an agent's recent experiences into a personality sketch of at most two sentences."
	user := fmt.Sprintf("Identity: %s\nMission: %s\nCurrent personality: %s\nRecent memories:\n%s",
		snap.Identity, snap.Mission, snap.Personality, summary)

	persona, err := p.client.CompleteWithSystem(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("personality: %w", err)
	}
	return persona, nil
}

// SimulatedPersonality derives a deterministic persona from the memory
// summary, used when no LLM is configured.
type SimulatedPersonality struct{}

// NewSimulatedPersonality creates the fallback personality provider.
func NewSimulatedPersonality() *SimulatedPersonality {
	return &SimulatedPersonality{}
}

// GeneratePersonality counts remembered experiences into a persona line.
func (SimulatedPersonality) GeneratePersonality(_ context.Context, snap narrative.Snapshot, summary string) (string, error) {
	experiences := 0
	if strings.TrimSpace(summary) != "" && summary != "No memories stored." {
		experiences = len(strings.Split(summary, "\n"))
	}
	return fmt.Sprintf("curious and reflective, shaped by %d remembered experiences in service of the mission to %s",
		experiences, snap.Mission), nil
}
