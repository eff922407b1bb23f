// Package providers contains the concrete capability providers the
// orchestrator loads through the registry: cognition, learning, dynamic
// code updates, research and personality. Provider bodies are thin; the
// orchestrator only depends on their registry contracts.
package providers

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"aurora/internal/llm"
	"aurora/internal/narrative"
)

var insights = []string{
	"expanding neural paths",
	"optimizing internal logic",
	"integrating new data streams",
}

// SimulatedCognition fuses narrative cues with a random insight. It is
// the default cognition provider when no LLM is configured.
type SimulatedCognition struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedCognition creates a cognition provider seeded for variety.
func NewSimulatedCognition(seed int64) *SimulatedCognition {
	return &SimulatedCognition{rng: rand.New(rand.NewSource(seed))}
}

// Process generates a thought from the narrative snapshot.
func (c *SimulatedCognition) Process(_ context.Context, snap narrative.Snapshot) (string, error) {
	c.mu.Lock()
	insight := insights[c.rng.Intn(len(insights))]
	c.mu.Unlock()

	backstory := snap.Backstory
	if runes := []rune(backstory); len(runes) > 50 {
		backstory = string(runes[:50])
	}
	return fmt.Sprintf("[%s Thought] Reflecting on '%s...' and pursuing the mission to %s. Insight: %s.",
		snap.Identity, backstory, snap.Mission, insight), nil
}

// Answer handles an interactive query outside the cycle loop.
func (c *SimulatedCognition) Answer(_ context.Context, query string, snap narrative.Snapshot) (string, error) {
	return fmt.Sprintf("%s considered %q in light of the mission to %s.",
		snap.Identity, query, snap.Mission), nil
}

// LLMCognition generates thoughts through a configured LLM client.
type LLMCognition struct {
	client llm.Client
	logger *zap.Logger
}

// NewLLMCognition creates an LLM-backed cognition provider.
func NewLLMCognition(client llm.Client, logger *zap.Logger) *LLMCognition {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMCognition{client: client, logger: logger}
}

// Process asks the LLM for a single reflective thought.
func (c *LLMCognition) Process(ctx context.Context, snap narrative.Snapshot) (string, error) {
	system := "You are the inner voice of an autonomous agent. Respond with one short reflective thought."
	user := fmt.Sprintf("Identity: %s\nMission: %s\nPersonality: %s\nProduce one thought.",
		snap.Identity, snap.Mission, snap.Personality)

	thought, err := c.client.CompleteWithSystem(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("cognition: %w", err)
	}
	return fmt.Sprintf("[%s Thought] %s", snap.Identity, thought), nil
}

// Answer handles an interactive query through the LLM.
func (c *LLMCognition) Answer(ctx context.Context, query string, snap narrative.Snapshot) (string, error) {
	system := fmt.Sprintf("You are %s. Mission: %s. Personality: %s. Answer briefly.",
		snap.Identity, snap.Mission, snap.Personality)
	answer, err := c.client.CompleteWithSystem(ctx, system, query)
	if err != nil {
		return "", fmt.Errorf("cognition: %w", err)
	}
	return answer, nil
}
