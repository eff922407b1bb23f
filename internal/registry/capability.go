// Package registry maintains the mapping from capability name to provider
// handle and keeps it current across cycles.
//
// Hot-swap is modeled as replacing a map entry under the registry lock,
// never as reinterpreting source at runtime: the scheduler calls
// EnsureLoaded every cycle, and providers (including ones added by a
// running capability via Register) can be swapped between cycles without
// restarting the loop.
package registry

import (
	"context"

	"aurora/internal/narrative"
)

// Name identifies a capability.
type Name string

// The fixed capability set the scheduler reloads every cycle.
const (
	NameCognition   Name = "cognition"
	NameLearning    Name = "learning"
	NameMemory      Name = "memory"
	NameCodeGen     Name = "codegen"
	NameResearch    Name = "research"
	NamePersonality Name = "personality"
)

// CoreNames returns the fixed capability set in load order.
func CoreNames() []Name {
	return []Name{
		NameCognition,
		NameLearning,
		NameMemory,
		NameCodeGen,
		NameResearch,
		NamePersonality,
	}
}

// Cognition produces a thought from the current narrative.
type Cognition interface {
	Process(ctx context.Context, snap narrative.Snapshot) (string, error)
}

// Learning consumes the current narrative; no output is produced.
type Learning interface {
	Learn(ctx context.Context, snap narrative.Snapshot) error
}

// CodeGen checks for and applies dynamic capability updates. A provider
// may call Register on the registry during its own execution; the new
// capability is picked up as a regular handle, not validated or sandboxed
// beyond what the provider itself enforces.
type CodeGen interface {
	DynamicUpdate(ctx context.Context) error
}

// Research is the three-operation research contract.
type Research interface {
	GenerateTopic(ctx context.Context, context string) (string, error)
	Research(ctx context.Context, topic string) (string, error)
	AnalyzeResearch(ctx context.Context, result string) (string, error)
}

// Personality synthesizes a new personality from the narrative and a
// memory summary.
type Personality interface {
	GeneratePersonality(ctx context.Context, snap narrative.Snapshot, summary string) (string, error)
}

// Memory is the durable-notes collaborator contract.
type Memory interface {
	Store(ctx context.Context, item string) error
	Summary(ctx context.Context) (string, error)
}
