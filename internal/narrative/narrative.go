// Package narrative holds Aurora's orchestrator-wide state: the identity
// record fixed at construction, the evolving personality, and the cycle
// metrics. It also fronts the memory collaborator for callers that only
// hold the store.
package narrative

import (
	"context"
	"errors"
	"sync"
)

// DefaultPersonality is the personality value before any personality
// provider has run.
const DefaultPersonality = "undefined"

// ErrNoMemory is returned by the memory façade when no collaborator is
// attached.
var ErrNoMemory = errors.New("narrative: no memory collaborator attached")

// Memory is the minimal contract the store needs from the memory
// collaborator. Failures are the caller's to handle.
type Memory interface {
	Store(ctx context.Context, item string) error
	Summary(ctx context.Context) (string, error)
}

// Snapshot is a read-only copy of the narrative taken at cycle start.
// All task adapters in a cycle observe the same snapshot; none sees a
// sibling's write until the next cycle.
type Snapshot struct {
	Identity    string
	Backstory   string
	Mission     string
	Personality string
	Metrics     map[string]float64
}

// Store is the shared state store. Identity, backstory and mission never
// change after construction. Personality has exactly one writer per cycle
// (the personality task) and metrics have exactly one writer (the
// scheduler, after fan-in); the mutex enforces that convention against
// accidental second writers.
type Store struct {
	identity  string
	backstory string
	mission   string

	mu          sync.RWMutex
	personality string
	metrics     map[string]float64
	memory      Memory
}

// New creates the store with its immutable identity fields.
func New(identity, backstory, mission string) *Store {
	return &Store{
		identity:    identity,
		backstory:   backstory,
		mission:     mission,
		personality: DefaultPersonality,
		metrics:     make(map[string]float64),
	}
}

// AttachMemory wires the memory collaborator behind the façade.
func (s *Store) AttachMemory(m Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = m
}

// Identity returns the immutable identity string.
func (s *Store) Identity() string { return s.identity }

// Mission returns the immutable mission string.
func (s *Store) Mission() string { return s.mission }

// Snapshot returns a copy safe to share across concurrent task adapters.
// Immutable fields are shared by reference; metrics are deep-copied.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make(map[string]float64, len(s.metrics))
	for k, v := range s.metrics {
		metrics[k] = v
	}
	return Snapshot{
		Identity:    s.identity,
		Backstory:   s.backstory,
		Mission:     s.mission,
		Personality: s.personality,
		Metrics:     metrics,
	}
}

// SetPersonality replaces the personality value. Called once per cycle by
// the personality task; last writer wins.
func (s *Store) SetPersonality(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personality = value
}

// Personality returns the current personality value.
func (s *Store) Personality() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.personality
}

// ResetPersonality restores the pre-evolution personality.
func (s *Store) ResetPersonality() {
	s.SetPersonality(DefaultPersonality)
}

// RecordMetric stores a metric value. Called only by the scheduler after
// all task adapters have joined, so it cannot race the fan-out phase.
func (s *Store) RecordMetric(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[name] = value
}

// Metric returns a metric value and whether it has been recorded.
func (s *Store) Metric(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.metrics[name]
	return v, ok
}

// MemoryStore passes an item through to the memory collaborator.
func (s *Store) MemoryStore(ctx context.Context, item string) error {
	s.mu.RLock()
	m := s.memory
	s.mu.RUnlock()
	if m == nil {
		return ErrNoMemory
	}
	return m.Store(ctx, item)
}

// MemorySummary passes a summary request through to the memory collaborator.
func (s *Store) MemorySummary(ctx context.Context) (string, error) {
	s.mu.RLock()
	m := s.memory
	s.mu.RUnlock()
	if m == nil {
		return "", ErrNoMemory
	}
	return m.Summary(ctx)
}
