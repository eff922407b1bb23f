package providers

import (
	"context"

	"go.uber.org/zap"

	"aurora/internal/narrative"
)

// SimulatedLearning models the learning capability: it consumes the
// narrative and records what it saw. A real implementation would adjust
// internal weights; the orchestrator only cares that the call completes.
type SimulatedLearning struct {
	logger *zap.Logger
}

// NewSimulatedLearning creates the learning provider.
func NewSimulatedLearning(logger *zap.Logger) *SimulatedLearning {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedLearning{logger: logger}
}

// Learn consumes the narrative snapshot.
func (l *SimulatedLearning) Learn(_ context.Context, snap narrative.Snapshot) error {
	l.logger.Debug("learning from narrative",
		zap.String("identity", snap.Identity),
		zap.String("personality", snap.Personality))
	return nil
}
