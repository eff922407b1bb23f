package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"aurora/internal/narrative"
	"aurora/internal/registry"
)

// NoSummary stands in for the memory summary when no memory capability is
// available this cycle. The research pipeline still runs; topic generation
// just has less to go on.
const NoSummary = "No memory summary available."

// AnalysisTag prefixes stored research analyses so they can be told apart
// from raw research results.
const AnalysisTag = "Analysis: "

// task is one unit of the per-cycle fan-out. Every task receives the same
// snapshot and the same handle view; a task that cannot run because its
// capability is unavailable returns nil after logging, so only real
// execution failures surface as task errors.
type task struct {
	name string
	run  func(ctx context.Context, handles registry.HandleMap, snap narrative.Snapshot) error
}

func (o *Orchestrator) tasks() []task {
	return []task{
		{name: "cognition", run: o.runCognition},
		{name: "learning", run: o.runLearning},
		{name: "code_update", run: o.runCodeUpdate},
		{name: "research", run: o.runResearch},
		{name: "personality", run: o.runPersonality},
	}
}

// runCognition produces one thought and persists it when memory is up.
func (o *Orchestrator) runCognition(ctx context.Context, handles registry.HandleMap, snap narrative.Snapshot) error {
	cog, ok := handles.Cognition()
	if !ok {
		o.logger.Warn("cognition unavailable, skipping")
		return nil
	}

	thought, err := cog.Process(ctx, snap)
	if err != nil {
		return fmt.Errorf("cognition: %w", err)
	}
	o.logger.Info("thought", zap.String("content", thought))

	if mem, ok := handles.Memory(); ok {
		if err := mem.Store(ctx, thought); err != nil {
			return fmt.Errorf("store thought: %w", err)
		}
	}
	return nil
}

// runLearning feeds the snapshot to the learning capability.
func (o *Orchestrator) runLearning(ctx context.Context, handles registry.HandleMap, snap narrative.Snapshot) error {
	l, ok := handles.Learning()
	if !ok {
		o.logger.Warn("learning unavailable, skipping")
		return nil
	}
	if err := l.Learn(ctx, snap); err != nil {
		return fmt.Errorf("learning: %w", err)
	}
	return nil
}

// runCodeUpdate lets the code-generation capability apply pending dynamic
// updates.
func (o *Orchestrator) runCodeUpdate(ctx context.Context, handles registry.HandleMap, _ narrative.Snapshot) error {
	cg, ok := handles.CodeGen()
	if !ok {
		o.logger.Warn("code update unavailable, skipping")
		return nil
	}
	if err := cg.DynamicUpdate(ctx); err != nil {
		return fmt.Errorf("code update: %w", err)
	}
	return nil
}

// runResearch drives the four-step research pipeline: summarize memory,
// generate a topic, research it, analyze the result. Both the raw result
// and the tagged analysis are persisted when memory is up.
func (o *Orchestrator) runResearch(ctx context.Context, handles registry.HandleMap, _ narrative.Snapshot) error {
	res, ok := handles.Research()
	if !ok {
		o.logger.Warn("research unavailable, skipping")
		return nil
	}

	mem, hasMemory := handles.Memory()
	summary := NoSummary
	if hasMemory {
		s, err := mem.Summary(ctx)
		if err != nil {
			o.logger.Warn("memory summary failed, researching without it", zap.Error(err))
		} else {
			summary = s
		}
	}

	topic, err := res.GenerateTopic(ctx, summary)
	if err != nil {
		return fmt.Errorf("generate topic: %w", err)
	}
	o.logger.Info("researching", zap.String("topic", topic))

	result, err := res.Research(ctx, topic)
	if err != nil {
		return fmt.Errorf("research: %w", err)
	}
	if hasMemory {
		if err := mem.Store(ctx, result); err != nil {
			return fmt.Errorf("store research result: %w", err)
		}
	}

	analysis, err := res.AnalyzeResearch(ctx, result)
	if err != nil {
		return fmt.Errorf("analyze research: %w", err)
	}
	if hasMemory {
		if err := mem.Store(ctx, AnalysisTag+analysis); err != nil {
			return fmt.Errorf("store analysis: %w", err)
		}
	}
	return nil
}

// runPersonality evolves the personality from the memory summary. It needs
// both the personality and memory capabilities; with either missing the
// personality stays as it was.
func (o *Orchestrator) runPersonality(ctx context.Context, handles registry.HandleMap, snap narrative.Snapshot) error {
	p, okP := handles.Personality()
	mem, okM := handles.Memory()
	if !okP || !okM {
		o.logger.Warn("personality evolution skipped",
			zap.Bool("personality_available", okP),
			zap.Bool("memory_available", okM))
		return nil
	}

	summary, err := mem.Summary(ctx)
	if err != nil {
		return fmt.Errorf("personality summary: %w", err)
	}
	persona, err := p.GeneratePersonality(ctx, snap, summary)
	if err != nil {
		return fmt.Errorf("personality: %w", err)
	}

	o.narrative.SetPersonality(persona)
	o.logger.Info("personality updated", zap.String("personality", persona))
	return nil
}
