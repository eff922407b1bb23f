// Package orchestrator runs the perpetual cycle loop: reload capabilities,
// snapshot the narrative, fan out the task set, join, record the cycle
// duration and sleep an adaptively shortened wait before going again.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aurora/internal/narrative"
	"aurora/internal/registry"
)

// MetricCycleDuration is the narrative metric holding the last cycle's
// fan-out-to-join duration in seconds.
const MetricCycleDuration = "last_cycle_duration"

// Config sets the pacing of the cycle loop.
type Config struct {
	// BaseCycle is the nominal inter-cycle delay before damping.
	BaseCycle time.Duration

	// FloorWait is the lower bound on the inter-cycle delay.
	FloorWait time.Duration

	// Damping scales how strongly a slow cycle shortens the next wait.
	Damping float64

	// TaskTimeout bounds each task adapter within a cycle.
	TaskTimeout time.Duration
}

// DefaultConfig returns the standard pacing: one second cycles, half a
// second floor, 0.1 damping and a generous per-task budget.
func DefaultConfig() Config {
	return Config{
		BaseCycle:   time.Second,
		FloorWait:   500 * time.Millisecond,
		Damping:     0.1,
		TaskTimeout: 30 * time.Second,
	}
}

// Orchestrator owns the cycle loop. It never stops on task failure; only
// context cancellation ends Run.
type Orchestrator struct {
	registry  *registry.Registry
	narrative *narrative.Store
	cfg       Config
	logger    *zap.Logger

	cycles atomic.Uint64
}

// New creates an orchestrator. Zero-valued pacing fields fall back to
// DefaultConfig values.
func New(reg *registry.Registry, narr *narrative.Store, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.BaseCycle <= 0 {
		cfg.BaseCycle = def.BaseCycle
	}
	if cfg.FloorWait <= 0 {
		cfg.FloorWait = def.FloorWait
	}
	if cfg.Damping <= 0 {
		cfg.Damping = def.Damping
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = def.TaskTimeout
	}
	return &Orchestrator{
		registry:  reg,
		narrative: narr,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run loops until ctx is cancelled. Each iteration reloads the core
// capability set, runs the full task fan-out against one snapshot, records
// the duration metric and sleeps the adaptive wait. Run returns ctx.Err()
// and nothing else.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator stopping", zap.Uint64("cycles", o.cycles.Load()))
			return ctx.Err()
		default:
		}

		duration := o.runCycle(ctx)
		if ctx.Err() != nil {
			continue
		}

		o.narrative.RecordMetric(MetricCycleDuration, duration.Seconds())
		n := o.cycles.Add(1)

		wait := AdaptiveWait(o.cfg.BaseCycle, o.cfg.FloorWait, o.cfg.Damping, duration)
		o.logger.Debug("cycle complete",
			zap.Uint64("cycle", n),
			zap.Duration("duration", duration),
			zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}
}

// runCycle executes one reload, snapshot, fan-out and join. The returned
// duration covers fan-out to join only, matching what the adaptive wait
// should compensate for.
func (o *Orchestrator) runCycle(ctx context.Context) time.Duration {
	handles := o.registry.EnsureLoaded(registry.CoreNames())
	snap := o.narrative.Snapshot()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range o.tasks() {
		t := t
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(gctx, o.cfg.TaskTimeout)
			defer cancel()
			if err := o.runTask(tctx, t, handles, snap); err != nil {
				o.logger.Error("task failed",
					zap.String("task", t.name),
					zap.Error(err))
			}
			// Task failures are isolated; returning nil keeps the
			// group from cancelling sibling tasks.
			return nil
		})
	}
	g.Wait()
	return time.Since(start)
}

// runTask runs one adapter with panic containment. A panicking provider
// downgrades to a task error instead of taking the process down.
func (o *Orchestrator) runTask(ctx context.Context, t task, handles registry.HandleMap, snap narrative.Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.name, r)
		}
	}()
	return t.run(ctx, handles, snap)
}

// Cycles returns how many cycles have completed.
func (o *Orchestrator) Cycles() uint64 {
	return o.cycles.Load()
}

// AdaptiveWait computes the inter-cycle delay: the base delay shortened in
// proportion to how long the last cycle took, never below the floor.
func AdaptiveWait(base, floor time.Duration, damping float64, lastCycle time.Duration) time.Duration {
	wait := base - time.Duration(float64(lastCycle)*damping)
	if wait < floor {
		return floor
	}
	return wait
}
