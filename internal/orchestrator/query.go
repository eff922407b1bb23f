package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aurora/internal/narrative"
	"aurora/internal/registry"
)

// QueryAnswerer is the optional contract a cognition provider implements
// to handle interactive queries. Providers without it still drive the
// cycle loop; they just cannot answer from the console.
type QueryAnswerer interface {
	Answer(ctx context.Context, query string, snap narrative.Snapshot) (string, error)
}

// Query is one interactive question and its outcome. Err is set when the
// answer was degraded (cognition unavailable or failing).
type Query struct {
	ID     string
	Text   string
	Answer string
	Err    error
	Asked  time.Time
}

// Answer resolves an interactive query against the current cognition
// provider, outside the cycle loop and against a fresh snapshot.
func (o *Orchestrator) Answer(ctx context.Context, text string) (Query, error) {
	q := Query{ID: uuid.NewString(), Text: text, Asked: time.Now()}
	if err := o.resolve(ctx, &q); err != nil {
		return q, err
	}
	return q, nil
}

// resolve fills in the answer and persists the exchange through the
// narrative's memory façade so the next cycle can reflect on it.
func (o *Orchestrator) resolve(ctx context.Context, q *Query) error {
	h := o.registry.Handle(registry.NameCognition)
	if h == nil || !h.Available {
		return fmt.Errorf("query %s: cognition unavailable", q.ID)
	}
	answerer, ok := h.Provider.(QueryAnswerer)
	if !ok {
		return fmt.Errorf("query %s: cognition provider cannot answer queries", q.ID)
	}

	snap := o.narrative.Snapshot()
	answer, err := answerer.Answer(ctx, q.Text, snap)
	if err != nil {
		return fmt.Errorf("query %s: %w", q.ID, err)
	}
	q.Answer = answer

	if err := o.narrative.MemoryStore(ctx, fmt.Sprintf("Query: %s\nAnswer: %s", q.Text, answer)); err != nil {
		// Memory may simply be absent; the answer is still valid.
		o.logger.Debug("query not persisted", zap.String("query", q.ID), zap.Error(err))
	}
	return nil
}

// ErrBridgeClosed is returned by Submit after the bridge shuts down.
var ErrBridgeClosed = errors.New("orchestrator: query bridge closed")

// QueryBridge decouples interactive queries from their resolution. Submit
// enqueues on a buffered request channel; a handler goroutine independent
// of the cycle loop resolves each query against the current cognition
// provider and delivers the outcome on the response channel. An
// unavailable cognition provider degrades to an echo answer so every
// submitted query gets a reply.
type QueryBridge struct {
	orch      *Orchestrator
	requests  chan Query
	responses chan Query

	done      chan struct{}
	closeOnce sync.Once
}

// NewQueryBridge creates the bridge and starts its handler goroutine.
func NewQueryBridge(orch *Orchestrator, buffer int) *QueryBridge {
	if buffer <= 0 {
		buffer = 8
	}
	b := &QueryBridge{
		orch:      orch,
		requests:  make(chan Query, buffer),
		responses: make(chan Query, buffer),
		done:      make(chan struct{}),
	}
	go b.serve()
	return b
}

// Submit enqueues a query and returns its correlation ID.
func (b *QueryBridge) Submit(ctx context.Context, text string) (string, error) {
	select {
	case <-b.done:
		return "", ErrBridgeClosed
	default:
	}

	q := Query{ID: uuid.NewString(), Text: text, Asked: time.Now()}
	select {
	case b.requests <- q:
		return q.ID, nil
	case <-b.done:
		return "", ErrBridgeClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Responses delivers resolved queries in submission order.
func (b *QueryBridge) Responses() <-chan Query {
	return b.responses
}

func (b *QueryBridge) serve() {
	for {
		select {
		case q := <-b.requests:
			b.handle(&q)
			select {
			case b.responses <- q:
			case <-b.done:
				return
			}
		case <-b.done:
			return
		}
	}
}

// handle resolves one query within the per-task budget, falling back to an
// echo answer when cognition cannot serve it.
func (b *QueryBridge) handle(q *Query) {
	ctx, cancel := context.WithTimeout(context.Background(), b.orch.cfg.TaskTimeout)
	defer cancel()

	if err := b.orch.resolve(ctx, q); err != nil {
		q.Err = err
		q.Answer = fmt.Sprintf("%s heard: %s", b.orch.narrative.Identity(), q.Text)
	}
}

// Close stops the handler goroutine. Pending submissions fail with
// ErrBridgeClosed.
func (b *QueryBridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}

// Status is a point-in-time view for the console.
type Status struct {
	Cycles            uint64
	Personality       string
	LastCycleDuration float64
	Capabilities      []registry.Name
}

// Status reports the loop's current state.
func (o *Orchestrator) Status() Status {
	duration, _ := o.narrative.Metric(MetricCycleDuration)
	return Status{
		Cycles:            o.cycles.Load(),
		Personality:       o.narrative.Personality(),
		LastCycleDuration: duration,
		Capabilities:      o.registry.Names(),
	}
}

// memoryClearer is implemented by memory providers that support a full
// wipe.
type memoryClearer interface {
	Clear(ctx context.Context) error
}

// Reset restores the default personality and wipes memory when the memory
// provider supports it.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.narrative.ResetPersonality()

	h := o.registry.Handle(registry.NameMemory)
	if h == nil || !h.Available {
		return nil
	}
	if clearer, ok := h.Provider.(memoryClearer); ok {
		if err := clearer.Clear(ctx); err != nil {
			return fmt.Errorf("reset memory: %w", err)
		}
	}
	o.logger.Info("narrative reset")
	return nil
}
