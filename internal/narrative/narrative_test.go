package narrative

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDefaults(t *testing.T) {
	s := New("Aurora", "uploaded story", "learn everything")
	if s.Identity() != "Aurora" {
		t.Errorf("identity = %q, want %q", s.Identity(), "Aurora")
	}
	if s.Personality() != DefaultPersonality {
		t.Errorf("personality = %q, want %q", s.Personality(), DefaultPersonality)
	}
	if _, ok := s.Metric("last_cycle_duration"); ok {
		t.Error("new store should have no metrics recorded")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New("Aurora", "backstory", "mission")
	s.RecordMetric("last_cycle_duration", 0.25)

	snap := s.Snapshot()

	// Mutations after the snapshot must not leak into it.
	s.SetPersonality("curious")
	s.RecordMetric("last_cycle_duration", 9.0)
	snap.Metrics["injected"] = 1.0

	if snap.Personality != DefaultPersonality {
		t.Errorf("snapshot personality = %q, want %q", snap.Personality, DefaultPersonality)
	}
	if snap.Metrics["last_cycle_duration"] != 0.25 {
		t.Errorf("snapshot metric = %v, want 0.25", snap.Metrics["last_cycle_duration"])
	}
	if _, ok := s.Metric("injected"); ok {
		t.Error("writing to a snapshot's metrics map mutated the store")
	}
}

func TestImmutableFieldsSurviveWrites(t *testing.T) {
	s := New("Aurora", "backstory", "mission")
	before := s.Snapshot()

	for i := 0; i < 50; i++ {
		s.SetPersonality("iteration personality")
		s.RecordMetric("last_cycle_duration", float64(i))
	}

	after := s.Snapshot()
	got := []string{after.Identity, after.Backstory, after.Mission}
	want := []string{before.Identity, before.Backstory, before.Mission}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("immutable fields changed (-want +got):\n%s", diff)
	}
}

func TestResetPersonality(t *testing.T) {
	s := New("Aurora", "b", "m")
	s.SetPersonality("evolved")
	s.ResetPersonality()
	if s.Personality() != DefaultPersonality {
		t.Errorf("personality after reset = %q, want %q", s.Personality(), DefaultPersonality)
	}
}

type fakeMemory struct {
	mu    sync.Mutex
	items []string
	err   error
}

func (f *fakeMemory) Store(_ context.Context, item string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeMemory) Summary(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if len(f.items) == 0 {
		return "No memories stored.", nil
	}
	return f.items[len(f.items)-1], nil
}

func TestMemoryFacade(t *testing.T) {
	s := New("Aurora", "b", "m")

	if err := s.MemoryStore(context.Background(), "thought"); !errors.Is(err, ErrNoMemory) {
		t.Fatalf("MemoryStore without collaborator = %v, want ErrNoMemory", err)
	}
	if _, err := s.MemorySummary(context.Background()); !errors.Is(err, ErrNoMemory) {
		t.Fatalf("MemorySummary without collaborator = %v, want ErrNoMemory", err)
	}

	mem := &fakeMemory{}
	s.AttachMemory(mem)

	if err := s.MemoryStore(context.Background(), "thought"); err != nil {
		t.Fatalf("MemoryStore failed: %v", err)
	}
	summary, err := s.MemorySummary(context.Background())
	if err != nil {
		t.Fatalf("MemorySummary failed: %v", err)
	}
	if summary != "thought" {
		t.Errorf("summary = %q, want %q", summary, "thought")
	}

	// Collaborator failures pass through untouched.
	mem.err = errors.New("disk full")
	if err := s.MemoryStore(context.Background(), "x"); err == nil {
		t.Error("expected collaborator error to propagate")
	}
}

func TestConcurrentSnapshotAndWrite(t *testing.T) {
	s := New("Aurora", "b", "m")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Snapshot()
			}
		}()
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordMetric("last_cycle_duration", float64(n*j))
			}
		}(i)
	}
	wg.Wait()
}
