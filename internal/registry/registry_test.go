package registry

import (
	"context"
	"errors"
	"testing"

	"aurora/internal/narrative"
)

type stubCognition struct{ thought string }

func (s *stubCognition) Process(context.Context, narrative.Snapshot) (string, error) {
	return s.thought, nil
}

func TestEnsureLoadedLoadsOnce(t *testing.T) {
	reg := New(nil)
	calls := 0
	reg.Bind(NameCognition, func() (any, error) {
		calls++
		return &stubCognition{thought: "t"}, nil
	})

	m := reg.EnsureLoaded([]Name{NameCognition})
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
	h := m[NameCognition]
	if h == nil || !h.Available {
		t.Fatalf("expected available handle, got %+v", h)
	}
	if _, ok := m.Cognition(); !ok {
		t.Error("typed accessor did not find cognition provider")
	}
}

func TestEnsureLoadedReplacesHandle(t *testing.T) {
	reg := New(nil)
	reg.Bind(NameCognition, func() (any, error) {
		return &stubCognition{thought: "t"}, nil
	})

	first := reg.EnsureLoaded([]Name{NameCognition})[NameCognition]
	second := reg.EnsureLoaded([]Name{NameCognition})[NameCognition]

	if first.ID == second.ID {
		t.Error("reload should produce a replacement handle, not mutate in place")
	}
	if !first.Available || !second.Available {
		t.Error("both generations should be available")
	}
}

func TestEnsureLoadedIdempotent(t *testing.T) {
	reg := New(nil)
	reg.Bind(NameCognition, func() (any, error) { return &stubCognition{}, nil })
	reg.Bind(NameLearning, func() (any, error) { return nil, errors.New("boom") })

	a := reg.EnsureLoaded([]Name{NameCognition, NameLearning})
	b := reg.EnsureLoaded([]Name{NameCognition, NameLearning})

	for _, name := range []Name{NameCognition, NameLearning} {
		if a[name].Available != b[name].Available {
			t.Errorf("%s availability changed across identical reloads: %v then %v",
				name, a[name].Available, b[name].Available)
		}
	}
}

func TestLoadFailureIsolation(t *testing.T) {
	reg := New(nil)
	reg.Bind(NameCognition, func() (any, error) { return &stubCognition{}, nil })
	reg.Bind(NameResearch, func() (any, error) { return nil, errors.New("import error") })

	m := reg.EnsureLoaded([]Name{NameCognition, NameResearch})

	if !m[NameCognition].Available {
		t.Error("healthy capability should be unaffected by a sibling's failure")
	}
	h := m[NameResearch]
	if h == nil {
		t.Fatal("failed capability must still get a handle")
	}
	if h.Available {
		t.Error("failed load should mark handle unavailable")
	}
	if h.Err == nil {
		t.Error("failed handle should carry the load error")
	}
	if _, ok := m.Research(); ok {
		t.Error("typed accessor should reject an unavailable handle")
	}
}

func TestTransientLoadFailure(t *testing.T) {
	// Provider fails load on the second cycle only; availability must
	// track each cycle's outcome.
	reg := New(nil)
	cycle := 0
	reg.Bind(NameCodeGen, func() (any, error) {
		cycle++
		if cycle == 2 {
			return nil, errors.New("transient failure")
		}
		return &stubCodeGen{}, nil
	})

	want := []bool{true, false, true}
	for i, avail := range want {
		m := reg.EnsureLoaded([]Name{NameCodeGen})
		if m[NameCodeGen].Available != avail {
			t.Errorf("cycle %d: available = %v, want %v", i+1, m[NameCodeGen].Available, avail)
		}
	}
}

type stubCodeGen struct{}

func (stubCodeGen) DynamicUpdate(context.Context) error { return nil }

func TestUnboundNameGetsUnavailableHandle(t *testing.T) {
	reg := New(nil)
	m := reg.EnsureLoaded([]Name{NameMemory})

	h := m[NameMemory]
	if h == nil {
		t.Fatal("unbound name must still get a handle")
	}
	if h.Available {
		t.Error("unbound name should be unavailable")
	}
	if !errors.Is(h.Err, ErrNoLoader) {
		t.Errorf("err = %v, want ErrNoLoader", h.Err)
	}
}

func TestRegisterDynamicCapability(t *testing.T) {
	reg := New(nil)

	if err := reg.Register("", &stubCognition{}); !errors.Is(err, ErrNameEmpty) {
		t.Errorf("empty name: err = %v, want ErrNameEmpty", err)
	}
	if err := reg.Register("extra", nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("nil provider: err = %v, want ErrNilProvider", err)
	}

	if err := reg.Register("extra", &stubCognition{thought: "new capability"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// A dynamic capability has no loader; EnsureLoaded must leave it alone.
	before := reg.Handle("extra")
	reg.EnsureLoaded([]Name{"extra"})
	after := reg.Handle("extra")
	if before.ID != after.ID {
		t.Error("EnsureLoaded should not churn a dynamically registered handle")
	}
	if !after.Available {
		t.Error("dynamic capability should stay available")
	}
}

func TestSwapReplacesProvider(t *testing.T) {
	reg := New(nil)
	if err := reg.Register(NameCognition, &stubCognition{thought: "old"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Swap(NameCognition, &stubCognition{thought: "new"}); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	c, ok := reg.Handles().Cognition()
	if !ok {
		t.Fatal("cognition not available after swap")
	}
	got, _ := c.Process(context.Background(), narrative.Snapshot{})
	if got != "new" {
		t.Errorf("Process = %q, want %q", got, "new")
	}
}

func TestTypedAccessorRejectsWrongContract(t *testing.T) {
	reg := New(nil)
	reg.Bind(NameResearch, func() (any, error) {
		// Loaded fine, but does not implement the research contract.
		return &stubCognition{}, nil
	})

	m := reg.EnsureLoaded([]Name{NameResearch})
	if _, ok := m.Research(); ok {
		t.Error("accessor should reject a provider missing the contract")
	}
}

func TestHandleMapIsACopy(t *testing.T) {
	reg := New(nil)
	reg.Bind(NameCognition, func() (any, error) { return &stubCognition{}, nil })

	m := reg.EnsureLoaded([]Name{NameCognition})
	if err := reg.Register("late", &stubCognition{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, ok := m["late"]; ok {
		t.Error("a handle map captured earlier must not see later registrations")
	}
}
