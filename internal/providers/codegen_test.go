package providers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aurora/internal/registry"
)

const reverseCapability = `import "strings"

func Process(identity, mission string) string {
	runes := []rune(mission)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return identity + " reversed the mission: " + strings.ToLower(string(runes))
}
`

func TestInterpreterLoadsProcess(t *testing.T) {
	in := NewInterpreter()
	fn, err := in.Load(context.Background(), reverseCapability)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	got := fn("Aurora", "abc")
	if got != "Aurora reversed the mission: cba" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestInterpreterRejectsForbiddenImports(t *testing.T) {
	source := `import "os"

func Process(identity, mission string) string {
	return os.Getenv("HOME")
}
`
	in := NewInterpreter()
	if _, err := in.Load(context.Background(), source); err == nil {
		t.Fatal("expected forbidden-import error")
	} else if !strings.Contains(err.Error(), "forbidden imports") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInterpreterRejectsWrongSignature(t *testing.T) {
	source := `func Process(n int) int { return n }`

	in := NewInterpreter()
	if _, err := in.Load(context.Background(), source); err == nil {
		t.Fatal("expected wrong-signature error")
	}
}

func TestInterpreterRejectsMissingProcess(t *testing.T) {
	source := `func Run(identity, mission string) string { return identity }`

	in := NewInterpreter()
	if _, err := in.Load(context.Background(), source); err == nil {
		t.Fatal("expected missing-Process error")
	}
}

func TestCodeUpdaterLoadsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reverse.go")
	if err := os.WriteFile(path, []byte(reverseCapability), 0o644); err != nil {
		t.Fatalf("write capability: %v", err)
	}

	reg := registry.New(nil)
	u, err := NewCodeUpdater(dir, reg, nil)
	if err != nil {
		t.Fatalf("NewCodeUpdater: %v", err)
	}
	defer u.Close()

	if err := u.DynamicUpdate(context.Background()); err != nil {
		t.Fatalf("DynamicUpdate: %v", err)
	}

	h := reg.Handle(registry.Name("reverse"))
	if h == nil || !h.Available {
		t.Fatal("capability 'reverse' not registered")
	}
	if _, ok := h.Provider.(registry.Cognition); !ok {
		t.Fatalf("registered provider does not satisfy the cognition contract: %T", h.Provider)
	}
}

func TestCodeUpdaterSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.go")
	bad := filepath.Join(dir, "bad.go")
	if err := os.WriteFile(good, []byte(reverseCapability), 0o644); err != nil {
		t.Fatalf("write capability: %v", err)
	}
	if err := os.WriteFile(bad, []byte("this is not go"), 0o644); err != nil {
		t.Fatalf("write capability: %v", err)
	}

	reg := registry.New(nil)
	u, err := NewCodeUpdater(dir, reg, nil)
	if err != nil {
		t.Fatalf("NewCodeUpdater: %v", err)
	}
	defer u.Close()

	if err := u.DynamicUpdate(context.Background()); err != nil {
		t.Fatalf("DynamicUpdate should not fail on a broken file: %v", err)
	}
	if h := reg.Handle(registry.Name("good")); h == nil || !h.Available {
		t.Error("good capability not registered")
	}
	if h := reg.Handle(registry.Name("bad")); h != nil {
		t.Error("broken capability should not be registered")
	}
}

func TestCodeUpdaterPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(nil)
	u, err := NewCodeUpdater(dir, reg, nil)
	if err != nil {
		t.Fatalf("NewCodeUpdater: %v", err)
	}
	defer u.Close()

	// First update on an empty dir registers nothing.
	if err := u.DynamicUpdate(context.Background()); err != nil {
		t.Fatalf("DynamicUpdate: %v", err)
	}
	if h := reg.Handle(registry.Name("late")); h != nil {
		t.Fatal("unexpected capability before file exists")
	}

	// Simulate a watcher event for a file written after startup.
	path := filepath.Join(dir, "late.go")
	if err := os.WriteFile(path, []byte(reverseCapability), 0o644); err != nil {
		t.Fatalf("write capability: %v", err)
	}
	u.mu.Lock()
	u.pending[path] = struct{}{}
	u.mu.Unlock()

	if err := u.DynamicUpdate(context.Background()); err != nil {
		t.Fatalf("DynamicUpdate: %v", err)
	}
	if h := reg.Handle(registry.Name("late")); h == nil || !h.Available {
		t.Error("late capability not registered after update")
	}
}
