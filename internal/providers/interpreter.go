package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Interpreter evaluates dropped-in capability source with Yaegi instead
// of shelling out to the Go toolchain. Interpretation cannot hang on
// module resolution and keeps the import surface restricted to a
// whitelist of side-effect-free stdlib packages.
type Interpreter struct {
	allowedPackages map[string]bool
}

// NewInterpreter creates a Yaegi-based capability interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		allowedPackages: map[string]bool{
			"strings":       true,
			"strconv":       true,
			"fmt":           true,
			"math":          true,
			"math/rand":     true,
			"regexp":        true,
			"encoding/json": true,
			"time":          true,
			"sort":          true,
			"bytes":         true,
			"unicode":       true,

			// Blocked on purpose: os, os/exec, net, net/http,
			// syscall, unsafe, io/ioutil, path/filepath.
		},
	}
}

// CapabilityFunc is the shape a dynamic capability source must export:
//
//	func Process(identity, mission string) string
type CapabilityFunc func(identity, mission string) string

// Load evaluates the source and extracts its Process function.
func (in *Interpreter) Load(ctx context.Context, source string) (CapabilityFunc, error) {
	if err := in.validateImports(source); err != nil {
		return nil, fmt.Errorf("invalid imports: %w", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib symbols: %w", err)
	}

	type evalResult struct {
		fn  CapabilityFunc
		err error
	}
	done := make(chan evalResult, 1)
	go func() {
		if _, err := i.Eval(wrapCapability(source)); err != nil {
			done <- evalResult{err: fmt.Errorf("evaluation failed: %w", err)}
			return
		}
		v, err := i.Eval("main.Process")
		if err != nil {
			done <- evalResult{err: fmt.Errorf("Process function not found: %w", err)}
			return
		}
		fn, ok := v.Interface().(func(string, string) string)
		if !ok {
			done <- evalResult{err: fmt.Errorf("Process has wrong signature (want func(identity, mission string) string)")}
			return
		}
		done <- evalResult{fn: CapabilityFunc(fn)}
	}()

	select {
	case res := <-done:
		return res.fn, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("capability load timed out: %w", ctx.Err())
	}
}

// validateImports checks that the source only imports whitelisted
// packages.
func (in *Interpreter) validateImports(source string) error {
	var imports []string
	inBlock := false
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, ")"):
			inBlock = false
		case inBlock && trimmed != "":
			imports = append(imports, strings.Trim(trimmed, `"`))
		case strings.HasPrefix(trimmed, "import "):
			imports = append(imports, strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`))
		}
	}

	var forbidden []string
	for _, pkg := range imports {
		if !in.allowedPackages[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %v", forbidden)
	}
	return nil
}

// wrapCapability wraps bare source in a main package if needed.
func wrapCapability(source string) string {
	if strings.Contains(source, "package main") {
		return source
	}
	return "package main\n\n" + source
}
