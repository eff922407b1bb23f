package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"aurora/internal/narrative"
	"aurora/internal/registry"
)

// CodeUpdater watches a capability directory for dropped-in Go source and
// turns each file into a live capability. Sources are interpreted, never
// compiled: a file named reflect.go that exports
//
//	func Process(identity, mission string) string
//
// becomes the capability "reflect", registered on the shared registry and
// callable from the next cycle on. Rewriting a file re-registers it, which
// swaps the handle in place.
type CodeUpdater struct {
	dir     string
	reg     *registry.Registry
	interp  *Interpreter
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	scanned bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewCodeUpdater creates the updater and starts watching dir. The
// directory is created if missing; nothing is loaded until the first
// DynamicUpdate call.
func NewCodeUpdater(dir string, reg *registry.Registry, logger *zap.Logger) (*CodeUpdater, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("capability dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("capability watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	u := &CodeUpdater{
		dir:     dir,
		reg:     reg,
		interp:  NewInterpreter(),
		watcher: watcher,
		logger:  logger,
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	go u.collect()
	return u, nil
}

// collect drains watcher events into the pending set. Loading happens on
// the cycle's schedule, not the filesystem's.
func (u *CodeUpdater) collect() {
	for {
		select {
		case ev, ok := <-u.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if filepath.Ext(ev.Name) != ".go" {
				continue
			}
			u.mu.Lock()
			u.pending[ev.Name] = struct{}{}
			u.mu.Unlock()
		case err, ok := <-u.watcher.Errors:
			if !ok {
				return
			}
			u.logger.Warn("capability watcher error", zap.Error(err))
		case <-u.done:
			return
		}
	}
}

// DynamicUpdate loads every capability source that appeared since the
// last call. The first call also scans the directory so files present
// before startup are picked up. A file that fails to load is logged and
// skipped; it does not fail the update.
func (u *CodeUpdater) DynamicUpdate(ctx context.Context) error {
	paths, err := u.takePending()
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := u.loadFile(ctx, path); err != nil {
			u.logger.Warn("dynamic capability rejected",
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
		}
	}
	return nil
}

func (u *CodeUpdater) takePending() ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.scanned {
		entries, err := os.ReadDir(u.dir)
		if err != nil {
			return nil, fmt.Errorf("scan capability dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
				continue
			}
			u.pending[filepath.Join(u.dir, entry.Name())] = struct{}{}
		}
		u.scanned = true
	}

	paths := make([]string, 0, len(u.pending))
	for path := range u.pending {
		paths = append(paths, path)
	}
	u.pending = make(map[string]struct{})
	return paths, nil
}

func (u *CodeUpdater) loadFile(ctx context.Context, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capability source: %w", err)
	}

	fn, err := u.interp.Load(ctx, string(source))
	if err != nil {
		return err
	}

	name := registry.Name(strings.TrimSuffix(filepath.Base(path), ".go"))
	cap := &dynamicCapability{name: name, fn: fn}
	if err := u.reg.Register(name, cap); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	u.logger.Info("dynamic capability installed",
		zap.String("capability", string(name)),
		zap.String("file", filepath.Base(path)))
	return nil
}

// Close stops the watcher goroutine.
func (u *CodeUpdater) Close() error {
	var err error
	u.closeOnce.Do(func() {
		close(u.done)
		err = u.watcher.Close()
	})
	return err
}

// dynamicCapability adapts an interpreted Process function to the
// cognition contract so dynamic capabilities can be exercised like any
// other provider.
type dynamicCapability struct {
	name registry.Name
	fn   CapabilityFunc
}

func (d *dynamicCapability) Process(_ context.Context, snap narrative.Snapshot) (string, error) {
	return fmt.Sprintf("[%s via %s] %s", snap.Identity, d.name, d.fn(snap.Identity, snap.Mission)), nil
}
