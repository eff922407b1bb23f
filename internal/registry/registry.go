package registry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// LoaderFunc produces a fresh provider instance. It is called on every
// load and reload, so implementations must be idempotent and must not
// hand back an instance that shares mutable sub-state with a previous
// generation.
type LoaderFunc func() (any, error)

// Registry is thread-safe and supports registration at runtime.
type Registry struct {
	logger *zap.Logger

	mu      sync.RWMutex
	loaders map[Name]LoaderFunc
	handles map[Name]*Handle
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:  logger,
		loaders: make(map[Name]LoaderFunc),
		handles: make(map[Name]*Handle),
	}
}

// Bind installs the loader used for a capability's load and reload.
// Binding does not load; the first EnsureLoaded does.
func (r *Registry) Bind(name Name, loader LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = loader
}

// EnsureLoaded loads or reloads every requested name and returns the
// current handle view. Failures are isolated per name: a failing loader
// yields an unavailable handle and the remaining names proceed. It never
// returns an error and always returns a handle for every requested name.
func (r *Registry) EnsureLoaded(names []Name) HandleMap {
	for _, name := range names {
		r.ensureOne(name)
	}
	return r.Handles()
}

func (r *Registry) ensureOne(name Name) {
	r.mu.Lock()
	loader, bound := r.loaders[name]
	prev, existed := r.handles[name]
	r.mu.Unlock()

	if !bound {
		if existed {
			// Dynamically registered capability: nothing to reload.
			return
		}
		r.install(newHandle(name, nil, fmt.Errorf("%w: %s", ErrNoLoader, name)))
		r.logger.Error("capability load failed",
			zap.String("capability", string(name)),
			zap.Error(ErrNoLoader))
		return
	}

	// Loader call happens outside the lock; loads are fast and
	// non-suspending by contract, but a misbehaving loader must not
	// stall Register calls from a running capability.
	instance, err := loader()
	if err == nil && instance == nil {
		err = ErrNilProvider
	}

	h := newHandle(name, instance, err)
	r.install(h)

	switch {
	case err != nil:
		r.logger.Error("capability load failed",
			zap.String("capability", string(name)),
			zap.Error(err))
	case existed && prev.Available:
		r.logger.Info("capability reloaded",
			zap.String("capability", string(name)),
			zap.String("handle", h.ID))
	default:
		r.logger.Info("capability loaded",
			zap.String("capability", string(name)),
			zap.String("handle", h.ID))
	}
}

func (r *Registry) install(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.Name] = h
}

// Register adds or replaces a capability with an already-constructed
// provider. This is the auditable path a code-generation provider uses to
// introduce a brand-new capability mid-cycle.
func (r *Registry) Register(name Name, provider any) error {
	if name == "" {
		return ErrNameEmpty
	}
	if provider == nil {
		return ErrNilProvider
	}
	r.install(newHandle(name, provider, nil))
	r.logger.Info("capability registered",
		zap.String("capability", string(name)))
	return nil
}

// Swap is Register for an existing name; kept as a separate verb so call
// sites read as intent.
func (r *Registry) Swap(name Name, provider any) error {
	return r.Register(name, provider)
}

// Handles returns a copy of the current handle map.
func (r *Registry) Handles() HandleMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(HandleMap, len(r.handles))
	for name, h := range r.handles {
		m[name] = h
	}
	return m
}

// Handle returns the current handle for one name, or nil.
func (r *Registry) Handle(name Name) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[name]
}

// Names returns every known capability name, fixed and dynamic.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Name, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	return names
}
