package registry

import "errors"

var (
	// ErrNoLoader means EnsureLoaded was asked for a name that was never
	// bound and never registered dynamically.
	ErrNoLoader = errors.New("registry: no loader bound for capability")

	// ErrNilProvider means a loader returned a nil instance without an error.
	ErrNilProvider = errors.New("registry: loader returned nil provider")

	// ErrNameEmpty means Register was called with an empty capability name.
	ErrNameEmpty = errors.New("registry: capability name is empty")
)
