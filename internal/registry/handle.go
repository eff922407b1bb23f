package registry

import (
	"time"

	"github.com/google/uuid"
)

// Handle is the registry's record for one capability. A handle is replaced
// wholesale on every reload and never mutated in place, so a reference
// captured at cycle start stays coherent for the whole cycle.
type Handle struct {
	// Name of the capability this handle backs.
	Name Name

	// Provider is the loaded instance, or nil when the last load failed.
	Provider any

	// Available is true iff the last load or reload succeeded.
	Available bool

	// Err records the load failure when Available is false.
	Err error

	// ID distinguishes handle generations across reloads.
	ID string

	// LoadedAt is when this generation was produced.
	LoadedAt time.Time
}

func newHandle(name Name, provider any, err error) *Handle {
	return &Handle{
		Name:      name,
		Provider:  provider,
		Available: err == nil,
		Err:       err,
		ID:        uuid.NewString(),
		LoadedAt:  time.Now(),
	}
}

// HandleMap is the per-cycle view of the registry handed to task adapters.
// It is a copy; concurrent registry mutation cannot change it mid-cycle.
type HandleMap map[Name]*Handle

// provider returns the named provider if it is available and implements T.
func provider[T any](m HandleMap, name Name) (T, bool) {
	var zero T
	h, ok := m[name]
	if !ok || !h.Available || h.Provider == nil {
		return zero, false
	}
	p, ok := h.Provider.(T)
	if !ok {
		return zero, false
	}
	return p, true
}

// Cognition returns the cognition provider, if usable this cycle.
func (m HandleMap) Cognition() (Cognition, bool) {
	return provider[Cognition](m, NameCognition)
}

// Learning returns the learning provider, if usable this cycle.
func (m HandleMap) Learning() (Learning, bool) {
	return provider[Learning](m, NameLearning)
}

// CodeGen returns the code-generation provider, if usable this cycle.
func (m HandleMap) CodeGen() (CodeGen, bool) {
	return provider[CodeGen](m, NameCodeGen)
}

// Research returns the research provider, if usable this cycle.
func (m HandleMap) Research() (Research, bool) {
	return provider[Research](m, NameResearch)
}

// Personality returns the personality provider, if usable this cycle.
func (m HandleMap) Personality() (Personality, bool) {
	return provider[Personality](m, NamePersonality)
}

// Memory returns the memory collaborator, if usable this cycle.
func (m HandleMap) Memory() (Memory, bool) {
	return provider[Memory](m, NameMemory)
}
