package variable

import (
	"fmt"
	"sort"
	"sync"
)

// Factory rebuilds a variable of one kind from the attributes reported by its
// Describer and its stored values. Factories must reject metadata that cannot
// yield a stable identity.
type Factory func(attrs map[string]any, values []float64) (Variable, error)

type registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

var kinds = &registry{
	factories: make(map[string]Factory),
}

// Register associates a type name with the factory for its kind.
// Returns ErrAlreadyRegistered if the name is taken.
// Thread-safe for concurrent registration.
func Register(typeName string, factory Factory) error {
	if typeName == "" {
		return ErrEmptyType
	}

	kinds.mu.Lock()
	defer kinds.mu.Unlock()

	if _, exists := kinds.factories[typeName]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, typeName)
	}

	kinds.factories[typeName] = factory
	return nil
}

// Lookup returns the factory registered for a type name.
func Lookup(typeName string) (Factory, bool) {
	kinds.mu.RLock()
	defer kinds.mu.RUnlock()

	f, exists := kinds.factories[typeName]
	return f, exists
}

// Build constructs a variable of the named kind.
// Returns ErrUnknownType if no factory is registered.
func Build(typeName string, attrs map[string]any, values []float64) (Variable, error) {
	factory, exists := Lookup(typeName)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	v, err := factory(attrs, values)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", typeName, err)
	}
	return v, nil
}

// Types returns the registered type names in sorted order.
func Types() []string {
	kinds.mu.RLock()
	defer kinds.mu.RUnlock()

	names := make([]string, 0, len(kinds.factories))
	for name := range kinds.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
