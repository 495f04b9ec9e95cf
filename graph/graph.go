// Package graph holds the variables of an estimation problem, keyed by
// identity.
//
// Variables coming from independent measurements are merged purely by key:
// adding a variable whose key is already present keeps the existing instance
// and reports that nothing was inserted. Snapshots deep-copy every variable so
// algorithms can branch state without disturbing the live graph.
//
//	g := graph.NewWithDeps("odometry", observability.NoOpObserver{}, nil)
//	p, _ := kinds.NewPoint2D(kinds.At(stamp), 1, 2)
//	inserted, err := g.Add(p)
//
// The graph guards its index with one read/write mutex and the storage of the
// variables it holds with another. Code that reads stored values while an
// engine may be writing them goes through Read; code that writes them goes
// through Write. Snapshot and Update take the storage lock themselves.
package graph

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/observability"
	"github.com/tailored-agentic-units/fuse/variable"
)

// Graph is a keyed collection of variables.
type Graph struct {
	name      string
	variables map[identity.Key]variable.Variable
	observer  observability.Observer
	snapshots SnapshotStore
	mu        sync.RWMutex
	storage   sync.RWMutex
}

// New creates a Graph from configuration, resolving the observer and the
// snapshot store through their registries.
func New(cfg Config) (*Graph, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	var store SnapshotStore
	if cfg.Snapshots != "" {
		store, err = GetSnapshotStore(cfg.Snapshots)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve snapshot store: %w", err)
		}
	}

	return NewWithDeps(cfg.Name, observability.Filter(observer, cfg.Level), store), nil
}

// NewWithDeps creates a Graph with explicit dependencies. A nil observer
// discards events; a nil store disables Checkpoint.
func NewWithDeps(name string, observer observability.Observer, store SnapshotStore) *Graph {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Graph{
		name:      name,
		variables: make(map[identity.Key]variable.Variable),
		observer:  observer,
		snapshots: store,
	}
}

// Name returns the graph identifier used in events.
func (g *Graph) Name() string {
	return g.name
}

// Add inserts v, taking ownership of it. If a variable with the same key is
// already present the existing instance is kept and Add returns false.
//
// Variables that violate the storage contract are rejected with
// variable.ErrContract. A key held by a variable of another kind is
// rejected with ErrKindConflict.
func (g *Graph) Add(v variable.Variable) (bool, error) {
	if variable.IsNil(v) {
		return false, ErrNilVariable
	}
	if err := variable.Check(v); err != nil {
		return false, err
	}

	key := v.ID()

	g.mu.Lock()
	existing, exists := g.variables[key]
	if exists {
		g.mu.Unlock()

		if !variable.SameKind(existing, v) {
			return false, fmt.Errorf("%w: %s is %s, got %s", ErrKindConflict, key, existing.Type(), v.Type())
		}

		g.emit(EventVariableMerge, observability.LevelVerbose, map[string]any{
			"id":   key.String(),
			"type": v.Type(),
		})
		return false, nil
	}

	g.variables[key] = v
	g.mu.Unlock()

	g.emit(EventVariableAdd, observability.LevelVerbose, map[string]any{
		"id":   key.String(),
		"type": v.Type(),
		"size": v.Size(),
	})
	return true, nil
}

// Get returns the variable with the given key.
func (g *Graph) Get(key identity.Key) (variable.Variable, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, exists := g.variables[key]
	return v, exists
}

// Has reports whether a variable with the given key is present.
func (g *Graph) Has(key identity.Key) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.variables[key]
	return exists
}

// Remove deletes the variable with the given key and reports whether it was
// present. The caller must not hand the removed variable's storage to an
// engine afterwards unless it keeps the variable alive itself.
func (g *Graph) Remove(key identity.Key) bool {
	g.mu.Lock()
	v, exists := g.variables[key]
	delete(g.variables, key)
	g.mu.Unlock()

	if exists {
		g.emit(EventVariableRemove, observability.LevelVerbose, map[string]any{
			"id":   key.String(),
			"type": v.Type(),
		})
	}
	return exists
}

// Len returns the number of variables.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.variables)
}

// Keys returns every key in ascending order.
func (g *Graph) Keys() []identity.Key {
	g.mu.RLock()
	keys := make([]identity.Key, 0, len(g.variables))
	for k := range g.variables {
		keys = append(keys, k)
	}
	g.mu.RUnlock()

	slices.SortFunc(keys, identity.Key.Compare)
	return keys
}

// All iterates over the variables in ascending key order. The set of
// variables is fixed when iteration starts; the graph is not locked while
// the loop body runs.
func (g *Graph) All() iter.Seq[variable.Variable] {
	return func(yield func(variable.Variable) bool) {
		for _, v := range g.sorted() {
			if !yield(v) {
				return
			}
		}
	}
}

// OfType returns the variables of one kind in ascending key order.
func (g *Graph) OfType(typeName string) []variable.Variable {
	var out []variable.Variable
	for _, v := range g.sorted() {
		if v.Type() == typeName {
			out = append(out, v)
		}
	}
	return out
}

// Read runs fn while holding the storage read lock. Stored values read inside
// fn are not modified by Write, Update or a borrowing engine until fn returns.
func (g *Graph) Read(fn func()) {
	g.storage.RLock()
	defer g.storage.RUnlock()
	fn()
}

// Write runs fn while holding the storage write lock and returns its error.
// fn must not call Read, Write, Snapshot, Update or Checkpoint on g.
func (g *Graph) Write(fn func() error) error {
	g.storage.Lock()
	defer g.storage.Unlock()
	return fn()
}

// Snapshot returns a new Graph holding deep copies of every variable. The
// copy shares the observer and snapshot store but no variable storage.
func (g *Graph) Snapshot() *Graph {
	g.storage.RLock()
	g.mu.RLock()
	copied := make(map[identity.Key]variable.Variable, len(g.variables))
	for k, v := range g.variables {
		copied[k] = v.Clone()
	}
	g.mu.RUnlock()
	g.storage.RUnlock()

	g.emit(EventSnapshot, observability.LevelVerbose, map[string]any{
		"variables": len(copied),
	})

	return &Graph{
		name:      g.name,
		variables: copied,
		observer:  g.observer,
		snapshots: g.snapshots,
	}
}

// Update copies the stored values of every variable in source into the
// variable with the same key and kind in g, and returns how many variables
// were updated. Keys missing from g are ignored. Used to write the results of
// an optimization run on a snapshot back into the live graph.
//
// Values are read from source under its storage read lock and written into g
// under g's storage write lock; the two locks are never held together.
func (g *Graph) Update(source *Graph) int {
	if source == g {
		return 0
	}

	var values []variable.Variable
	source.Read(func() {
		for _, src := range source.sorted() {
			values = append(values, src.Clone())
		}
	})

	updated := 0
	g.storage.Lock()
	for _, src := range values {
		dst, exists := g.Get(src.ID())
		if !exists || !variable.SameKind(dst, src) {
			continue
		}
		copy(dst.Data(), src.Data())
		updated++
	}
	g.storage.Unlock()

	g.emit(EventUpdate, observability.LevelVerbose, map[string]any{
		"source":  source.name,
		"updated": updated,
	})
	return updated
}

// Checkpoint saves a snapshot of the graph to the configured SnapshotStore
// and returns its identifier. Checkpoints stay in the store until removed
// with DeleteCheckpoint.
func (g *Graph) Checkpoint() (string, error) {
	if g.snapshots == nil {
		return "", ErrNoSnapshotStore
	}

	id := uuid.Must(uuid.NewV7()).String()
	if err := g.snapshots.Save(id, g); err != nil {
		return "", fmt.Errorf("checkpoint %s: %w", g.name, err)
	}

	g.emit(EventCheckpointSave, observability.LevelInfo, map[string]any{
		"snapshot":  id,
		"variables": g.Len(),
	})
	return id, nil
}

// Restore loads a checkpoint taken with Checkpoint. The returned Graph is
// independent of both the store and g.
func (g *Graph) Restore(id string) (*Graph, error) {
	if g.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}

	restored, err := g.snapshots.Load(id)
	if err != nil {
		return nil, err
	}

	g.emit(EventCheckpointLoad, observability.LevelInfo, map[string]any{
		"snapshot":  id,
		"variables": restored.Len(),
	})
	return restored, nil
}

// DeleteCheckpoint removes a checkpoint from the configured SnapshotStore.
// Deleting an unknown identifier is not an error.
func (g *Graph) DeleteCheckpoint(id string) error {
	if g.snapshots == nil {
		return ErrNoSnapshotStore
	}

	if err := g.snapshots.Delete(id); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}

	g.emit(EventCheckpointDelete, observability.LevelInfo, map[string]any{
		"snapshot": id,
	})
	return nil
}

// Checkpoints returns the identifiers held by the configured SnapshotStore.
func (g *Graph) Checkpoints() ([]string, error) {
	if g.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}
	return g.snapshots.List()
}

func (g *Graph) sorted() []variable.Variable {
	g.mu.RLock()
	vars := make([]variable.Variable, 0, len(g.variables))
	for _, v := range g.variables {
		vars = append(vars, v)
	}
	g.mu.RUnlock()

	slices.SortFunc(vars, func(a, b variable.Variable) int {
		return a.ID().Compare(b.ID())
	})
	return vars
}

func (g *Graph) emit(typ observability.EventType, level observability.Level, data map[string]any) {
	data["graph"] = g.name
	observability.Emit(context.Background(), g.observer, typ, level, data)
}
