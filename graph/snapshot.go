package graph

import (
	"fmt"
	"sort"
	"sync"
)

// SnapshotStore keeps deep copies of graphs, identified by snapshot ID.
//
// Implementations must copy on Save and on Load so that stored snapshots
// never share variable storage with a live graph, and must be safe for
// concurrent use.
type SnapshotStore interface {
	// Save stores a copy of g under id, replacing any previous snapshot.
	Save(id string, g *Graph) error

	// Load returns a copy of the snapshot stored under id.
	// Returns ErrSnapshotNotFound if there is none.
	Load(id string) (*Graph, error)

	// Delete removes a snapshot. No error if it does not exist.
	Delete(id string) error

	// List returns the stored snapshot IDs in sorted order.
	List() ([]string, error)
}

// memorySnapshotStore keeps snapshots in process memory. They are lost when
// the process exits.
type memorySnapshotStore struct {
	graphs map[string]*Graph
	mu     sync.RWMutex
}

// NewMemorySnapshotStore creates a SnapshotStore backed by a map.
func NewMemorySnapshotStore() SnapshotStore {
	return &memorySnapshotStore{
		graphs: make(map[string]*Graph),
	}
}

func (m *memorySnapshotStore) Save(id string, g *Graph) error {
	snap := g.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.graphs[id] = snap
	return nil
}

func (m *memorySnapshotStore) Load(id string) (*Graph, error) {
	m.mu.RLock()
	g, exists := m.graphs[id]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return g.Snapshot(), nil
}

func (m *memorySnapshotStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.graphs, id)
	return nil
}

func (m *memorySnapshotStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.graphs))
	for id := range m.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// snapshotStores is the global registry of named SnapshotStore
// implementations. "memory" is registered by default.
var (
	snapshotStores = map[string]SnapshotStore{
		"memory": NewMemorySnapshotStore(),
	}
	mutex sync.RWMutex
)

// GetSnapshotStore retrieves a SnapshotStore by name from the registry.
func GetSnapshotStore(name string) (SnapshotStore, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	store, exists := snapshotStores[name]
	if !exists {
		return nil, fmt.Errorf("unknown snapshot store: %s", name)
	}
	return store, nil
}

// RegisterSnapshotStore adds or replaces a named SnapshotStore. Call it
// before creating graphs that reference the name in Config.Snapshots.
func RegisterSnapshotStore(name string, store SnapshotStore) {
	mutex.Lock()
	defer mutex.Unlock()

	snapshotStores[name] = store
}
