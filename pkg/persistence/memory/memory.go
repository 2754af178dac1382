package memory

import (
	"fmt"
	"sync"

	"github.com/Layr-Labs/sorted-merkle-go/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of ITreeStore.
//
// All data is stored in memory and will be lost when the process exits.
// Records are deep copied on the way in and out so callers cannot mutate
// stored state.
type MemoryPersistence struct {
	mu sync.RWMutex

	// tree id -> record
	trees map[string]*persistence.TreeRecord

	closed bool
}

var _ persistence.ITreeStore = (*MemoryPersistence)(nil)

// NewMemoryPersistence creates a new in-memory tree store.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		trees: make(map[string]*persistence.TreeRecord),
	}
}

// SaveTree persists a tree record.
func (m *MemoryPersistence) SaveTree(record *persistence.TreeRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil TreeRecord")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	m.trees[record.ID] = record.Clone()
	return nil
}

// LoadTree retrieves a tree record by ID.
func (m *MemoryPersistence) LoadTree(id string) (*persistence.TreeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	record, ok := m.trees[id]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

// ListTrees returns all tree records sorted by CreatedAt, then ID.
func (m *MemoryPersistence) ListTrees() ([]*persistence.TreeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	records := make([]*persistence.TreeRecord, 0, len(m.trees))
	for _, record := range m.trees {
		records = append(records, record.Clone())
	}
	persistence.SortTreeRecords(records)
	return records, nil
}

// DeleteTree removes a tree record. Missing IDs are not an error.
func (m *MemoryPersistence) DeleteTree(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	delete(m.trees, id)
	return nil
}

// Close marks the store closed. Safe to call multiple times.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck returns an error once the store is closed.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}
	return nil
}
