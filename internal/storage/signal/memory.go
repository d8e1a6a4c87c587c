package signal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexustrader/nexus/internal/core"
)

// MemoryStore is an in-memory signal store with a capacity cap.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string // insertion order, oldest first
	signals map[string]*core.Signal
	maxSize int
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		order:   make([]string, 0, maxSize),
		signals: make(map[string]*core.Signal, maxSize),
		maxSize: maxSize,
	}
}

// Save assigns the id and creation timestamp and stores the signal.
// Ids are never reused; the oldest signal is evicted over capacity.
func (m *MemoryStore) Save(ctx context.Context, sig *core.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sig.ID = uuid.NewString()
	sig.Timestamp = time.Now().UTC()

	stored := *sig
	m.signals[sig.ID] = &stored
	m.order = append(m.order, sig.ID)

	if m.maxSize > 0 && len(m.order) > m.maxSize {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.signals, oldest)
	}

	return nil
}

// GetByID retrieves a signal copy by id.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.signals[id]
	if !ok {
		return nil, core.ErrSignalNotFound
	}
	sig := *stored
	return &sig, nil
}

// Update applies fn to the stored signal under the store lock.
func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*core.Signal)) (*core.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.signals[id]
	if !ok {
		return nil, core.ErrSignalNotFound
	}
	fn(stored)
	sig := *stored
	return &sig, nil
}

// List returns matching signals, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]core.Signal, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		sig := m.signals[m.order[i]]
		if m.matches(sig, filter) {
			result = append(result, *sig)
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []core.Signal{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching signals.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, sig := range m.signals {
		if m.matches(sig, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) matches(sig *core.Signal, filter ListFilter) bool {
	if filter.Instrument != "" && sig.Instrument != filter.Instrument {
		return false
	}
	if filter.Source != "" && sig.Source != filter.Source {
		return false
	}
	if filter.Status != "" && sig.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && sig.Timestamp.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && sig.Timestamp.After(filter.To) {
		return false
	}
	return true
}
