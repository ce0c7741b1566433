package budget

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and dry runs that have
// no database at hand.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]TokenBudget
	phases map[string][]PhaseBudget
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]TokenBudget),
		phases: make(map[string][]PhaseBudget),
	}
}

// SetTokenBudget stores (or replaces) the venture-wide budget.
func (m *MemoryStore) SetTokenBudget(b TokenBudget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[b.VentureID] = b
}

// AddPhaseBudget stores a phase budget, replacing any with the same phase.
func (m *MemoryStore) AddPhaseBudget(b PhaseBudget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.phases[b.VentureID]
	for i := range list {
		if list[i].Phase == b.Phase {
			list[i] = b
			return
		}
	}
	m.phases[b.VentureID] = append(list, b)
}

// TokenBudget implements Store.
func (m *MemoryStore) TokenBudget(_ context.Context, ventureID string) (*TokenBudget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.tokens[ventureID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// PhaseBudget implements Store, returning the highest phase.
func (m *MemoryStore) PhaseBudget(_ context.Context, ventureID string) (*PhaseBudget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.phases[ventureID]
	if len(list) == 0 {
		return nil, nil
	}
	latest := list[0]
	for _, b := range list[1:] {
		if b.Phase > latest.Phase {
			latest = b
		}
	}
	return &latest, nil
}
