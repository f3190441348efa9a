package store

import "sync"

// MemoryStore keeps every slot in memory. Data is lost on restart.
// Documents are held in encoded form so callers never share state with
// the store. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (m *MemoryStore) Load(slot string, v any) error {
	m.mu.RLock()
	data, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return decode(slot, data, v)
}

func (m *MemoryStore) Save(slot string, v any) error {
	b, err := encode(slot, v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = b
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
