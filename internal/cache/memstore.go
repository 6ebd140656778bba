package cache

import "sync"

// MemStore is a thread-safe in-memory Store. Values are copied on the way in
// and out so callers cannot alias stored snapshots.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [studyID][key]value
	data map[string]map[string][]byte
}

// NewMemStore initializes an empty store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]map[string][]byte)}
}

func (m *MemStore) Get(studyID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	study, ok := m.data[studyID]
	if !ok {
		return nil, ErrKeyNotFound
	}
	val, ok := study[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), val...), nil
}

func (m *MemStore) Set(studyID, key string, value []byte) error {
	if err := checkName("study id", studyID); err != nil {
		return err
	}
	if err := checkName("key", key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[studyID] == nil {
		m.data[studyID] = make(map[string][]byte)
	}
	m.data[studyID][key] = append([]byte(nil), value...)
	return nil
}

func (m *MemStore) Delete(studyID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.data[studyID]; ok {
		delete(s, key)
	}
	return nil
}
