package kvstore

import (
	"fmt"
	"sync"
)

// Memory is an in-process Store, used by tests and the "memory" backend.
type Memory struct {
	mu       sync.RWMutex
	values   map[string][]byte
	readOnly bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string][]byte{}}
}

// SetReadOnly makes every subsequent write fail, simulating an exhausted
// quota or disabled storage.
func (m *Memory) SetReadOnly(ro bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readOnly = ro
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return fmt.Errorf("%w: %s: store is read-only", ErrWrite, key)
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return fmt.Errorf("%w: %s: store is read-only", ErrWrite, key)
	}
	delete(m.values, key)
	return nil
}

// SetMany writes all values or none.
func (m *Memory) SetMany(values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return fmt.Errorf("%w: store is read-only", ErrWrite)
	}
	for k, v := range values {
		b := make([]byte, len(v))
		copy(b, v)
		m.values[k] = b
	}
	return nil
}
