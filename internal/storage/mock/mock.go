package mock

import (
	"context"
	"sync"

	"github.com/jon4hz/bixblion/internal/storage"
)

var _ storage.Store = (*MockStore)(nil)

// MockStore is an in-memory implementation of storage.Store for testing.
type MockStore struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool

	// Error simulation
	GetError    error
	SetError    error
	DeleteError error
	CloseError  error

	// SetCalls counts successful writes per key.
	SetCalls map[string]int
}

// NewMockStore creates a new MockStore instance.
func NewMockStore() *MockStore {
	return &MockStore{
		values:   make(map[string]string),
		SetCalls: make(map[string]int),
	}
}

// Reset clears all data and errors from the mock store.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[string]string)
	m.SetCalls = make(map[string]int)
	m.closed = false

	m.GetError = nil
	m.SetError = nil
	m.DeleteError = nil
	m.CloseError = nil
}

func (m *MockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetError != nil {
		return "", m.GetError
	}
	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *MockStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetError != nil {
		return m.SetError
	}
	m.values[key] = value
	m.SetCalls[key]++
	return nil
}

func (m *MockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.values, key)
	return nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return m.CloseError
}

// Raw returns the stored value for key, bypassing error simulation.
func (m *MockStore) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok
}

// SetRaw stores value for key, bypassing error simulation and call counting.
func (m *MockStore) SetRaw(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
}

// Closed reports whether Close has been called.
func (m *MockStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.closed
}
