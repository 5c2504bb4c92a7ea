package services

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MockFileStorage is an in-memory FileStorage for testing
type MockFileStorage struct {
	files map[string][]byte
	mu    sync.RWMutex
}

// NewMockFileStorage creates an empty mock storage
func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{
		files: make(map[string][]byte),
	}
}

func (m *MockFileStorage) Store(ctx context.Context, data []byte, ext string) (string, error) {
	name := generateFileName(ext)

	m.mu.Lock()
	m.files[name] = append([]byte(nil), data...)
	m.mu.Unlock()

	return name, nil
}

func (m *MockFileStorage) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := checkFileName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, exists := m.files[name]
	m.mu.RUnlock()

	if !exists {
		return nil, notFound("file", "name", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockFileStorage) Delete(ctx context.Context, name string) (bool, error) {
	if err := checkFileName(name); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.files[name]
	delete(m.files, name)
	return exists, nil
}

// Put stores data under a fixed name (for seeding tests)
func (m *MockFileStorage) Put(name string, data []byte) {
	m.mu.Lock()
	m.files[name] = data
	m.mu.Unlock()
}

// FileExists checks if a file exists in mock storage
func (m *MockFileStorage) FileExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[name]
	return exists
}

// Count returns the number of stored files
func (m *MockFileStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
