package mocks

import (
	"context"
	"sync"
)

// MockRevalidator records invalidated view paths for assertions.
type MockRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func NewMockRevalidator() *MockRevalidator {
	return &MockRevalidator{}
}

func (m *MockRevalidator) Invalidate(ctx context.Context, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
}

func (m *MockRevalidator) InvalidatedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}
