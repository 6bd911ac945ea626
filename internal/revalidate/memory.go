package revalidate

import (
	"context"
	"sync"
	"time"
)

// MemoryManager fans invalidated view paths out to in-process subscribers.
// Used when no redis is configured and by local development servers.
type MemoryManager struct {
	mu   sync.Mutex
	subs map[string][]chan string // view path -> subscriber channels
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		subs: make(map[string][]chan string),
	}
}

// Subscribe registers interest in a view path. The returned cancel removes
// the subscription; the channel is left open because an in-flight Invalidate
// may still be sending on it.
func (m *MemoryManager) Subscribe(path string) (<-chan string, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan string, 1)
	m.subs[path] = append(m.subs[path], ch)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subscribers := m.subs[path]
		for i, sub := range subscribers {
			if sub == ch {
				m.subs[path] = append(subscribers[:i], subscribers[i+1:]...)
				break
			}
		}
	}

	return ch, cancel
}

// Invalidate sends outside the lock so a stalled subscriber delays only its
// own notification, not other paths or Subscribe/cancel.
func (m *MemoryManager) Invalidate(ctx context.Context, path string) {
	m.mu.Lock()
	subscribers := append([]chan string(nil), m.subs[path]...)
	m.mu.Unlock()

	for _, sub := range subscribers {
		select {
		case sub <- path:
		case <-time.After(500 * time.Millisecond):
			// slow subscriber, drop the notification
		}
	}
}
