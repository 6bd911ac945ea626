package revalidate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManager_SubscribeAndInvalidate(t *testing.T) {
	t.Run("Subscriber receives the invalidated path", func(t *testing.T) {
		manager := NewMemoryManager()
		ch, cancel := manager.Subscribe("/cults")
		defer cancel()

		manager.Invalidate(context.Background(), "/cults")

		select {
		case path := <-ch:
			assert.Equal(t, "/cults", path)
		case <-time.After(time.Second):
			t.Fatal("expected a notification")
		}
	})

	t.Run("Other paths are not notified", func(t *testing.T) {
		manager := NewMemoryManager()
		ch, cancel := manager.Subscribe("/cults")
		defer cancel()

		manager.Invalidate(context.Background(), "/feed")

		select {
		case path := <-ch:
			t.Fatalf("unexpected notification for %q", path)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("All subscribers of a path are notified", func(t *testing.T) {
		manager := NewMemoryManager()
		first, cancelFirst := manager.Subscribe("/feed")
		defer cancelFirst()
		second, cancelSecond := manager.Subscribe("/feed")
		defer cancelSecond()

		manager.Invalidate(context.Background(), "/feed")

		for _, ch := range []<-chan string{first, second} {
			select {
			case path := <-ch:
				assert.Equal(t, "/feed", path)
			case <-time.After(time.Second):
				t.Fatal("expected a notification")
			}
		}
	})

	t.Run("Cancel stops delivery", func(t *testing.T) {
		manager := NewMemoryManager()
		ch, cancel := manager.Subscribe("/cults")

		cancel()
		manager.Invalidate(context.Background(), "/cults")

		select {
		case path := <-ch:
			t.Fatalf("unexpected notification for %q after cancel", path)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Invalidate without subscribers is a no-op", func(t *testing.T) {
		manager := NewMemoryManager()
		manager.Invalidate(context.Background(), "/nobody")
	})

	t.Run("A stalled subscriber does not block other paths", func(t *testing.T) {
		manager := NewMemoryManager()

		// fill the stalled subscriber's buffer and never drain it
		stalled, cancelStalled := manager.Subscribe("/slow")
		defer cancelStalled()
		manager.Invalidate(context.Background(), "/slow")
		require.Len(t, stalled, 1)

		// this delivery stalls in its timed send for up to 500ms
		started := make(chan struct{})
		go func() {
			close(started)
			manager.Invalidate(context.Background(), "/slow")
		}()
		<-started
		time.Sleep(20 * time.Millisecond) // let the goroutine reach its send

		ch, cancel := manager.Subscribe("/fast")
		defer cancel()
		manager.Invalidate(context.Background(), "/fast")

		select {
		case path := <-ch:
			assert.Equal(t, "/fast", path)
		case <-time.After(200 * time.Millisecond):
			t.Fatal("invalidation blocked behind a stalled subscriber")
		}
	})
}
