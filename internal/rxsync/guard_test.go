package rxsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReentranceGuard(t *testing.T) {
	t.Run("Enter followed by Exit on the same goroutine succeeds without reentrant flag", func(t *testing.T) {
		var g ReentranceGuard
		reentrant := g.Enter()
		assert.False(t, reentrant)
		g.Exit()
	})

	t.Run("Enter while already held by the same goroutine reports reentrant and does not block", func(t *testing.T) {
		var g ReentranceGuard
		g.Enter()
		defer g.Exit()

		reentrant := g.Enter()
		assert.True(t, reentrant)
	})

	t.Run("a different goroutine blocks until Exit is called", func(t *testing.T) {
		var g ReentranceGuard
		g.Enter()

		var wg sync.WaitGroup
		entered := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Enter()
			close(entered)
			g.Exit()
		}()

		select {
		case <-entered:
			t.Fatal("other goroutine entered before the holder exited")
		case <-time.After(20 * time.Millisecond):
		}

		g.Exit()
		wg.Wait()
	})
}
