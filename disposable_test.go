package reactive

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionDisposable(t *testing.T) {
	t.Run("runs the action exactly once", func(t *testing.T) {
		var calls atomic.Int32
		d := NewDisposable(func() { calls.Add(1) })

		assert.False(t, d.IsDisposed())
		d.Dispose()
		d.Dispose()
		d.Dispose()

		assert.True(t, d.IsDisposed())
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("nil action is a legal no-op", func(t *testing.T) {
		d := NewDisposable(nil)
		assert.NotPanics(t, func() { d.Dispose() })
		assert.True(t, d.IsDisposed())
	})
}

func TestCompositeDisposable(t *testing.T) {
	t.Run("disposes every child exactly once", func(t *testing.T) {
		var a, b atomic.Int32
		c := NewCompositeDisposable(
			NewDisposable(func() { a.Add(1) }),
			NewDisposable(func() { b.Add(1) }),
		)

		c.Dispose()
		c.Dispose()

		assert.Equal(t, int32(1), a.Load())
		assert.Equal(t, int32(1), b.Load())
		assert.True(t, c.IsDisposed())
	})

	t.Run("adding a child after disposal tears it down immediately", func(t *testing.T) {
		c := NewCompositeDisposable()
		c.Dispose()

		var calls atomic.Int32
		c.Add(NewDisposable(func() { calls.Add(1) }))

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("removing a child drops it without disposing it", func(t *testing.T) {
		var calls atomic.Int32
		child := NewDisposable(func() { calls.Add(1) })
		c := NewCompositeDisposable(child)

		c.Remove(child)
		c.Dispose()

		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestSerialDisposable(t *testing.T) {
	t.Run("replacing the inner disposes the previous one", func(t *testing.T) {
		var first, second atomic.Int32
		s := NewSerialDisposable()

		s.SetInner(NewDisposable(func() { first.Add(1) }))
		s.SetInner(NewDisposable(func() { second.Add(1) }))

		assert.Equal(t, int32(1), first.Load())
		assert.Equal(t, int32(0), second.Load())

		s.Dispose()
		assert.Equal(t, int32(1), second.Load())
	})

	t.Run("setting inner after disposal disposes it immediately", func(t *testing.T) {
		s := NewSerialDisposable()
		s.Dispose()

		var calls atomic.Int32
		s.SetInner(NewDisposable(func() { calls.Add(1) }))

		assert.Equal(t, int32(1), calls.Load())
	})
}
