package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutableProperty(t *testing.T) {
	t.Run("Set updates Value and emits on the signal", func(t *testing.T) {
		p := NewMutableProperty(0)

		var got []int
		p.Signal().ObserveValues(func(v int) { got = append(got, v) })

		p.Set(1)
		p.Set(2)

		assert.Equal(t, 2, p.Value())
		assert.Equal(t, []int{1, 2}, got)
	})

	t.Run("Modify sees the current value and returns what it produced", func(t *testing.T) {
		p := NewMutableProperty(10)
		next := p.Modify(func(v int) int { return v + 5 })

		assert.Equal(t, 15, next)
		assert.Equal(t, 15, p.Value())
	})

	t.Run("reentrant Modify raises FaultReentrantModify instead of deadlocking", func(t *testing.T) {
		p := NewMutableProperty(0)

		assert.Panics(t, func() {
			p.Modify(func(v int) int {
				return p.Modify(func(v int) int { return v + 1 })
			})
		})

		// the fault must unwind cleanly: the property's own lock is not left
		// held by the aborted outer call.
		assert.Equal(t, 0, p.Value())
		assert.NotPanics(t, func() { p.Set(7) })
		assert.Equal(t, 7, p.Value())
	})

	t.Run("Modify from different goroutines is serialized, not rejected", func(t *testing.T) {
		p := NewMutableProperty(0)
		done := make(chan struct{})

		go func() {
			p.Modify(func(v int) int { return v + 1 })
			close(done)
		}()
		<-done

		assert.Equal(t, 1, p.Value())
	})

	t.Run("Producer sends the current value then future changes", func(t *testing.T) {
		p := NewMutableProperty(0)
		p.Set(1)

		var got []int
		p.Producer().StartWithValues(func(v int) { got = append(got, v) })

		p.Set(2)
		p.Set(3)

		assert.Equal(t, []int{1, 2, 3}, got)
	})

	t.Run("Bind writes every emitted value and ends when the source completes", func(t *testing.T) {
		p := NewMutableProperty(0)
		source := FromSlice[int, NoError]([]int{1, 2, 3})

		p.Bind(source)

		assert.Equal(t, 3, p.Value())
	})
}

func TestReadOnlyPropertyDerivations(t *testing.T) {
	t.Run("MapProperty tracks a transform of the source", func(t *testing.T) {
		p := NewMutableProperty(1)
		doubled := MapProperty(p.ReadOnly(), func(n int) int { return n * 2 })

		assert.Equal(t, 2, doubled.Value())

		p.Set(5)
		assert.Equal(t, 10, doubled.Value())
	})

	t.Run("CombineLatestProperty pairs the latest of both sources", func(t *testing.T) {
		a := NewMutableProperty(1)
		b := NewMutableProperty("x")
		combined := CombineLatestProperty[int, string](a.ReadOnly(), b.ReadOnly())

		assert.Equal(t, Pair[int, string]{First: 1, Second: "x"}, combined.Value())

		a.Set(2)
		assert.Equal(t, Pair[int, string]{First: 2, Second: "x"}, combined.Value())
	})

	t.Run("ZipProperty pairs changes in arrival order starting from both current values", func(t *testing.T) {
		a := NewMutableProperty(1)
		b := NewMutableProperty("x")
		zipped := ZipProperty[int, string](a.ReadOnly(), b.ReadOnly())

		assert.Equal(t, Pair[int, string]{First: 1, Second: "x"}, zipped.Value())

		a.Set(2)
		assert.Equal(t, Pair[int, string]{First: 1, Second: "x"}, zipped.Value()) // buffered, waiting on b
		b.Set("y")
		assert.Equal(t, Pair[int, string]{First: 2, Second: "y"}, zipped.Value())
	})
}
