package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		e := Value[int, error](42)
		assert.Equal(t, KindValue, e.Kind())
		assert.False(t, e.IsTerminal())

		v, ok := e.Val()
		assert.True(t, ok)
		assert.Equal(t, 42, v)

		_, ok = e.Err()
		assert.False(t, ok)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		e := Failed[int](assertError("boom"))
		assert.Equal(t, KindFailed, e.Kind())
		assert.True(t, e.IsTerminal())

		err, ok := e.Err()
		assert.True(t, ok)
		assert.EqualError(t, err, "boom")
	})

	t.Run("completed and interrupted are terminal and valueless", func(t *testing.T) {
		c := Completed[int, error]()
		i := Interrupted[int, error]()

		assert.True(t, c.IsTerminal())
		assert.True(t, i.IsTerminal())

		_, ok := c.Val()
		assert.False(t, ok)
		_, ok = i.Val()
		assert.False(t, ok)
	})

	t.Run("Map transforms a value event and leaves terminals shaped the same", func(t *testing.T) {
		e := Value[int, error](3)
		mapped := Map(e, func(n int) string { return "n" })
		v, ok := mapped.Val()
		assert.True(t, ok)
		assert.Equal(t, "n", v)

		term := Completed[int, error]()
		mappedTerm := Map(term, func(int) string { return "unused" })
		assert.Equal(t, KindCompleted, mappedTerm.Kind())
	})

	t.Run("MapError transforms a failure's error and leaves other kinds alone", func(t *testing.T) {
		e := Failed[int](assertError("x"))
		mapped := MapError(e, func(err assertError) string { return string(err) })
		err, ok := mapped.Err()
		assert.True(t, ok)
		assert.Equal(t, "x", err)

		v := Value[int, assertError](1)
		mappedV := MapError(v, func(assertError) string { return "unused" })
		assert.Equal(t, KindValue, mappedV.Kind())
	})
}

type assertError string

func (e assertError) Error() string { return string(e) }
