package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrampoline(t *testing.T) {
	t.Run("runs a single submission immediately", func(t *testing.T) {
		var tr Trampoline
		ran := false
		tr.Run(func() { ran = true })
		assert.True(t, ran)
	})

	t.Run("a reentrant Run from inside the running work is drained after it, not recursed into", func(t *testing.T) {
		var tr Trampoline
		var order []int

		tr.Run(func() {
			order = append(order, 1)
			tr.Run(func() { order = append(order, 2) })
			order = append(order, 3)
		})

		assert.Equal(t, []int{1, 3, 2}, order)
	})

	t.Run("multiple nested submissions drain in the order they were queued", func(t *testing.T) {
		var tr Trampoline
		var order []int

		tr.Run(func() {
			order = append(order, 1)
			tr.Run(func() { order = append(order, 2) })
			tr.Run(func() { order = append(order, 3) })
		})

		assert.Equal(t, []int{1, 2, 3}, order)
	})
}
