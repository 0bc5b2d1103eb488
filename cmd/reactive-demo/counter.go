package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalcore/reactive"
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Bind a mutable property to a producer chain and print its changes",
	RunE:  runCounter,
}

func runCounter(cmd *cobra.Command, _ []string) error {
	prop := reactive.NewMutableProperty(0)

	doubled := reactive.MapProperty(prop.ReadOnly(), func(n int) int { return n * 2 })
	doubled.Producer().StartWithValues(func(n int) {
		fmt.Printf("doubled = %d\n", n)
	})

	ticks := reactive.FromSlice[int, reactive.NoError]([]int{1, 2, 3, 4, 5})
	prop.Bind(ticks)

	fmt.Printf("final value = %d\n", prop.Value())
	return nil
}
