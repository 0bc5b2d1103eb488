package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalcore/reactive"
)

var raceCmd = &cobra.Command{
	Use:   "race",
	Short: "flatMap(race) over two delayed producers, keeping only the winner",
	RunE:  runRace,
}

func runRace(cmd *cobra.Command, _ []string) error {
	sched := reactive.NewDelayScheduler("race-demo", nil)

	delays := map[int]struct {
		wait  time.Duration
		label string
	}{
		0: {150 * time.Millisecond, "slow"},
		1: {30 * time.Millisecond, "fast"},
	}

	outer := reactive.FromSlice[int, reactive.NoError]([]int{0, 1})
	winner := reactive.FlatMap(outer, reactive.FlatMapRace, func(i int) reactive.SignalProducer[string, reactive.NoError] {
		d := delays[i]
		return delayedValue(sched, d.wait, d.label)
	})

	done := make(chan struct{})
	winner.Start(reactive.NewObserverFuncs[string, reactive.NoError](func(v string) {
		fmt.Printf("winner: %s\n", v)
	}, nil, func() {
		close(done)
	}, func() {
		close(done)
	}))

	<-done
	return nil
}

func delayedValue(sched reactive.Scheduler, d time.Duration, label string) reactive.SignalProducer[string, reactive.NoError] {
	return reactive.NewSignalProducer(func(o reactive.Observer[string, reactive.NoError], lt *reactive.Lifetime) {
		lt.Add(sched.ScheduleAfter(time.Now().Add(d), func() {
			o.SendValue(label)
			o.SendCompleted()
		}))
	})
}
