package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalcore/reactive"
	"github.com/signalcore/reactive/rxconfig"
	"github.com/signalcore/reactive/rxmetrics"
)

var tickerCmd = &cobra.Command{
	Use:   "ticker",
	Short: "Run a repeating scheduler and print drift-compensated ticks",
	RunE:  runTicker,
}

func init() {
	tickerCmd.Flags().Duration("interval", 500*time.Millisecond, "tick interval")
	tickerCmd.Flags().Int("ticks", 10, "number of ticks to print before exiting")
}

func runTicker(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	count, _ := cmd.Flags().GetInt("ticks")

	configPath, _ := cmd.Flags().GetString("config")
	cfg := rxconfig.Default()
	if configPath != "" {
		loaded, err := rxconfig.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	metrics := rxmetrics.NewRecorder()
	reactive.UseMetrics(metrics)

	leeway := 25 * time.Millisecond
	for _, sc := range cfg.Schedulers {
		if sc.Kind == "delay" && sc.Leeway > 0 {
			leeway = sc.Leeway
		}
	}

	sched := reactive.NewDelayScheduler("ticker", metrics)

	done := make(chan struct{})
	remaining := count
	var repeating reactive.Disposable
	repeating = sched.ScheduleRepeating(time.Now().Add(interval), interval, leeway, func() {
		remaining--
		fmt.Printf("tick %d (fired %d total)\n", count-remaining, sched.Ticks())
		if remaining <= 0 {
			repeating.Dispose()
			close(done)
		}
	})

	<-done
	return nil
}
