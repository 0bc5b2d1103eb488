package main

import (
	"github.com/spf13/cobra"

	"github.com/signalcore/reactive/rxlog"
)

var rootCmd = &cobra.Command{
	Use:   "reactive-demo",
	Short: "Demonstrates the reactive signal/producer/property runtime",
	Version: "dev",
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to a scheduler config YAML file")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(tickerCmd)
	rootCmd.AddCommand(counterCmd)
	rootCmd.AddCommand(raceCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	asJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	rxlog.Init(rxlog.Config{
		Level:      rxlog.Level(level),
		JSONOutput: asJSON,
	})
}
