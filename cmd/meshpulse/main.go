package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meshpulse",
	Short: "Meshpulse - service topology telemetry simulator",
	Long: `Meshpulse simulates a service topology and animates synthetic
health and metrics data over it: a stream engine emits typed events on
independent schedules, fans them out to subscribers, and feeds bounded
per-connection time-series caches.

Everything runs in-process and in-memory; the only network surface is
the observability endpoint (/metrics, /health).`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Meshpulse version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(topologyCmd)
}
