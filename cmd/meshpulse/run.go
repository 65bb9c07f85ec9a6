package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshpulse/meshpulse/pkg/cache"
	"github.com/meshpulse/meshpulse/pkg/feed"
	"github.com/meshpulse/meshpulse/pkg/generator"
	"github.com/meshpulse/meshpulse/pkg/log"
	"github.com/meshpulse/meshpulse/pkg/metrics"
	"github.com/meshpulse/meshpulse/pkg/stream"
	"github.com/meshpulse/meshpulse/pkg/topology"
	"github.com/meshpulse/meshpulse/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the telemetry simulation",
	Long: `Run the stream engine over a topology, logging emitted events and
exposing Prometheus metrics and health endpoints until interrupted.

Examples:
  # Run with the built-in sample topology
  meshpulse run

  # Run a custom topology with a faster status schedule
  meshpulse run -f topology.yaml --status-interval 1s`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "Topology YAML file (default: built-in sample)")
	runCmd.Flags().String("listen", ":9090", "Observability listen address")
	runCmd.Flags().Duration("metrics-interval", stream.DefaultMetricsInterval, "Metrics emission interval")
	runCmd.Flags().Duration("status-interval", stream.DefaultStatusUpdateInterval, "Status emission interval")
	runCmd.Flags().Float64("status-probability", stream.DefaultStatusChangeProbability, "Per-tick service status change probability")
	runCmd.Flags().Float64("connection-probability", stream.DefaultConnectionChangeProbability, "Per-tick connection status change probability")
	runCmd.Flags().Int("cache-size", cache.DefaultMaxSize, "Data points retained per connection")
	runCmd.Flags().Int64("seed", 0, "Generator seed (0 = time-based)")
	runCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Bool("json-log", false, "Emit JSON logs")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: jsonLog})

	topo, err := loadTopology(cmd)
	if err != nil {
		return err
	}

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	metricsInterval, _ := cmd.Flags().GetDuration("metrics-interval")
	statusInterval, _ := cmd.Flags().GetDuration("status-interval")
	statusProbability, _ := cmd.Flags().GetFloat64("status-probability")
	connectionProbability, _ := cmd.Flags().GetFloat64("connection-probability")

	cfg := stream.Config{
		MetricsInterval:             metricsInterval,
		StatusUpdateInterval:        statusInterval,
		StatusChangeProbability:     statusProbability,
		ConnectionChangeProbability: connectionProbability,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	engine := stream.New(generator.New(seed), stream.WithConfig(cfg))

	board := feed.NewStatusBoard(engine)
	board.Track(topo.ServiceIDs(), topo.ConnectionIDs())
	if err := board.Start(); err != nil {
		return fmt.Errorf("failed to start status board: %w", err)
	}

	cacheSize, _ := cmd.Flags().GetInt("cache-size")
	dataCache := cache.New[types.DataPoint](cacheSize)
	connFeed := feed.NewConnectionMetrics(engine, dataCache)
	if ids := topo.ConnectionIDs(); len(ids) > 0 {
		connFeed.Activate(ids[0], true)
	}

	unsubscribeLoggers, err := subscribeEventLoggers(engine)
	if err != nil {
		return err
	}

	engine.Start()
	metrics.SetVersion(Version)
	metrics.RegisterComponent("engine", true, "running")
	metrics.RegisterComponent("status-board", true, "connected")

	listen, _ := cmd.Flags().GetString("listen")
	go serveObservability(listen)

	summary := topo.Summary()
	log.Logger.Info().
		Int("services", len(topo.ServiceIDs())).
		Int("connections", len(topo.ConnectionIDs())).
		Int("healthy", summary.Healthy).
		Int("degraded", summary.Degraded).
		Int("offline", summary.Offline).
		Str("listen", listen).
		Msg("simulation running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	engine.Stop()
	board.Stop()
	connFeed.Close()
	for _, unsubscribe := range unsubscribeLoggers {
		unsubscribe()
	}
	metrics.UpdateComponent("engine", false, "stopped")
	return nil
}

func loadTopology(cmd *cobra.Command) (*topology.Topology, error) {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return topology.Default(), nil
	}
	return topology.Load(file)
}

// subscribeEventLoggers attaches one logging subscriber per event type
// so every emission is visible on the console
func subscribeEventLoggers(engine *stream.Engine) ([]func(), error) {
	var unsubscribers []func()
	for _, eventType := range stream.EventTypes {
		logger := log.WithEventType(string(eventType))
		unsubscribe, err := engine.Subscribe(eventType, func(event stream.Event) {
			entry := logger.Info().Str("event_id", event.ID).Time("emitted_at", event.EmittedAt)
			switch {
			case event.Metrics != nil:
				entry = entry.
					Int("rps", event.Metrics.RPS).
					Int("latency_ms", event.Metrics.Latency).
					Float64("error_rate", event.Metrics.ErrorRate)
			case event.ServiceStatus != nil:
				entry = entry.
					Str("service_id", event.ServiceStatus.ServiceID).
					Str("status", string(event.ServiceStatus.Status))
			case event.ConnectionStatus != nil:
				entry = entry.
					Str("connection_id", event.ConnectionStatus.ConnectionID).
					Str("status", string(event.ConnectionStatus.Status))
			}
			entry.Msg("event")
		})
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
		}
		unsubscribers = append(unsubscribers, unsubscribe)
	}
	return unsubscribers, nil
}

func serveObservability(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/livez", metrics.LivenessHandler())

	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Errorf("observability server failed", err)
	}
}
