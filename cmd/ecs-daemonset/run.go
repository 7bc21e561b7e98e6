package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cuemby/ecs-daemonset/pkg/client"
	"github.com/cuemby/ecs-daemonset/pkg/config"
	"github.com/cuemby/ecs-daemonset/pkg/events"
	"github.com/cuemby/ecs-daemonset/pkg/inspector"
	"github.com/cuemby/ecs-daemonset/pkg/log"
	"github.com/cuemby/ecs-daemonset/pkg/metrics"
	"github.com/cuemby/ecs-daemonset/pkg/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile daemonset services until terminated",
	Long: `Run the reconciliation loop. A cycle runs immediately, then every
--interval seconds (RESOURCE_CHECK_INTERVAL) until SIGINT or SIGTERM.`,
	RunE: runLoop,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single reconciliation cycle and exit",
	RunE:  runOnce,
}

func init() {
	// The root command runs the loop too, so the bare binary behaves like "run"
	addRunFlags(rootCmd.Flags())
	addRunFlags(runCmd.Flags())
	rootCmd.RunE = runLoop

	onceCmd.Flags().Bool("dry-run", false, "Log decisions without updating services")
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.Int("interval", 60, "Seconds to wait between cycles")
	flags.Bool("fail-fast", true, "Exit on the first failed cycle instead of retrying next interval")
	flags.Bool("dry-run", false, "Log decisions without updating services")
	flags.String("metrics-addr", "", "Serve /metrics, /health and /ready on this address")
}

// loadConfig merges defaults, the config file, the environment and the
// flags set on the command line, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("cluster") {
		cfg.Cluster, _ = flags.GetString("cluster")
	}
	if flags.Changed("verbosity") {
		cfg.LogLevel, _ = flags.GetString("verbosity")
	}
	if flags.Changed("log-json") {
		cfg.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("region") {
		cfg.Region, _ = flags.GetString("region")
	}
	if flags.Changed("endpoint-url") {
		cfg.EndpointURL, _ = flags.GetString("endpoint-url")
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts, _ = flags.GetInt("max-attempts")
	}
	if flags.Changed("marker-label") {
		cfg.MarkerLabel, _ = flags.GetString("marker-label")
	}
	if flags.Changed("interval") {
		cfg.Interval, _ = flags.GetInt("interval")
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	log.Init(log.Config{Level: level, JSONOutput: cfg.LogJSON, Output: os.Stderr})
	return cfg, nil
}

func newScheduler(ctx context.Context, cfg config.Config, broker *events.Broker) (*scheduler.Scheduler, error) {
	c, err := client.New(ctx, client.Config{
		Region:      cfg.Region,
		EndpointURL: cfg.EndpointURL,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	return scheduler.NewScheduler(c, inspector.New(c, cfg.MarkerLabel), broker, scheduler.Config{
		Cluster:  cfg.Cluster,
		Interval: cfg.PollInterval(),
		FailFast: cfg.FailFast,
		DryRun:   cfg.DryRun,
	}), nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.SetVersion(Version)
	if cfg.MetricsAddr != "" {
		srv, err := metrics.NewServer(cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	go logEvents(broker.Subscribe())

	sched, err := newScheduler(ctx, cfg, broker)
	if err != nil {
		return err
	}

	logger := log.WithCluster(cfg.Cluster)
	logger.Info().
		Str("version", Version).
		Int("interval_seconds", cfg.Interval).
		Str("marker_label", cfg.MarkerLabel).
		Msg("Starting ecs-daemonset")

	return sched.Run(ctx)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := newScheduler(ctx, cfg, nil)
	if err != nil {
		return err
	}

	result, err := sched.RunOnce(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Cluster:      %s\n", cfg.Cluster)
	fmt.Printf("Active nodes: %d\n", result.ActiveNodes)
	fmt.Printf("Services:     %d\n", result.Services)
	for _, a := range result.Scaled {
		state := "updated"
		if !a.Applied {
			state = "dry-run"
		}
		fmt.Printf("  %s: %d -> %d (%s)\n", a.ServiceARN, a.From, a.To, state)
	}
	return nil
}

// logEvents writes scale events to the log until the subscription closes
func logEvents(sub events.Subscriber) {
	logger := log.WithComponent("events")
	for ev := range sub {
		if ev.Type != events.EventServiceScaled {
			continue
		}
		logger.Info().
			Str("event_id", ev.ID).
			Str("service", ev.Metadata["service"]).
			Str("from", ev.Metadata["from"]).
			Str("to", ev.Metadata["to"]).
			Msg("Service scaled")
	}
}
