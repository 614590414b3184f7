package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/sfa/internal/infrastructure/config"
	"github.com/erp/sfa/internal/infrastructure/logger"
	"github.com/erp/sfa/internal/infrastructure/sfaclient"
	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	var (
		baseURL  string
		logLevel string
	)
	flag.StringVar(&baseURL, "url", "", "Base URL of the SFA API (default from config)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName + "-cli",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewSubmissionMetrics(mp.Meter("sfactl"))
	if err != nil {
		log.Fatal("Failed to create submission metrics", zap.Error(err))
	}

	c := &cli{
		client: sfaclient.New(sfaclient.Config{
			BaseURL: cfg.Client.BaseURL,
			Timeout: cfg.Client.Timeout,
		}, log),
		metrics: metrics,
		logger:  log,
		out:     os.Stdout,
	}

	if err := c.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: sfactl [flags] <command> [args]

Commands:
  options                        Show billing types, probabilities and teams
  show <sfa-id>                  Show a revenue record
  payments <sfa-id>              List the committed payments of a record
  add <sfa-id> [flags]           Add a payment (see "sfactl add -h")
  delete <sfa-id> <payment-id>   Soft-delete a payment
  confirm <sfa-id> <payment-id>...  Mark payments confirmed
  history <payment-id>           Show the change history of a payment

Flags:`)
	flag.PrintDefaults()
}
