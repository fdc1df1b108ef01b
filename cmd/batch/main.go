// Command batch runs the nightly re-verification sweep once and exits.
// Intended to be invoked from cron or a scheduler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fleetgate/internal/audit"
	"fleetgate/internal/batch"
	batchmetrics "fleetgate/internal/batch/metrics"
	batchsource "fleetgate/internal/batch/source"
	"fleetgate/internal/compliance"
	compliancemetrics "fleetgate/internal/compliance/metrics"
	complianceports "fleetgate/internal/compliance/ports"
	decisionstore "fleetgate/internal/compliance/store/decision"
	operatorstore "fleetgate/internal/compliance/store/operator"
	snapshotstore "fleetgate/internal/compliance/store/snapshot"
	"fleetgate/internal/platform/config"
	"fleetgate/internal/platform/logger"
	"fleetgate/internal/platform/postgres"
	platformredis "fleetgate/internal/platform/redis"
	"fleetgate/internal/registry"
	"fleetgate/internal/registry/adapters/httpapi"
	registrymetrics "fleetgate/internal/registry/metrics"
	registryports "fleetgate/internal/registry/ports"
	"fleetgate/internal/ticket"
	ticketstore "fleetgate/internal/ticket/store"
	"fleetgate/internal/trailer"
	vehiclestore "fleetgate/internal/trailer/store/vehicle"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// version is stamped at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetgate-batch",
		Short:         "Bulk vehicle re-verification",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var chunkSize, concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one re-verification sweep over vehicles with expired or missing decisions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if chunkSize > 0 {
				cfg.Batch.ChunkSize = chunkSize
			}
			if concurrency > 0 {
				cfg.Batch.Concurrency = concurrency
			}
			return runSweep(cmd.Context(), cfg, logger.New(cfg.LogLevel))
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "vehicles per chunk (defaults to FLEETGATE_BATCH_CHUNK_SIZE)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "concurrent verifications per chunk (defaults to FLEETGATE_BATCH_CONCURRENCY)")
	return cmd
}

func runSweep(parent context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	verifier, err := newRegistryClient(cfg, publisher, log)
	if err != nil {
		return err
	}

	durableDecisions := decisionstore.NewPostgres(db)
	var decisionStore complianceports.DecisionStore = durableDecisions
	if redisClient != nil {
		decisionStore = decisionstore.NewRedisCache(durableDecisions, redisClient.Client, log)
	}
	snapshots := snapshotstore.NewPostgres(db)

	trailerSvc := trailer.NewService(vehiclestore.NewPostgres(db),
		trailer.WithLogger(log),
		trailer.WithPublisher(publisher),
	)

	engine := compliance.NewEngine(decisionStore, operatorstore.NewPostgres(db), compliance.Policy{
		CacheTTL:          cfg.Policy.CacheTTL,
		InvalidCacheTTL:   cfg.Policy.InvalidCacheTTL,
		GPSStaleness:      cfg.Policy.GPSStaleness,
		PermitWarnWindow:  cfg.Policy.PermitWarnWindow,
		OperatorMaxActive: cfg.Policy.OperatorMaxActive,
	})

	complianceSvc := compliance.NewService(verifier, engine, decisionStore, trailerSvc,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliancemetrics.New()),
		compliance.WithPublisher(publisher),
	)

	ticketSvc := ticket.NewService(ticketstore.NewPostgres(db),
		ticket.WithLogger(log),
		ticket.WithPublisher(publisher),
	)

	worker := batch.NewWorker(
		batchsource.NewPostgres(db),
		verifier,
		snapshots,
		complianceSvc,
		ticketSvc,
		batch.Config{ChunkSize: cfg.Batch.ChunkSize, Concurrency: cfg.Batch.Concurrency},
		batch.WithLogger(log),
		batch.WithMetrics(batchmetrics.New()),
		batch.WithPublisher(publisher),
	)

	result, err := worker.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("sweep finished",
		"total", result.TotalProcessed,
		"successful", result.Successful,
		"failed", result.Failed,
		"tickets_created", result.TicketsCreated,
	)
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d vehicles failed verification", result.Failed, result.TotalProcessed)
	}
	return nil
}

func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogPublisher(log), func() {}, nil
	}
	kafka, err := audit.NewKafkaPublisher(ctx, audit.KafkaConfig{Brokers: cfg.Brokers, Topic: cfg.Topic}, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := kafka.Close(flushCtx); err != nil {
			log.Warn("closing audit publisher", "error", err)
		}
	}
	return kafka, closeFn, nil
}

func newRegistryClient(cfg config.Config, publisher audit.Publisher, log *slog.Logger) (*registry.Client, error) {
	adapters := make([]registryports.ProviderAdapter, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		adapters = append(adapters, httpapi.New(httpapi.Config{
			Tag:     p.Tag,
			BaseURL: p.BaseURL,
			APIKey:  p.APIKey,
			Timeout: p.Timeout,
		}))
	}
	return registry.New(adapters, registry.Config{
		BreakerThreshold:    cfg.Registry.BreakerThreshold,
		BreakerResetTimeout: cfg.Registry.BreakerResetTimeout,
		RequestsPerMinute:   cfg.Registry.RequestsPerMinute,
		MaxRetries:          cfg.Registry.MaxRetries,
		BaseBackoff:         cfg.Registry.BaseBackoff,
		MaxBackoff:          cfg.Registry.MaxBackoff,
	},
		registry.WithLogger(log),
		registry.WithMetrics(registrymetrics.New()),
		registry.WithPublisher(publisher),
	)
}
