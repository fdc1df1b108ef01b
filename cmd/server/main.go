// Command server runs the fleet verification API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetgate/internal/audit"
	"fleetgate/internal/batch"
	batchhandler "fleetgate/internal/batch/handler"
	batchmetrics "fleetgate/internal/batch/metrics"
	batchsource "fleetgate/internal/batch/source"
	"fleetgate/internal/compliance"
	compliancehandler "fleetgate/internal/compliance/handler"
	compliancemetrics "fleetgate/internal/compliance/metrics"
	complianceports "fleetgate/internal/compliance/ports"
	decisionstore "fleetgate/internal/compliance/store/decision"
	operatorstore "fleetgate/internal/compliance/store/operator"
	snapshotstore "fleetgate/internal/compliance/store/snapshot"
	"fleetgate/internal/domain"
	"fleetgate/internal/platform/config"
	"fleetgate/internal/platform/httpserver"
	"fleetgate/internal/platform/logger"
	"fleetgate/internal/platform/postgres"
	platformredis "fleetgate/internal/platform/redis"
	"fleetgate/internal/registry"
	"fleetgate/internal/registry/adapters/httpapi"
	registrymetrics "fleetgate/internal/registry/metrics"
	registryports "fleetgate/internal/registry/ports"
	"fleetgate/internal/ticket"
	tickethandler "fleetgate/internal/ticket/handler"
	ticketstore "fleetgate/internal/ticket/store"
	"fleetgate/internal/trailer"
	trailerhandler "fleetgate/internal/trailer/handler"
	vehiclestore "fleetgate/internal/trailer/store/vehicle"
	httptransport "fleetgate/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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

	decisionStore := newDecisionStore(db, redisClient, log)
	snapshots := snapshotstore.NewPostgres(db)
	operators := operatorstore.NewPostgres(db)
	vehicles := vehiclestore.NewPostgres(db)
	tickets := ticketstore.NewPostgres(db)

	trailerSvc := trailer.NewService(vehicles,
		trailer.WithLogger(log),
		trailer.WithPublisher(publisher),
	)

	engine := compliance.NewEngine(decisionStore, operators, compliance.Policy{
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
		compliance.WithSnapshots(snapshots),
	)

	ticketSvc := ticket.NewService(tickets,
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

	router := httptransport.NewRouter(httptransport.Handlers{
		Compliance: compliancehandler.New(complianceSvc, log),
		Trailer:    trailerhandler.New(trailerSvc, log),
		Ticket:     tickethandler.New(ticketSvc, log),
		Batch:      batchhandler.New(worker, log),
	}, cfg.AdminToken, log)

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("fleetgate listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newDecisionStore wraps the durable decision store with the Redis
// read-through layer when Redis is configured.
func newDecisionStore(db *sql.DB, redisClient *platformredis.Client, log *slog.Logger) complianceports.DecisionStore {
	durable := decisionstore.NewPostgres(db)
	if redisClient == nil {
		return durable
	}
	return decisionstore.NewRedisCache(durable, redisClient.Client, log)
}

func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogPublisher(log), func() {}, nil
	}
	kafka, err := audit.NewKafkaPublisher(ctx, audit.KafkaConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	}, log)
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
		registry.WithAttemptRecorder(func(attempt domain.ProviderResponse) {
			log.Debug("provider attempt",
				"provider", attempt.Provider,
				"success", attempt.Success,
				"transaction_id", attempt.TransactionID,
				"error", attempt.Error,
			)
		}),
	)
}
