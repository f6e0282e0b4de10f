package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fundwatch/fundwatch/internal/api"
	archivepg "github.com/fundwatch/fundwatch/internal/archive/postgres"
	"github.com/fundwatch/fundwatch/internal/clock/system"
	"github.com/fundwatch/fundwatch/internal/config"
	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
	"github.com/fundwatch/fundwatch/internal/logging"
	"github.com/fundwatch/fundwatch/internal/orchestrator"
	"github.com/fundwatch/fundwatch/internal/schedule"
	"github.com/fundwatch/fundwatch/internal/sinks"
)

// newServeCmd creates the 'serve' subcommand, which runs the orchestration
// service with its HTTP API.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the session orchestration service",
		Long: `Starts the orchestration core and its HTTP API. Sessions are driven
through the API; batch and step work due on timers is dispatched to the
configured runners.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(*cobra.Command, []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crawlLog := eventlog.NewCrawlLog()
	aboutLog := eventlog.NewAboutFundLog()
	crawlLog.Observe(sinks.CrawlLogSink(logger.Named("events")))
	aboutLog.Observe(sinks.AboutFundLogSink(logger.Named("events")))

	registry := prometheus.NewRegistry()
	metrics, err := sinks.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	crawlLog.Observe(metrics.ObserveCrawl)
	aboutLog.Observe(metrics.ObserveAboutFund)

	if cfg.Archive.Enabled {
		archive, archErr := archivepg.New(ctx, archivepg.Config{
			DSN:      cfg.Archive.DSN,
			MaxConns: int32(cfg.Archive.MaxConns),
		}, logger.Named("archive"))
		if archErr != nil {
			return fmt.Errorf("init archive: %w", archErr)
		}
		defer archive.Close()
		crawlLog.Observe(archive.CrawlObserver(ctx, cfg.ArchiveWriteTimeout()))
		aboutLog.Observe(archive.AboutFundObserver(ctx, cfg.ArchiveWriteTimeout()))
	}

	seed := uint64(time.Now().UnixNano())
	delays, err := schedule.NewDelayGenerator(
		rand.NewPCG(seed, uint64(os.Getpid())),
		schedule.DelayBounds{Min: cfg.BatchDelayMin(), Max: cfg.BatchDelayMax()},
	)
	if err != nil {
		return fmt.Errorf("init delay generator: %w", err)
	}
	daily, err := schedule.NewDailyScheduler(
		rand.NewPCG(seed+1, uint64(os.Getpid())),
		schedule.RecrawlWindow{OpenHour: cfg.Daily.WindowOpenHour, CloseHour: cfg.Daily.WindowCloseHour},
	)
	if err != nil {
		return fmt.Errorf("init daily scheduler: %w", err)
	}

	// The browsing automation that actually loads batches and drives fund
	// pages plugs in behind these runners; the service ships with logging
	// stand-ins so orchestration can run end to end without it.
	runnerLog := logger.Named("runner")
	orch := orchestrator.New(
		crawlLog,
		aboutLog,
		system.New(),
		orchestrator.NewSystemTimer(),
		delays,
		daily,
		&loggingBatchRunner{logger: runnerLog},
		&loggingStepRunner{logger: runnerLog},
		orchestrator.Config{SafetyNetBuffer: cfg.SafetyNetBuffer()},
		logger.Named("orchestrator"),
		orchestrator.WithBaseContext(ctx),
	)

	apiServer := api.NewServer(crawlLog, aboutLog, orch, registry, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

type loggingBatchRunner struct {
	logger *zap.Logger
}

func (r *loggingBatchRunner) LoadBatch(_ context.Context, id event.CrawlSessionID, batch event.BatchNumber) (int, error) {
	r.logger.Info("batch load due",
		zap.String("session_id", id.String()),
		zap.Int("batch", int(batch)),
	)
	return 0, nil
}

type loggingStepRunner struct {
	logger *zap.Logger
}

func (r *loggingStepRunner) RunStep(_ context.Context, id event.AboutFundSessionID, orderBook event.OrderBookID, kind schedule.StepKind) error {
	r.logger.Info("step due",
		zap.String("session_id", id.String()),
		zap.String("orderbook", string(orderBook)),
		zap.String("step", string(kind)),
	)
	return nil
}
