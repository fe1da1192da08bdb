package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mifi/internal/amqp"
	"mifi/internal/backend"
	"mifi/internal/cache"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/dashboard"
	"mifi/internal/log"
	"mifi/internal/metrics"
	"mifi/internal/services"
	"mifi/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newWorkerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background worker",
		Long: `Run the long-lived worker. It always serves /metrics, /healthz and /readyz
and keeps the dashboard summary gauges fresh. With AMQP_URL set and a SQL
backend it stores a snapshot of every saved budget; with SYNC_SOURCE set it
mirrors that source's transactions into the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), app)
		},
	}
}

func runWorker(parent context.Context, app *App) error {
	cfg, logger := app.Config, app.Logger.WithComponent(log.ComponentWorker)

	res, err := app.backend(parent)
	if err != nil {
		return err
	}
	closers := []func() error{res.Close}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	viewCache := cache.NewLRUCache[string, core.DerivedViews](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(viewCache)

	loader := dashboard.NewLoader(res.Backend, res.Backend,
		dashboard.WithLogger(logger),
		dashboard.WithObserver(m),
		dashboard.WithViewCache(viewCache))
	refresher := worker.NewRefresher(loader, core.Filters{Mode: core.ViewMonth, Periods: cfg.TrailingMonths}, cfg.SyncInterval, m, logger)

	var consumer *amqp.Client
	switch {
	case cfg.AMQPURL == "":
		logger.Info("AMQP not configured, budget snapshots disabled")
	case res.Repository == nil:
		logger.Warn("budget snapshots need the sqlite or postgres backend", log.FieldBackend, cfg.DataBackend)
	default:
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			closeAll(logger, closers)
			return fmt.Errorf("connect to AMQP: %w", err)
		}
		closers = append(closers, consumer.Close)
	}

	var syncer *services.SyncProcessor
	if srcCfg, ok, err := backend.SyncSourceConfig(cfg); err != nil {
		closeAll(logger, closers)
		return err
	} else if ok {
		if res.Writer == nil {
			closeAll(logger, closers)
			return fmt.Errorf("backend %s cannot store synced transactions", cfg.DataBackend)
		}
		src, err := app.openBackend(parent, srcCfg)
		if err != nil {
			closeAll(logger, closers)
			return fmt.Errorf("open sync source: %w", err)
		}
		closers = append(closers, src.Close)
		syncer = services.NewSyncProcessor(src.Backend, res.Writer, services.SyncProcessorConfig{
			PollInterval: cfg.SyncInterval,
			SourceName:   cfg.SyncSource,
			Recorder:     m,
		}, logger)
	}

	runCtx, stop := context.WithCancel(parent)
	defer stop()
	ctx, done := GracefulShutdown(runCtx, logger, shutdownTimeout, func() {
		if syncer != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = syncer.Stop(stopCtx)
		}
		cacheManager.Stop()
		closeAll(logger, closers)
	})

	cacheManager.StartCleanup(ctx, cfg.CacheTTL)
	if syncer != nil {
		if err := syncer.Start(ctx); err != nil {
			logger.Error("sync processor failed to start", log.FieldError, err)
		}
	}

	ops := metrics.NewServer(net.JoinHostPort("", cfg.MetricsPort), reg, res.Ready, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ops.Run(gctx) })
	g.Go(func() error { return refresher.Run(gctx) })
	if consumer != nil {
		dir := func() *categories.Directory { return loader.Directory() }
		snapshots := worker.NewSnapshotWorker(res.Repository,
			worker.WithPolicy(cfg.Policy()),
			worker.WithDirectory(dir),
			worker.WithRecorder(m),
			worker.WithLogger(logger))
		g.Go(func() error { return snapshots.Run(gctx, consumer) })
	}

	logger.Info("worker started",
		log.FieldBackend, cfg.DataBackend,
		"snapshots", consumer != nil,
		"sync", syncer != nil,
		"metrics_port", cfg.MetricsPort)

	err = g.Wait()
	stop()
	WaitForShutdown(ctx, done)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func closeAll(logger *log.Logger, closers []func() error) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("close failed", log.FieldError, err)
		}
	}
}
