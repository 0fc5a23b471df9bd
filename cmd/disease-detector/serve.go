package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"disease-detector/internal/common/logger"
	"disease-detector/internal/config"
	httpapi "disease-detector/internal/http"
	"disease-detector/internal/service"
	"disease-detector/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP prediction service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "disease-detector")
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("Initializing application...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, resolveCatalogPath(cmd, cfg.CatalogPath), true, log)
	if err != nil {
		log.Error("Failed to initialize application", zap.Error(err))
		return err
	}
	defer a.Close()

	reporter := telemetry.NewReporter(a.collector, a.pool.ReadyCount, a.redis, log)
	if err := reporter.Start(cfg.Telemetry.SnapshotSchedule); err != nil {
		return err
	}
	defer reporter.Stop()

	router := httpapi.NewRouter(log)
	router.RegisterPredictionRoutes(httpapi.NewPredictionHandler(a.predictions, log))
	router.RegisterPatientRoutes(httpapi.NewPatientHandler(a.patients, log))
	router.RegisterMonitoringRoutes(httpapi.NewMonitoringHandler(a.pool, a.collector, log))

	srv := service.NewServer(cfg.HTTPAddr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			log.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	if err := reporter.Publish(shutdownCtx); err != nil {
		log.Warn("Failed to publish final performance snapshot", zap.Error(err))
	}
	return serveErr
}
