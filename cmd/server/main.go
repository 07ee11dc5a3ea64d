package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/yaseenlenceria/OmniConnect/internal/config"
	"github.com/yaseenlenceria/OmniConnect/internal/coordinator"
	"github.com/yaseenlenceria/OmniConnect/internal/logging"
	"github.com/yaseenlenceria/OmniConnect/internal/metrics"
	"github.com/yaseenlenceria/OmniConnect/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logging.Init(cfg.Log.Level)

	collector := metrics.NewPrometheusCollector()

	hub := coordinator.NewHub(collector)
	go hub.Run()

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.NewRouter(hub, collector),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		slog.Info("starting coordinator",
			"service", cfg.Service.Name,
			"environment", cfg.Service.Environment,
			"address", cfg.HTTP.Address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "err", err)
	}

	hub.Close()
	slog.Info("shutdown complete")
}
