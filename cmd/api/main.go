package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/asafonov/screenvault/internal/adapters/http"
	"github.com/asafonov/screenvault/internal/bootstrap"
	"github.com/asafonov/screenvault/internal/config"
	"github.com/asafonov/screenvault/internal/observability/logging"
	"github.com/asafonov/screenvault/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logging.NewLogger("screenvault-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("screenvault")
	httpMetrics.Register(app.Pipeline.Collectors()...)

	router := httpadapter.NewRouter(cfg, app.IngestUC, app.AnalyzeUC, app.ReanalyzeUC, app.QueryUC, app.CuratorUC).
		WithMetrics(httpMetrics)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api shutdown failed", "error", err)
	}
}
