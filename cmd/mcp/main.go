package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/asafonov/screenvault/internal/adapters/mcp"
	"github.com/asafonov/screenvault/internal/bootstrap"
	"github.com/asafonov/screenvault/internal/config"
	"github.com/asafonov/screenvault/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logging.NewStderrLogger("screenvault-mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	handlers := mcpadapter.NewHandlers(
		app.IngestUC,
		app.AnalyzeUC,
		app.ReanalyzeUC,
		app.QueryUC,
		app.CuratorUC,
		cfg.CleanupDefaultThreshold,
	)

	slog.Info("mcp server listening on stdio")
	if err := mcpadapter.NewServer(version, handlers).Serve(); err != nil {
		slog.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
