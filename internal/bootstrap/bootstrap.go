package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asafonov/screenvault/internal/config"
	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
	"github.com/asafonov/screenvault/internal/core/usecase"
	natsevents "github.com/asafonov/screenvault/internal/infrastructure/events/nats"
	"github.com/asafonov/screenvault/internal/infrastructure/repository/postgres"
	"github.com/asafonov/screenvault/internal/infrastructure/resilience"
	"github.com/asafonov/screenvault/internal/infrastructure/storage/localfs"
	"github.com/asafonov/screenvault/internal/infrastructure/vision"
	"github.com/asafonov/screenvault/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Repo     ports.ScreenshotRepository
	Pipeline *metrics.PipelineMetrics

	IngestUC     ports.ScreenshotIngestor
	AnalyzeUC    ports.ImageAnalyzer
	ReanalyzeUC  ports.ScreenshotReanalyzer
	QueryUC      ports.ScreenshotQueryService
	CuratorUC    ports.ScreenshotCurator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewScreenshotRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	blobs, err := localfs.New(cfg.BlobPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	var events ports.EventPublisher
	var closeEvents func()
	if cfg.NATSURL != "" {
		pub, err := natsevents.New(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		events = pub
		closeEvents = pub.Close
	} else {
		slog.Info("nats disabled, lifecycle events are dropped")
		events = noopPublisher{}
		closeEvents = func() {}
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	classifier := vision.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, vision.Options{
		BaseURL:   cfg.OpenAIBaseURL,
		MaxTokens: cfg.OpenAIMaxTokens,
		Executor:  executor,
	})

	pipeline := metrics.NewPipelineMetrics("screenvault")

	return &App{
		Config:   cfg,
		Repo:     repo,
		Pipeline: pipeline,

		IngestUC:    usecase.NewIngestScreenshotUseCase(repo, blobs, classifier, events, pipeline),
		AnalyzeUC:   usecase.NewAnalyzeImageUseCase(classifier, pipeline),
		ReanalyzeUC: usecase.NewReanalyzeScreenshotUseCase(repo, blobs, classifier, events, pipeline),
		QueryUC:     usecase.NewQueryScreenshotsUseCase(repo, blobs),
		CuratorUC:   usecase.NewCurateScreenshotsUseCase(repo, blobs, events, pipeline),

		closeFn: func() {
			closeEvents()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// noopPublisher stands in when no broker is configured.
type noopPublisher struct{}

func (noopPublisher) PublishAnalyzed(context.Context, string, domain.AnalysisType) error {
	return nil
}

func (noopPublisher) PublishDeleted(context.Context, string) error { return nil }
