package ports

import (
	"context"
	"io"
	"time"

	"github.com/asafonov/screenvault/internal/core/domain"
)

// ScreenshotRepository persists catalog rows, category links and the
// append-only analysis history.
type ScreenshotRepository interface {
	Create(ctx context.Context, shot *domain.Screenshot) error
	GetByID(ctx context.Context, id string) (*domain.Screenshot, error)
	GetDetail(ctx context.Context, id string) (*domain.ScreenshotDetail, error)

	// ApplyAnalysis runs the post-classification write sequence in one
	// transaction: summary update, history append, category resolution and
	// link replacement (delete-then-insert, never merge).
	ApplyAnalysis(ctx context.Context, id string, typ domain.AnalysisType, judgement domain.Judgement, analyzedAt time.Time) error

	// ResolveCategory looks a name up and lazily inserts it. Concurrent
	// first-time use of the same name must not create duplicate rows.
	ResolveCategory(ctx context.Context, name string) (string, error)

	List(ctx context.Context, filter domain.ListFilter) ([]domain.Screenshot, error)
	ListCategories(ctx context.Context) ([]domain.CategoryCount, error)
	SelectCleanupCandidates(ctx context.Context, confidenceThreshold float64) ([]domain.Screenshot, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore stores original image bytes under generated keys.
type BlobStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// VisionClassifier produces a structured judgement for one image.
type VisionClassifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) (domain.Judgement, error)
}

// EventPublisher emits fire-and-forget notifications for downstream
// consumers. Publish failures never fail the originating operation.
type EventPublisher interface {
	PublishAnalyzed(ctx context.Context, screenshotID string, typ domain.AnalysisType) error
	PublishDeleted(ctx context.Context, screenshotID string) error
}

// MetricsRecorder receives pipeline observations.
type MetricsRecorder interface {
	ObserveClassification(outcome string, duration time.Duration)
	ObserveDeletions(count int)
}
