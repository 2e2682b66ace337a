package ports

import (
	"context"
	"io"

	"github.com/asafonov/screenvault/internal/core/domain"
)

// ScreenshotIngestor is the inbound contract for upload orchestration.
type ScreenshotIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.AnalysisOutcome, error)
}

// ImageAnalyzer classifies an image without persisting anything.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (domain.Judgement, error)
}

// ScreenshotReanalyzer re-runs classification for an existing screenshot.
type ScreenshotReanalyzer interface {
	Reanalyze(ctx context.Context, id string) (*domain.AnalysisOutcome, error)
}

// ScreenshotQueryService is the inbound read model.
type ScreenshotQueryService interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Screenshot, error)
	GetDetail(ctx context.Context, id string) (*domain.ScreenshotDetail, error)
	OpenBlob(ctx context.Context, id string) (*domain.Screenshot, io.ReadCloser, error)
	Categories(ctx context.Context) ([]domain.CategoryCount, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// ScreenshotCurator covers destructive maintenance: explicit deletion and
// threshold-based cleanup.
type ScreenshotCurator interface {
	Delete(ctx context.Context, id string) error
	Cleanup(ctx context.Context, confidenceThreshold float64, dryRun bool) (*domain.CleanupReport, error)
}
