package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
)

type ReanalyzeScreenshotUseCase struct {
	repo       ports.ScreenshotRepository
	blobs      ports.BlobStore
	classifier ports.VisionClassifier
	events     ports.EventPublisher
	recorder   ports.MetricsRecorder
}

func NewReanalyzeScreenshotUseCase(
	repo ports.ScreenshotRepository,
	blobs ports.BlobStore,
	classifier ports.VisionClassifier,
	events ports.EventPublisher,
	recorder ports.MetricsRecorder,
) *ReanalyzeScreenshotUseCase {
	return &ReanalyzeScreenshotUseCase{
		repo:       repo,
		blobs:      blobs,
		classifier: classifier,
		events:     events,
		recorder:   recorder,
	}
}

// Reanalyze fetches the stored blob, re-runs classification and replaces the
// screenshot's summary and category links. Each call appends one history
// record; the link set always reflects only the latest judgement.
func (uc *ReanalyzeScreenshotUseCase) Reanalyze(ctx context.Context, id string) (*domain.AnalysisOutcome, error) {
	shot, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch screenshot: %w", err)
	}

	image, err := uc.readBlob(ctx, shot)
	if err != nil {
		return nil, err
	}

	judgement := classifyWithFallback(ctx, uc.classifier, uc.recorder, image, shot.MimeType)

	analyzedAt := time.Now().UTC()
	if err := uc.repo.ApplyAnalysis(ctx, shot.ID, domain.AnalysisReanalysis, judgement, analyzedAt); err != nil {
		return nil, fmt.Errorf("apply reanalysis: %w", err)
	}
	applyJudgement(shot, judgement, analyzedAt)

	if uc.events != nil {
		if err := uc.events.PublishAnalyzed(ctx, shot.ID, domain.AnalysisReanalysis); err != nil {
			slog.Warn("publish_analyzed_event_failed", "screenshot_id", shot.ID, "error", err)
		}
	}

	return &domain.AnalysisOutcome{Screenshot: *shot, Judgement: judgement}, nil
}

func (uc *ReanalyzeScreenshotUseCase) readBlob(ctx context.Context, shot *domain.Screenshot) ([]byte, error) {
	reader, err := uc.blobs.Open(ctx, shot.StorageKey)
	if err != nil {
		// A catalog row whose blob is gone is a detectable inconsistency;
		// it surfaces as NotFound rather than an internal error.
		if domain.IsKind(err, domain.ErrBlobNotFound) {
			slog.Warn("blob_missing_for_catalog_row", "screenshot_id", shot.ID, "storage_key", shot.StorageKey)
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrStorage, "open blob", err)
	}
	defer reader.Close()

	image, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "read blob", err)
	}
	return image, nil
}
