package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
)

type CurateScreenshotsUseCase struct {
	repo     ports.ScreenshotRepository
	blobs    ports.BlobStore
	events   ports.EventPublisher
	recorder ports.MetricsRecorder
}

func NewCurateScreenshotsUseCase(
	repo ports.ScreenshotRepository,
	blobs ports.BlobStore,
	events ports.EventPublisher,
	recorder ports.MetricsRecorder,
) *CurateScreenshotsUseCase {
	return &CurateScreenshotsUseCase{
		repo:     repo,
		blobs:    blobs,
		events:   events,
		recorder: recorder,
	}
}

// Delete removes the blob first, then the catalog row; analysis history and
// category links go with the row through foreign-key cascades.
func (uc *CurateScreenshotsUseCase) Delete(ctx context.Context, id string) error {
	shot, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch screenshot: %w", err)
	}
	if err := uc.blobs.Delete(ctx, shot.StorageKey); err != nil {
		return domain.WrapError(domain.ErrStorage, "delete blob", err)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete screenshot row: %w", err)
	}

	if uc.recorder != nil {
		uc.recorder.ObserveDeletions(1)
	}
	uc.publishDeleted(ctx, id)
	return nil
}

// Cleanup selects screenshots the classifier was confident are unimportant
// (is_important=false, confidence >= threshold). Dry-run only reports;
// execute mode deletes each candidate's blob and row.
func (uc *CurateScreenshotsUseCase) Cleanup(ctx context.Context, confidenceThreshold float64, dryRun bool) (*domain.CleanupReport, error) {
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "cleanup",
			fmt.Errorf("confidence threshold %v outside [0,1]", confidenceThreshold))
	}

	candidates, err := uc.repo.SelectCleanupCandidates(ctx, confidenceThreshold)
	if err != nil {
		return nil, fmt.Errorf("select cleanup candidates: %w", err)
	}

	report := &domain.CleanupReport{
		DryRun:     dryRun,
		Threshold:  confidenceThreshold,
		Candidates: candidates,
	}
	if dryRun {
		return report, nil
	}

	for _, candidate := range candidates {
		if err := uc.blobs.Delete(ctx, candidate.StorageKey); err != nil {
			slog.Warn("cleanup_blob_delete_failed", "screenshot_id", candidate.ID, "error", err)
			continue
		}
		if err := uc.repo.Delete(ctx, candidate.ID); err != nil {
			slog.Warn("cleanup_row_delete_failed", "screenshot_id", candidate.ID, "error", err)
			continue
		}
		report.Deleted++
		uc.publishDeleted(ctx, candidate.ID)
	}

	if uc.recorder != nil && report.Deleted > 0 {
		uc.recorder.ObserveDeletions(report.Deleted)
	}
	return report, nil
}

func (uc *CurateScreenshotsUseCase) publishDeleted(ctx context.Context, id string) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishDeleted(ctx, id); err != nil {
		slog.Warn("publish_deleted_event_failed", "screenshot_id", id, "error", err)
	}
}
