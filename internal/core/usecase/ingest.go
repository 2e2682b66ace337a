package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
)

type IngestScreenshotUseCase struct {
	repo       ports.ScreenshotRepository
	blobs      ports.BlobStore
	classifier ports.VisionClassifier
	events     ports.EventPublisher
	recorder   ports.MetricsRecorder
}

func NewIngestScreenshotUseCase(
	repo ports.ScreenshotRepository,
	blobs ports.BlobStore,
	classifier ports.VisionClassifier,
	events ports.EventPublisher,
	recorder ports.MetricsRecorder,
) *IngestScreenshotUseCase {
	return &IngestScreenshotUseCase{
		repo:       repo,
		blobs:      blobs,
		classifier: classifier,
		events:     events,
		recorder:   recorder,
	}
}

// Upload runs the full ingestion sequence: blob write and catalog row first,
// classification second, analysis writes last. The catalog row exists before
// the classifier is invoked so the blob is never orphaned.
func (uc *IngestScreenshotUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.AnalysisOutcome, error) {
	image, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if err := validateImageInput(image, mimeType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shot := &domain.Screenshot{
		ID:         uuid.NewString(),
		Filename:   filename,
		StorageKey: StorageKey(now, filename),
		SizeBytes:  int64(len(image)),
		MimeType:   mimeType,
		UploadedAt: now,
	}

	if err := uc.blobs.Save(ctx, shot.StorageKey, bytes.NewReader(image)); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "save blob", err)
	}
	if err := uc.repo.Create(ctx, shot); err != nil {
		return nil, fmt.Errorf("create screenshot row: %w", err)
	}

	judgement := classifyWithFallback(ctx, uc.classifier, uc.recorder, image, mimeType)

	analyzedAt := time.Now().UTC()
	if err := uc.repo.ApplyAnalysis(ctx, shot.ID, domain.AnalysisInitial, judgement, analyzedAt); err != nil {
		return nil, fmt.Errorf("apply analysis: %w", err)
	}
	applyJudgement(shot, judgement, analyzedAt)

	uc.publishAnalyzed(ctx, shot.ID, domain.AnalysisInitial)

	return &domain.AnalysisOutcome{Screenshot: *shot, Judgement: judgement}, nil
}

func (uc *IngestScreenshotUseCase) publishAnalyzed(ctx context.Context, id string, typ domain.AnalysisType) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishAnalyzed(ctx, id, typ); err != nil {
		slog.Warn("publish_analyzed_event_failed", "screenshot_id", id, "error", err)
	}
}

func applyJudgement(shot *domain.Screenshot, judgement domain.Judgement, analyzedAt time.Time) {
	confidence := judgement.Confidence
	shot.AnalyzedAt = &analyzedAt
	shot.IsImportant = judgement.IsImportant
	shot.Confidence = &confidence
	shot.RetentionPolicy = judgement.RetentionPolicy
	shot.ImportanceLevel = judgement.ImportanceLevel
	shot.ExtractedText = judgement.ExtractedText
}

func validateImageInput(image []byte, mimeType string) error {
	if len(image) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("empty image body"))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("unsupported content type %q", mimeType))
	}
	return nil
}
