package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
)

const (
	classificationOK       = "ok"
	classificationFallback = "fallback"
)

// classifyWithFallback invokes the classifier and absorbs any failure into
// the deterministic fallback judgement. Upload and analyze flows therefore
// never surface an upstream failure as a hard error.
func classifyWithFallback(
	ctx context.Context,
	classifier ports.VisionClassifier,
	recorder ports.MetricsRecorder,
	image []byte,
	mimeType string,
) domain.Judgement {
	start := time.Now()
	judgement, err := classifier.Classify(ctx, image, mimeType)
	if err != nil {
		slog.Warn("classification_fallback",
			"mime_type", mimeType,
			"image_bytes", len(image),
			"error", err,
		)
		if recorder != nil {
			recorder.ObserveClassification(classificationFallback, time.Since(start))
		}
		return domain.FallbackJudgement()
	}
	if recorder != nil {
		recorder.ObserveClassification(classificationOK, time.Since(start))
	}
	return judgement.Normalize()
}

// AnalyzeImageUseCase classifies without persisting anything.
type AnalyzeImageUseCase struct {
	classifier ports.VisionClassifier
	recorder   ports.MetricsRecorder
}

func NewAnalyzeImageUseCase(classifier ports.VisionClassifier, recorder ports.MetricsRecorder) *AnalyzeImageUseCase {
	return &AnalyzeImageUseCase{classifier: classifier, recorder: recorder}
}

func (uc *AnalyzeImageUseCase) Analyze(ctx context.Context, image []byte, mimeType string) (domain.Judgement, error) {
	if err := validateImageInput(image, mimeType); err != nil {
		return domain.Judgement{}, err
	}
	return classifyWithFallback(ctx, uc.classifier, uc.recorder, image, mimeType), nil
}
