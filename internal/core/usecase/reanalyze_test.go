package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/asafonov/screenvault/internal/core/domain"
)

func seedScreenshot(repo *repoFake, blobs *blobFake, id string) *domain.Screenshot {
	shot := &domain.Screenshot{
		ID:         id,
		Filename:   "seed.png",
		StorageKey: "screenshots/2026/08/" + id + ".png",
		SizeBytes:  6,
		MimeType:   "image/png",
		UploadedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	repo.byID[id] = shot
	if blobs != nil {
		blobs.saved[shot.StorageKey] = []byte("pixels")
	}
	return shot
}

func TestReanalyzeSuccess(t *testing.T) {
	repo := newRepoFake()
	blobs := newBlobFake()
	seedScreenshot(repo, blobs, "shot-1")
	classifier := &classifierFake{judgement: domain.Judgement{
		IsImportant:     true,
		Confidence:      0.8,
		Categories:      []domain.CategoryJudgement{{Name: "Finance", Confidence: 0.8}},
		RetentionPolicy: domain.RetentionKeep,
		ImportanceLevel: domain.ImportanceMedium,
	}}
	events := &eventsFake{}
	uc := NewReanalyzeScreenshotUseCase(repo, blobs, classifier, events, nil)

	outcome, err := uc.Reanalyze(context.Background(), "shot-1")
	if err != nil {
		t.Fatalf("Reanalyze() error = %v", err)
	}
	if classifier.lastMime != "image/png" || string(classifier.lastImage) != "pixels" {
		t.Fatalf("classifier got mime=%s image=%q", classifier.lastMime, classifier.lastImage)
	}
	if len(repo.applied) != 1 || repo.applied[0].typ != domain.AnalysisReanalysis {
		t.Fatalf("expected one reanalysis ApplyAnalysis call, got %+v", repo.applied)
	}
	if !outcome.Screenshot.IsImportant || outcome.Screenshot.AnalyzedAt == nil {
		t.Fatalf("expected refreshed summary, got %+v", outcome.Screenshot)
	}
	if len(events.analyzed) != 1 {
		t.Fatalf("expected analyzed event, got %v", events.analyzed)
	}
}

func TestReanalyzeUnknownID(t *testing.T) {
	uc := NewReanalyzeScreenshotUseCase(newRepoFake(), newBlobFake(), &classifierFake{}, nil, nil)

	_, err := uc.Reanalyze(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrScreenshotNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReanalyzeMissingBlobIsNotFound(t *testing.T) {
	repo := newRepoFake()
	seedScreenshot(repo, nil, "shot-2")
	uc := NewReanalyzeScreenshotUseCase(repo, newBlobFake(), &classifierFake{}, nil, nil)

	_, err := uc.Reanalyze(context.Background(), "shot-2")
	if !domain.IsKind(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected blob not found, got %v", err)
	}
	if len(repo.applied) != 0 {
		t.Fatalf("no analysis must be written when the blob is gone")
	}
}

func TestReanalyzeRepeatedCallsEachApplyOnce(t *testing.T) {
	repo := newRepoFake()
	blobs := newBlobFake()
	seedScreenshot(repo, blobs, "shot-3")
	classifier := &classifierFake{judgement: domain.FallbackJudgement()}
	uc := NewReanalyzeScreenshotUseCase(repo, blobs, classifier, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := uc.Reanalyze(context.Background(), "shot-3"); err != nil {
			t.Fatalf("Reanalyze() #%d error = %v", i+1, err)
		}
	}
	if len(repo.applied) != 3 {
		t.Fatalf("expected three analysis writes, got %d", len(repo.applied))
	}
	if classifier.calls != 3 {
		t.Fatalf("expected three classifier calls, got %d", classifier.calls)
	}
}
