package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/asafonov/screenvault/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*ScreenshotRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ScreenshotRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, storage_key").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrScreenshotNotFound) {
		t.Fatalf("expected ErrScreenshotNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM screenshots").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrScreenshotNotFound) {
		t.Fatalf("expected ErrScreenshotNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyAnalysisWriteSequence(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	judgement := domain.Judgement{
		IsImportant: true,
		Confidence:  0.9,
		Categories: []domain.CategoryJudgement{
			{Name: "Work", Confidence: 0.9},
			{Name: "Finance", Confidence: 0.7},
		},
		RetentionPolicy: domain.RetentionKeep,
		ImportanceLevel: domain.ImportanceHigh,
	}
	analyzedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE screenshots").
		WithArgs("shot-1", analyzedAt, true, 0.9, "keep", "high", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO analysis_results").
		WithArgs("shot-1", "initial", sqlmock.AnyArg(), analyzedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM screenshot_categories").
		WithArgs("shot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, c := range judgement.Categories {
		mock.ExpectExec("INSERT INTO categories").
			WithArgs(sqlmock.AnyArg(), c.Name, analyzedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id FROM categories").
			WithArgs(c.Name).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-" + c.Name))
		mock.ExpectExec("INSERT INTO screenshot_categories").
			WithArgs("shot-1", "cat-"+c.Name, c.Confidence).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := repo.ApplyAnalysis(context.Background(), "shot-1", domain.AnalysisInitial, judgement, analyzedAt)
	if err != nil {
		t.Fatalf("ApplyAnalysis() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyAnalysisUnknownScreenshotRollsBack(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE screenshots").
		WithArgs("missing", sqlmock.AnyArg(), false, 0.5, "delete_immediately", "low", domain.FallbackExtractedText).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyAnalysis(context.Background(), "missing", domain.AnalysisInitial,
		domain.FallbackJudgement(), time.Now().UTC())
	if !domain.IsKind(err, domain.ErrScreenshotNotFound) {
		t.Fatalf("expected ErrScreenshotNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveCategoryConflictFallsThroughToSelect(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	// Lost insert race: ON CONFLICT DO NOTHING affects zero rows, the select
	// still resolves the surviving row.
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(sqlmock.AnyArg(), "Work", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM categories").
		WithArgs("Work").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cat-1"))

	id, err := repo.ResolveCategory(context.Background(), "Work")
	if err != nil {
		t.Fatalf("ResolveCategory() error = %v", err)
	}
	if id != "cat-1" {
		t.Fatalf("expected cat-1, got %s", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResolveCategoryRejectsEmptyName(t *testing.T) {
	repo, _, done := newRepoWithMock(t)
	defer done()

	_, err := repo.ResolveCategory(context.Background(), "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSelectCleanupCandidatesFiltersOnImportanceAndConfidence(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	uploaded := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "filename", "storage_key", "size_bytes", "mime_type", "uploaded_at",
		"analyzed_at", "is_important", "confidence", "retention_policy", "importance_level", "extracted_text",
	}).AddRow("shot-1", "a.png", "screenshots/2026/07/a.png", 10, "image/png", uploaded,
		uploaded, false, 0.95, "delete_immediately", "low", "")

	mock.ExpectQuery("SELECT id, filename, storage_key").
		WithArgs(0.9).
		WillReturnRows(rows)

	candidates, err := repo.SelectCleanupCandidates(context.Background(), 0.9)
	if err != nil {
		t.Fatalf("SelectCleanupCandidates() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "shot-1" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
