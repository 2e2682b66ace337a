package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asafonov/screenvault/internal/core/domain"
)

type ScreenshotRepository struct {
	db *sql.DB
}

func NewScreenshotRepository(db *sql.DB) *ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

const screenshotColumns = `id, filename, storage_key, size_bytes, mime_type, uploaded_at, analyzed_at, is_important, confidence, retention_policy, importance_level, extracted_text`

func (r *ScreenshotRepository) Create(ctx context.Context, shot *domain.Screenshot) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO screenshots (
	id, filename, storage_key, size_bytes, mime_type, uploaded_at, analyzed_at, is_important, confidence, retention_policy, importance_level, extracted_text
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		shot.ID, shot.Filename, shot.StorageKey, shot.SizeBytes, shot.MimeType,
		shot.UploadedAt, shot.AnalyzedAt, shot.IsImportant, shot.Confidence,
		string(shot.RetentionPolicy), string(shot.ImportanceLevel), shot.ExtractedText,
	)
	if err != nil {
		return fmt.Errorf("insert screenshot: %w", err)
	}
	return nil
}

func (r *ScreenshotRepository) GetByID(ctx context.Context, id string) (*domain.Screenshot, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+screenshotColumns+`
FROM screenshots
WHERE id = $1
`, id)

	shot, err := scanScreenshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScreenshotNotFound, "get screenshot", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan screenshot: %w", err)
	}
	return shot, nil
}

// ApplyAnalysis maps one judgement onto durable state in a single
// transaction: summary update, history append, category get-or-create and
// link replacement. Prior links are removed first so a screenshot reflects
// only its latest classification's categories.
func (r *ScreenshotRepository) ApplyAnalysis(
	ctx context.Context,
	id string,
	typ domain.AnalysisType,
	judgement domain.Judgement,
	analyzedAt time.Time,
) error {
	resultJSON, err := json.Marshal(judgement)
	if err != nil {
		return fmt.Errorf("marshal judgement: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analysis tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE screenshots
SET analyzed_at = $2, is_important = $3, confidence = $4, retention_policy = $5, importance_level = $6, extracted_text = $7
WHERE id = $1
`, id, analyzedAt, judgement.IsImportant, judgement.Confidence,
		string(judgement.RetentionPolicy), string(judgement.ImportanceLevel), judgement.ExtractedText)
	if err != nil {
		return fmt.Errorf("update screenshot summary: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrScreenshotNotFound, "apply analysis", fmt.Errorf("id %s", id))
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO analysis_results (screenshot_id, analysis_type, result, created_at)
VALUES ($1,$2,$3,$4)
`, id, string(typ), resultJSON, analyzedAt); err != nil {
		return fmt.Errorf("append analysis result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM screenshot_categories WHERE screenshot_id = $1
`, id); err != nil {
		return fmt.Errorf("clear category links: %w", err)
	}

	for _, category := range judgement.Categories {
		categoryID, err := resolveCategoryTx(ctx, tx, category.Name, analyzedAt)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO screenshot_categories (screenshot_id, category_id, confidence)
VALUES ($1,$2,$3)
`, id, categoryID, category.Confidence); err != nil {
			return fmt.Errorf("insert category link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis tx: %w", err)
	}
	return nil
}

// ResolveCategory implements lazy get-or-create for a category name. The
// unique constraint on name is the enforcement boundary: a concurrent insert
// of the same name loses the conflict and the follow-up select wins.
func (r *ScreenshotRepository) ResolveCategory(ctx context.Context, name string) (string, error) {
	return resolveCategoryOn(ctx, r.db, name, time.Now().UTC())
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func resolveCategoryTx(ctx context.Context, tx *sql.Tx, name string, now time.Time) (string, error) {
	return resolveCategoryOn(ctx, tx, name, now)
}

func resolveCategoryOn(ctx context.Context, q execQuerier, name string, now time.Time) (string, error) {
	if name == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve category", errors.New("empty name"))
	}

	if _, err := q.ExecContext(ctx, `
INSERT INTO categories (id, name, created_at)
VALUES ($1,$2,$3)
ON CONFLICT (name) DO NOTHING
`, uuid.NewString(), name, now); err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}

	var id string
	if err := q.QueryRowContext(ctx, `
SELECT id FROM categories WHERE name = $1
`, name).Scan(&id); err != nil {
		return "", fmt.Errorf("select category id: %w", err)
	}
	return id, nil
}

func (r *ScreenshotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM screenshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete screenshot: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrScreenshotNotFound, "delete screenshot", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *ScreenshotRepository) GetDetail(ctx context.Context, id string) (*domain.ScreenshotDetail, error) {
	shot, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignments, err := r.categoryAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := r.analysisHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.ScreenshotDetail{
		Screenshot: *shot,
		Categories: assignments,
		History:    history,
	}, nil
}

func (r *ScreenshotRepository) categoryAssignments(ctx context.Context, id string) ([]domain.CategoryAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.name, sc.confidence
FROM screenshot_categories sc
JOIN categories c ON c.id = sc.category_id
WHERE sc.screenshot_id = $1
ORDER BY sc.confidence DESC, c.name
`, id)
	if err != nil {
		return nil, fmt.Errorf("query category links: %w", err)
	}
	defer rows.Close()

	assignments := make([]domain.CategoryAssignment, 0, 4)
	for rows.Next() {
		var a domain.CategoryAssignment
		if err := rows.Scan(&a.Name, &a.Confidence); err != nil {
			return nil, fmt.Errorf("scan category link: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *ScreenshotRepository) analysisHistory(ctx context.Context, id string) ([]domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, screenshot_id, analysis_type, result, created_at
FROM analysis_results
WHERE screenshot_id = $1
ORDER BY created_at DESC, id DESC
`, id)
	if err != nil {
		return nil, fmt.Errorf("query analysis history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.AnalysisRecord, 0, 4)
	for rows.Next() {
		var record domain.AnalysisRecord
		var typ string
		var resultRaw []byte
		if err := rows.Scan(&record.ID, &record.ScreenshotID, &typ, &resultRaw, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis record: %w", err)
		}
		if err := json.Unmarshal(resultRaw, &record.Result); err != nil {
			return nil, fmt.Errorf("unmarshal judgement: %w", err)
		}
		record.Type = domain.AnalysisType(typ)
		history = append(history, record)
	}
	return history, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScreenshot(row rowScanner) (*domain.Screenshot, error) {
	var shot domain.Screenshot
	var retention, level string
	err := row.Scan(
		&shot.ID, &shot.Filename, &shot.StorageKey, &shot.SizeBytes, &shot.MimeType,
		&shot.UploadedAt, &shot.AnalyzedAt, &shot.IsImportant, &shot.Confidence,
		&retention, &level, &shot.ExtractedText,
	)
	if err != nil {
		return nil, err
	}
	shot.RetentionPolicy = domain.RetentionPolicy(retention)
	shot.ImportanceLevel = domain.ImportanceLevel(level)
	return &shot, nil
}
