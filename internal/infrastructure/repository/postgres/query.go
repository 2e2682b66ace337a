package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/asafonov/screenvault/internal/core/domain"
)

// List applies the recognized filters ANDed together, newest upload first.
// The category filter joins through the link table.
func (r *ScreenshotRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Screenshot, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT DISTINCT s.id, s.filename, s.storage_key, s.size_bytes, s.mime_type, s.uploaded_at, s.analyzed_at, s.is_important, s.confidence, s.retention_policy, s.importance_level, s.extracted_text
FROM screenshots s`)

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 4)

	if filter.Category != "" {
		args = append(args, filter.Category)
		sb.WriteString(fmt.Sprintf(`
JOIN screenshot_categories sc ON sc.screenshot_id = s.id
JOIN categories c ON c.id = sc.category_id AND c.name = $%d`, len(args)))
	}
	if filter.ImportantOnly {
		conditions = append(conditions, "s.is_important = TRUE")
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("s.uploaded_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("s.uploaded_at <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	args = append(args, filter.Limit)
	sb.WriteString(fmt.Sprintf("\nORDER BY s.uploaded_at DESC\nLIMIT $%d", len(args)))
	args = append(args, filter.Offset)
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query screenshots: %w", err)
	}
	defer rows.Close()

	shots := make([]domain.Screenshot, 0, filter.Limit)
	for rows.Next() {
		shot, err := scanScreenshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan screenshot: %w", err)
		}
		shots = append(shots, *shot)
	}
	return shots, rows.Err()
}

func (r *ScreenshotRepository) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.name, c.description, COUNT(sc.screenshot_id) AS screenshot_count
FROM categories c
LEFT JOIN screenshot_categories sc ON sc.category_id = c.id
GROUP BY c.id, c.name, c.description
ORDER BY screenshot_count DESC, c.name
`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.CategoryCount, 0, 8)
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Name, &c.Description, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// SelectCleanupCandidates returns screenshots the classifier was confident
// are unimportant. The threshold comparison is inclusive.
func (r *ScreenshotRepository) SelectCleanupCandidates(ctx context.Context, confidenceThreshold float64) ([]domain.Screenshot, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+screenshotColumns+`
FROM screenshots
WHERE is_important = FALSE AND confidence >= $1
ORDER BY uploaded_at DESC
`, confidenceThreshold)
	if err != nil {
		return nil, fmt.Errorf("query cleanup candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]domain.Screenshot, 0, 16)
	for rows.Next() {
		shot, err := scanScreenshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cleanup candidate: %w", err)
		}
		candidates = append(candidates, *shot)
	}
	return candidates, rows.Err()
}

func (r *ScreenshotRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COUNT(*) FILTER (WHERE is_important), COALESCE(SUM(size_bytes), 0)
FROM screenshots
`).Scan(&stats.TotalScreenshots, &stats.ImportantScreenshots, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("aggregate screenshot totals: %w", err)
	}

	categories, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	stats.Categories = categories
	return &stats, nil
}
