package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/asafonov/screenvault/internal/core/domain"
)

// exportStats serves the stats aggregates as an xlsx workbook: one summary
// sheet plus a per-category breakdown.
func (rt *Router) exportStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.query.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	workbook, err := buildStatsWorkbook(stats)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("screenvault-stats-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := workbook.WriteTo(w); err != nil {
		slog.Error("stats_export_write_failed", "error", err)
	}
}

func buildStatsWorkbook(stats *domain.Stats) (*excelize.File, error) {
	f := excelize.NewFile()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	summaryRows := [][]any{
		{"Metric", "Value"},
		{"Total screenshots", stats.TotalScreenshots},
		{"Important screenshots", stats.ImportantScreenshots},
		{"Total bytes", stats.TotalBytes},
	}
	for i, row := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	const categorySheet = "Categories"
	if _, err := f.NewSheet(categorySheet); err != nil {
		return nil, fmt.Errorf("create category sheet: %w", err)
	}
	header := []any{"Category", "Screenshots"}
	if err := f.SetSheetRow(categorySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write category header: %w", err)
	}
	for i, category := range stats.Categories {
		row := []any{category.Name, category.Count}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(categorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write category row: %w", err)
		}
	}

	return f, nil
}
