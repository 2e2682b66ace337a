package mcpadapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
)

const defaultMimeType = "image/png"

// Handlers binds the tool surface to the inbound ports.
type Handlers struct {
	ingestor   ports.ScreenshotIngestor
	analyzer   ports.ImageAnalyzer
	reanalyzer ports.ScreenshotReanalyzer
	query      ports.ScreenshotQueryService
	curator    ports.ScreenshotCurator

	cleanupThreshold float64
}

func NewHandlers(
	ingestor ports.ScreenshotIngestor,
	analyzer ports.ImageAnalyzer,
	reanalyzer ports.ScreenshotReanalyzer,
	query ports.ScreenshotQueryService,
	curator ports.ScreenshotCurator,
	cleanupThreshold float64,
) *Handlers {
	return &Handlers{
		ingestor:         ingestor,
		analyzer:         analyzer,
		reanalyzer:       reanalyzer,
		query:            query,
		curator:          curator,
		cleanupThreshold: cleanupThreshold,
	}
}

type classifyRequest struct {
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
}

type analyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

type searchRequest struct {
	Category      string `json:"category"`
	ImportantOnly bool   `json:"important_only"`
	DateFrom      string `json:"date_from"`
	DateTo        string `json:"date_to"`
	Limit         int    `json:"limit"`
	Offset        int    `json:"offset"`
}

type idRequest struct {
	ID string `json:"id"`
}

type cleanupRequest struct {
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	DryRun              bool     `json:"dry_run"`
}

func (h *Handlers) classify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[classifyRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	image, err := decodeImage(args.ImageBase64)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	filename := args.Filename
	if filename == "" {
		filename = "screenshot.png"
	}
	outcome, err := h.ingestor.Upload(ctx, filename, orDefault(args.MimeType, defaultMimeType), bytes.NewReader(image))
	if err != nil {
		return domainError(err), nil
	}
	return successResult(outcome)
}

func (h *Handlers) analyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[analyzeRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	image, err := decodeImage(args.ImageBase64)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	judgement, err := h.analyzer.Analyze(ctx, image, orDefault(args.MimeType, defaultMimeType))
	if err != nil {
		return domainError(err), nil
	}
	return successResult(judgement)
}

func (h *Handlers) extractText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[analyzeRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	image, err := decodeImage(args.ImageBase64)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	judgement, err := h.analyzer.Analyze(ctx, image, orDefault(args.MimeType, defaultMimeType))
	if err != nil {
		return domainError(err), nil
	}
	return successResult(map[string]string{"extracted_text": judgement.ExtractedText})
}

func (h *Handlers) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[searchRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	filter := domain.ListFilter{
		Category:      args.Category,
		ImportantOnly: args.ImportantOnly,
		Limit:         args.Limit,
		Offset:        args.Offset,
	}
	if filter.DateFrom, err = parseDate(args.DateFrom, false); err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	if filter.DateTo, err = parseDate(args.DateTo, true); err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	items, err := h.query.List(ctx, filter)
	if err != nil {
		return domainError(err), nil
	}
	return successResult(map[string]any{
		"screenshots": items,
		"count":       len(items),
	})
}

func (h *Handlers) get(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[idRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	detail, err := h.query.GetDetail(ctx, args.ID)
	if err != nil {
		return domainError(err), nil
	}
	return successResult(detail)
}

func (h *Handlers) reanalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[idRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	outcome, err := h.reanalyzer.Reanalyze(ctx, args.ID)
	if err != nil {
		return domainError(err), nil
	}
	return successResult(outcome)
}

func (h *Handlers) stats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.query.Stats(ctx)
	if err != nil {
		return domainError(err), nil
	}
	return successResult(stats)
}

func (h *Handlers) cleanup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[cleanupRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	threshold := h.cleanupThreshold
	if args.ConfidenceThreshold != nil {
		threshold = *args.ConfidenceThreshold
	}
	report, err := h.curator.Cleanup(ctx, threshold, args.DryRun)
	if err != nil {
		return domainError(err), nil
	}
	return successResult(report)
}

func (h *Handlers) delete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[idRequest](req)
	if err != nil {
		return errorResult("invalid_arguments", err), nil
	}
	if err := h.curator.Delete(ctx, args.ID); err != nil {
		return domainError(err), nil
	}
	return successResult(map[string]any{"deleted": true, "id": args.ID})
}

func successResult(payload any) (*mcp.CallToolResult, error) {
	res, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return errorResult("encode_result", err), nil
	}
	return res, nil
}

func errorResult(code string, err error) *mcp.CallToolResult {
	res := mcp.NewToolResultError(fmt.Sprintf("%s: %v", code, err))
	return res
}

func domainError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return errorResult("invalid_input", err)
	case errors.Is(err, domain.ErrScreenshotNotFound), errors.Is(err, domain.ErrBlobNotFound):
		return errorResult("not_found", err)
	case errors.Is(err, domain.ErrTemporary):
		return errorResult("temporarily_unavailable", err)
	default:
		return errorResult("internal", err)
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want RFC3339 or YYYY-MM-DD", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
