package mcpadapter

import (
	"context"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/asafonov/screenvault/internal/core/domain"
)

type mcpIngestFake struct {
	filename string
	mimeType string
	size     int
}

func (f *mcpIngestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.AnalysisOutcome, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.filename = filename
	f.mimeType = mimeType
	f.size = len(raw)
	return &domain.AnalysisOutcome{
		Screenshot: domain.Screenshot{ID: "shot-1", Filename: filename, UploadedAt: time.Now().UTC()},
		Judgement:  domain.FallbackJudgement(),
	}, nil
}

type mcpAnalyzerFake struct{}

func (mcpAnalyzerFake) Analyze(context.Context, []byte, string) (domain.Judgement, error) {
	j := domain.FallbackJudgement()
	j.ExtractedText = "hello from screen"
	return j.Normalize(), nil
}

type mcpReanalyzerFake struct{}

func (mcpReanalyzerFake) Reanalyze(_ context.Context, id string) (*domain.AnalysisOutcome, error) {
	return nil, domain.WrapError(domain.ErrScreenshotNotFound, "reanalyze", io.EOF)
}

type mcpQueryFake struct {
	lastFilter domain.ListFilter
}

func (f *mcpQueryFake) List(_ context.Context, filter domain.ListFilter) ([]domain.Screenshot, error) {
	f.lastFilter = filter
	return []domain.Screenshot{{ID: "shot-1"}}, nil
}

func (f *mcpQueryFake) GetDetail(context.Context, string) (*domain.ScreenshotDetail, error) {
	return &domain.ScreenshotDetail{}, nil
}

func (f *mcpQueryFake) OpenBlob(context.Context, string) (*domain.Screenshot, io.ReadCloser, error) {
	return nil, nil, domain.WrapError(domain.ErrBlobNotFound, "open blob", io.EOF)
}

func (f *mcpQueryFake) Categories(context.Context) ([]domain.CategoryCount, error) {
	return nil, nil
}

func (f *mcpQueryFake) Stats(context.Context) (*domain.Stats, error) {
	return &domain.Stats{TotalScreenshots: 3}, nil
}

type mcpCuratorFake struct {
	lastThreshold float64
	lastDryRun    bool
}

func (f *mcpCuratorFake) Delete(_ context.Context, id string) error {
	if id != "shot-1" {
		return domain.WrapError(domain.ErrScreenshotNotFound, "delete", io.EOF)
	}
	return nil
}

func (f *mcpCuratorFake) Cleanup(_ context.Context, threshold float64, dryRun bool) (*domain.CleanupReport, error) {
	f.lastThreshold = threshold
	f.lastDryRun = dryRun
	return &domain.CleanupReport{DryRun: dryRun, Threshold: threshold}, nil
}

func newTestHandlers(query *mcpQueryFake, curator *mcpCuratorFake) (*Handlers, *mcpIngestFake) {
	if query == nil {
		query = &mcpQueryFake{}
	}
	if curator == nil {
		curator = &mcpCuratorFake{}
	}
	ingest := &mcpIngestFake{}
	return NewHandlers(ingest, mcpAnalyzerFake{}, mcpReanalyzerFake{}, query, curator, 0.8), ingest
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestClassifyToolUploadsDecodedImage(t *testing.T) {
	h, ingest := newTestHandlers(nil, nil)

	encoded := base64.StdEncoding.EncodeToString([]byte("pixels"))
	res, err := h.classify(context.Background(), makeRequest(map[string]any{
		"image_base64": encoded,
		"filename":     "shot.png",
		"mime_type":    "image/png",
	}))
	if err != nil {
		t.Fatalf("classify() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	if ingest.filename != "shot.png" || ingest.mimeType != "image/png" || ingest.size != 6 {
		t.Fatalf("unexpected upload: %+v", ingest)
	}
}

func TestClassifyToolAcceptsDataURL(t *testing.T) {
	h, ingest := newTestHandlers(nil, nil)

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pixels"))
	res, err := h.classify(context.Background(), makeRequest(map[string]any{"image_base64": encoded}))
	if err != nil {
		t.Fatalf("classify() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	if ingest.mimeType != "image/png" || ingest.filename != "screenshot.png" {
		t.Fatalf("expected defaults applied, got %+v", ingest)
	}
}

func TestClassifyToolRejectsBadBase64(t *testing.T) {
	h, _ := newTestHandlers(nil, nil)

	res, err := h.classify(context.Background(), makeRequest(map[string]any{"image_base64": "%%%"}))
	if err != nil {
		t.Fatalf("classify() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error result")
	}
}

func TestSearchToolBuildsFilter(t *testing.T) {
	query := &mcpQueryFake{}
	h, _ := newTestHandlers(query, nil)

	res, err := h.search(context.Background(), makeRequest(map[string]any{
		"category":       "Work",
		"important_only": true,
		"date_from":      "2026-08-01",
		"date_to":        "2026-08-15",
		"limit":          20,
		"offset":         5,
	}))
	if err != nil {
		t.Fatalf("search() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	f := query.lastFilter
	if f.Category != "Work" || !f.ImportantOnly || f.Limit != 20 || f.Offset != 5 {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if f.DateTo == nil || f.DateTo.Hour() != 23 {
		t.Fatalf("expected inclusive end of day, got %v", f.DateTo)
	}
}

func TestSearchToolRejectsBadDate(t *testing.T) {
	h, _ := newTestHandlers(nil, nil)

	res, err := h.search(context.Background(), makeRequest(map[string]any{"date_from": "last tuesday"}))
	if err != nil {
		t.Fatalf("search() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error result")
	}
}

func TestCleanupToolUsesConfiguredDefaultThreshold(t *testing.T) {
	curator := &mcpCuratorFake{}
	h, _ := newTestHandlers(nil, curator)

	res, err := h.cleanup(context.Background(), makeRequest(map[string]any{"dry_run": true}))
	if err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	if curator.lastThreshold != 0.8 || !curator.lastDryRun {
		t.Fatalf("expected default threshold dry run, got %v dry=%v", curator.lastThreshold, curator.lastDryRun)
	}
}

func TestCleanupToolExplicitThreshold(t *testing.T) {
	curator := &mcpCuratorFake{}
	h, _ := newTestHandlers(nil, curator)

	if _, err := h.cleanup(context.Background(), makeRequest(map[string]any{"confidence_threshold": 0.95})); err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}
	if curator.lastThreshold != 0.95 {
		t.Fatalf("expected explicit threshold, got %v", curator.lastThreshold)
	}
}

func TestDeleteToolNotFound(t *testing.T) {
	h, _ := newTestHandlers(nil, nil)

	res, err := h.delete(context.Background(), makeRequest(map[string]any{"id": "missing"}))
	if err != nil {
		t.Fatalf("delete() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error result")
	}
}

func TestExtractTextTool(t *testing.T) {
	h, _ := newTestHandlers(nil, nil)

	encoded := base64.StdEncoding.EncodeToString([]byte("pixels"))
	res, err := h.extractText(context.Background(), makeRequest(map[string]any{"image_base64": encoded}))
	if err != nil {
		t.Fatalf("extractText() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
}
