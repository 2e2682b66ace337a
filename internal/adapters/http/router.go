package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/asafonov/screenvault/internal/config"
	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
	"github.com/asafonov/screenvault/internal/observability/metrics"
)

type Router struct {
	cfg        config.Config
	ingest     ports.ScreenshotIngestor
	analyzer   ports.ImageAnalyzer
	reanalyzer ports.ScreenshotReanalyzer
	query      ports.ScreenshotQueryService
	curator    ports.ScreenshotCurator
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.ScreenshotIngestor,
	analyzer ports.ImageAnalyzer,
	reanalyzer ports.ScreenshotReanalyzer,
	query ports.ScreenshotQueryService,
	curator ports.ScreenshotCurator,
) *Router {
	return &Router{
		cfg:        cfg,
		ingest:     ingest,
		analyzer:   analyzer,
		reanalyzer: reanalyzer,
		query:      query,
		curator:    curator,
	}
}

// WithMetrics attaches the prometheus middleware and /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/screenshots", rt.upload)
	mux.HandleFunc("POST /v1/screenshots/analyze", rt.analyze)
	mux.HandleFunc("GET /v1/screenshots", rt.list)
	mux.HandleFunc("GET /v1/screenshots/{id}", rt.getDetail)
	mux.HandleFunc("GET /v1/screenshots/{id}/file", rt.serveBlob)
	mux.HandleFunc("POST /v1/screenshots/{id}/reanalyze", rt.reanalyze)
	mux.HandleFunc("DELETE /v1/screenshots/{id}", rt.deleteScreenshot)
	mux.HandleFunc("GET /v1/categories", rt.categories)
	mux.HandleFunc("GET /v1/stats", rt.stats)
	mux.HandleFunc("GET /v1/stats/export", rt.exportStats)
	mux.HandleFunc("POST /v1/cleanup", rt.cleanup)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	file, header, ok := rt.imageFromForm(w, r)
	if !ok {
		return
	}
	defer file.Close()

	outcome, err := rt.ingest.Upload(r.Context(), header.Filename, uploadContentType(header), file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAnalysisResponse(outcome))
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	file, header, ok := rt.imageFromForm(w, r)
	if !ok {
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, domain.WrapError(domain.ErrInvalidInput, "read upload", err))
		return
	}
	judgement, err := rt.analyzer.Analyze(r.Context(), image, uploadContentType(header))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, judgement)
}

func (rt *Router) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	shots, err := rt.query.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Screenshots: shots,
		Count:       len(shots),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
}

func (rt *Router) getDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := rt.query.GetDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *Router) serveBlob(w http.ResponseWriter, r *http.Request) {
	shot, reader, err := rt.query.OpenBlob(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", shot.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(shot.SizeBytes, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (rt *Router) reanalyze(w http.ResponseWriter, r *http.Request) {
	outcome, err := rt.reanalyzer.Reanalyze(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(outcome))
}

func (rt *Router) deleteScreenshot(w http.ResponseWriter, r *http.Request) {
	if err := rt.curator.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := rt.query.Categories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.query.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) cleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfidenceThreshold *float64 `json:"confidence_threshold"`
		DryRun              bool     `json:"dry_run"`
	}
	// An empty body runs with configuration defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode cleanup request", err))
		return
	}
	threshold := rt.cfg.CleanupDefaultThreshold
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}
	report, err := rt.curator.Cleanup(r.Context(), threshold, req.DryRun)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// imageFromForm pulls the single multipart image file, enforcing the upload
// size cap. A missing field or oversized body reports 400.
func (rt *Router) imageFromForm(w http.ResponseWriter, r *http.Request) (io.ReadCloser, *fileHeader, bool) {
	maxBytes := rt.cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, domain.WrapError(domain.ErrInvalidInput, "parse upload",
			err))
		return nil, nil, false
	}
	return file, &fileHeader{Filename: header.Filename, ContentType: header.Header.Get("Content-Type")}, true
}

type fileHeader struct {
	Filename    string
	ContentType string
}

func uploadContentType(header *fileHeader) string {
	if header.ContentType != "" {
		return header.ContentType
	}
	return "application/octet-stream"
}

type listResponse struct {
	Screenshots []domain.Screenshot `json:"screenshots"`
	Count       int                 `json:"count"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

type analysisResponse struct {
	ID              string                      `json:"id"`
	Filename        string                      `json:"filename"`
	IsImportant     bool                        `json:"is_important"`
	Confidence      float64                     `json:"confidence"`
	Categories      []domain.CategoryAssignment `json:"categories"`
	Description     string                      `json:"description,omitempty"`
	ExtractedText   string                      `json:"extracted_text,omitempty"`
	RetentionPolicy domain.RetentionPolicy      `json:"retention_policy"`
	ImportanceLevel domain.ImportanceLevel      `json:"importance_level"`
	UploadedAt      time.Time                   `json:"uploaded_at"`
}

func newAnalysisResponse(outcome *domain.AnalysisOutcome) analysisResponse {
	categories := make([]domain.CategoryAssignment, 0, len(outcome.Judgement.Categories))
	for _, c := range outcome.Judgement.Categories {
		categories = append(categories, domain.CategoryAssignment{Name: c.Name, Confidence: c.Confidence})
	}
	return analysisResponse{
		ID:              outcome.Screenshot.ID,
		Filename:        outcome.Screenshot.Filename,
		IsImportant:     outcome.Judgement.IsImportant,
		Confidence:      outcome.Judgement.Confidence,
		Categories:      categories,
		Description:     outcome.Judgement.Description,
		ExtractedText:   outcome.Judgement.ExtractedText,
		RetentionPolicy: outcome.Judgement.RetentionPolicy,
		ImportanceLevel: outcome.Judgement.ImportanceLevel,
		UploadedAt:      outcome.Screenshot.UploadedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
