package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/asafonov/screenvault/internal/core/domain"
)

type repoFake struct {
	created        *domain.Screenshot
	createErr      error
	byID           map[string]*domain.Screenshot
	applied        []appliedAnalysis
	applyErr       error
	deleted        []string
	deleteErr      map[string]error
	candidates     []domain.Screenshot
	candidatesErr  error
	listResult     []domain.Screenshot
	lastListFilter domain.ListFilter
}

type appliedAnalysis struct {
	id         string
	typ        domain.AnalysisType
	judgement  domain.Judgement
	analyzedAt time.Time
}

func newRepoFake() *repoFake {
	return &repoFake{byID: map[string]*domain.Screenshot{}}
}

func (f *repoFake) Create(_ context.Context, shot *domain.Screenshot) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *shot
	f.created = &copied
	f.byID[shot.ID] = &copied
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Screenshot, error) {
	shot, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrScreenshotNotFound, "get screenshot", errors.New(id))
	}
	copied := *shot
	return &copied, nil
}

func (f *repoFake) GetDetail(context.Context, string) (*domain.ScreenshotDetail, error) {
	return nil, errors.New("not implemented")
}

func (f *repoFake) ApplyAnalysis(_ context.Context, id string, typ domain.AnalysisType, judgement domain.Judgement, analyzedAt time.Time) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, appliedAnalysis{id: id, typ: typ, judgement: judgement, analyzedAt: analyzedAt})
	return nil
}

func (f *repoFake) ResolveCategory(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *repoFake) List(_ context.Context, filter domain.ListFilter) ([]domain.Screenshot, error) {
	f.lastListFilter = filter
	return f.listResult, nil
}

func (f *repoFake) ListCategories(context.Context) ([]domain.CategoryCount, error) {
	return nil, errors.New("not implemented")
}

func (f *repoFake) SelectCleanupCandidates(context.Context, float64) ([]domain.Screenshot, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	return f.candidates, nil
}

func (f *repoFake) Stats(context.Context) (*domain.Stats, error) {
	return nil, errors.New("not implemented")
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type blobFake struct {
	saved     map[string][]byte
	saveErr   error
	openErr   error
	deleted   []string
	deleteErr map[string]error
}

func newBlobFake() *blobFake {
	return &blobFake{saved: map[string][]byte{}}
}

func (f *blobFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *blobFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.saved[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrBlobNotFound, "open blob", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *blobFake) Delete(_ context.Context, key string) error {
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	delete(f.saved, key)
	return nil
}

type classifierFake struct {
	judgement domain.Judgement
	err       error
	calls     int
	lastMime  string
	lastImage []byte
}

func (f *classifierFake) Classify(_ context.Context, image []byte, mimeType string) (domain.Judgement, error) {
	f.calls++
	f.lastImage = image
	f.lastMime = mimeType
	if f.err != nil {
		return domain.Judgement{}, f.err
	}
	return f.judgement, nil
}

type eventsFake struct {
	analyzed []string
	deleted  []string
	err      error
}

func (f *eventsFake) PublishAnalyzed(_ context.Context, id string, _ domain.AnalysisType) error {
	if f.err != nil {
		return f.err
	}
	f.analyzed = append(f.analyzed, id)
	return nil
}

func (f *eventsFake) PublishDeleted(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type recorderFake struct {
	outcomes  []string
	deletions int
}

func (f *recorderFake) ObserveClassification(outcome string, _ time.Duration) {
	f.outcomes = append(f.outcomes, outcome)
}

func (f *recorderFake) ObserveDeletions(count int) {
	f.deletions += count
}
