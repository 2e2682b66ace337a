package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/core/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type QueryScreenshotsUseCase struct {
	repo  ports.ScreenshotRepository
	blobs ports.BlobStore
}

func NewQueryScreenshotsUseCase(repo ports.ScreenshotRepository, blobs ports.BlobStore) *QueryScreenshotsUseCase {
	return &QueryScreenshotsUseCase{repo: repo, blobs: blobs}
}

func (uc *QueryScreenshotsUseCase) List(ctx context.Context, filter domain.ListFilter) ([]domain.Screenshot, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	shots, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	return shots, nil
}

func (uc *QueryScreenshotsUseCase) GetDetail(ctx context.Context, id string) (*domain.ScreenshotDetail, error) {
	detail, err := uc.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch screenshot detail: %w", err)
	}
	return detail, nil
}

// OpenBlob returns the catalog row together with a reader over the stored
// bytes. Missing row and missing blob both report NotFound.
func (uc *QueryScreenshotsUseCase) OpenBlob(ctx context.Context, id string) (*domain.Screenshot, io.ReadCloser, error) {
	shot, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch screenshot: %w", err)
	}
	reader, err := uc.blobs.Open(ctx, shot.StorageKey)
	if err != nil {
		if domain.IsKind(err, domain.ErrBlobNotFound) {
			return nil, nil, err
		}
		return nil, nil, domain.WrapError(domain.ErrStorage, "open blob", err)
	}
	return shot, reader, nil
}

func (uc *QueryScreenshotsUseCase) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	categories, err := uc.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (uc *QueryScreenshotsUseCase) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := uc.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}
	return stats, nil
}
