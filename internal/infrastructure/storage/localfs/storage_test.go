package localfs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/asafonov/screenvault/internal/core/domain"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestSaveOpenRoundTrip(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	key := "screenshots/2026/08/abc.png"

	if err := s.Save(ctx, key, strings.NewReader("pixels")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reader, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()
	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(raw) != "pixels" {
		t.Fatalf("expected pixels, got %q", raw)
	}
}

func TestOpenMissingKey(t *testing.T) {
	s := newStorage(t)

	_, err := s.Open(context.Background(), "screenshots/2026/08/missing.png")
	if !domain.IsKind(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected blob not found, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	key := "screenshots/2026/08/abc.png"

	if err := s.Save(ctx, key, strings.NewReader("pixels")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := s.Open(ctx, key); !domain.IsKind(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected blob gone, got %v", err)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	s := newStorage(t)

	for _, key := range []string{"", "../etc/passwd", "a/../../b"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("key %q: expected invalid input, got %v", key, err)
		}
	}
}
