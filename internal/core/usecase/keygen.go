package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultExtension = "jpg"

// StorageKey derives a blob key from the upload time and a random
// identifier: screenshots/{year}/{month}/{uuid}.{ext}. Keys are never
// reused; two uploads of the same image get distinct keys.
func StorageKey(uploadedAt time.Time, filename string) string {
	t := uploadedAt.UTC()
	return fmt.Sprintf("screenshots/%d/%02d/%s.%s",
		t.Year(), int(t.Month()), uuid.NewString(), imageExtension(filename))
}

func imageExtension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return defaultExtension
	}
	for _, r := range ext {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !valid {
			return defaultExtension
		}
	}
	return ext
}
