package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/asafonov/screenvault/internal/core/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		Category: q.Get("category"),
		Limit:    defaultListLimit,
	}

	if raw := q.Get("important_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.WrapError(domain.ErrInvalidInput, "parse important_only", err)
		}
		filter.ImportantOnly = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, domain.WrapError(domain.ErrInvalidInput, "parse limit", fmt.Errorf("value %q", raw))
		}
		filter.Limit = v
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, domain.WrapError(domain.ErrInvalidInput, "parse offset", fmt.Errorf("value %q", raw))
		}
		filter.Offset = v
	}

	if raw := q.Get("date_from"); raw != "" {
		t, _, err := parseDateBound(raw)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &t
	}
	if raw := q.Get("date_to"); raw != "" {
		t, dateOnly, err := parseDateBound(raw)
		if err != nil {
			return filter, err
		}
		if dateOnly {
			// A date-only upper bound is inclusive of the whole day.
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DateTo = &t
	}

	return filter, nil
}

func parseDateBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, domain.WrapError(domain.ErrInvalidInput, "parse date bound",
		fmt.Errorf("value %q is neither RFC3339 nor YYYY-MM-DD", raw))
}
