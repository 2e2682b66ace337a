package domain

import "time"

type AnalysisType string

const (
	AnalysisInitial    AnalysisType = "initial"
	AnalysisReanalysis AnalysisType = "reanalysis"
)

type RetentionPolicy string

const (
	RetentionKeep              RetentionPolicy = "keep"
	RetentionDeleteAfter7Days  RetentionPolicy = "delete_after_7_days"
	RetentionDeleteImmediately RetentionPolicy = "delete_immediately"
)

type ImportanceLevel string

const (
	ImportanceCritical ImportanceLevel = "critical"
	ImportanceHigh     ImportanceLevel = "high"
	ImportanceMedium   ImportanceLevel = "medium"
	ImportanceLow      ImportanceLevel = "low"
)

// Screenshot is the catalog row for one uploaded image. AnalyzedAt and
// Confidence stay nil until the first classification completes.
type Screenshot struct {
	ID              string          `json:"id"`
	Filename        string          `json:"filename"`
	StorageKey      string          `json:"storage_key"`
	SizeBytes       int64           `json:"size_bytes"`
	MimeType        string          `json:"mime_type"`
	UploadedAt      time.Time       `json:"uploaded_at"`
	AnalyzedAt      *time.Time      `json:"analyzed_at,omitempty"`
	IsImportant     bool            `json:"is_important"`
	Confidence      *float64        `json:"confidence,omitempty"`
	RetentionPolicy RetentionPolicy `json:"retention_policy,omitempty"`
	ImportanceLevel ImportanceLevel `json:"importance_level,omitempty"`
	ExtractedText   string          `json:"extracted_text,omitempty"`
}

// Category is created lazily on first use of a name. Names are unique and
// case-sensitive; the database constraint is the enforcement boundary.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryAssignment is one link row: a category applied to a screenshot
// with the confidence of that specific assignment.
type CategoryAssignment struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// AnalysisRecord is one append-only entry in the classification history.
// Records are never updated or deduplicated.
type AnalysisRecord struct {
	ID           int64        `json:"id"`
	ScreenshotID string       `json:"screenshot_id"`
	Type         AnalysisType `json:"analysis_type"`
	Result       Judgement    `json:"result"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ScreenshotDetail bundles the summary row with its current category links
// and the full analysis history, most recent first.
type ScreenshotDetail struct {
	Screenshot Screenshot           `json:"screenshot"`
	Categories []CategoryAssignment `json:"categories"`
	History    []AnalysisRecord     `json:"history"`
}

// ListFilter narrows a listing query. All active conditions are ANDed.
// Date bounds are inclusive.
type ListFilter struct {
	Category      string
	ImportantOnly bool
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Offset        int
}

type CategoryCount struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Count       int64  `json:"count"`
}

type Stats struct {
	TotalScreenshots     int64           `json:"total_screenshots"`
	ImportantScreenshots int64           `json:"important_screenshots"`
	TotalBytes           int64           `json:"total_bytes"`
	Categories           []CategoryCount `json:"categories"`
}

// AnalysisOutcome is what upload and reanalysis return: the refreshed
// catalog row plus the judgement that produced it.
type AnalysisOutcome struct {
	Screenshot Screenshot `json:"screenshot"`
	Judgement  Judgement  `json:"judgement"`
}

// CleanupReport describes one cleanup run. In dry-run mode Deleted is zero
// and Candidates lists what an execute run would remove.
type CleanupReport struct {
	DryRun     bool         `json:"dry_run"`
	Threshold  float64      `json:"threshold"`
	Candidates []Screenshot `json:"candidates"`
	Deleted    int          `json:"deleted"`
}
