package domain

// Judgement is the structured output of the vision classifier for one image.
type Judgement struct {
	IsImportant     bool                `json:"is_important"`
	Confidence      float64             `json:"confidence"`
	Categories      []CategoryJudgement `json:"categories"`
	ExtractedText   string              `json:"extracted_text"`
	RetentionPolicy RetentionPolicy     `json:"retention_policy"`
	ImportanceLevel ImportanceLevel     `json:"importance_level"`
	Description     string              `json:"description,omitempty"`
}

// CategoryJudgement is one category label with the confidence the classifier
// attached to that specific label.
type CategoryJudgement struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

const (
	// FallbackCategory is assigned when classification is unavailable.
	FallbackCategory = "Temp"

	// FallbackExtractedText marks a judgement produced without a classifier
	// response.
	FallbackExtractedText = "[classification unavailable]"
)

// FallbackJudgement is substituted when the classifier call fails for any
// reason. Every upload always receives a syntactically valid judgement; a
// catalog row is never left without analysis metadata.
func FallbackJudgement() Judgement {
	return Judgement{
		IsImportant:     false,
		Confidence:      0.5,
		Categories:      []CategoryJudgement{{Name: FallbackCategory, Confidence: 0.5}},
		ExtractedText:   FallbackExtractedText,
		RetentionPolicy: RetentionDeleteImmediately,
		ImportanceLevel: ImportanceLow,
	}
}

// Normalize clamps confidences into [0,1], fills enum fields with safe
// defaults, and guarantees at least one category label.
func (j Judgement) Normalize() Judgement {
	out := j
	out.Confidence = clamp01(out.Confidence)

	switch out.RetentionPolicy {
	case RetentionKeep, RetentionDeleteAfter7Days, RetentionDeleteImmediately:
	default:
		out.RetentionPolicy = RetentionKeep
	}
	switch out.ImportanceLevel {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow:
	default:
		out.ImportanceLevel = ImportanceLow
	}

	categories := make([]CategoryJudgement, 0, len(out.Categories))
	seen := make(map[string]bool, len(out.Categories))
	for _, c := range out.Categories {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		confidence := c.Confidence
		if confidence == 0 {
			// Single-label classifier variants return only the scalar
			// confidence; broadcast it to the label.
			confidence = out.Confidence
		}
		categories = append(categories, CategoryJudgement{
			Name:       c.Name,
			Confidence: clamp01(confidence),
		})
	}
	if len(categories) == 0 {
		categories = append(categories, CategoryJudgement{
			Name:       FallbackCategory,
			Confidence: out.Confidence,
		})
	}
	out.Categories = categories
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
