package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/asafonov/screenvault/internal/core/domain"
	"github.com/asafonov/screenvault/internal/infrastructure/resilience"
)

// Client classifies screenshots through an OpenAI-compatible vision model.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	executor  *resilience.Executor
}

type Options struct {
	BaseURL   string
	MaxTokens int
	Executor  *resilience.Executor
}

func New(apiKey, model string, options Options) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if options.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(options.BaseURL, "/")
	}
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
		executor:  options.Executor,
	}
}

func (c *Client) Classify(ctx context.Context, image []byte, mimeType string) (domain.Judgement, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	request := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: classificationPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	var response openai.ChatCompletionResponse
	call := func(callCtx context.Context) error {
		var err error
		response, err = c.client.CreateChatCompletion(callCtx, request)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision.classify", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Judgement{}, fmt.Errorf("vision classify request: %w", err)
	}
	if len(response.Choices) == 0 {
		return domain.Judgement{}, errors.New("vision classify: empty choice list")
	}

	return parseJudgement(response.Choices[0].Message.Content)
}

func parseJudgement(raw string) (domain.Judgement, error) {
	var payload judgementPayload
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &payload); err != nil {
		return domain.Judgement{}, fmt.Errorf("parse judgement json: %w", err)
	}
	return payload.toDomain(), nil
}

// judgementPayload tolerates both classifier response variants: the
// multi-label form with per-category confidences and the single-label form
// with one category string and a scalar confidence.
type judgementPayload struct {
	IsImportant     bool              `json:"is_important"`
	Confidence      float64           `json:"confidence"`
	Categories      []categoryPayload `json:"categories"`
	Category        string            `json:"category"`
	FolderCategory  string            `json:"folder_category"`
	ExtractedText   string            `json:"extracted_text"`
	RetentionPolicy string            `json:"retention_policy"`
	ImportanceLevel string            `json:"importance_level"`
	Description     string            `json:"description"`
}

type categoryPayload struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

func (c *categoryPayload) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		return nil
	}
	type alias categoryPayload
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*c = categoryPayload(out)
	return nil
}

func (p judgementPayload) toDomain() domain.Judgement {
	categories := make([]domain.CategoryJudgement, 0, len(p.Categories)+1)
	for _, c := range p.Categories {
		categories = append(categories, domain.CategoryJudgement{Name: c.Name, Confidence: c.Confidence})
	}
	for _, single := range []string{p.Category, p.FolderCategory} {
		if single != "" {
			categories = append(categories, domain.CategoryJudgement{Name: single, Confidence: p.Confidence})
		}
	}
	return domain.Judgement{
		IsImportant:     p.IsImportant,
		Confidence:      p.Confidence,
		Categories:      categories,
		ExtractedText:   p.ExtractedText,
		RetentionPolicy: domain.RetentionPolicy(p.RetentionPolicy),
		ImportanceLevel: domain.ImportanceLevel(p.ImportanceLevel),
		Description:     p.Description,
	}.Normalize()
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
