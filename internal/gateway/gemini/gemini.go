// Package gemini implements the closet gateway on the Gemini API. It is the
// only backend that can draw.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
)

const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	// BaseURL overrides the API endpoint; empty uses the public one.
	BaseURL string
}

type Backend struct {
	client     *genai.Client
	textModel  string
	imageModel string
	logger     *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Backend, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	b := &Backend{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		logger:     logger,
	}
	if b.textModel == "" {
		b.textModel = DefaultTextModel
	}
	if b.imageModel == "" {
		b.imageModel = DefaultImageModel
	}
	return b, nil
}

func categoryEnum() []string {
	out := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		out[i] = string(c)
	}
	return out
}

var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category":    {Type: genai.TypeString, Enum: categoryEnum()},
		"description": {Type: genai.TypeString},
		"color":       {Type: genai.TypeString},
	},
	Required: []string{"category", "description", "color"},
}

var selectionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"selectedIds": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"stylistNote": {Type: genai.TypeString},
	},
	Required: []string{"selectedIds", "stylistNote"},
}

func (b *Backend) Classify(ctx context.Context, img domain.Image) (*gateway.Classification, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, img.MimeType),
		genai.NewPartFromText(gateway.ClassifyPrompt),
	}
	result, err := b.generate(ctx, b.textModel, parts, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   classificationSchema,
	})
	if err != nil {
		return nil, err
	}
	return gateway.ParseClassification(result.Text())
}

func (b *Backend) SelectOutfit(ctx context.Context, req gateway.SelectionRequest) (*gateway.Selection, error) {
	parts := []*genai.Part{genai.NewPartFromText(gateway.SelectionPrompt(req))}
	result, err := b.generate(ctx, b.textModel, parts, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   selectionSchema,
	})
	if err != nil {
		return nil, err
	}
	return gateway.ParseSelection(result.Text())
}

func (b *Backend) Illustrate(ctx context.Context, req gateway.IllustrationRequest) (*domain.Image, error) {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(gateway.IllustrationPrompt(req)))
	return b.drawImage(ctx, parts)
}

func (b *Backend) RenderGarment(ctx context.Context, category domain.Category, gender domain.Gender) (*domain.Image, error) {
	parts := []*genai.Part{genai.NewPartFromText(gateway.GarmentPrompt(category, gender))}
	return b.drawImage(ctx, parts)
}

func (b *Backend) drawImage(ctx context.Context, parts []*genai.Part) (*domain.Image, error) {
	result, err := b.generate(ctx, b.imageModel, parts, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, err
	}
	img, err := firstInlineImage(result)
	if err != nil {
		return nil, err
	}
	if img == nil {
		b.logger.Warn("gemini returned no image", "text", result.Text())
		return nil, fmt.Errorf("%w: no image in response", gateway.ErrIllustration)
	}
	return img, nil
}

func (b *Backend) generate(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	result, err := b.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, classifyError(err)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini blocked prompt: %s", result.PromptFeedback.BlockReason)
	}
	if result.UsageMetadata != nil {
		b.logger.Debug("gemini usage",
			"model", model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
		)
	}
	return result, nil
}

// firstInlineImage returns the first image part of any candidate, or nil.
func firstInlineImage(result *genai.GenerateContentResponse) (*domain.Image, error) {
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			blob := part.InlineData
			if blob != nil && strings.HasPrefix(blob.MIMEType, "image/") && len(blob.Data) > 0 {
				return &domain.Image{Data: blob.Data, MimeType: blob.MIMEType}, nil
			}
		}
	}
	return nil, nil
}

// classifyError turns quota and throttling responses into RateLimitError.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isRateLimit(apiErr) {
		return &gateway.RateLimitError{Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && isRateLimit(*apiErrPtr) {
		return &gateway.RateLimitError{Err: err}
	}
	return fmt.Errorf("failed to call gemini: %w", err)
}

func isRateLimit(e genai.APIError) bool {
	return e.Code == http.StatusTooManyRequests ||
		e.Status == "RESOURCE_EXHAUSTED" ||
		strings.Contains(strings.ToLower(e.Message), "quota")
}

var _ gateway.Gateway = (*Backend)(nil)
