package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
)

// Backend classifies and selects with Claude. Claude cannot produce images, so
// the illustration half of the gateway reports ErrUnsupported and should be
// routed elsewhere with gateway.Split.
type Backend struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string, opts ...anthropic.ClientOption) *Backend {
	return &Backend{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// NewWithBaseURL points the backend at a different API root, e.g. a test server.
func NewWithBaseURL(apiKey, model, baseURL string) *Backend {
	return New(apiKey, model, anthropic.WithBaseURL(baseURL))
}

func (b *Backend) Classify(ctx context.Context, img domain.Image) (*gateway.Classification, error) {
	content := []anthropic.MessageContent{
		anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
			anthropic.MessagesContentSourceTypeBase64,
			normaliseMIME(img.MimeType),
			base64.StdEncoding.EncodeToString(img.Data),
		)),
		anthropic.NewTextMessageContent(gateway.ClassifyPrompt),
	}
	text, err := b.send(ctx, content, 512)
	if err != nil {
		return nil, err
	}
	return gateway.ParseClassification(text)
}

func (b *Backend) SelectOutfit(ctx context.Context, req gateway.SelectionRequest) (*gateway.Selection, error) {
	content := []anthropic.MessageContent{anthropic.NewTextMessageContent(gateway.SelectionPrompt(req))}
	text, err := b.send(ctx, content, 512)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSelection(text)
}

func (b *Backend) Illustrate(context.Context, gateway.IllustrationRequest) (*domain.Image, error) {
	return nil, fmt.Errorf("claude: %w", gateway.ErrUnsupported)
}

func (b *Backend) RenderGarment(context.Context, domain.Category, domain.Gender) (*domain.Image, error) {
	return nil, fmt.Errorf("claude: %w", gateway.ErrUnsupported)
}

func (b *Backend) send(ctx context.Context, content []anthropic.MessageContent, maxTokens int) (string, error) {
	resp, err := b.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(b.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: content,
		}},
	})
	if err != nil {
		return "", classifyError(err)
	}
	return resp.GetFirstContentText(), nil
}

func classifyError(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimitErr() {
		return &gateway.RateLimitError{Err: err}
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusTooManyRequests {
		return &gateway.RateLimitError{Err: err}
	}
	return fmt.Errorf("failed to call claude: %w", err)
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// Unknown types are sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}

var _ gateway.Gateway = (*Backend)(nil)
