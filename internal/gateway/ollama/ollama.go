package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
)

// Backend talks to a local Ollama server. It covers the text half of the
// gateway only.
type Backend struct {
	host   string
	model  string
	client *http.Client
}

func New(host, model string) *Backend {
	return &Backend{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (b *Backend) Classify(ctx context.Context, img domain.Image) (*gateway.Classification, error) {
	text, err := b.generate(ctx, gateway.ClassifyPrompt, [][]byte{img.Data})
	if err != nil {
		return nil, err
	}
	return gateway.ParseClassification(text)
}

func (b *Backend) SelectOutfit(ctx context.Context, req gateway.SelectionRequest) (*gateway.Selection, error) {
	text, err := b.generate(ctx, gateway.SelectionPrompt(req), nil)
	if err != nil {
		return nil, err
	}
	return gateway.ParseSelection(text)
}

func (b *Backend) Illustrate(context.Context, gateway.IllustrationRequest) (*domain.Image, error) {
	return nil, fmt.Errorf("ollama: %w", gateway.ErrUnsupported)
}

func (b *Backend) RenderGarment(context.Context, domain.Category, domain.Gender) (*domain.Image, error) {
	return nil, fmt.Errorf("ollama: %w", gateway.ErrUnsupported)
}

func (b *Backend) generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	reqBody := map[string]interface{}{
		"model":  b.model,
		"prompt": prompt,
		"format": "json",
		"stream": false,
	}
	if len(images) > 0 {
		encoded := make([]string, len(images))
		for i, img := range images {
			encoded[i] = base64.StdEncoding.EncodeToString(img)
		}
		reqBody["images"] = encoded
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &gateway.RateLimitError{
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("ollama returned status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return respBody.Response, nil
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

var _ gateway.Gateway = (*Backend)(nil)
