// Package app builds the shared runtime pieces from configuration for the
// server and the seed tool.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/vbonduro/closet/internal/config"
	"github.com/vbonduro/closet/internal/gateway"
	"github.com/vbonduro/closet/internal/gateway/claude"
	"github.com/vbonduro/closet/internal/gateway/gemini"
	"github.com/vbonduro/closet/internal/gateway/ollama"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/photostore"
	"github.com/vbonduro/closet/internal/photostore/local"
	s3store "github.com/vbonduro/closet/internal/photostore/s3"
)

// InitSentry enables error reporting when a DSN is configured. The returned
// func flushes pending events and must be deferred.
func InitSentry(cfg *config.Config, logger *slog.Logger) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		logger.Error("failed to initialize sentry", "error", err)
		return func() {}
	}
	logger.Info("sentry enabled", "environment", cfg.Environment)
	return func() { sentry.Flush(2 * time.Second) }
}

func NewPhotoStore(ctx context.Context, cfg *config.Config) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		return s3store.NewS3PhotoStore(ctx, s3store.Config{
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return local.NewLocalPhotoStore(cfg.PhotoPath)
	}
}

// NewGateway returns the retrying client over the configured backends. Gemini
// always draws; the text backend classifies and selects.
func NewGateway(ctx context.Context, cfg *config.Config, photos photostore.PhotoStore, prep *imageprep.Preparer, logger *slog.Logger) (*gateway.Client, error) {
	gem, err := gemini.New(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		BaseURL:    cfg.GeminiBaseURL,
	}, logger)
	if err != nil {
		return nil, err
	}

	var backend gateway.Gateway = gem
	switch cfg.TextBackend {
	case "claude":
		logger.Info("using Claude text backend", "model", cfg.ClaudeModel)
		c := claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel)
		backend = gateway.Split{Classifier: c, Selector: c, Illustrator: gem}
	case "ollama":
		logger.Info("using Ollama text backend", "model", cfg.OllamaModel)
		o := ollama.New(cfg.OllamaHost, cfg.OllamaModel)
		backend = gateway.Split{Classifier: o, Selector: o, Illustrator: gem}
	default:
		logger.Info("using Gemini backend")
	}

	cached, err := imageprep.NewCachedPreparer(prep, cfg.ImageCacheBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	return gateway.NewClient(backend, photostore.NewResolver(photos), cached, logger,
		gateway.WithRequestsPerMinute(cfg.RequestsPerMinute),
	), nil
}

// ReadSeed returns the seed file contents, or nil when none is configured so
// the built-in closet is used.
func ReadSeed(cfg *config.Config) ([]byte, error) {
	if cfg.SeedFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return data, nil
}
