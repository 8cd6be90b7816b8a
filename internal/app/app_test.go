package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/closet/internal/config"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/photostore/local"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		TextBackend:     "gemini",
		GeminiAPIKey:    "test-key",
		PhotoBackend:    "local",
		PhotoPath:       t.TempDir(),
		ImageCacheBytes: 1 << 20,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewPhotoStoreLocal(t *testing.T) {
	ps, err := NewPhotoStore(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.IsType(t, &local.LocalPhotoStore{}, ps)
}

func TestNewGatewayBackends(t *testing.T) {
	for _, backend := range []string{"gemini", "claude", "ollama"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.TextBackend = backend
			cfg.ClaudeAPIKey = "claude-key"

			ps, err := NewPhotoStore(context.Background(), cfg)
			require.NoError(t, err)
			gw, err := NewGateway(context.Background(), cfg, ps, imageprep.New(), discardLogger())
			require.NoError(t, err)
			assert.NotNil(t, gw)
		})
	}
}

func TestReadSeed(t *testing.T) {
	cfg := testConfig(t)

	data, err := ReadSeed(cfg)
	require.NoError(t, err)
	assert.Nil(t, data)

	cfg.SeedFile = filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(cfg.SeedFile, []byte(`[]`), 0o644))
	data, err = ReadSeed(cfg)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = ReadSeed(cfg)
	assert.Error(t, err)
}

func TestInitSentryDisabled(t *testing.T) {
	flush := InitSentry(testConfig(t), discardLogger())
	require.NotNil(t, flush)
	flush()
}
