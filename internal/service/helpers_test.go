package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// stubGateway records calls and returns canned results. Hooks, when set, take
// precedence over the canned values.
type stubGateway struct {
	mu sync.Mutex

	classification *gateway.Classification
	classifyErr    error
	classifyHook   func(img domain.Image) (*gateway.Classification, error)
	classifyCalls  int

	selection    *gateway.Selection
	selectErr    error
	selectCalls  int
	lastSelectRq gateway.SelectionRequest

	illustration    *domain.Image
	illustrateErr   error
	illustrateHook  func(ctx context.Context, req gateway.IllustrationRequest) (*domain.Image, error)
	illustrateCalls int
	lastIllusRq     gateway.IllustrationRequest

	garment     *domain.Image
	garmentErr  error
	garmentCats []domain.Category
}

func (g *stubGateway) Classify(ctx context.Context, img domain.Image) (*gateway.Classification, error) {
	g.mu.Lock()
	g.classifyCalls++
	hook := g.classifyHook
	g.mu.Unlock()
	if hook != nil {
		return hook(img)
	}
	return g.classification, g.classifyErr
}

func (g *stubGateway) SelectOutfit(ctx context.Context, req gateway.SelectionRequest) (*gateway.Selection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selectCalls++
	g.lastSelectRq = req
	return g.selection, g.selectErr
}

func (g *stubGateway) Illustrate(ctx context.Context, req gateway.IllustrationRequest) (*domain.Image, error) {
	g.mu.Lock()
	g.illustrateCalls++
	g.lastIllusRq = req
	hook := g.illustrateHook
	img, err := g.illustration, g.illustrateErr
	g.mu.Unlock()
	if hook != nil {
		return hook(ctx, req)
	}
	return img, err
}

func (g *stubGateway) RenderGarment(ctx context.Context, category domain.Category, gender domain.Gender) (*domain.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.garmentCats = append(g.garmentCats, category)
	return g.garment, g.garmentErr
}

func (g *stubGateway) calls() (classify, sel, illus int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.classifyCalls, g.selectCalls, g.illustrateCalls
}
