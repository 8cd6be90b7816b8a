package imageprep

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/vbonduro/closet/internal/domain"
)

func pngImage(t *testing.T, w, h int) domain.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domain.Image{Data: buf.Bytes(), MimeType: "image/png"}
}

func dimensions(t *testing.T, img domain.Image) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestPrepareWithinBoundsIsUnchanged(t *testing.T) {
	p := New()
	for _, size := range [][2]int{{10, 10}, {640, 480}, {300, 640}} {
		in := pngImage(t, size[0], size[1])
		out, err := p.Prepare(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestPrepareDownscalesLongerSide(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "landscape", w: 1280, h: 960, wantW: 640, wantH: 480},
		{name: "portrait", w: 500, h: 1000, wantW: 320, wantH: 640},
		{name: "square", w: 900, h: 900, wantW: 640, wantH: 640},
		{name: "just over", w: 641, h: 100, wantW: 640, wantH: 100},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Prepare(pngImage(t, tt.w, tt.h))
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", out.MimeType)

			w, h := dimensions(t, out)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestPrepareDecodesBMPAndTIFF(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	src.Set(3, 3, color.RGBA{B: 255, A: 255})

	tests := []struct {
		name   string
		mime   string
		encode func(*bytes.Buffer) error
	}{
		{name: "bmp", mime: "image/bmp", encode: func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{name: "tiff", mime: "image/tiff", encode: func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf))

			out, err := New().Prepare(domain.Image{Data: buf.Bytes(), MimeType: tt.mime})
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", out.MimeType)
			w, h := dimensions(t, out)
			assert.Equal(t, 640, w)
			assert.Equal(t, 320, h)
		})
	}
}

func TestPrepareUndecodable(t *testing.T) {
	_, err := New().Prepare(domain.Image{Data: []byte("%PDF-1.4"), MimeType: "image/jpeg"})
	assert.ErrorIs(t, err, ErrImageLoad)
}

func TestPrepareCustomBounds(t *testing.T) {
	p := New(WithMaxDimension(100), WithQuality(50))
	out, err := p.Prepare(pngImage(t, 400, 200))
	require.NoError(t, err)

	w, h := dimensions(t, out)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestPrepareDataURL(t *testing.T) {
	p := New()

	small := pngImage(t, 20, 20).DataURL()
	got, err := p.PrepareDataURL(small)
	require.NoError(t, err)
	assert.Equal(t, small, got)

	large := pngImage(t, 1000, 700).DataURL()
	once, err := p.PrepareDataURL(large)
	require.NoError(t, err)
	assert.NotEqual(t, large, once)

	twice, err := p.PrepareDataURL(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMIME string
		wantData string
		wantErr  bool
	}{
		{name: "png", in: "data:image/png;base64,aGk=", wantMIME: "image/png", wantData: "hi"},
		{name: "missing mime", in: "data:;base64,aGk=", wantMIME: "image/jpeg", wantData: "hi"},
		{name: "asset reference", in: "/assets/shirt.jpg", wantErr: true},
		{name: "no comma", in: "data:image/png;base64", wantErr: true},
		{name: "not base64", in: "data:image/png,hello", wantErr: true},
		{name: "bad payload", in: "data:image/png;base64,***", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseDataURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrImageLoad)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, img.MimeType)
			assert.Equal(t, tt.wantData, string(img.Data))
		})
	}
}

func TestCachedPreparer(t *testing.T) {
	c, err := NewCachedPreparer(New(), 1<<20)
	require.NoError(t, err)
	ctx := context.Background()

	in := pngImage(t, 800, 400)
	first, err := c.PrepareKeyed(ctx, "item-1", in)
	require.NoError(t, err)
	second, err := c.PrepareKeyed(ctx, "item-1", in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = c.PrepareKeyed(ctx, "broken", domain.Image{Data: []byte("nope")})
	assert.ErrorIs(t, err, ErrImageLoad)
}
