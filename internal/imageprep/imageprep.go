// Package imageprep bounds the pixel size and encoded weight of clothing
// photos before they are stored or sent to a model.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/vbonduro/closet/internal/domain"
)

const (
	// MaxDimension is the longest side, in pixels, a prepared image may have.
	MaxDimension = 640
	// Quality is the JPEG quality used when an image has to be re-encoded.
	Quality = 72
)

// ErrImageLoad means the source bytes could not be decoded as an image.
var ErrImageLoad = errors.New("image could not be loaded")

type Preparer struct {
	maxDimension int
	quality      int
}

type Option func(*Preparer)

func WithMaxDimension(px int) Option {
	return func(p *Preparer) { p.maxDimension = px }
}

func WithQuality(q int) Option {
	return func(p *Preparer) { p.quality = q }
}

func New(opts ...Option) *Preparer {
	p := &Preparer{maxDimension: MaxDimension, quality: Quality}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare returns img untouched when it already fits within the maximum
// dimension. Larger images are scaled with a bicubic filter so the longer side
// equals the maximum and re-encoded as JPEG.
func (p *Preparer) Prepare(img domain.Image) (domain.Image, error) {
	out, _, err := p.prepare(img)
	return out, err
}

func (p *Preparer) prepare(img domain.Image) (domain.Image, bool, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return domain.Image{}, false, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	if max(cfg.Width, cfg.Height) <= p.maxDimension {
		return img, false, nil
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return domain.Image{}, false, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	scaled := imaging.Fit(src, p.maxDimension, p.maxDimension, imaging.CatmullRom)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return domain.Image{}, false, fmt.Errorf("failed to encode image: %w", err)
	}
	return domain.Image{Data: buf.Bytes(), MimeType: "image/jpeg"}, true, nil
}

// PrepareDataURL is Prepare over a data: URL. An image that is already within
// bounds comes back as the identical string.
func (p *Preparer) PrepareDataURL(dataURL string) (string, error) {
	img, err := ParseDataURL(dataURL)
	if err != nil {
		return "", err
	}
	out, changed, err := p.prepare(img)
	if err != nil {
		return "", err
	}
	if !changed {
		return dataURL, nil
	}
	return out.DataURL(), nil
}
