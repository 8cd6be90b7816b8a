package photostore

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/imageprep"
)

// Resolver loads the image behind an item URL, whether it is embedded as a
// data URL or points at a stored asset.
type Resolver struct {
	photos PhotoStore
}

func NewResolver(photos PhotoStore) *Resolver {
	return &Resolver{photos: photos}
}

func (r *Resolver) Load(ctx context.Context, url string) (domain.Image, error) {
	if imageprep.IsDataURL(url) {
		return imageprep.ParseDataURL(url)
	}

	key, ok := KeyFromURL(url)
	if !ok {
		return domain.Image{}, fmt.Errorf("unsupported image url %q", truncate(url))
	}

	rc, mimeType, err := r.photos.Get(ctx, key)
	if err != nil {
		return domain.Image{}, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.Error("failed to close photo", "key", key, "error", err)
		}
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to read photo: %w", err)
	}
	return domain.Image{Data: data, MimeType: mimeType}, nil
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
