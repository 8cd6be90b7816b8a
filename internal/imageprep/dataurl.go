package imageprep

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vbonduro/closet/internal/domain"
)

// IsDataURL reports whether s carries an embedded payload rather than a
// reference to a stored asset.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL decodes a base64 data: URL. Malformed input is an ErrImageLoad.
func ParseDataURL(s string) (domain.Image, error) {
	if !IsDataURL(s) {
		return domain.Image{}, fmt.Errorf("%w: not a data url", ErrImageLoad)
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return domain.Image{}, fmt.Errorf("%w: missing payload", ErrImageLoad)
	}
	mime, enc, _ := strings.Cut(header, ";")
	if enc != "base64" {
		return domain.Image{}, fmt.Errorf("%w: unsupported encoding %q", ErrImageLoad, enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: %v", ErrImageLoad, err)
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	return domain.Image{Data: data, MimeType: mime}, nil
}
