// Package photostore keeps garment photos that are served as static assets
// rather than embedded in the closet.
package photostore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// AssetPrefix is the URL path under which stored photos are served.
const AssetPrefix = "/assets/"

var ErrNotFound = errors.New("photo not found")

type PhotoStore interface {
	// Save stores r under name plus an extension derived from mimeType and
	// returns the resulting key. An existing photo with the same key is replaced.
	Save(ctx context.Context, name, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// AssetURL is the item URL for a stored photo.
func AssetURL(storageKey string) string {
	return AssetPrefix + storageKey
}

// KeyFromURL extracts the storage key from an asset URL.
func KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, AssetPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, AssetPrefix)
	if key == "" {
		return "", false
	}
	return key, true
}

func MimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func ExtToMimeType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
