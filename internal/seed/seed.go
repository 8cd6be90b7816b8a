// Package seed builds a starter closet catalogue from a directory of photos.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
	"github.com/vbonduro/closet/internal/photostore"
)

// KeyPrefix is where catalogue photos live in the photo store.
const KeyPrefix = "clothes/"

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type imagePreparer interface {
	Prepare(img domain.Image) (domain.Image, error)
}

// Skipped records a file that did not make it into the catalogue.
type Skipped struct {
	File   string
	Reason string
}

type Importer struct {
	classifier gateway.Classifier
	photos     photostore.PhotoStore
	prep       imagePreparer
	logger     *slog.Logger
}

func NewImporter(classifier gateway.Classifier, photos photostore.PhotoStore, prep imagePreparer, logger *slog.Logger) *Importer {
	return &Importer{
		classifier: classifier,
		photos:     photos,
		prep:       prep,
		logger:     logger,
	}
}

// Import classifies every supported photo in dir, one at a time, and stores
// the prepared image. Files that fail are skipped; only a directory that
// cannot be read or a cancelled context fails the import.
func (im *Importer) Import(ctx context.Context, dir string) ([]domain.ClothingItem, []Skipped, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	items := make([]domain.ClothingItem, 0, len(names))
	var skipped []Skipped
	used := map[string]int{}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return items, skipped, err
		}
		ext := strings.ToLower(filepath.Ext(name))
		if !supportedExt[ext] {
			im.logger.Info("skipping unsupported file", "file", name)
			skipped = append(skipped, Skipped{File: name, Reason: "unsupported format"})
			continue
		}

		id := uniqueSlug(Slug(strings.TrimSuffix(name, filepath.Ext(name))), used)
		item, err := im.importFile(ctx, filepath.Join(dir, name), id)
		if err != nil {
			im.logger.Warn("skipping file", "file", name, "error", err)
			skipped = append(skipped, Skipped{File: name, Reason: err.Error()})
			continue
		}
		im.logger.Info("imported", "file", name, "id", item.ID, "category", item.Category)
		items = append(items, item)
	}
	return items, skipped, nil
}

func (im *Importer) importFile(ctx context.Context, path, id string) (domain.ClothingItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ClothingItem{}, fmt.Errorf("failed to read file: %w", err)
	}
	prepared, err := im.prep.Prepare(domain.Image{Data: data, MimeType: photostore.ExtToMimeType(path)})
	if err != nil {
		return domain.ClothingItem{}, err
	}
	cls, err := im.classifier.Classify(ctx, prepared)
	if err != nil {
		return domain.ClothingItem{}, err
	}
	key, err := im.photos.Save(ctx, KeyPrefix+id, prepared.MimeType, bytes.NewReader(prepared.Data))
	if err != nil {
		return domain.ClothingItem{}, fmt.Errorf("failed to save photo: %w", err)
	}
	return domain.ClothingItem{
		ID:          id,
		URL:         photostore.AssetURL(key),
		Category:    cls.Category,
		Description: cls.Description,
		Color:       cls.Color,
	}, nil
}

// Slug lower-cases s and collapses every run of other characters to a dash.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "item"
	}
	return out
}

func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return slug + "-" + strconv.Itoa(n)
	}
	return slug
}

// WriteFile writes items as an indented seed catalogue.
func WriteFile(path string, items []domain.ClothingItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seed: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write seed: %w", err)
	}
	return nil
}
