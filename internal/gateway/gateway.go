// Package gateway is the boundary around the hosted multimodal models that
// classify garments, pick outfits, and draw them.
package gateway

import (
	"context"

	"github.com/vbonduro/closet/internal/domain"
)

type Classification struct {
	Category    domain.Category `json:"category"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
}

type Selection struct {
	SelectedIDs []string `json:"selectedIds"`
	StylistNote string   `json:"stylistNote"`
}

type SelectionRequest struct {
	Inventory   []domain.ClothingItem
	Weather     domain.Weather
	Gender      domain.Gender
	ExcludedIDs []string
}

type IllustrationRequest struct {
	Items   []domain.ClothingItem
	Gender  domain.Gender
	Weather domain.Weather
	Style   domain.IllustrationStyle

	// Attachments holds the prepared item photos. Client fills it; backends
	// only read it.
	Attachments []domain.Image
}

type Classifier interface {
	Classify(ctx context.Context, img domain.Image) (*Classification, error)
}

type Selector interface {
	SelectOutfit(ctx context.Context, req SelectionRequest) (*Selection, error)
}

type Illustrator interface {
	Illustrate(ctx context.Context, req IllustrationRequest) (*domain.Image, error)
	// RenderGarment draws a single product-style garment of the given category.
	RenderGarment(ctx context.Context, category domain.Category, gender domain.Gender) (*domain.Image, error)
}

// Gateway is everything the closet needs from a model provider.
type Gateway interface {
	Classifier
	Selector
	Illustrator
}

// Split routes text work and image work to different backends, e.g. Claude
// for classification and Gemini for drawing.
type Split struct {
	Classifier
	Selector
	Illustrator
}

var _ Gateway = Split{}
