package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
	"github.com/vbonduro/closet/internal/inventory"
)

var ErrInvalidCategory = errors.New("invalid category")

// closetRepository is the subset of inventory.Store that ClosetService requires.
type closetRepository interface {
	Add(ctx context.Context, item domain.ClothingItem) (domain.ClothingItem, error)
	Remove(ctx context.Context, id string) error
	List(f inventory.Filter) inventory.Projection
}

type imagePreparer interface {
	Prepare(img domain.Image) (domain.Image, error)
}

// Upload is one photo handed in by the user, from a file picker or camera.
type Upload struct {
	Name     string
	Data     []byte
	MimeType string
}

// IngestResult reports what happened to one upload. Item is set whenever the
// garment made it into the closet, which includes the ErrClosetFull case.
type IngestResult struct {
	Name string
	Item *domain.ClothingItem
	Err  error
}

type ClosetService struct {
	closet closetRepository
	gw     gateway.Gateway
	prep   imagePreparer
	logger *slog.Logger
}

func NewClosetService(closet closetRepository, gw gateway.Gateway, prep imagePreparer, logger *slog.Logger) *ClosetService {
	return &ClosetService{
		closet: closet,
		gw:     gw,
		prep:   prep,
		logger: logger,
	}
}

func (s *ClosetService) List(f inventory.Filter) inventory.Projection {
	return s.closet.List(f)
}

// Ingest adds each upload in turn, one classification at a time. A failing
// upload is reported in its result and never stops the rest of the batch.
func (s *ClosetService) Ingest(ctx context.Context, uploads []Upload) []IngestResult {
	s.logger.Info("ingest started", "uploads", len(uploads))

	results := make([]IngestResult, 0, len(uploads))
	added := 0
	for _, up := range uploads {
		if err := ctx.Err(); err != nil {
			results = append(results, IngestResult{Name: up.Name, Err: err})
			continue
		}
		item, err := s.addPhoto(ctx, up)
		res := IngestResult{Name: up.Name, Err: err}
		if item != nil {
			res.Item = item
			added++
		}
		if err != nil {
			s.logger.Warn("upload not ingested cleanly", "name", up.Name, "error", err)
		}
		results = append(results, res)
	}

	s.logger.Info("ingest complete", "uploads", len(uploads), "added", added)
	return results
}

// Capture ingests a single camera frame.
func (s *ClosetService) Capture(ctx context.Context, up Upload) (*domain.ClothingItem, error) {
	return s.addPhoto(ctx, up)
}

func (s *ClosetService) addPhoto(ctx context.Context, up Upload) (*domain.ClothingItem, error) {
	prepared, err := s.prep.Prepare(domain.Image{Data: up.Data, MimeType: up.MimeType})
	if err != nil {
		return nil, err
	}

	cls, err := s.gw.Classify(ctx, prepared)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("photo classified", "name", up.Name, "category", cls.Category)

	return s.add(ctx, domain.ClothingItem{
		URL:         prepared.DataURL(),
		Category:    cls.Category,
		Description: cls.Description,
		Color:       cls.Color,
	})
}

// Surprise has the model invent a garment of the given category and adds it.
func (s *ClosetService) Surprise(ctx context.Context, category domain.Category, gender domain.Gender) (*domain.ClothingItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	img, err := s.gw.RenderGarment(ctx, category, gender)
	if err != nil {
		return nil, err
	}
	prepared, err := s.prep.Prepare(*img)
	if err != nil {
		return nil, err
	}
	cls, err := s.gw.Classify(ctx, prepared)
	if err != nil {
		return nil, err
	}

	return s.add(ctx, domain.ClothingItem{
		URL:         prepared.DataURL(),
		Category:    category,
		Description: cls.Description,
		Color:       cls.Color,
	})
}

func (s *ClosetService) add(ctx context.Context, item domain.ClothingItem) (*domain.ClothingItem, error) {
	added, err := s.closet.Add(ctx, item)
	if err != nil {
		if errors.Is(err, inventory.ErrClosetFull) {
			return &added, err
		}
		return nil, err
	}
	s.logger.Info("item added", "item_id", added.ID, "category", added.Category)
	return &added, nil
}

func (s *ClosetService) Remove(ctx context.Context, id string) error {
	if err := s.closet.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("item removed", "item_id", id)
	return nil
}
