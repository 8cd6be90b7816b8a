package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
)

var (
	ErrEmptyCloset = errors.New("closet is empty")
	// ErrSuperseded is returned by a Generate call that finished after a newer
	// one started. Its result is discarded.
	ErrSuperseded = errors.New("outfit request superseded")
)

type State string

const (
	StateIdle         State = "idle"
	StateSelecting    State = "selecting"
	StateSelected     State = "selected"
	StateIllustrating State = "illustrating"
	StateReady        State = "ready"
)

type inventoryReader interface {
	Items() []domain.ClothingItem
}

type GenerateRequest struct {
	Style domain.IllustrationStyle
	// ForceNew picks new items even when an outfit already exists.
	ForceNew bool
	Gender   domain.Gender
	Weather  domain.Weather
}

type Snapshot struct {
	State  State          `json:"state"`
	Outfit *domain.Outfit `json:"outfit,omitempty"`
}

// OutfitService holds the current outfit for the session and drives the
// select-then-illustrate cycle.
type OutfitService struct {
	closet inventoryReader
	gw     gateway.Gateway
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	outfit *domain.Outfit
	gen    uint64
}

func NewOutfitService(closet inventoryReader, gw gateway.Gateway, logger *slog.Logger) *OutfitService {
	return &OutfitService{
		closet: closet,
		gw:     gw,
		logger: logger,
		state:  StateIdle,
	}
}

func (s *OutfitService) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Outfit: s.outfit.Clone()}
}

// Generate produces an illustrated outfit. A new selection is made when
// req.ForceNew is set or there is no outfit yet, avoiding the items of the
// current one; otherwise only the illustration style changes. onUpdate, if
// set, receives a fresh selection before it is illustrated.
//
// On failure the last good outfit stays, except that a fresh selection whose
// illustration failed is kept without an image.
func (s *OutfitService) Generate(ctx context.Context, req GenerateRequest, onUpdate func(*domain.Outfit)) (*domain.Outfit, error) {
	req = withDefaults(req)

	if len(s.closet.Items()) == 0 {
		return nil, ErrEmptyCloset
	}

	s.mu.Lock()
	s.gen++
	token := s.gen
	prev := s.outfit.Clone()
	prevState := stableState(prev)
	needNew := req.ForceNew || prev == nil
	if needNew {
		s.state = StateSelecting
	}
	s.mu.Unlock()

	log := s.logger.With("generation", token, "new_selection", needNew, "style", req.Style)

	var next *domain.Outfit
	if needNew {
		sel, err := s.selectOutfit(ctx, req, prev.ItemIDs())
		if err != nil {
			log.Warn("outfit selection failed", "error", err)
			return nil, s.restore(token, prev, prevState, err)
		}
		next = sel

		s.mu.Lock()
		if token != s.gen {
			s.mu.Unlock()
			return nil, ErrSuperseded
		}
		s.outfit = next.Clone()
		s.state = StateSelected
		s.mu.Unlock()

		log.Info("outfit selected", "items", len(next.Items))
		if issue := compositionIssue(next.Items); issue != "" {
			log.Warn("selection breaks outfit rule", "issue", issue)
		}
		if onUpdate != nil {
			onUpdate(next.Clone())
		}
	} else {
		next = prev.Clone()
		next.Style = req.Style
	}

	s.mu.Lock()
	if token != s.gen {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.state = StateIllustrating
	s.mu.Unlock()

	img, err := s.gw.Illustrate(ctx, gateway.IllustrationRequest{
		Items:   next.Items,
		Gender:  req.Gender,
		Weather: req.Weather,
		Style:   req.Style,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		log.Warn("outfit illustration failed", "error", err)
		if needNew {
			// s.outfit already holds the new items without an image.
			s.state = StateSelected
		} else {
			s.outfit = prev
			s.state = prevState
		}
		return nil, err
	}

	next.IllustrationURL = img.DataURL()
	s.outfit = next
	s.state = StateReady
	log.Info("outfit ready")
	return next.Clone(), nil
}

func (s *OutfitService) selectOutfit(ctx context.Context, req GenerateRequest, excluded []string) (*domain.Outfit, error) {
	sel, err := s.gw.SelectOutfit(ctx, gateway.SelectionRequest{
		Inventory:   s.closet.Items(),
		Weather:     req.Weather,
		Gender:      req.Gender,
		ExcludedIDs: excluded,
	})
	if err != nil {
		return nil, err
	}

	// Map against the closet as it is now; items removed meanwhile drop out.
	items := resolveSelection(s.closet.Items(), sel.SelectedIDs)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: none of %d selected ids are in the closet", gateway.ErrSelection, len(sel.SelectedIDs))
	}
	return &domain.Outfit{Items: items, StylistNote: sel.StylistNote, Style: req.Style}, nil
}

// restore puts the state back after a failed selection, unless a newer
// request has taken over.
func (s *OutfitService) restore(token uint64, prev *domain.Outfit, prevState State, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.gen {
		return ErrSuperseded
	}
	s.outfit = prev
	s.state = prevState
	return err
}

// resolveSelection returns the inventory items named by ids, in inventory
// order. Unknown and repeated ids are ignored.
func resolveSelection(inventory []domain.ClothingItem, ids []string) []domain.ClothingItem {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]domain.ClothingItem, 0, len(ids))
	for _, it := range inventory {
		if wanted[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// compositionIssue describes how items break the outfit rule (one pair of
// shoes, and one upper plus one lower piece or a single dress). It returns ""
// for a well-formed outfit.
func compositionIssue(items []domain.ClothingItem) string {
	var upper, lower, full, shoes int
	for _, it := range items {
		switch c := it.Category.Normalize(); {
		case c.IsUpperBody():
			upper++
		case c.IsLowerBody():
			lower++
		case c.IsFullBody():
			full++
		case c == domain.CategoryShoes:
			shoes++
		}
	}
	switch {
	case shoes != 1:
		return fmt.Sprintf("want 1 pair of shoes, got %d", shoes)
	case full == 1 && upper+lower == 0:
		return ""
	case full > 0:
		return fmt.Sprintf("dress combined with %d upper and %d lower pieces", upper, lower)
	case upper != 1 || lower != 1:
		return fmt.Sprintf("want 1 upper and 1 lower piece, got %d and %d", upper, lower)
	}
	return ""
}

func stableState(o *domain.Outfit) State {
	switch {
	case o == nil:
		return StateIdle
	case o.IllustrationURL != "":
		return StateReady
	default:
		return StateSelected
	}
}

func withDefaults(req GenerateRequest) GenerateRequest {
	if !req.Style.Valid() {
		req.Style = domain.StyleHandDrawn
	}
	if !req.Gender.Valid() {
		req.Gender = domain.GenderGirl
	}
	if !req.Weather.Valid() {
		req.Weather = domain.WeatherRandom
	}
	return req
}
