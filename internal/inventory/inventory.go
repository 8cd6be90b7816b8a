// Package inventory owns the wardrobe: the ordered item list, its durable
// copy, and the one-off upgrade of closets saved by older versions.
package inventory

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/store"
)

const (
	// Namespace is the single storage entry holding the serialized closet.
	Namespace = "closet.inventory"

	// MigrationThreshold is the data URL length above which a stored image is
	// re-prepared on load.
	MigrationThreshold = 300 * 1024

	// DefaultVisible is how many items the closet view shows before "show all".
	DefaultVisible = 12
)

var (
	// ErrClosetFull means the change is applied in memory but could not be
	// saved because storage is out of space.
	ErrClosetFull  = errors.New("closet is full")
	ErrDuplicateID = errors.New("item id already exists")
)

//go:embed seed.json
var defaultSeed []byte

// Persister is the durable backing for the closet.
type Persister interface {
	Get(ctx context.Context, namespace string) ([]byte, error)
	Put(ctx context.Context, namespace string, value []byte) error
}

type DataURLPreparer interface {
	PrepareDataURL(s string) (string, error)
}

type Store struct {
	mu      sync.RWMutex
	items   []domain.ClothingItem
	persist Persister
	prep    DataURLPreparer
	seed    []byte
	logger  *slog.Logger
}

type Option func(*Store)

// WithSeed replaces the built-in starter closet used when nothing is saved.
func WithSeed(data []byte) Option {
	return func(s *Store) {
		if len(data) > 0 {
			s.seed = data
		}
	}
}

func New(persist Persister, prep DataURLPreparer, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		persist: persist,
		prep:    prep,
		seed:    defaultSeed,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the saved closet, falling back to the seed when nothing is
// stored or the stored closet is corrupt, and then runs Migrate. A failed read
// is returned rather than replaced by the seed, so the next save cannot
// overwrite a closet that is still on disk.
func (s *Store) Load(ctx context.Context) error {
	items, ok, err := s.readSaved(ctx)
	if err != nil {
		return err
	}
	if !ok {
		seed, err := decode(s.seed)
		if err != nil {
			return fmt.Errorf("failed to parse seed closet: %w", err)
		}
		items = seed
		s.logger.Info("using seed closet", "items", len(items))
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	if _, err := s.Migrate(ctx); err != nil {
		s.logger.Warn("closet migration not saved", "error", err)
	}
	return nil
}

func (s *Store) readSaved(ctx context.Context) ([]domain.ClothingItem, bool, error) {
	raw, err := s.persist.Get(ctx, Namespace)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read saved closet: %w", err)
	}
	if raw == nil {
		return nil, false, nil
	}
	items, err := decode(raw)
	if err != nil {
		s.logger.Error("saved closet is corrupt, using seed", "error", err)
		return nil, false, nil
	}
	return items, true, nil
}

func decode(raw []byte) ([]domain.ClothingItem, error) {
	var items []domain.ClothingItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ClothingItem{}
	}
	return items, nil
}

// Items returns a copy of the closet, newest first.
func (s *Store) Items() []domain.ClothingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ClothingItem(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Get(id string) (domain.ClothingItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.ClothingItem{}, false
}

// Add prepends item, assigning a fresh ID when it has none. The returned item
// carries the final ID. ErrClosetFull still leaves the item in the closet.
func (s *Store) Add(ctx context.Context, item domain.ClothingItem) (domain.ClothingItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Category = item.Category.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.ID == item.ID {
			return domain.ClothingItem{}, fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
		}
	}
	s.items = append([]domain.ClothingItem{item}, s.items...)
	return item, s.save(ctx)
}

// Remove deletes the item with id. Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	return s.save(ctx)
}

// Migrate upgrades closets written by older versions: legacy categories are
// renamed and oversized embedded photos are shrunk. Items that fail to shrink
// are left as they are. The closet is saved only when something changed, so
// repeated calls are no-ops. It returns how many items changed.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.items {
		it := &s.items[i]
		dirty := false

		if cat := it.Category.Normalize(); cat != it.Category {
			it.Category = cat
			dirty = true
		}

		if len(it.URL) > MigrationThreshold && imageprep.IsDataURL(it.URL) {
			shrunk, err := s.prep.PrepareDataURL(it.URL)
			switch {
			case err != nil:
				s.logger.Warn("could not shrink stored photo", "item_id", it.ID, "error", err)
			case shrunk != it.URL:
				s.logger.Debug("shrunk stored photo", "item_id", it.ID, "before", len(it.URL), "after", len(shrunk))
				it.URL = shrunk
				dirty = true
			}
		}

		if dirty {
			changed++
		}
	}

	if changed == 0 {
		return 0, nil
	}
	s.logger.Info("migrated closet", "changed", changed)
	return changed, s.save(ctx)
}

// save writes the closet. Callers hold the write lock. Only running out of
// space is reported; other failures are logged and the in-memory closet wins.
func (s *Store) save(ctx context.Context) error {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error("failed to encode closet", "error", err)
		return nil
	}
	err = s.persist.Put(ctx, Namespace, raw)
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrQuotaExceeded) {
		s.logger.Warn("closet not saved, storage full", "bytes", len(raw), "error", err)
		return fmt.Errorf("%w: %w", ErrClosetFull, err)
	}
	s.logger.Error("failed to save closet", "error", err)
	return nil
}
