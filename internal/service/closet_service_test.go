package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/inventory"
	"github.com/vbonduro/closet/internal/store"
)

// memPersister is an in-memory inventory.Persister.
type memPersister struct {
	data   map[string][]byte
	putErr error
}

func (m *memPersister) Get(_ context.Context, ns string) ([]byte, error) {
	return m.data[ns], nil
}

func (m *memPersister) Put(_ context.Context, ns string, value []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.data[ns] = value
	return nil
}

func newTestCloset(t *testing.T, seed string) (*inventory.Store, *memPersister) {
	t.Helper()
	p := &memPersister{data: map[string][]byte{}}
	inv := inventory.New(p, imageprep.New(), discardLogger(), inventory.WithSeed([]byte(seed)))
	require.NoError(t, inv.Load(context.Background()))
	return inv, p
}

func newTestClosetService(t *testing.T, gw *stubGateway) (*ClosetService, *inventory.Store, *memPersister) {
	t.Helper()
	inv, p := newTestCloset(t, `[]`)
	return NewClosetService(inv, gw, imageprep.New(), discardLogger()), inv, p
}

func TestIngestIsolatesFailures(t *testing.T) {
	gw := &stubGateway{}
	gw.classifyHook = func(img domain.Image) (*gateway.Classification, error) {
		if gw.classifyCalls == 2 {
			return nil, fmt.Errorf("%w: malformed response", gateway.ErrClassification)
		}
		return &gateway.Classification{Category: domain.CategoryShoes, Description: "Sneakers", Color: "white"}, nil
	}
	svc, inv, _ := newTestClosetService(t, gw)

	uploads := []Upload{
		{Name: "one.png", Data: pngBytes(t, 10, 10), MimeType: "image/png"},
		{Name: "corrupt.jpg", Data: []byte("not an image"), MimeType: "image/jpeg"},
		{Name: "two.png", Data: pngBytes(t, 10, 10), MimeType: "image/png"},
		{Name: "three.png", Data: pngBytes(t, 10, 10), MimeType: "image/png"},
	}
	results := svc.Ingest(context.Background(), uploads)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Item)
	assert.Equal(t, domain.CategoryShoes, results[0].Item.Category)

	assert.ErrorIs(t, results[1].Err, imageprep.ErrImageLoad)
	assert.Nil(t, results[1].Item)

	assert.ErrorIs(t, results[2].Err, gateway.ErrClassification)
	assert.Nil(t, results[2].Item)

	assert.NoError(t, results[3].Err)
	assert.Equal(t, 2, inv.Len())

	// The corrupt file never reaches the model.
	classify, _, _ := gw.calls()
	assert.Equal(t, 3, classify)
}

func TestIngestStoresPreparedImage(t *testing.T) {
	gw := &stubGateway{classification: &gateway.Classification{Category: domain.CategoryDress, Description: "Sundress", Color: "yellow"}}
	svc, _, _ := newTestClosetService(t, gw)

	results := svc.Ingest(context.Background(), []Upload{{Name: "big.png", Data: pngBytes(t, 1280, 960), MimeType: "image/png"}})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, strings.HasPrefix(results[0].Item.URL, "data:image/jpeg;base64,"))
}

func TestIngestReportsClosetFullPerItem(t *testing.T) {
	gw := &stubGateway{classification: &gateway.Classification{Category: domain.CategoryHat, Description: "Cap"}}
	svc, inv, p := newTestClosetService(t, gw)
	p.putErr = fmt.Errorf("put: %w", store.ErrQuotaExceeded)

	results := svc.Ingest(context.Background(), []Upload{
		{Name: "a.png", Data: pngBytes(t, 4, 4), MimeType: "image/png"},
		{Name: "b.png", Data: pngBytes(t, 4, 4), MimeType: "image/png"},
	})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, inventory.ErrClosetFull)
		assert.NotNil(t, r.Item)
	}
	assert.Equal(t, 2, inv.Len())
}

func TestIngestStopsClassifyingWhenCancelled(t *testing.T) {
	gw := &stubGateway{classification: &gateway.Classification{Category: domain.CategoryHat, Description: "Cap"}}
	svc, _, _ := newTestClosetService(t, gw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := svc.Ingest(ctx, []Upload{{Name: "a.png", Data: pngBytes(t, 4, 4), MimeType: "image/png"}})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)

	classify, _, _ := gw.calls()
	assert.Zero(t, classify)
}

func TestCapture(t *testing.T) {
	gw := &stubGateway{classification: &gateway.Classification{Category: domain.CategorySweater, Description: "Knit", Color: "green"}}
	svc, inv, _ := newTestClosetService(t, gw)

	item, err := svc.Capture(context.Background(), Upload{Name: "frame", Data: pngBytes(t, 8, 8), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "Knit", item.Description)

	got, ok := inv.Get(item.ID)
	assert.True(t, ok)
	assert.Equal(t, domain.CategorySweater, got.Category)
}

func TestSurpriseForcesRequestedCategory(t *testing.T) {
	gw := &stubGateway{
		garment:        &domain.Image{Data: pngBytes(t, 900, 900), MimeType: "image/png"},
		classification: &gateway.Classification{Category: domain.CategoryShirt, Description: "Polka dot cardigan", Color: "pink"},
	}
	svc, inv, _ := newTestClosetService(t, gw)

	item, err := svc.Surprise(context.Background(), domain.CategorySweater, domain.GenderGirl)
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySweater, item.Category)
	assert.Equal(t, "Polka dot cardigan", item.Description)
	assert.Equal(t, []domain.Category{domain.CategorySweater}, gw.garmentCats)
	assert.Equal(t, 1, inv.Len())
}

func TestSurpriseRejectsUnknownCategory(t *testing.T) {
	gw := &stubGateway{}
	svc, _, _ := newTestClosetService(t, gw)

	_, err := svc.Surprise(context.Background(), "Cape", domain.GenderBoy)
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Empty(t, gw.garmentCats)
}

func TestSurpriseRenderFailure(t *testing.T) {
	gw := &stubGateway{garmentErr: fmt.Errorf("%w: no image", gateway.ErrIllustration)}
	svc, inv, _ := newTestClosetService(t, gw)

	_, err := svc.Surprise(context.Background(), domain.CategoryHat, domain.GenderBoy)
	assert.ErrorIs(t, err, gateway.ErrIllustration)
	assert.Zero(t, inv.Len())
}

func TestRemove(t *testing.T) {
	inv, p := newTestCloset(t, `[{"id":"a","category":"Hat"},{"id":"b","category":"Shoes"}]`)
	svc := NewClosetService(inv, &stubGateway{}, imageprep.New(), discardLogger())

	require.NoError(t, svc.Remove(context.Background(), "a"))
	require.NoError(t, svc.Remove(context.Background(), "missing"))

	assert.Equal(t, 1, svc.List(inventory.Filter{}).Total)
	assert.Contains(t, string(p.data[inventory.Namespace]), `"b"`)
	assert.NotContains(t, string(p.data[inventory.Namespace]), `"a"`)
}

func TestAddDuplicateIsNotClosetFull(t *testing.T) {
	inv, _ := newTestCloset(t, `[]`)
	svc := NewClosetService(inv, &stubGateway{}, imageprep.New(), discardLogger())

	_, err := svc.add(context.Background(), domain.ClothingItem{ID: "x", Category: domain.CategoryHat})
	require.NoError(t, err)
	item, err := svc.add(context.Background(), domain.ClothingItem{ID: "x", Category: domain.CategoryHat})
	assert.Nil(t, item)
	assert.True(t, errors.Is(err, inventory.ErrDuplicateID))
}
