package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/shipping"
	"github.com/fjod/storefront/internal/store"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) (*domain.Cart, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, *domain.Cart) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error              { return f.err }

type failingProvider struct{}

func (failingProvider) FetchCatalog(context.Context) (*domain.Catalog, error) {
	return nil, catalog.ErrFeedUnavailable
}

func testCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{{ID: "azeites", Name: "azeites"}},
		Products: []domain.Product{
			{ID: "p1", Name: "Olive Oil", CategoryID: "azeites", UnitLabel: "0.5L", Price: decimal.RequireFromString("12.50"), Volume: decimal.RequireFromString("0.5")},
			{ID: "p2", Name: "Sardines", CategoryID: "azeites", Price: decimal.RequireFromString("3.20"), Volume: decimal.RequireFromString("0.2")},
			{ID: "p3", Name: "Barrel", CategoryID: "azeites", Price: decimal.RequireFromString("40"), Volume: decimal.RequireFromString("20")},
		},
		Source: catalog.SourceFallback,
	}
}

func newTestCartService(t *testing.T) *CartService {
	t.Helper()
	s := store.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = s.Close() })
	return NewCartService(s, catalog.NewStaticProvider(testCatalog()), shipping.Default, logger.Discard())
}

func TestGetCart_EmptyWhenMissing(t *testing.T) {
	svc := newTestCartService(t)

	c, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.False(t, c.WantsTransport)
}

func TestAddItem_PersistsAndSummarizes(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", "p1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-1", "p1")
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "sess-1", "p2")
	require.NoError(t, err)

	require.Len(t, view.Cart.Lines, 2)
	assert.Equal(t, "p1", view.Cart.Lines[0].ProductID)
	assert.Equal(t, 2, view.Cart.Lines[0].Quantity)
	assert.Equal(t, 3, view.Summary.ItemCount)
	assert.True(t, decimal.RequireFromString("28.20").Equal(view.Summary.Subtotal))

	stored, err := svc.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, stored.Lines, len(view.Cart.Lines))
	for i, l := range view.Cart.Lines {
		assert.Equal(t, l.ProductID, stored.Lines[i].ProductID)
		assert.Equal(t, l.Quantity, stored.Lines[i].Quantity)
		assert.True(t, l.Price.Equal(stored.Lines[i].Price), "price of %s", l.ProductID)
		assert.True(t, l.Volume.Equal(stored.Lines[i].Volume), "volume of %s", l.ProductID)
	}

	other, err := svc.GetCart(ctx, "sess-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newTestCartService(t)

	_, err := svc.AddItem(context.Background(), "sess-1", "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddItem_CatalogUnavailable(t *testing.T) {
	svc := NewCartService(store.NewMemoryStore(time.Hour), failingProvider{}, shipping.Default, logger.Discard())

	_, err := svc.AddItem(context.Background(), "sess-1", "p1")
	assert.ErrorIs(t, err, catalog.ErrFeedUnavailable)
}

func TestSetQuantityAndRemove(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", "p1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess-1", "p2")
	require.NoError(t, err)

	view, err := svc.SetQuantity(ctx, "sess-1", "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Cart.Lines[0].Quantity)

	view, err = svc.SetQuantity(ctx, "sess-1", "missing", 3)
	require.NoError(t, err)
	assert.Len(t, view.Cart.Lines, 2)

	view, err = svc.SetQuantity(ctx, "sess-1", "p1", 0)
	require.NoError(t, err)
	require.Len(t, view.Cart.Lines, 1)
	assert.Equal(t, "p2", view.Cart.Lines[0].ProductID)

	view, err = svc.RemoveItem(ctx, "sess-1", "p2")
	require.NoError(t, err)
	assert.True(t, view.Cart.IsEmpty())
}

func TestSetWantsTransport_AddsShipping(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", "p3")
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "sess-1", "p1")
	require.NoError(t, err)
	assert.True(t, view.Summary.Shipping.IsZero())

	view, err = svc.SetWantsTransport(ctx, "sess-1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Summary.Boxes)
	assert.True(t, decimal.NewFromInt(40).Equal(view.Summary.Shipping))
	assert.True(t, view.Summary.Subtotal.Add(view.Summary.Shipping).Equal(view.Summary.GrandTotal))
}

func TestClearCart(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", "p1")
	require.NoError(t, err)
	_, err = svc.SetWantsTransport(ctx, "sess-1", true)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "sess-1"))

	c, err := svc.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.False(t, c.WantsTransport)
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("redis down")
	svc := NewCartService(failingStore{err: storeErr}, catalog.NewStaticProvider(testCatalog()), shipping.Default, logger.Discard())
	ctx := context.Background()

	_, err := svc.GetCart(ctx, "sess-1")
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.AddItem(ctx, "sess-1", "p1")
	assert.ErrorIs(t, err, storeErr)

	assert.ErrorIs(t, svc.ClearCart(ctx, "sess-1"), storeErr)
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	svc := newTestCartService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "sess-1", "p1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := svc.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 50, c.Lines[0].Quantity)
}
