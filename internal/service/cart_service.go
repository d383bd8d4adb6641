package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/reservation"
	"github.com/fjod/storefront/internal/shipping"
	"github.com/fjod/storefront/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const lockStripes = 64

// CartView is a cart together with its priced summary.
type CartView struct {
	Cart    domain.Cart    `json:"cart"`
	Summary domain.Summary `json:"summary"`
}

type CartService struct {
	store     store.CartStore
	catalog   catalog.Provider
	estimator shipping.Estimator
	log       logrus.FieldLogger
	sfg       singleflight.Group // Prevents store stampede on concurrent reads
	locks     [lockStripes]sync.Mutex
}

func NewCartService(s store.CartStore, p catalog.Provider, est shipping.Estimator, log logrus.FieldLogger) *CartService {
	return &CartService{
		store:     s,
		catalog:   p,
		estimator: est,
		log:       log,
	}
}

// GetCart returns the session's cart, or an empty cart if it has none yet.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		return s.load(ctx, sessionID)
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return v.(domain.Cart), nil
}

// View returns the cart and its summary, computed from the same snapshot.
func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	c, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return s.view(c), nil
}

func (s *CartService) AddItem(ctx context.Context, sessionID, productID string) (CartView, error) {
	cat, err := s.catalog.FetchCatalog(ctx)
	if err != nil {
		return CartView{}, err
	}
	p, ok := cat.Product(productID)
	if !ok {
		return CartView{}, ErrProductNotFound
	}

	return s.update(ctx, sessionID, func(c domain.Cart) domain.Cart {
		return cart.Add(c, p)
	})
}

// SetQuantity sets the quantity of an existing line. Zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID string, qty int) (CartView, error) {
	return s.update(ctx, sessionID, func(c domain.Cart) domain.Cart {
		return cart.SetQuantity(c, productID, qty)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (CartView, error) {
	return s.update(ctx, sessionID, func(c domain.Cart) domain.Cart {
		return cart.Remove(c, productID)
	})
}

func (s *CartService) SetWantsTransport(ctx context.Context, sessionID string, wants bool) (CartView, error) {
	return s.update(ctx, sessionID, func(c domain.Cart) domain.Cart {
		return cart.SetWantsTransport(c, wants)
	})
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("store delete cart error")
		return err
	}
	return nil
}

// update applies fn to the stored cart and saves the result. Updates to the
// same session are serialized so concurrent requests never lose a change.
func (s *CartService) update(ctx context.Context, sessionID string, fn func(domain.Cart) domain.Cart) (CartView, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	next := fn(c)
	if err := s.store.Set(ctx, sessionID, &next); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("store set cart error")
		return CartView{}, err
	}
	return s.view(next), nil
}

// snapshot reads the cart while no update for the session is in flight.
func (s *CartService) snapshot(ctx context.Context, sessionID string) (domain.Cart, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	return s.load(ctx, sessionID)
}

// clearIfUnchanged deletes the cart only when it still matches snapshot.
// Items added after the snapshot was taken are kept.
func (s *CartService) clearIfUnchanged(ctx context.Context, sessionID string, snapshot domain.Cart) (bool, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !sameContents(c, snapshot) {
		return false, nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (domain.Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrCartNotFound) { // not found cart return empty cart
		return domain.Cart{Lines: []domain.CartLine{}}, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("store get cart error")
		return domain.Cart{}, err
	}
	return *c, nil
}

func (s *CartService) view(c domain.Cart) CartView {
	return CartView{Cart: c, Summary: reservation.Summarize(c, s.estimator)}
}

func (s *CartService) lock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

func sameContents(a, b domain.Cart) bool {
	if a.WantsTransport != b.WantsTransport || len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if a.Lines[i].ProductID != b.Lines[i].ProductID || a.Lines[i].Quantity != b.Lines[i].Quantity {
			return false
		}
	}
	return true
}
