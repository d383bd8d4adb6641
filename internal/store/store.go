package store

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

// CartStore persists one cart per session.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCartNotFound = errors.New("cart not found")
