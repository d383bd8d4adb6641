// Package catalog loads the product catalog. The shop keeps its catalog in a
// spreadsheet published as CSV; the rest of the service only sees the
// Provider interface, so the feed format can change without touching cart or
// shipping code.
package catalog

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

// Provider returns the current catalog. Callers must treat the returned
// catalog as read-only; providers may hand out the same value to everyone.
type Provider interface {
	FetchCatalog(ctx context.Context) (*domain.Catalog, error)
}

var (
	ErrFeedUnavailable = errors.New("catalog feed unavailable")
	ErrMissingColumn   = errors.New("catalog feed is missing a required column")
)

const (
	SourceSheet    = "GOOGLE_SHEET"
	SourceFallback = "FALLBACK"
)
