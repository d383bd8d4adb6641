package catalog

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
)

// StaticProvider serves a fixed catalog.
type StaticProvider struct {
	catalog domain.Catalog
}

func NewStaticProvider(c domain.Catalog) *StaticProvider {
	return &StaticProvider{catalog: c}
}

func (p *StaticProvider) FetchCatalog(context.Context) (*domain.Catalog, error) {
	c := p.catalog
	return &c, nil
}

// Fallback is served while no feed URL is configured: the shop's categories
// without any products.
func Fallback() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{
			{ID: "azeites", Name: "Azeites"},
			{ID: "conservas", Name: "Conservas"},
			{ID: "doces", Name: "Doces"},
		},
		Products: []domain.Product{},
		Source:   SourceFallback,
	}
}
