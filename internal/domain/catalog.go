package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as published by the catalog feed.
// Volume is in liters; zero means the product takes no shipping volume.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CategoryID  string          `json:"category_id"`
	UnitLabel   string          `json:"unit_label,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Volume      decimal.Decimal `json:"volume_liters"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Order       int             `json:"order"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Catalog is one fetch of the catalog feed.
type Catalog struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"items"`
	Source     string     `json:"source"`
}

// Product returns the product with the given id.
func (c *Catalog) Product(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
