package domain

import "github.com/shopspring/decimal"

// CartLine holds the product fields copied when the product was first added.
// Later catalog changes never reach an existing line.
type CartLine struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id"`
	UnitLabel  string          `json:"unit_label,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Volume     decimal.Decimal `json:"volume_liters"`
	Image      string          `json:"image,omitempty"`
	Quantity   int             `json:"quantity"`
}

// Cart is a snapshot of one session's cart. Lines keep the order in which
// products were first added.
type Cart struct {
	Lines          []CartLine `json:"lines"`
	WantsTransport bool       `json:"wants_transport"`
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
