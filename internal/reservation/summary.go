// Package reservation prices a cart snapshot and renders the result for
// confirmation messages.
package reservation

import (
	"strings"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/shipping"
)

// Summarize computes the per-line and aggregate totals of c. Shipping comes
// from est; the grand total is always subtotal plus shipping.
func Summarize(c domain.Cart, est shipping.Estimator) domain.Summary {
	lines := make([]domain.SummaryLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, domain.SummaryLine{
			ProductID: l.ProductID,
			Label:     Label(l),
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			LineTotal: cart.LineTotal(l),
		})
	}

	subtotal := cart.Subtotal(c)
	quote := est.Estimate(cart.TotalVolume(c), c.WantsTransport)

	return domain.Summary{
		Lines:          lines,
		ItemCount:      cart.TotalItemCount(c),
		Subtotal:       subtotal,
		TotalVolume:    quote.Volume,
		Boxes:          quote.Boxes,
		WantsTransport: c.WantsTransport,
		Shipping:       quote.Cost,
		GrandTotal:     subtotal.Add(quote.Cost),
	}
}

// Label is the product name followed by its unit label, if any.
func Label(l domain.CartLine) string {
	parts := []string{l.Name}
	if u := strings.TrimSpace(l.UnitLabel); u != "" {
		parts = append(parts, u)
	}
	return strings.Join(parts, " - ")
}
