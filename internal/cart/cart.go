// Package cart implements the cart operations as functions over immutable
// domain.Cart snapshots. Every function returns a new cart and leaves its
// argument untouched, so callers can keep older snapshots around safely.
package cart

import (
	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Add puts one unit of p into the cart. The product fields are copied into
// the line on first add; adding again only bumps the quantity.
func Add(c domain.Cart, p domain.Product) domain.Cart {
	out := clone(c)
	if i := indexOf(out.Lines, p.ID); i >= 0 {
		out.Lines[i].Quantity++
		return out
	}
	out.Lines = append(out.Lines, domain.CartLine{
		ProductID:  p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		UnitLabel:  p.UnitLabel,
		Price:      p.Price,
		Volume:     p.Volume,
		Image:      p.Image,
		Quantity:   1,
	})
	return out
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. Products that are not in the cart are ignored.
func SetQuantity(c domain.Cart, productID string, qty int) domain.Cart {
	if qty <= 0 {
		return Remove(c, productID)
	}
	out := clone(c)
	if i := indexOf(out.Lines, productID); i >= 0 {
		out.Lines[i].Quantity = qty
	}
	return out
}

// Remove drops the line for productID, if any.
func Remove(c domain.Cart, productID string) domain.Cart {
	out := domain.Cart{
		Lines:          make([]domain.CartLine, 0, len(c.Lines)),
		WantsTransport: c.WantsTransport,
	}
	for _, l := range c.Lines {
		if l.ProductID != productID {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

// Clear returns an empty cart with transport turned off.
func Clear(domain.Cart) domain.Cart {
	return domain.Cart{Lines: []domain.CartLine{}}
}

func SetWantsTransport(c domain.Cart, wants bool) domain.Cart {
	out := clone(c)
	out.WantsTransport = wants
	return out
}

// TotalItemCount is the sum of all line quantities.
func TotalItemCount(c domain.Cart) int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of price × quantity over all lines.
func Subtotal(c domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

// TotalVolume is the sum of volume × quantity in liters.
func TotalVolume(c domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		// zero value Decimal counts as 0 L
		total = total.Add(l.Volume.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func LineTotal(l domain.CartLine) decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func indexOf(lines []domain.CartLine, productID string) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func clone(c domain.Cart) domain.Cart {
	lines := make([]domain.CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return domain.Cart{Lines: lines, WantsTransport: c.WantsTransport}
}
