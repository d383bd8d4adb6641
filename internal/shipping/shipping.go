// Package shipping estimates transport cost from the volume of a cart.
// Goods travel in boxes of a fixed capacity and every box is charged a flat
// rate.
package shipping

import "github.com/shopspring/decimal"

const (
	// BoxCapacityLiters is the volume one shipping box holds.
	BoxCapacityLiters = 20
	// RatePerBox is charged for every started box.
	RatePerBox = 20
)

// Default uses BoxCapacityLiters and RatePerBox.
var Default = Estimator{
	BoxCapacity: decimal.NewFromInt(BoxCapacityLiters),
	RatePerBox:  decimal.NewFromInt(RatePerBox),
}

type Estimator struct {
	BoxCapacity decimal.Decimal
	RatePerBox  decimal.Decimal
}

// Quote is the result of one estimate.
type Quote struct {
	Volume decimal.Decimal `json:"volume_liters"`
	Boxes  int             `json:"boxes"`
	Cost   decimal.Decimal `json:"cost"`
}

// BoxesNeeded returns ceil(volume / capacity), or 0 for non-positive volume.
// Any remainder, however small, starts a new box.
func (e Estimator) BoxesNeeded(volume decimal.Decimal) int {
	if !volume.IsPositive() || !e.BoxCapacity.IsPositive() {
		return 0
	}
	q, r := volume.QuoRem(e.BoxCapacity, 0)
	boxes := q.IntPart()
	if r.IsPositive() {
		boxes++
	}
	return int(boxes)
}

// Cost is zero unless transport was requested.
func (e Estimator) Cost(volume decimal.Decimal, wantsTransport bool) decimal.Decimal {
	if !wantsTransport {
		return decimal.Zero
	}
	return e.RatePerBox.Mul(decimal.NewFromInt(int64(e.BoxesNeeded(volume))))
}

func (e Estimator) Estimate(volume decimal.Decimal, wantsTransport bool) Quote {
	return Quote{
		Volume: volume,
		Boxes:  e.BoxesNeeded(volume),
		Cost:   e.Cost(volume, wantsTransport),
	}
}
