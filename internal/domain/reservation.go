package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusSubmitted          ReservationStatus = "submitted"
	ReservationStatusNotified           ReservationStatus = "notified"
	ReservationStatusNotificationFailed ReservationStatus = "notification_failed"
)

// Customer is the free text the customer typed on the reservation form.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes,omitempty"`
	Agree bool   `json:"agree"`
}

type SummaryLine struct {
	ProductID string          `json:"product_id"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Summary is the priced view of a cart. It is always derived from a Cart and
// is the only source for totals shown to the customer or mailed.
type Summary struct {
	Lines          []SummaryLine   `json:"lines"`
	ItemCount      int             `json:"item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalVolume    decimal.Decimal `json:"total_volume_liters"`
	Boxes          int             `json:"boxes"`
	WantsTransport bool            `json:"wants_transport"`
	Shipping       decimal.Decimal `json:"shipping"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

type Reservation struct {
	ID        string            `json:"id"`
	SessionID string            `json:"-"`
	Customer  Customer          `json:"customer"`
	Lines     []CartLine        `json:"lines"`
	Summary   Summary           `json:"summary"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
