package reservation

import (
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReservation(notes string) domain.Reservation {
	c := scenarioCart(true)
	return domain.Reservation{
		ID: "res-1",
		Customer: domain.Customer{
			Name:  "Ana <b>",
			Email: "ana@example.com",
			Phone: "+351 900 000 000",
			Notes: notes,
			Agree: true,
		},
		Lines:   c.Lines,
		Summary: Summarize(c, shipping.Default),
	}
}

var composer = Composer{ShopName: "Terra Shop", From: "shop@example.com", OwnerEmail: "owner@example.com"}

func TestOwnerMessage(t *testing.T) {
	msg, err := composer.OwnerMessage(testReservation("  ring the bell  "))
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "ana@example.com", msg.ReplyTo)
	assert.Equal(t, "shop@example.com", msg.From)
	assert.Equal(t, "New reservation - Ana <b> (46,00 €)", msg.Subject)
	assert.Contains(t, msg.Text, "Reservation: res-1")
	assert.Contains(t, msg.Text, "Customer notes: ring the bell\n")
	assert.Contains(t, msg.Text, "ESTIMATED TOTAL: 46,00 €")
	assert.Contains(t, msg.HTML, "Ana &lt;b&gt;")
	assert.Contains(t, msg.HTML, "<table")
	assert.Contains(t, msg.HTML, "ring the bell")
}

func TestCustomerMessage(t *testing.T) {
	msg, err := composer.CustomerMessage(testReservation(""))
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Empty(t, msg.ReplyTo)
	assert.Equal(t, "Your reservation confirmation - Terra Shop (46,00 €)", msg.Subject)
	assert.Contains(t, msg.Text, "Hello Ana <b>,")
	assert.Contains(t, msg.Text, "+351 900 000 000")
	assert.NotContains(t, msg.Text, "Notes:")
	assert.Contains(t, msg.Text, "Terra Shop")
	assert.NotContains(t, msg.HTML, "Notes:")
	assert.Contains(t, msg.HTML, "46,00 €")
}
