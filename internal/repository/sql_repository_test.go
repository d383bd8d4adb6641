package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *Repository {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations("./migrations"))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestReservation() *domain.Reservation {
	lines := []domain.CartLine{
		{ProductID: "oil-500", Name: "Olive oil", UnitLabel: "500ml", Price: decimal.RequireFromString("12.50"), Volume: decimal.RequireFromString("0.5"), Quantity: 1},
		{ProductID: "jam", Name: "Fig jam", Price: decimal.RequireFromString("4.50"), Quantity: 3},
	}
	return &domain.Reservation{
		ID:        uuid.NewString(),
		SessionID: "session-1",
		Customer: domain.Customer{
			Name:  "Ana",
			Email: "ana@example.com",
			Phone: "900000000",
			Notes: "after 6pm",
			Agree: true,
		},
		Lines: lines,
		Summary: domain.Summary{
			Lines: []domain.SummaryLine{
				{ProductID: "oil-500", Label: "Olive oil - 500ml", Quantity: 1, UnitPrice: decimal.RequireFromString("12.50"), LineTotal: decimal.RequireFromString("12.50")},
				{ProductID: "jam", Label: "Fig jam", Quantity: 3, UnitPrice: decimal.RequireFromString("4.50"), LineTotal: decimal.RequireFromString("13.50")},
			},
			ItemCount:      4,
			Subtotal:       decimal.RequireFromString("26"),
			TotalVolume:    decimal.RequireFromString("0.5"),
			Boxes:          1,
			WantsTransport: true,
			Shipping:       decimal.RequireFromString("20"),
			GrandTotal:     decimal.RequireFromString("46"),
		},
		Status: domain.ReservationStatusSubmitted,
	}
}

func TestCreateAndGetReservation(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	res := newTestReservation()
	require.NoError(t, repo.CreateReservation(ctx, res))
	assert.False(t, res.CreatedAt.IsZero())

	got, err := repo.GetReservation(ctx, res.ID)
	require.NoError(t, err)

	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, "Ana", got.Customer.Name)
	assert.Equal(t, "after 6pm", got.Customer.Notes)
	assert.Equal(t, domain.ReservationStatusSubmitted, got.Status)
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Lines[0].Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 3, got.Lines[1].Quantity)
	assert.True(t, got.Summary.GrandTotal.Equal(decimal.RequireFromString("46")))
	assert.WithinDuration(t, res.CreatedAt, got.CreatedAt, time.Second)
}

func TestGetReservation_NotFound(t *testing.T) {
	repo := setupSQLite(t)

	_, err := repo.GetReservation(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestUpdateStatus(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	res := newTestReservation()
	require.NoError(t, repo.CreateReservation(ctx, res))
	require.NoError(t, repo.UpdateStatus(ctx, res.ID, domain.ReservationStatusNotified))

	got, err := repo.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusNotified, got.Status)

	err = repo.UpdateStatus(ctx, uuid.NewString(), domain.ReservationStatusNotified)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestOutboxEvents(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	first := newTestReservation()
	second := newTestReservation()
	require.NoError(t, repo.CreateReservation(ctx, first))
	require.NoError(t, repo.CreateReservation(ctx, second))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].AggregateID)
	assert.Equal(t, EventReservationSubmitted, events[0].EventType)

	var payload submittedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, first.ID, payload.ReservationID)
	assert.Equal(t, "ana@example.com", payload.CustomerEmail)
	assert.True(t, payload.Summary.GrandTotal.Equal(decimal.RequireFromString("46")))

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, second.ID, events[0].AggregateID)

	limited, err := repo.GetUnprocessedEvents(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, limited)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupSQLite(t)
	assert.NoError(t, repo.RunMigrations("./migrations"))
}

func TestRebind(t *testing.T) {
	pg := &Repository{driver: DriverPostgres}
	assert.Equal(t, "SELECT $1, $2 WHERE x = $3", pg.rebind("SELECT ?, ? WHERE x = ?"))

	lite := &Repository{driver: DriverSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}
