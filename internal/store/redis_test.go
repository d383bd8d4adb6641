package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore using it
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, 15*time.Minute)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func testCart() *domain.Cart {
	return &domain.Cart{
		Lines: []domain.CartLine{
			{
				ProductID: "oil-500",
				Name:      "Olive oil",
				UnitLabel: "500ml",
				Price:     decimal.RequireFromString("12.50"),
				Volume:    decimal.RequireFromString("0.1234567890123456789"),
				Quantity:  2,
			},
			{ProductID: "jam", Name: "Fig jam", Price: decimal.RequireFromString("4.5"), Quantity: 3},
			{ProductID: "tuna", Name: "Tuna", Price: decimal.RequireFromString("0.01"), Quantity: 1},
		},
		WantsTransport: true,
	}
}

func TestGet_Success(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cartJSON, _ := json.Marshal(testCart())
	mr.Set(cartKey("session123"), string(cartJSON))

	result, err := store.Get(context.Background(), "session123")
	require.NoError(t, err)
	assert.True(t, result.WantsTransport)
	assert.Len(t, result.Lines, 3)
	assert.Equal(t, "oil-500", result.Lines[0].ProductID)
}

func TestGet_NotFound(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cartKey("s"), `{"lines":[`))

	_, err := store.Get(context.Background(), "s")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestSet_RoundTripIsLossless(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	in := testCart()
	require.NoError(t, store.Set(ctx, "s", in))

	out, err := store.Get(ctx, "s")
	require.NoError(t, err)

	want, _ := json.Marshal(in)
	got, _ := json.Marshal(out)
	assert.JSONEq(t, string(want), string(got))
	assert.Equal(t, string(want), string(got))
	assert.True(t, out.Lines[0].Volume.Equal(in.Lines[0].Volume))
	assert.Equal(t, []string{"oil-500", "jam", "tuna"},
		[]string{out.Lines[0].ProductID, out.Lines[1].ProductID, out.Lines[2].ProductID})
}

func TestSet_WithTTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, store.Set(context.Background(), "s", &domain.Cart{}))

	ttl := mr.TTL(cartKey("s"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestGet_RefreshesTTL(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s", testCart()))
	mr.FastForward(14 * time.Minute)
	require.True(t, mr.TTL(cartKey("s")) <= 6*time.Minute)

	_, err := store.Get(ctx, "s")
	require.NoError(t, err)

	ttl := mr.TTL(cartKey("s"))
	assert.True(t, ttl >= 15*time.Minute, "read should restart the expiry, got %s", ttl)

	mr.FastForward(14 * time.Minute)
	_, err = store.Get(ctx, "s")
	assert.NoError(t, err)
}

func TestDelete_Success(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cartJSON, _ := json.Marshal(testCart())
	mr.Set(cartKey("s"), string(cartJSON))
	assert.True(t, mr.Exists(cartKey("s")))

	require.NoError(t, store.Delete(context.Background(), "s"))
	assert.False(t, mr.Exists(cartKey("s")))
}

func TestDelete_NonExistentKey(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, store.Delete(context.Background(), "nonexistent"))
}

func TestCartKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cartKey("test123"))
}
