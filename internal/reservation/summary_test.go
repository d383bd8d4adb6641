package reservation

import (
	"testing"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func scenarioCart(wantsTransport bool) domain.Cart {
	oil := domain.Product{ID: "oil-500", Name: "Olive oil", UnitLabel: "500ml", Price: dec("12.50"), Volume: dec("0.5")}
	jam := domain.Product{ID: "jam", Name: "Fig jam", Price: dec("4.50")}

	c := cart.Add(domain.Cart{}, oil)
	for i := 0; i < 3; i++ {
		c = cart.Add(c, jam)
	}
	return cart.SetWantsTransport(c, wantsTransport)
}

func TestSummarize_WithTransport(t *testing.T) {
	s := Summarize(scenarioCart(true), shipping.Default)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, "Olive oil - 500ml", s.Lines[0].Label)
	assert.True(t, s.Lines[0].LineTotal.Equal(dec("12.50")))
	assert.Equal(t, "Fig jam", s.Lines[1].Label)
	assert.Equal(t, 3, s.Lines[1].Quantity)
	assert.True(t, s.Lines[1].LineTotal.Equal(dec("13.50")))

	assert.Equal(t, 4, s.ItemCount)
	assert.True(t, s.Subtotal.Equal(dec("26.00")))
	assert.True(t, s.TotalVolume.Equal(dec("0.5")))
	assert.Equal(t, 1, s.Boxes)
	assert.True(t, s.Shipping.Equal(dec("20")))
	assert.True(t, s.GrandTotal.Equal(dec("46.00")))
}

func TestSummarize_PickUp(t *testing.T) {
	s := Summarize(scenarioCart(false), shipping.Default)

	assert.Equal(t, 1, s.Boxes)
	assert.True(t, s.Shipping.IsZero())
	assert.True(t, s.GrandTotal.Equal(dec("26.00")))
}

func TestSummarize_EmptyCart(t *testing.T) {
	s := Summarize(domain.Cart{WantsTransport: true}, shipping.Default)

	assert.Empty(t, s.Lines)
	assert.True(t, s.Subtotal.IsZero())
	assert.Equal(t, 0, s.Boxes)
	assert.True(t, s.GrandTotal.IsZero())
}

func TestSummarize_GrandTotalIsSubtotalPlusShipping(t *testing.T) {
	for _, wants := range []bool{true, false} {
		c := scenarioCart(wants)
		for i := 0; i < 60; i++ {
			c = cart.Add(c, domain.Product{ID: "crate", Name: "Crate", Price: dec("3.33"), Volume: dec("1.7")})
			s := Summarize(c, shipping.Default)
			require.True(t, s.GrandTotal.Equal(s.Subtotal.Add(s.Shipping)))
			if !wants {
				require.True(t, s.Shipping.IsZero())
			}
		}
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	c := scenarioCart(true)
	assert.Equal(t, Summarize(c, shipping.Default), Summarize(c, shipping.Default))
}

func TestLabel_BlankUnit(t *testing.T) {
	assert.Equal(t, "Honey", Label(domain.CartLine{Name: "Honey", UnitLabel: "  "}))
}
