package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

// CartService is the part of service.CartService the handlers use.
type CartService interface {
	View(ctx context.Context, sessionID string) (service.CartView, error)
	AddItem(ctx context.Context, sessionID, productID string) (service.CartView, error)
	SetQuantity(ctx context.Context, sessionID, productID string, qty int) (service.CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (service.CartView, error)
	SetWantsTransport(ctx context.Context, sessionID string, wants bool) (service.CartView, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type TransportRequestDTO struct {
	WantsTransport *bool `json:"wants_transport"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), getSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	view, err := h.carts.AddItem(r.Context(), getSessionID(r.Context()), productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

// UpdateQuantity sets the line quantity; zero or less removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	view, err := h.carts.SetQuantity(r.Context(), getSessionID(r.Context()), productID, *req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	view, err := h.carts.RemoveItem(r.Context(), getSessionID(r.Context()), productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) SetTransport(w http.ResponseWriter, r *http.Request) {
	var req TransportRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WantsTransport == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "wants_transport is required")
		return
	}

	view, err := h.carts.SetWantsTransport(r.Context(), getSessionID(r.Context()), *req.WantsTransport)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if err := h.carts.ClearCart(r.Context(), sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	view, err := h.carts.View(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
