package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type ReservationService interface {
	Submit(ctx context.Context, sessionID string, customer domain.Customer) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
}

type ReservationHandler struct {
	reservations ReservationService
}

func NewReservationHandler(reservations ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

type SubmitReservationRequestDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
	Agree bool   `json:"agree"`
}

type ReservationResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
	Warning     string              `json:"warning,omitempty"`
}

func (h *ReservationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitReservationRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.reservations.Submit(r.Context(), getSessionID(r.Context()), domain.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
		Agree: req.Agree,
	})
	if errors.Is(err, service.ErrDeliveryFailed) && res != nil {
		// stored, but the shop still has to reach the customer by hand
		respondJSON(w, http.StatusAccepted, ReservationResponse{
			Reservation: res,
			Warning:     service.ErrDeliveryFailed.Error(),
		})
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, ReservationResponse{Reservation: res})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.reservations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ReservationResponse{Reservation: res})
}
