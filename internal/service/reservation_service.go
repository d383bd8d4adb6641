package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/mailer"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/reservation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReservationService struct {
	carts    *CartService
	repo     repository.ReservationRepository
	sender   mailer.Sender
	composer reservation.Composer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewReservationService(
	carts *CartService,
	repo repository.ReservationRepository,
	sender mailer.Sender,
	composer reservation.Composer,
	log logrus.FieldLogger,
) *ReservationService {
	return &ReservationService{
		carts:    carts,
		repo:     repo,
		sender:   sender,
		composer: composer,
		log:      log,
		now:      time.Now,
	}
}

// Submit turns the session's cart into a reservation and mails the
// confirmations. The reservation is stored before any email is sent; when
// delivery fails it is kept with status notification_failed, the cart is
// left untouched and ErrDeliveryFailed is returned along with it.
func (s *ReservationService) Submit(ctx context.Context, sessionID string, customer domain.Customer) (*domain.Reservation, error) {
	customer, err := validateCustomer(customer)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := s.now().UTC()
	res := &domain.Reservation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Customer:  customer,
		Lines:     c.Lines,
		Summary:   reservation.Summarize(c, s.carts.estimator),
		Status:    domain.ReservationStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	entry := s.log.WithFields(logrus.Fields{"reservation_id": res.ID, "total": res.Summary.GrandTotal.String()})
	entry.Info("reservation submitted")

	if err := s.notify(ctx, res); err != nil {
		entry.WithError(err).Error("confirmation delivery failed")
		s.setStatus(ctx, res, domain.ReservationStatusNotificationFailed)
		return res, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.setStatus(ctx, res, domain.ReservationStatusNotified)
	cleared, err := s.carts.clearIfUnchanged(ctx, sessionID, c)
	switch {
	case err != nil:
		entry.WithError(err).Warn("failed to clear cart after reservation")
	case !cleared:
		entry.Info("cart changed during submission, keeping it")
	}
	return res, nil
}

// Get returns a stored reservation.
func (s *ReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *ReservationService) notify(ctx context.Context, res *domain.Reservation) error {
	owner, err := s.composer.OwnerMessage(*res)
	if err != nil {
		return err
	}
	confirmation, err := s.composer.CustomerMessage(*res)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, owner, confirmation)
}

func (s *ReservationService) setStatus(ctx context.Context, res *domain.Reservation, status domain.ReservationStatus) {
	if err := s.repo.UpdateStatus(ctx, res.ID, status); err != nil {
		s.log.WithError(err).WithField("reservation_id", res.ID).Error("failed to update reservation status")
		return
	}
	res.Status = status
	res.UpdatedAt = s.now().UTC()
}

func validateCustomer(c domain.Customer) (domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Notes = strings.TrimSpace(c.Notes)

	switch {
	case !c.Agree:
		return c, ErrAgreementRequired
	case c.Email == "":
		return c, ErrMissingEmail
	case c.Name == "":
		return c, ErrMissingName
	}

	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return c, ErrInvalidEmail
	}
	return c, nil
}
