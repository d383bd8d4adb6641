package service

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found in catalog")
	ErrEmptyCart         = errors.New("cart is empty, nothing to reserve")
	ErrAgreementRequired = errors.New("reservation terms must be accepted")
	ErrMissingName       = errors.New("customer name is required")
	ErrMissingEmail      = errors.New("customer email is required")
	ErrInvalidEmail      = errors.New("customer email is not a valid address")
	ErrDeliveryFailed    = errors.New("reservation saved but confirmation emails were not delivered")
)
