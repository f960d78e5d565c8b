package domain

import "errors"

var (
	// ErrNotFound is returned when a client, order or product cannot be
	// located. Adapters map their own miss conditions onto it.
	ErrNotFound = errors.New("not found")

	// ErrBusy is returned when the ledger lock could not be acquired
	// within the configured wait. Callers may retry.
	ErrBusy = errors.New("ledger busy")

	// ErrValidation is returned when an order request contains no
	// priceable line items after catalog matching.
	ErrValidation = errors.New("no priceable line items")
)
