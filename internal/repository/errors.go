// Package repository defines sentinel errors reused across repositories.
// Higher layers translate these into HTTP responses: ErrForbidden becomes a
// 403, ErrConflict and ErrInvalidTransition become 409s, and the not-found
// sentinels become 404s.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update or delete cannot proceed because of
// conflicting state, such as deleting a user that appointments or orders
// still reference.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrInsufficientStock is returned when a stock reservation asks for more
// units than the product has left at the instant of the update.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidTransition is returned when a status change does not follow the
// entity's transition graph.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidState is returned when an operation is not valid for the
// entity's current status (e.g. cancelling a non-pending appointment or
// reviewing an incomplete one).
var ErrInvalidState = errors.New("invalid state for operation")

// Not-found sentinels, one per entity, so handlers can report precisely
// which lookup failed.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrOrderNotFound       = errors.New("order not found")
)
