// Package repository implements data access over database/sql for the
// railway booking engine.  Multi-step writes run inside explicit
// transactions owned by the handler layer; repositories expose plain
// methods bound to the pool and Tx variants bound to a caller-supplied
// *sql.Tx.  The sentinel errors below let handlers translate storage
// failures into HTTP status codes without string matching.
package repository

import "errors"

// ErrTripNotFound is returned when a trip does not exist.  Handlers
// translate this into an HTTP 404 response.
var ErrTripNotFound = errors.New("trip not found")

// ErrBookingNotFound is returned when a booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPaymentNotFound is returned when a payment does not exist.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrWaitlistNotFound is returned when no pending waiting-list entry
// exists for the requested booking.
var ErrWaitlistNotFound = errors.New("waiting-list entry not found")

// ErrPersonNotFound is returned when no person matches the requested
// identifier or email.
var ErrPersonNotFound = errors.New("person not found")

// ErrForbidden is returned when the caller attempts an operation on a
// booking owned by another passenger.  Handlers translate this into
// an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSeatTaken is returned when a requested seat is already held by a
// non-cancelled booking on the same trip.  Handlers translate this
// into an HTTP 409 response naming the conflicting seats.
var ErrSeatTaken = errors.New("seat already taken")

// ErrCapacityExceeded is returned when a class has fewer free seats
// than the checkout requests.
var ErrCapacityExceeded = errors.New("class capacity exceeded")

// ErrPaymentCompleted is returned when completing a payment that has
// already been completed.  Completion is not idempotent; handlers
// translate this into an HTTP 409 response.
var ErrPaymentCompleted = errors.New("payment already completed")

// ErrAmountMismatch is returned when the amount tendered does not
// equal the amount due on the payment.
var ErrAmountMismatch = errors.New("payment amount mismatch")

// ErrBookingNotEditable is returned when updating or confirming a
// booking whose status does not permit the change, for example
// editing a Cancelled booking or promoting a Confirmed one.
var ErrBookingNotEditable = errors.New("booking not editable in its current status")

// ErrAlreadyCancelled is returned when cancelling a booking twice.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already registered")
