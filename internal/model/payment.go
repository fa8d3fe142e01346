package model

import "time"

// Payment statuses.  A payment is created Pending alongside its
// bookings and flips to Completed exactly once.
const (
    PaymentPending   = "Pending"
    PaymentCompleted = "Completed"
)

// Payment covers every booking created in one checkout.  Amount is
// the sum of the base fares of those bookings.  Completing the
// payment confirms all of its non-cancelled bookings atomically.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – anchor booking of the checkout group, nil until the
//                bookings are inserted.
//  AmountCents – total due in cents.
//  Status      – Pending or Completed.
//  PaidAt      – completion timestamp, nil while Pending.
//  CreatedAt   – creation timestamp.
type Payment struct {
    ID          uint64     // payments.id
    BookingID   *uint64    // payments.booking_id (nullable)
    AmountCents uint32     // payments.amount_cents
    Status      string     // payments.status
    PaidAt      *time.Time // payments.paid_at (nullable)
    CreatedAt   time.Time  // payments.created_at
}

// Receipt is the e-ticket view of a completed payment for one
// booking, joined with traveler and trip display columns.
//
// Fields:
//  BookingID     – booking the receipt is for.
//  PaymentID     – payment that covered the booking.
//  PassengerName – name of the owning passenger.
//  TrainName     – English name of the train.
//  DepartureAt   – scheduled departure time.
//  SeatNumber    – reserved seat within the class.
//  Class         – fare class of the seat.
//  AmountCents   – total paid on the covering payment.
//  PaidAt        – when the payment completed.
type Receipt struct {
    BookingID     uint64
    PaymentID     uint64
    PassengerName string
    TrainName     string
    DepartureAt   time.Time
    SeatNumber    uint32
    Class         string
    AmountCents   uint32
    PaidAt        time.Time
}
