// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Each event type has its own durable queue.
const (
    QueueItinerary         = "booking.itinerary"
    QueuePaymentPending    = "payment.pending"
    QueuePaymentCompleted  = "payment.completed"
    QueueWaitlistPromoted  = "waitlist.promoted"
    QueueDepartureReminder = "departure.reminder"
)

// ItineraryEvent is published after a checkout commits.  It carries
// the full itinerary so downstream consumers can notify the passenger
// without querying the primary database.
type ItineraryEvent struct {
    PaymentID   uint64   `json:"payment_id"`
    PassengerID uint64   `json:"passenger_id"`
    TripID      uint64   `json:"trip_id"`
    TrainName   string   `json:"train_name"`
    DepartureAt string   `json:"departure_at"`
    Class       string   `json:"class"`
    BookingIDs  []uint64 `json:"booking_ids"`
    Seats       []uint32 `json:"seats"`
    TotalCents  uint32   `json:"total_cents"`
    CreatedAt   string   `json:"created_at"`
}

// PaymentPendingEvent reminds a passenger that a checkout is waiting
// for payment.
type PaymentPendingEvent struct {
    PaymentID   uint64 `json:"payment_id"`
    PassengerID uint64 `json:"passenger_id"`
    AmountCents uint32 `json:"amount_cents"`
    CreatedAt   string `json:"created_at"`
}

// PaymentCompletedEvent is published after a payment completes and
// its bookings have been confirmed.
type PaymentCompletedEvent struct {
    PaymentID   uint64   `json:"payment_id"`
    PassengerID uint64   `json:"passenger_id"`
    BookingIDs  []uint64 `json:"booking_ids"`
    AmountCents uint32   `json:"amount_cents"`
    PaidAt      string   `json:"paid_at"`
}

// WaitlistPromotedEvent is published when staff promote a waitlisted
// booking to Confirmed.
type WaitlistPromotedEvent struct {
    BookingID   uint64 `json:"booking_id"`
    PassengerID uint64 `json:"passenger_id"`
    TripID      uint64 `json:"trip_id"`
    PromotedAt  string `json:"promoted_at"`
}

// DepartureReminderEvent is published by the reminder sweep three
// hours before a booked trip departs.
type DepartureReminderEvent struct {
    BookingID   uint64 `json:"booking_id"`
    PassengerID uint64 `json:"passenger_id"`
    TripID      uint64 `json:"trip_id"`
    TrainName   string `json:"train_name"`
    SeatNumber  uint32 `json:"seat_number"`
    DepartureAt string `json:"departure_at"`
}
