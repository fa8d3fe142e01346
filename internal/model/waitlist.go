package model

import "time"

// Waiting-list entry statuses.
const (
    WaitlistPending   = "Pending"
    WaitlistConfirmed = "Confirmed"
)

// WaitlistEntry tracks an unpaid booking awaiting promotion.  An
// entry is created whenever a booking is inserted with status
// Waiting and is confirmed either by payment completion or by a
// staff promotion.
//
// Fields:
//  ID            – primary key identifier.
//  BookingID     – booking the entry belongs to.
//  TravelDate    – departure date of the booked trip.
//  Status        – Pending or Confirmed.
//  ReservedAt    – when the underlying booking was made.
type WaitlistEntry struct {
    ID         uint64    // waiting_list.id
    BookingID  uint64    // waiting_list.booking_id
    TravelDate time.Time // waiting_list.travel_date
    Status     string    // waiting_list.status
    ReservedAt time.Time // waiting_list.reserved_at
}

// WaitlistRanked is a pending entry joined with the loyalty balance
// of the booking's passenger, used to order batch promotions.
//
// Fields:
//  EntryID          – waiting-list entry identifier.
//  BookingID        – booking awaiting promotion.
//  PassengerID      – passenger who owns the booking.
//  PassengerName    – display name of the passenger.
//  LoyaltyKilometers – passenger's loyalty balance.
//  ReservedAt       – when the booking was made.
type WaitlistRanked struct {
    EntryID           uint64
    BookingID         uint64
    PassengerID       uint64
    PassengerName     string
    LoyaltyKilometers uint32
    ReservedAt        time.Time
}
