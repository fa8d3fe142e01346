package model

import "time"

// Fare classes.  Each class has its own capacity on the train and its
// own base fare in the configuration.
const (
    ClassEconomy  = "Economy"
    ClassBusiness = "Business"
)

// Booking statuses.  Waiting bookings hold a seat but are not yet
// paid; Confirmed bookings are paid; Cancelled bookings release their
// seat and never leave that state.
const (
    BookingWaiting   = "Waiting"
    BookingConfirmed = "Confirmed"
    BookingCancelled = "Cancelled"
)

// ValidClass reports whether s names a known fare class.
func ValidClass(s string) bool {
    return s == ClassEconomy || s == ClassBusiness
}

// Booking reserves one seat on a trip for a passenger, or for one of
// the passenger's dependents.  All bookings created in a single
// checkout share a payment and are confirmed or kept waiting
// together.
//
// Fields:
//  ID            – primary key identifier.
//  TripID        – trip the seat is reserved on.
//  TrainID       – train running the trip (denormalized from the trip).
//  TrackID       – track of the trip (denormalized from the trip).
//  OriginID      – station the passenger boards at.
//  DestinationID – station the passenger leaves at.
//  PassengerID   – passenger who owns the booking.
//  DependentID   – dependent traveling on this seat, nil when the
//                  passenger travels themselves.
//  PaymentID     – payment covering this booking.
//  Class         – Economy or Business.
//  Status        – Waiting, Confirmed or Cancelled.
//  SeatNumber    – seat within the class, 1..capacity.
//  BaseFareCents – fare charged for this seat, in cents.
//  NumOfLuggage  – declared pieces of luggage.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
    ID            uint64    // bookings.id
    TripID        uint64    // bookings.trip_id
    TrainID       uint64    // bookings.train_id
    TrackID       uint64    // bookings.track_id
    OriginID      uint64    // bookings.origin_station_id
    DestinationID uint64    // bookings.destination_station_id
    PassengerID   uint64    // bookings.passenger_id
    DependentID   *uint64   // bookings.dependent_id (nullable)
    PaymentID     uint64    // bookings.payment_id
    Class         string    // bookings.class
    Status        string    // bookings.status
    SeatNumber    uint32    // bookings.seat_number
    BaseFareCents uint32    // bookings.base_fare_cents
    NumOfLuggage  uint32    // bookings.num_of_luggage
    CreatedAt     time.Time // bookings.created_at
    UpdatedAt     time.Time // bookings.updated_at
}

// BookingDetail is a booking joined with its trip, train, stations
// and traveler names, shaped for itinerary and staff views.
//
// Fields mirror Booking plus the joined display columns.
type BookingDetail struct {
    Booking
    PassengerName      string
    DependentName      *string
    TrainName          string
    DepartureAt        time.Time
    ArrivalAt          time.Time
    OriginStation      string
    DestinationStation string
}
