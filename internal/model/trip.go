package model

import "time"

// Trip statuses.  Bookings may only be created on Active trips.
const (
    TripActive    = "Active"
    TripCancelled = "Cancelled"
    TripCompleted = "Completed"
)

// Trip is a scheduled run of a train over a track on a given date.
// It is the unit passengers book against: seat occupancy and class
// capacity are both scoped to a single trip.
//
// Fields:
//  ID          – primary key identifier.
//  TrainID     – train running the trip.
//  TrackID     – track the trip runs over.
//  DepartureAt – scheduled departure time.
//  ArrivalAt   – scheduled arrival time (after DepartureAt).
//  Status      – Active, Cancelled or Completed.
type Trip struct {
    ID          uint64    // trips.id
    TrainID     uint64    // trips.train_id
    TrackID     uint64    // trips.track_id
    DepartureAt time.Time // trips.departure_at
    ArrivalAt   time.Time // trips.arrival_at
    Status      string    // trips.status
}

// TripSummary is a trip joined with its train and endpoint stations,
// shaped for search results and itinerary views.
//
// Fields:
//  TripID             – trip identifier.
//  TrainID            – train identifier.
//  TrainName          – English name of the train.
//  DepartureAt        – scheduled departure time.
//  ArrivalAt          – scheduled arrival time.
//  OriginStation      – English name of the origin station.
//  DestinationStation – English name of the destination station.
//  OriginCity         – English name of the origin city.
//  DestinationCity    – English name of the destination city.
type TripSummary struct {
    TripID             uint64
    TrainID            uint64
    TrainName          string
    DepartureAt        time.Time
    ArrivalAt          time.Time
    OriginStation      string
    DestinationStation string
    OriginCity         string
    DestinationCity    string
}
