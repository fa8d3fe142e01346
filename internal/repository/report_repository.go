package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// ReportRepo runs the staff reporting queries.  Reports are read-only
// aggregations over bookings, trips and the waiting list.
type ReportRepo struct {
    db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// CurrentReservations lists today's non-cancelled bookings together
// with passenger names, optionally narrowed to one trip.
func (r *ReportRepo) CurrentReservations(ctx context.Context, tripID uint64) ([]model.BookingDetail, error) {
    query := bookingDetailSelect + `
        WHERE b.status <> 'Cancelled' AND DATE(t.departure_at) = CURDATE()`
    var args []interface{}
    if tripID != 0 {
        query += " AND b.trip_id = ?"
        args = append(args, tripID)
    }
    query += " ORDER BY t.departure_at ASC, b.id ASC"
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectDetails(rows)
}

// WaitlistedLoyaltyRow is one line of the waitlisted-by-loyalty
// report: a waiting passenger on a class, ranked by loyalty balance.
type WaitlistedLoyaltyRow struct {
    BookingID         uint64
    PassengerID       uint64
    PassengerName     string
    LoyaltyKilometers uint32
    Class             string
    SeatNumber        uint32
    ReservedAt        time.Time
}

// WaitlistedByLoyalty lists the Waiting bookings of a trip for one
// class, ordered by the same rank batch promotion uses.
func (r *ReportRepo) WaitlistedByLoyalty(ctx context.Context, tripID uint64, class string) ([]WaitlistedLoyaltyRow, error) {
    const q = `SELECT b.id, b.passenger_id, p.name, pa.loyalty_kilometers,
               b.class, b.seat_number, w.reserved_at
               FROM bookings b
               JOIN waiting_list w ON w.booking_id = b.id AND w.status = 'Pending'
               JOIN passengers pa ON pa.person_id = b.passenger_id
               JOIN persons p ON p.id = b.passenger_id
               WHERE b.trip_id = ? AND b.class = ? AND b.status = 'Waiting'
               ORDER BY pa.loyalty_kilometers DESC, w.reserved_at ASC, b.id ASC`
    rows, err := r.db.QueryContext(ctx, q, tripID, class)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []WaitlistedLoyaltyRow
    for rows.Next() {
        var row WaitlistedLoyaltyRow
        err := rows.Scan(&row.BookingID, &row.PassengerID, &row.PassengerName,
            &row.LoyaltyKilometers, &row.Class, &row.SeatNumber, &row.ReservedAt)
        if err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    return out, rows.Err()
}

// LoadFactorRow is one trip's load factor on a date: confirmed seats
// over total train capacity.
type LoadFactorRow struct {
    TripID     uint64
    TrainName  string
    Confirmed  uint32
    Capacity   uint32
    LoadFactor float64
}

// LoadFactor computes the per-trip load factor for a date.  Only
// Confirmed bookings count toward occupancy.
func (r *ReportRepo) LoadFactor(ctx context.Context, date string) ([]LoadFactorRow, error) {
    const q = `SELECT t.id, tr.name_english,
               COALESCE(SUM(b.status = 'Confirmed'), 0),
               tr.capacity_economy + tr.capacity_business
               FROM trips t
               JOIN trains tr ON tr.id = t.train_id
               LEFT JOIN bookings b ON b.trip_id = t.id
               WHERE DATE(t.departure_at) = ?
               GROUP BY t.id, tr.name_english, tr.capacity_economy, tr.capacity_business
               ORDER BY t.id`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []LoadFactorRow
    for rows.Next() {
        var row LoadFactorRow
        if err := rows.Scan(&row.TripID, &row.TrainName, &row.Confirmed, &row.Capacity); err != nil {
            return nil, err
        }
        if row.Capacity > 0 {
            row.LoadFactor = float64(row.Confirmed) / float64(row.Capacity)
        }
        out = append(out, row)
    }
    return out, rows.Err()
}

// DependentTravelerRow is one dependent traveling on a date, with the
// sponsoring passenger.
type DependentTravelerRow struct {
    DependentID   uint64
    DependentName string
    Relation      string
    PassengerID   uint64
    PassengerName string
    TripID        uint64
    TrainName     string
    DepartureAt   time.Time
}

// DependentsTraveling lists dependents with non-cancelled bookings on
// trips departing on the given date.
func (r *ReportRepo) DependentsTraveling(ctx context.Context, date string) ([]DependentTravelerRow, error) {
    const q = `SELECT d.id, d.name, d.relation, b.passenger_id, p.name,
               b.trip_id, tr.name_english, t.departure_at
               FROM bookings b
               JOIN dependents d ON d.id = b.dependent_id
               JOIN persons p ON p.id = b.passenger_id
               JOIN trips t ON t.id = b.trip_id
               JOIN trains tr ON tr.id = b.train_id
               WHERE b.status <> 'Cancelled' AND DATE(t.departure_at) = ?
               ORDER BY t.departure_at ASC, d.id ASC`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []DependentTravelerRow
    for rows.Next() {
        var row DependentTravelerRow
        err := rows.Scan(&row.DependentID, &row.DependentName, &row.Relation,
            &row.PassengerID, &row.PassengerName, &row.TripID, &row.TrainName, &row.DepartureAt)
        if err != nil {
            return nil, err
        }
        out = append(out, row)
    }
    return out, rows.Err()
}
