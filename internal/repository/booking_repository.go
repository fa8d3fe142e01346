package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  A booking holds
// one seat on a trip; seat uniqueness among non-cancelled bookings is
// enforced by TakenSeatsTx, which locks the conflicting rows inside
// the caller's transaction so two concurrent checkouts cannot both
// pass the check.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying pool so handlers can begin transactions
// that span multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// TakenSeatsTx returns which of the requested seat numbers are already
// held by a non-cancelled booking on the given trip and class.  The
// rows are locked with FOR UPDATE so the conflict check stays valid
// until the caller commits.  An empty result means all requested
// seats are free.
func (r *BookingRepo) TakenSeatsTx(ctx context.Context, tx *sql.Tx, tripID, trainID uint64, class string, seats []uint32) ([]uint32, error) {
    if len(seats) == 0 {
        return nil, nil
    }
    query := `SELECT seat_number FROM bookings
              WHERE trip_id = ? AND train_id = ? AND class = ? AND status <> 'Cancelled'
              AND seat_number IN (` + placeholders(len(seats)) + `) FOR UPDATE`
    args := make([]interface{}, 0, 3+len(seats))
    args = append(args, tripID, trainID, class)
    for _, s := range seats {
        args = append(args, s)
    }
    rows, err := tx.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var taken []uint32
    for rows.Next() {
        var n uint32
        if err := rows.Scan(&n); err != nil {
            return nil, err
        }
        taken = append(taken, n)
    }
    return taken, rows.Err()
}

// CountActiveByClassTx counts non-cancelled bookings for a class on a
// trip, locking the counted rows.  Callers compare the result against
// the train's class capacity before inserting new bookings.
func (r *BookingRepo) CountActiveByClassTx(ctx context.Context, tx *sql.Tx, tripID, trainID uint64, class string) (uint32, error) {
    const q = `SELECT COUNT(*) FROM bookings
               WHERE trip_id = ? AND train_id = ? AND class = ? AND status <> 'Cancelled' FOR UPDATE`
    var n uint32
    if err := tx.QueryRowContext(ctx, q, tripID, trainID, class).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the provided record.
// The caller must commit or rollback the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings
               (trip_id, train_id, track_id, origin_station_id, destination_station_id,
                passenger_id, dependent_id, payment_id, class, status, seat_number,
                base_fare_cents, num_of_luggage)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        b.TripID, b.TrainID, b.TrackID, b.OriginID, b.DestinationID,
        b.PassengerID, b.DependentID, b.PaymentID, b.Class, b.Status,
        b.SeatNumber, b.BaseFareCents, b.NumOfLuggage,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// GetByID fetches a single booking by primary key.  Returns
// ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE id = ?`, id))
}

// GetForUpdateTx fetches a booking by primary key with FOR UPDATE so
// the row stays stable for the rest of the transaction.  Returns
// ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    return scanBooking(tx.QueryRowContext(ctx, bookingSelect+` WHERE id = ? FOR UPDATE`, id))
}

const bookingSelect = `SELECT id, trip_id, train_id, track_id, origin_station_id,
       destination_station_id, passenger_id, dependent_id, payment_id, class,
       status, seat_number, base_fare_cents, num_of_luggage, created_at, updated_at
       FROM bookings`

func scanBooking(row *sql.Row) (*model.Booking, error) {
    var b model.Booking
    var dep sql.NullInt64
    err := row.Scan(
        &b.ID, &b.TripID, &b.TrainID, &b.TrackID, &b.OriginID,
        &b.DestinationID, &b.PassengerID, &dep, &b.PaymentID, &b.Class,
        &b.Status, &b.SeatNumber, &b.BaseFareCents, &b.NumOfLuggage,
        &b.CreatedAt, &b.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    if dep.Valid {
        d := uint64(dep.Int64)
        b.DependentID = &d
    }
    return &b, nil
}

// UpdateFieldsTx writes the editable columns of a booking: class,
// seat, fare, luggage and dependent link.  The caller is responsible
// for having re-validated seat uniqueness with TakenSeatsTx in the
// same transaction when the seat or class moved.
func (r *BookingRepo) UpdateFieldsTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `UPDATE bookings SET class = ?, seat_number = ?, base_fare_cents = ?,
               num_of_luggage = ?, dependent_id = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, b.Class, b.SeatNumber, b.BaseFareCents,
        b.NumOfLuggage, b.DependentID, b.ID)
    return err
}

// SetSeatTx moves a booking to a new seat, used by waitlist promotion
// after the conflict check passed.
func (r *BookingRepo) SetSeatTx(ctx context.Context, tx *sql.Tx, id uint64, seat uint32) error {
    const q = `UPDATE bookings SET seat_number = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, seat, id)
    return err
}

// CancelTx marks a booking Cancelled, releasing its seat.  The caller
// must have verified the current status first via GetForUpdateTx.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE bookings SET status = 'Cancelled' WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, id)
    return err
}

// ConfirmByPaymentTx flips every Waiting booking covered by the given
// payment to Confirmed and returns how many rows changed.
func (r *BookingRepo) ConfirmByPaymentTx(ctx context.Context, tx *sql.Tx, paymentID uint64) (int64, error) {
    const q = `UPDATE bookings SET status = 'Confirmed' WHERE payment_id = ? AND status = 'Waiting'`
    res, err := tx.ExecContext(ctx, q, paymentID)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ConfirmTx flips one Waiting booking to Confirmed.
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE bookings SET status = 'Confirmed' WHERE id = ? AND status = 'Waiting'`
    _, err := tx.ExecContext(ctx, q, id)
    return err
}

// DetailsByPaymentTx lists the bookings covered by a payment in
// itinerary detail form, so payment completion can return the updated
// set with its trip dates.
func (r *BookingRepo) DetailsByPaymentTx(ctx context.Context, tx *sql.Tx, paymentID uint64) ([]model.BookingDetail, error) {
    rows, err := tx.QueryContext(ctx, bookingDetailSelect+` WHERE b.payment_id = ? ORDER BY b.id`, paymentID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectDetails(rows)
}

// OccupiedSeats returns the seat numbers held by non-cancelled
// bookings for one class on a trip.  Used to render seat maps; reads
// outside any transaction, so the result is a snapshot.
func (r *BookingRepo) OccupiedSeats(ctx context.Context, tripID, trainID uint64, class string) ([]uint32, error) {
    const q = `SELECT seat_number FROM bookings
               WHERE trip_id = ? AND train_id = ? AND class = ? AND status <> 'Cancelled'
               ORDER BY seat_number`
    rows, err := r.db.QueryContext(ctx, q, tripID, trainID, class)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []uint32
    for rows.Next() {
        var n uint32
        if err := rows.Scan(&n); err != nil {
            return nil, err
        }
        seats = append(seats, n)
    }
    return seats, rows.Err()
}

const bookingDetailSelect = `SELECT b.id, b.trip_id, b.train_id, b.track_id,
       b.origin_station_id, b.destination_station_id, b.passenger_id,
       b.dependent_id, b.payment_id, b.class, b.status, b.seat_number,
       b.base_fare_cents, b.num_of_luggage, b.created_at, b.updated_at,
       p.name, d.name, tr.name_english, t.departure_at, t.arrival_at,
       so.name_english, sd.name_english
       FROM bookings b
       JOIN trips t ON t.id = b.trip_id
       JOIN trains tr ON tr.id = b.train_id
       JOIN persons p ON p.id = b.passenger_id
       LEFT JOIN dependents d ON d.id = b.dependent_id
       JOIN stations so ON so.id = b.origin_station_id
       JOIN stations sd ON sd.id = b.destination_station_id`

func scanBookingDetail(rows interface {
    Scan(dest ...interface{}) error
}) (*model.BookingDetail, error) {
    var bd model.BookingDetail
    var dep sql.NullInt64
    var depName sql.NullString
    err := rows.Scan(
        &bd.ID, &bd.TripID, &bd.TrainID, &bd.TrackID, &bd.OriginID,
        &bd.DestinationID, &bd.PassengerID, &dep, &bd.PaymentID, &bd.Class,
        &bd.Status, &bd.SeatNumber, &bd.BaseFareCents, &bd.NumOfLuggage,
        &bd.CreatedAt, &bd.UpdatedAt,
        &bd.PassengerName, &depName, &bd.TrainName, &bd.DepartureAt,
        &bd.ArrivalAt, &bd.OriginStation, &bd.DestinationStation,
    )
    if err != nil {
        return nil, err
    }
    if dep.Valid {
        d := uint64(dep.Int64)
        bd.DependentID = &d
    }
    if depName.Valid {
        n := depName.String
        bd.DependentName = &n
    }
    return &bd, nil
}

// GetDetail fetches one booking joined with its trip, train, stations
// and traveler names.  Returns ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
    row := r.db.QueryRowContext(ctx, bookingDetailSelect+` WHERE b.id = ?`, id)
    bd, err := scanBookingDetail(row)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    return bd, err
}

// ListByPassenger lists every booking owned by a passenger, newest
// first, in itinerary detail form.
func (r *BookingRepo) ListByPassenger(ctx context.Context, passengerID uint64) ([]model.BookingDetail, error) {
    rows, err := r.db.QueryContext(ctx, bookingDetailSelect+` WHERE b.passenger_id = ? ORDER BY b.created_at DESC, b.id DESC`, passengerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectDetails(rows)
}

// BookingFilter narrows the staff reservation browse.  Zero values
// mean "no filter" for that dimension.
type BookingFilter struct {
    PassengerID uint64
    TripID      uint64
    Status      string
    TravelDate  string // YYYY-MM-DD, matched against the trip departure date
}

// ListFiltered lists bookings for staff, applying whichever filter
// dimensions are set.  Results are newest first.
func (r *BookingRepo) ListFiltered(ctx context.Context, f BookingFilter) ([]model.BookingDetail, error) {
    var conds []string
    var args []interface{}
    if f.PassengerID != 0 {
        conds = append(conds, "b.passenger_id = ?")
        args = append(args, f.PassengerID)
    }
    if f.TripID != 0 {
        conds = append(conds, "b.trip_id = ?")
        args = append(args, f.TripID)
    }
    if f.Status != "" {
        conds = append(conds, "b.status = ?")
        args = append(args, f.Status)
    }
    if f.TravelDate != "" {
        conds = append(conds, "DATE(t.departure_at) = ?")
        args = append(args, f.TravelDate)
    }
    query := bookingDetailSelect
    if len(conds) > 0 {
        query += " WHERE " + strings.Join(conds, " AND ")
    }
    query += " ORDER BY b.created_at DESC, b.id DESC"
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectDetails(rows)
}

func collectDetails(rows *sql.Rows) ([]model.BookingDetail, error) {
    var out []model.BookingDetail
    for rows.Next() {
        bd, err := scanBookingDetail(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *bd)
    }
    return out, rows.Err()
}

// placeholders builds a "?, ?, ?" list of length n for IN clauses.
func placeholders(n int) string {
    return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
