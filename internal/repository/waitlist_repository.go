package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// WaitlistRepo provides operations on waiting-list entries.  Entries
// mirror Waiting bookings; promotion confirms the entry and its
// booking in the same transaction.
type WaitlistRepo struct {
    db *sql.DB
}

// NewWaitlistRepo returns a new WaitlistRepo bound to the given database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// CreateTx inserts a Pending waiting-list entry for a booking.
func (r *WaitlistRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.WaitlistEntry) error {
    const q = `INSERT INTO waiting_list (booking_id, travel_date, status, reserved_at)
               VALUES (?, ?, 'Pending', ?)`
    res, err := tx.ExecContext(ctx, q, e.BookingID, e.TravelDate, e.ReservedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    e.Status = model.WaitlistPending
    return nil
}

// GetPendingByBookingTx fetches the Pending entry for a booking with
// FOR UPDATE.  Returns ErrWaitlistNotFound when the booking has no
// pending entry.
func (r *WaitlistRepo) GetPendingByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.WaitlistEntry, error) {
    const q = `SELECT id, booking_id, travel_date, status, reserved_at
               FROM waiting_list WHERE booking_id = ? AND status = 'Pending' FOR UPDATE`
    var e model.WaitlistEntry
    err := tx.QueryRowContext(ctx, q, bookingID).Scan(&e.ID, &e.BookingID, &e.TravelDate, &e.Status, &e.ReservedAt)
    if err == sql.ErrNoRows {
        return nil, ErrWaitlistNotFound
    }
    if err != nil {
        return nil, err
    }
    return &e, nil
}

// ConfirmTx flips one entry to Confirmed.
func (r *WaitlistRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE waiting_list SET status = 'Confirmed' WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, id)
    return err
}

// ConfirmByPaymentTx confirms the pending entries of every booking
// covered by a payment, keeping the waiting list consistent with the
// bookings it mirrors when a payment completes.
func (r *WaitlistRepo) ConfirmByPaymentTx(ctx context.Context, tx *sql.Tx, paymentID uint64) error {
    const q = `UPDATE waiting_list w
               JOIN bookings b ON b.id = w.booking_id
               SET w.status = 'Confirmed'
               WHERE b.payment_id = ? AND w.status = 'Pending'`
    _, err := tx.ExecContext(ctx, q, paymentID)
    return err
}

// ListPendingRanked lists pending entries for a train and travel date
// ordered by the promotion rank: loyalty kilometers descending, then
// reservation time ascending, then booking ID ascending as the final
// tiebreak.
func (r *WaitlistRepo) ListPendingRanked(ctx context.Context, trainID uint64, travelDate string) ([]model.WaitlistRanked, error) {
    const q = `SELECT w.id, w.booking_id, b.passenger_id, p.name,
               pa.loyalty_kilometers, w.reserved_at
               FROM waiting_list w
               JOIN bookings b ON b.id = w.booking_id
               JOIN passengers pa ON pa.person_id = b.passenger_id
               JOIN persons p ON p.id = b.passenger_id
               WHERE w.status = 'Pending' AND b.status = 'Waiting'
               AND b.train_id = ? AND DATE(w.travel_date) = ?
               ORDER BY pa.loyalty_kilometers DESC, w.reserved_at ASC, w.booking_id ASC`
    rows, err := r.db.QueryContext(ctx, q, trainID, travelDate)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.WaitlistRanked
    for rows.Next() {
        var e model.WaitlistRanked
        if err := rows.Scan(&e.EntryID, &e.BookingID, &e.PassengerID, &e.PassengerName, &e.LoyaltyKilometers, &e.ReservedAt); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}
