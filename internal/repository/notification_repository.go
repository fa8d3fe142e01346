package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// NotificationRepo manages the queue of scheduled departure
// reminders.  Rows are inserted at checkout and removed once the
// reminder sweep has published them.
type NotificationRepo struct {
    db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// EnqueueTx schedules a reminder for a booking at the given time.
func (r *NotificationRepo) EnqueueTx(ctx context.Context, tx *sql.Tx, bookingID uint64, sendAt time.Time) error {
    const q = `INSERT INTO notification_queue (booking_id, send_at) VALUES (?, ?)`
    _, err := tx.ExecContext(ctx, q, bookingID, sendAt)
    return err
}

// DueReminder is a due queue row joined with the booking columns the
// reminder message needs.
type DueReminder struct {
    ID          uint64
    BookingID   uint64
    PassengerID uint64
    TripID      uint64
    TrainName   string
    SeatNumber  uint32
    DepartureAt time.Time
}

// Due lists reminders whose send time has passed, oldest first,
// skipping cancelled bookings.
func (r *NotificationRepo) Due(ctx context.Context, now time.Time, limit int) ([]DueReminder, error) {
    const q = `SELECT n.id, n.booking_id, b.passenger_id, b.trip_id,
               tr.name_english, b.seat_number, t.departure_at
               FROM notification_queue n
               JOIN bookings b ON b.id = n.booking_id
               JOIN trips t ON t.id = b.trip_id
               JOIN trains tr ON tr.id = b.train_id
               WHERE n.send_at <= ? AND b.status <> ?
               ORDER BY n.send_at ASC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, now, model.BookingCancelled, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []DueReminder
    for rows.Next() {
        var d DueReminder
        err := rows.Scan(&d.ID, &d.BookingID, &d.PassengerID, &d.TripID,
            &d.TrainName, &d.SeatNumber, &d.DepartureAt)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// Delete removes queue rows by ID after their reminders have been
// published.  Rows for cancelled bookings are deleted by the sweep
// too, through DeleteForCancelled.
func (r *NotificationRepo) Delete(ctx context.Context, ids []uint64) error {
    if len(ids) == 0 {
        return nil
    }
    query := `DELETE FROM notification_queue WHERE id IN (` + placeholders(len(ids)) + `)`
    args := make([]interface{}, 0, len(ids))
    for _, id := range ids {
        args = append(args, id)
    }
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// DeleteForCancelled prunes queue rows whose bookings have been
// cancelled so they never fire.
func (r *NotificationRepo) DeleteForCancelled(ctx context.Context) error {
    const q = `DELETE n FROM notification_queue n
               JOIN bookings b ON b.id = n.booking_id
               WHERE b.status = ?`
    _, err := r.db.ExecContext(ctx, q, model.BookingCancelled)
    return err
}
