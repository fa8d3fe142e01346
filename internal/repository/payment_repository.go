package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// PaymentRepo provides operations on payments.  One payment covers
// every booking created in a checkout; its amount is fixed at insert
// time and completion flips the payment exactly once.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment for the given amount and populates the
// generated ID.  The status follows the checkout: Pending when the
// bookings start Waiting, Completed (with paid_at stamped) when staff
// confirm immediately.  The booking anchor is set afterwards with
// SetAnchorTx once the bookings exist.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
    if p.Status == "" {
        p.Status = model.PaymentPending
    }
    var res sql.Result
    var err error
    if p.Status == model.PaymentCompleted {
        res, err = tx.ExecContext(ctx,
            `INSERT INTO payments (amount_cents, status, paid_at) VALUES (?, 'Completed', NOW())`,
            p.AmountCents)
    } else {
        res, err = tx.ExecContext(ctx,
            `INSERT INTO payments (amount_cents, status) VALUES (?, 'Pending')`,
            p.AmountCents)
    }
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// SetAnchorTx records the first booking of the checkout group on the
// payment.  Kept separate from CreateTx because bookings reference the
// payment and must be inserted after it.
func (r *PaymentRepo) SetAnchorTx(ctx context.Context, tx *sql.Tx, paymentID, bookingID uint64) error {
    const q = `UPDATE payments SET booking_id = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, bookingID, paymentID)
    return err
}

// GetByID fetches a payment by primary key.  Returns
// ErrPaymentNotFound when no row matches.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
    return scanPayment(r.db.QueryRowContext(ctx, paymentSelect+` WHERE id = ?`, id))
}

// GetForUpdateTx fetches a payment by primary key with FOR UPDATE so
// concurrent completions serialize on the row.  Returns
// ErrPaymentNotFound when no row matches.
func (r *PaymentRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Payment, error) {
    return scanPayment(tx.QueryRowContext(ctx, paymentSelect+` WHERE id = ? FOR UPDATE`, id))
}

const paymentSelect = `SELECT id, booking_id, amount_cents, status, paid_at, created_at FROM payments`

func scanPayment(row *sql.Row) (*model.Payment, error) {
    var p model.Payment
    var anchor sql.NullInt64
    var paidAt sql.NullTime
    err := row.Scan(&p.ID, &anchor, &p.AmountCents, &p.Status, &paidAt, &p.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrPaymentNotFound
    }
    if err != nil {
        return nil, err
    }
    if anchor.Valid {
        a := uint64(anchor.Int64)
        p.BookingID = &a
    }
    if paidAt.Valid {
        t := paidAt.Time
        p.PaidAt = &t
    }
    return &p, nil
}

// CompleteTx marks a payment Completed and stamps paid_at.  The
// caller must have verified the status is Pending under lock first.
func (r *PaymentRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE payments SET status = 'Completed', paid_at = NOW() WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, id)
    return err
}

// Receipt builds the e-ticket view for one booking.  It requires the
// covering payment to be Completed; otherwise ErrPaymentNotFound is
// returned, which handlers surface as "no receipt yet".
func (r *PaymentRepo) Receipt(ctx context.Context, bookingID uint64) (*model.Receipt, error) {
    const q = `SELECT b.id, pay.id, p.name, tr.name_english, t.departure_at,
               b.seat_number, b.class, pay.amount_cents, pay.paid_at
               FROM bookings b
               JOIN payments pay ON pay.id = b.payment_id
               JOIN persons p ON p.id = b.passenger_id
               JOIN trips t ON t.id = b.trip_id
               JOIN trains tr ON tr.id = b.train_id
               WHERE b.id = ? AND pay.status = 'Completed'`
    var rec model.Receipt
    err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
        &rec.BookingID, &rec.PaymentID, &rec.PassengerName, &rec.TrainName,
        &rec.DepartureAt, &rec.SeatNumber, &rec.Class, &rec.AmountCents, &rec.PaidAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrPaymentNotFound
    }
    if err != nil {
        return nil, err
    }
    return &rec, nil
}
