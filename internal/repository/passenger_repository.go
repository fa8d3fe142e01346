package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// PassengerRepo provides read access to passenger profiles and their
// dependents, backing the staff directory and the passenger profile
// view.
type PassengerRepo struct {
    db *sql.DB
}

// NewPassengerRepo returns a new PassengerRepo bound to the given database.
func NewPassengerRepo(db *sql.DB) *PassengerRepo { return &PassengerRepo{db: db} }

const profileSelect = `SELECT p.id, p.name, p.email, p.phone, p.created_at,
       pa.identification_doc, pa.loyalty_kilometers
       FROM passengers pa
       JOIN persons p ON p.id = pa.person_id`

// GetProfile fetches one passenger with their dependents.  Returns
// ErrPersonNotFound when no passenger row exists for the ID.
func (r *PassengerRepo) GetProfile(ctx context.Context, personID uint64) (*model.PassengerProfile, error) {
    var pr model.PassengerProfile
    err := r.db.QueryRowContext(ctx, profileSelect+` WHERE pa.person_id = ?`, personID).Scan(
        &pr.ID, &pr.Name, &pr.Email, &pr.Phone, &pr.CreatedAt,
        &pr.IdentificationDoc, &pr.LoyaltyKilometers,
    )
    if err == sql.ErrNoRows {
        return nil, ErrPersonNotFound
    }
    if err != nil {
        return nil, err
    }
    deps, err := r.Dependents(ctx, personID)
    if err != nil {
        return nil, err
    }
    pr.Dependents = deps
    return &pr, nil
}

// Dependents lists a passenger's dependents in insertion order.
func (r *PassengerRepo) Dependents(ctx context.Context, passengerID uint64) ([]model.Dependent, error) {
    const q = `SELECT id, passenger_id, name, relation FROM dependents WHERE passenger_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, passengerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Dependent
    for rows.Next() {
        var d model.Dependent
        if err := rows.Scan(&d.ID, &d.PassengerID, &d.Name, &d.Relation); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// DependentIDsOwned returns which of the given dependent IDs belong to
// the passenger.  Checkout uses this to reject bookings for someone
// else's dependents.
func (r *PassengerRepo) DependentIDsOwned(ctx context.Context, passengerID uint64, ids []uint64) (map[uint64]bool, error) {
    owned := make(map[uint64]bool, len(ids))
    if len(ids) == 0 {
        return owned, nil
    }
    query := `SELECT id FROM dependents WHERE passenger_id = ? AND id IN (` + placeholders(len(ids)) + `)`
    args := make([]interface{}, 0, 1+len(ids))
    args = append(args, passengerID)
    for _, id := range ids {
        args = append(args, id)
    }
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        owned[id] = true
    }
    return owned, rows.Err()
}

// List searches the passenger directory for staff.  An empty query
// lists everyone; otherwise name and email are matched with LIKE.
func (r *PassengerRepo) List(ctx context.Context, search string) ([]model.PassengerProfile, error) {
    query := profileSelect
    var args []interface{}
    if s := strings.TrimSpace(search); s != "" {
        query += ` WHERE p.name LIKE ? OR p.email LIKE ?`
        like := "%" + s + "%"
        args = append(args, like, like)
    }
    query += ` ORDER BY p.name`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.PassengerProfile
    for rows.Next() {
        var pr model.PassengerProfile
        err := rows.Scan(&pr.ID, &pr.Name, &pr.Email, &pr.Phone, &pr.CreatedAt,
            &pr.IdentificationDoc, &pr.LoyaltyKilometers)
        if err != nil {
            return nil, err
        }
        out = append(out, pr)
    }
    return out, rows.Err()
}

// AddLoyaltyTx credits loyalty kilometers to a passenger, called when
// a payment completes.
func (r *PassengerRepo) AddLoyaltyTx(ctx context.Context, tx *sql.Tx, passengerID uint64, km uint32) error {
    const q = `UPDATE passengers SET loyalty_kilometers = loyalty_kilometers + ? WHERE person_id = ?`
    _, err := tx.ExecContext(ctx, q, km, passengerID)
    return err
}
