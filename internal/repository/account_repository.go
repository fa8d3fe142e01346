package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/utils"
)

// AccountRepo manages persons together with their passenger or staff
// extension rows.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// RegisterPassenger inserts a person plus its passenger row in one
// transaction and returns the new person ID.
func (r *AccountRepo) RegisterPassenger(ctx context.Context, name, email, password, phone, idDoc string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        "INSERT INTO persons (name, email, password_hash, phone) VALUES (?,?,?,?)",
        name, email, hash, phone)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    _, err = tx.ExecContext(ctx,
        "INSERT INTO passengers (person_id, identification_doc, loyalty_kilometers) VALUES (?,?,0)",
        id, idDoc)
    if err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return uint64(id), nil
}

// AssignStaff grants a person the staff role, or updates the role of
// an existing staff member.  The hire date is stamped on first
// assignment and refreshed on role changes, matching how the HR side
// records reassignments.  Returns ErrPersonNotFound for an unknown
// person.
func (r *AccountRepo) AssignStaff(ctx context.Context, personID uint64, role string) error {
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    var id uint64
    err = tx.QueryRowContext(ctx, "SELECT id FROM persons WHERE id = ?", personID).Scan(&id)
    if err == sql.ErrNoRows {
        return ErrPersonNotFound
    }
    if err != nil {
        return err
    }
    _, err = tx.ExecContext(ctx,
        `INSERT INTO staff (person_id, role, hire_date) VALUES (?, ?, CURDATE())
         ON DUPLICATE KEY UPDATE role = VALUES(role), hire_date = CURDATE()`,
        personID, role)
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByEmail fetches a person by normalized email with the derived
// role: STAFF when a staff row exists, PASSENGER otherwise.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.getAccount(ctx, "p.email = ?", email)
}

// GetByID fetches a person by id with the derived role.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
    return r.getAccount(ctx, "p.id = ?", id)
}

func (r *AccountRepo) getAccount(ctx context.Context, cond string, arg interface{}) (model.Account, error) {
    q := `SELECT p.id, p.name, p.email, p.password_hash, p.phone, p.created_at,
          (s.person_id IS NOT NULL)
          FROM persons p
          LEFT JOIN staff s ON s.person_id = p.id
          WHERE ` + cond + ` LIMIT 1`
    var a model.Account
    var isStaff bool
    err := r.DB.QueryRowContext(ctx, q, arg).Scan(
        &a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone, &a.CreatedAt, &isStaff)
    if err == sql.ErrNoRows {
        return a, ErrPersonNotFound
    }
    if err != nil {
        return a, err
    }
    a.Role = model.RolePassenger
    if isStaff {
        a.Role = model.RoleStaff
    }
    return a, nil
}
