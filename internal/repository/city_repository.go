package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// CityRepo provides read access to the cities catalog.
type CityRepo struct {
    db *sql.DB
}

// NewCityRepo returns a new CityRepo bound to the given database.
func NewCityRepo(db *sql.DB) *CityRepo { return &CityRepo{db: db} }

// List returns all cities ordered by English name.
func (r *CityRepo) List(ctx context.Context) ([]model.City, error) {
    const q = `SELECT id, name_english, name_arabic FROM cities ORDER BY name_english`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.City
    for rows.Next() {
        var c model.City
        if err := rows.Scan(&c.ID, &c.NameEnglish, &c.NameArabic); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}
