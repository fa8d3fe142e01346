package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// TripRepo provides read access to trips and trip search.
type TripRepo struct {
    db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// GetByID fetches a trip by primary key.  Returns ErrTripNotFound
// when no row matches.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
    const q = `SELECT id, train_id, track_id, departure_at, arrival_at, status FROM trips WHERE id = ?`
    var t model.Trip
    err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.TrainID, &t.TrackID, &t.DepartureAt, &t.ArrivalAt, &t.Status)
    if err == sql.ErrNoRows {
        return nil, ErrTripNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}

const tripSummarySelect = `SELECT t.id, t.train_id, tr.name_english,
       t.departure_at, t.arrival_at,
       so.name_english, sd.name_english, co.name_english, cd.name_english
       FROM trips t
       JOIN trains tr ON tr.id = t.train_id
       JOIN tracks k ON k.id = t.track_id
       JOIN stations so ON so.id = k.origin_station_id
       JOIN stations sd ON sd.id = k.destination_station_id
       JOIN cities co ON co.id = so.city_id
       JOIN cities cd ON cd.id = sd.city_id`

// Search finds Active trips running between two cities on a given
// date.  Cities are matched by English name, case-insensitively, the
// way the public search form submits them.
func (r *TripRepo) Search(ctx context.Context, fromCity, toCity, date string) ([]model.TripSummary, error) {
    q := tripSummarySelect + `
        WHERE t.status = 'Active'
        AND LOWER(co.name_english) = LOWER(?)
        AND LOWER(cd.name_english) = LOWER(?)
        AND DATE(t.departure_at) = ?
        ORDER BY t.departure_at ASC`
    rows, err := r.db.QueryContext(ctx, q, fromCity, toCity, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectTripSummaries(rows)
}

// ActiveOn lists every Active trip departing on the given date,
// backing the "trains running today" view.
func (r *TripRepo) ActiveOn(ctx context.Context, date string) ([]model.TripSummary, error) {
    q := tripSummarySelect + `
        WHERE t.status = 'Active' AND DATE(t.departure_at) = ?
        ORDER BY t.departure_at ASC`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectTripSummaries(rows)
}

func collectTripSummaries(rows *sql.Rows) ([]model.TripSummary, error) {
    var out []model.TripSummary
    for rows.Next() {
        var s model.TripSummary
        err := rows.Scan(&s.TripID, &s.TrainID, &s.TrainName, &s.DepartureAt, &s.ArrivalAt,
            &s.OriginStation, &s.DestinationStation, &s.OriginCity, &s.DestinationCity)
        if err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}
