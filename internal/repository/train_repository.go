package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// TrainRepo provides read access to trains and their stops.
type TrainRepo struct {
    db *sql.DB
}

// NewTrainRepo returns a new TrainRepo bound to the given database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// GetByID fetches a train by primary key.  A missing train behind an
// existing trip means broken referential integrity, so sql.ErrNoRows
// is surfaced unchanged rather than mapped to a client error.
func (r *TrainRepo) GetByID(ctx context.Context, id uint64) (*model.Train, error) {
    const q = `SELECT id, name_english, name_arabic, capacity_economy, capacity_business FROM trains WHERE id = ?`
    var t model.Train
    err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.NameEnglish, &t.NameArabic, &t.CapacityEconomy, &t.CapacityBusiness)
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// Stations lists the stops of a train, derived from the tracks of its
// trips.  Each station appears once, in station ID order.
func (r *TrainRepo) Stations(ctx context.Context, trainID uint64) ([]model.TrainStop, error) {
    const q = `SELECT DISTINCT s.id, s.name_english, s.name_arabic, s.city_id
               FROM trips t
               JOIN tracks k ON k.id = t.track_id
               JOIN stations s ON s.id IN (k.origin_station_id, k.destination_station_id)
               WHERE t.train_id = ?
               ORDER BY s.id`
    rows, err := r.db.QueryContext(ctx, q, trainID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.TrainStop
    for rows.Next() {
        var s model.TrainStop
        if err := rows.Scan(&s.StationID, &s.NameEnglish, &s.NameArabic, &s.CityID); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}
