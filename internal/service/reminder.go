package service

import (
    "context"
    "log"
    "time"

    q "github.com/iliyamo/railway-seat-reservation/internal/queue"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// ReminderSweep periodically drains the notification queue table,
// publishing a departure reminder for every due row.  Rows are
// deleted only after a successful publish so a broker outage retries
// them on the next tick.
type ReminderSweep struct {
    Notifications *repository.NotificationRepo
    Interval      time.Duration
    BatchSize     int
}

// NewReminderSweep builds a sweep with sane defaults when interval or
// batch size are zero.
func NewReminderSweep(n *repository.NotificationRepo, interval time.Duration, batch int) *ReminderSweep {
    if interval <= 0 {
        interval = time.Minute
    }
    if batch <= 0 {
        batch = 100
    }
    return &ReminderSweep{Notifications: n, Interval: interval, BatchSize: batch}
}

// Run blocks, sweeping on every tick until the context is cancelled.
// It is meant to run in its own goroutine next to the HTTP server.
func (s *ReminderSweep) Run(ctx context.Context) {
    ticker := time.NewTicker(s.Interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            s.sweep(ctx)
        }
    }
}

func (s *ReminderSweep) sweep(ctx context.Context) {
    if err := s.Notifications.DeleteForCancelled(ctx); err != nil {
        log.Printf("reminder-sweep: prune cancelled failed: %v", err)
    }
    due, err := s.Notifications.Due(ctx, time.Now().UTC(), s.BatchSize)
    if err != nil {
        log.Printf("reminder-sweep: list due failed: %v", err)
        return
    }
    var done []uint64
    for _, d := range due {
        ev := q.DepartureReminderEvent{
            BookingID:   d.BookingID,
            PassengerID: d.PassengerID,
            TripID:      d.TripID,
            TrainName:   d.TrainName,
            SeatNumber:  d.SeatNumber,
            DepartureAt: d.DepartureAt.UTC().Format(time.RFC3339),
        }
        if err := PublishDepartureReminder(ctx, ev); err != nil {
            // Leave the row in place; the next tick retries it.
            continue
        }
        done = append(done, d.ID)
    }
    if len(done) > 0 {
        if err := s.Notifications.Delete(ctx, done); err != nil {
            log.Printf("reminder-sweep: delete published failed: %v", err)
        }
    }
}
