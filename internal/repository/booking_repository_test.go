package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

func newMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock init error: %v", err)
    }
    return NewBookingRepo(db), mock, func() { db.Close() }
}

func TestTakenSeatsTxReturnsConflicts(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WithArgs(uint64(7), uint64(3), "Economy", uint32(4), uint32(5), uint32(6)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(5).AddRow(6))
    mock.ExpectRollback()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    defer tx.Rollback()

    taken, err := repo.TakenSeatsTx(context.Background(), tx, 7, 3, "Economy", []uint32{4, 5, 6})
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if len(taken) != 2 || taken[0] != 5 || taken[1] != 6 {
        t.Fatalf("unexpected conflict set: %v", taken)
    }
}

func TestTakenSeatsTxIgnoresCancelledHolders(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    // The conflict query must exclude Cancelled rows, so a seat whose
    // only holder cancelled comes back free.
    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT seat_number FROM bookings WHERE trip_id = (.+) AND status <> 'Cancelled' AND seat_number IN`).
        WithArgs(uint64(7), uint64(3), "Economy", uint32(12)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))
    mock.ExpectCommit()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    if err != nil {
        t.Fatalf("begin: %v", err)
    }

    taken, err := repo.TakenSeatsTx(context.Background(), tx, 7, 3, "Economy", []uint32{12})
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if len(taken) != 0 {
        t.Fatalf("cancelled holder must not block the seat: %v", taken)
    }
    if err := tx.Commit(); err != nil {
        t.Fatalf("commit: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestTakenSeatsTxEmptyRequestSkipsQuery(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectRollback()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    defer tx.Rollback()

    taken, err := repo.TakenSeatsTx(context.Background(), tx, 7, 3, "Economy", nil)
    if err != nil {
        t.Fatalf("expected no error, got %v", err)
    }
    if taken != nil {
        t.Fatalf("expected nil, got %v", taken)
    }
}

func TestCreateTxPopulatesID(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO bookings").
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectCommit()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    if err != nil {
        t.Fatalf("begin: %v", err)
    }

    b := model.Booking{
        TripID: 7, TrainID: 3, TrackID: 1,
        OriginID: 10, DestinationID: 11,
        PassengerID: 99, PaymentID: 5,
        Class: model.ClassBusiness, Status: model.BookingWaiting,
        SeatNumber: 12, BaseFareCents: 15000,
    }
    if err := repo.CreateTx(context.Background(), tx, &b); err != nil {
        t.Fatalf("create: %v", err)
    }
    if b.ID != 42 {
        t.Fatalf("ID not populated, got %d", b.ID)
    }
    if err := tx.Commit(); err != nil {
        t.Fatalf("commit: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestGetForUpdateTxNotFound(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").
        WithArgs(uint64(404)).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))
    mock.ExpectRollback()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    defer tx.Rollback()

    if _, err := repo.GetForUpdateTx(context.Background(), tx, 404); err != ErrBookingNotFound {
        t.Fatalf("expected ErrBookingNotFound, got %v", err)
    }
}

func TestConfirmByPaymentTxCountsRows(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE bookings SET status = 'Confirmed' WHERE payment_id").
        WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 3))
    mock.ExpectCommit()

    tx, err := repo.DB().BeginTx(context.Background(), nil)
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    n, err := repo.ConfirmByPaymentTx(context.Background(), tx, 5)
    if err != nil {
        t.Fatalf("confirm: %v", err)
    }
    if n != 3 {
        t.Fatalf("expected 3 rows, got %d", n)
    }
    if err := tx.Commit(); err != nil {
        t.Fatalf("commit: %v", err)
    }
}

func TestOccupiedSeats(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    // Seat maps count Waiting and Confirmed rows only; Cancelled rows
    // must be excluded by the query predicate.
    mock.ExpectQuery(`SELECT seat_number FROM bookings WHERE trip_id = (.+) AND status <> 'Cancelled' ORDER BY seat_number`).
        WithArgs(uint64(7), uint64(3), "Economy").
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(1).AddRow(4).AddRow(9))

    seats, err := repo.OccupiedSeats(context.Background(), 7, 3, "Economy")
    if err != nil {
        t.Fatalf("occupied: %v", err)
    }
    if len(seats) != 3 || seats[2] != 9 {
        t.Fatalf("unexpected seats: %v", seats)
    }
}

func TestScanBookingDependentNullability(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    now := time.Now()
    rows := sqlmock.NewRows([]string{
        "id", "trip_id", "train_id", "track_id", "origin_station_id",
        "destination_station_id", "passenger_id", "dependent_id", "payment_id",
        "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
        "created_at", "updated_at",
    }).AddRow(1, 7, 3, 1, 10, 11, 99, nil, 5, "Economy", "Waiting", 12, 7500, 0, now, now)
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(1)).WillReturnRows(rows)

    b, err := repo.GetByID(context.Background(), 1)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if b.DependentID != nil {
        t.Fatalf("expected nil dependent, got %v", *b.DependentID)
    }
    if b.Status != model.BookingWaiting {
        t.Fatalf("unexpected status %q", b.Status)
    }
}
