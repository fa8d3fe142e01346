package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

func newWaitlistHandler(t *testing.T) (*WaitlistHandler, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock init error: %v", err)
    }
    h := NewWaitlistHandler(
        repository.NewBookingRepo(db),
        repository.NewWaitlistRepo(db),
        repository.NewTrainRepo(db),
    )
    return h, mock, func() { db.Close() }
}

func staffCtx(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", float64(1))
    c.Set("role", model.RoleStaff)
    return c, rec
}

func waitingBookingRows(id, passengerID uint64) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{
        "id", "trip_id", "train_id", "track_id", "origin_station_id",
        "destination_station_id", "passenger_id", "dependent_id", "payment_id",
        "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
        "created_at", "updated_at",
    }).AddRow(id, 7, 3, 1, 10, 11, passengerID, nil, 5, "Economy", "Waiting", 12, 7500, 0, now, now)
}

func TestPromoteConfirmsBookingAndEntry(t *testing.T) {
    h, mock, done := newWaitlistHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(10)).
        WillReturnRows(waitingBookingRows(10, 100))
    mock.ExpectQuery("SELECT (.+) FROM waiting_list").WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "travel_date", "status", "reserved_at"}).
            AddRow(1, 10, time.Now(), "Pending", time.Now()))
    mock.ExpectExec("UPDATE bookings SET status = 'Confirmed' WHERE id").WithArgs(uint64(10)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE waiting_list SET status = 'Confirmed'").WithArgs(uint64(1)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    c, rec := staffCtx(t, "/v1/admin/promote-waitlist", `{"booking_id":10}`)
    if err := h.Promote(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestPromoteMovesBookingToNewSeat(t *testing.T) {
    h, mock, done := newWaitlistHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(10)).
        WillReturnRows(waitingBookingRows(10, 100))
    mock.ExpectQuery("SELECT (.+) FROM waiting_list").WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "travel_date", "status", "reserved_at"}).
            AddRow(1, 10, time.Now(), "Pending", time.Now()))
    mock.ExpectQuery("SELECT (.+) FROM trains").WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name_english", "name_arabic", "capacity_economy", "capacity_business"}).
            AddRow(3, "Star Express", "نجم", 100, 30))
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WithArgs(uint64(7), uint64(3), "Economy", uint32(13)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"})) // seat 13 free
    mock.ExpectExec("UPDATE bookings SET seat_number").WithArgs(uint32(13), uint64(10)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE bookings SET status = 'Confirmed' WHERE id").WithArgs(uint64(10)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE waiting_list SET status = 'Confirmed'").WithArgs(uint64(1)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    c, rec := staffCtx(t, "/v1/admin/promote-waitlist", `{"booking_id":10,"new_seat_number":13}`)
    if err := h.Promote(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    var body struct {
        Status     string `json:"status"`
        SeatNumber uint32 `json:"seat_number"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if body.Status != model.BookingConfirmed || body.SeatNumber != 13 {
        t.Fatalf("expected Confirmed on seat 13, got %s", rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestPromoteToTakenSeatConflicts(t *testing.T) {
    h, mock, done := newWaitlistHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(10)).
        WillReturnRows(waitingBookingRows(10, 100))
    mock.ExpectQuery("SELECT (.+) FROM waiting_list").WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "travel_date", "status", "reserved_at"}).
            AddRow(1, 10, time.Now(), "Pending", time.Now()))
    mock.ExpectQuery("SELECT (.+) FROM trains").WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name_english", "name_arabic", "capacity_economy", "capacity_business"}).
            AddRow(3, "Star Express", "نجم", 100, 30))
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WithArgs(uint64(7), uint64(3), "Economy", uint32(13)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(13))
    mock.ExpectRollback()

    c, rec := staffCtx(t, "/v1/admin/promote-waitlist", `{"booking_id":10,"new_seat_number":13}`)
    if err := h.Promote(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestPromoteNonWaitingBookingConflicts(t *testing.T) {
    h, mock, done := newWaitlistHandler(t)
    defer done()

    now := time.Now()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "trip_id", "train_id", "track_id", "origin_station_id",
            "destination_station_id", "passenger_id", "dependent_id", "payment_id",
            "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
            "created_at", "updated_at",
        }).AddRow(10, 7, 3, 1, 10, 11, 100, nil, 5, "Economy", "Confirmed", 12, 7500, 0, now, now))
    mock.ExpectRollback()

    c, rec := staffCtx(t, "/v1/admin/promote-waitlist", `{"booking_id":10}`)
    if err := h.Promote(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestPromoteBatchSkipsRacedBookings(t *testing.T) {
    h, mock, done := newWaitlistHandler(t)
    defer done()

    early := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
    mock.ExpectQuery("SELECT (.+) FROM waiting_list w").WithArgs(uint64(3), "2026-04-01").
        WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "passenger_id", "name", "loyalty_kilometers", "reserved_at"}).
            AddRow(1, 10, 100, "Aya", 5000, early).
            AddRow(2, 11, 101, "Badr", 1200, early))

    // First candidate lost the race to a concurrent payment.
    now := time.Now()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(10)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "trip_id", "train_id", "track_id", "origin_station_id",
            "destination_station_id", "passenger_id", "dependent_id", "payment_id",
            "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
            "created_at", "updated_at",
        }).AddRow(10, 7, 3, 1, 10, 11, 100, nil, 5, "Economy", "Confirmed", 12, 7500, 0, now, now))
    mock.ExpectRollback()

    // Second candidate promotes normally.
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(11)).
        WillReturnRows(waitingBookingRows(11, 101))
    mock.ExpectQuery("SELECT (.+) FROM waiting_list").WithArgs(uint64(11)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "travel_date", "status", "reserved_at"}).
            AddRow(2, 11, time.Now(), "Pending", time.Now()))
    mock.ExpectExec("UPDATE bookings SET status = 'Confirmed' WHERE id").WithArgs(uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE waiting_list SET status = 'Confirmed'").WithArgs(uint64(2)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    c, rec := staffCtx(t, "/v1/admin/promote-waitlist/batch", `{"train_id":3,"travel_date":"2026-04-01"}`)
    if err := h.PromoteBatch(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    var body struct {
        Promoted []struct {
            BookingID uint64 `json:"booking_id"`
        } `json:"promoted"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if len(body.Promoted) != 1 || body.Promoted[0].BookingID != 11 {
        t.Fatalf("expected booking 11 promoted, got %s", rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}
