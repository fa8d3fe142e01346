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

    "github.com/iliyamo/railway-seat-reservation/internal/config"
    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock init error: %v", err)
    }
    cfg := config.Config{FareEconomyCents: 7500, FareBusinessCents: 15000}
    h := NewBookingHandler(cfg,
        repository.NewBookingRepo(db),
        repository.NewPaymentRepo(db),
        repository.NewWaitlistRepo(db),
        repository.NewTripRepo(db),
        repository.NewTrainRepo(db),
        repository.NewPassengerRepo(db),
        repository.NewNotificationRepo(db),
    )
    return h, mock, func() { db.Close() }
}

func postJSON(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", float64(99))
    c.Set("role", model.RolePassenger)
    return c, rec
}

func expectTripAndTrain(mock sqlmock.Sqlmock, status string) {
    dep := time.Now().Add(48 * time.Hour)
    mock.ExpectQuery("SELECT (.+) FROM trips").WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "train_id", "track_id", "departure_at", "arrival_at", "status"}).
            AddRow(7, 3, 1, dep, dep.Add(2*time.Hour), status))
    if status == model.TripActive {
        mock.ExpectQuery("SELECT (.+) FROM trains").WithArgs(uint64(3)).
            WillReturnRows(sqlmock.NewRows([]string{"id", "name_english", "name_arabic", "capacity_economy", "capacity_business"}).
                AddRow(3, "HHR100", "قطار الحرمين", 100, 30))
    }
}

func TestCreateRejectsUnknownClass(t *testing.T) {
    h, _, done := newBookingHandler(t)
    defer done()

    c, rec := postJSON(t, `{"trip_id":7,"origin_station_id":1,"destination_station_id":2,"class":"First","status":"Waiting","seats":[{"seat_number":1}]}`)
    if err := h.Create(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestCreateRejectsDuplicateSeatsInRequest(t *testing.T) {
    h, _, done := newBookingHandler(t)
    defer done()

    c, rec := postJSON(t, `{"trip_id":7,"origin_station_id":1,"destination_station_id":2,"class":"Economy","status":"Waiting","seats":[{"seat_number":5},{"seat_number":5}]}`)
    if err := h.Create(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestCreateRejectsInactiveTrip(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    expectTripAndTrain(mock, model.TripCancelled)

    c, rec := postJSON(t, `{"trip_id":7,"origin_station_id":1,"destination_station_id":2,"class":"Economy","status":"Waiting","seats":[{"seat_number":5}]}`)
    if err := h.Create(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestCreateSeatConflictNamesSeats(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    expectTripAndTrain(mock, model.TripActive)
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(5))
    mock.ExpectRollback()

    c, rec := postJSON(t, `{"trip_id":7,"origin_station_id":1,"destination_station_id":2,"class":"Economy","status":"Waiting","seats":[{"seat_number":5},{"seat_number":6}]}`)
    if err := h.Create(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
    var body struct {
        Seats []uint32 `json:"seats"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("decode body: %v", err)
    }
    if len(body.Seats) != 1 || body.Seats[0] != 5 {
        t.Fatalf("conflicting seats not reported: %s", rec.Body.String())
    }
}

func TestCreateCapacityExceeded(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    expectTripAndTrain(mock, model.TripActive)
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))
    // 99 active Economy bookings of capacity 100 leaves room for one,
    // not two.
    mock.ExpectQuery("SELECT COUNT").
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(99))
    mock.ExpectRollback()

    c, rec := postJSON(t, `{"trip_id":7,"origin_station_id":1,"destination_station_id":2,"class":"Economy","status":"Waiting","seats":[{"seat_number":5},{"seat_number":6}]}`)
    if err := h.Create(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestCreateRejectsSeatBeyondCapacity(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    expectTripAndTrain(mock, model.TripActive)

    // Business capacity is 30; seat 31 is out of range before any
    // transaction starts.
    c, rec := postJSON(t, `{"trip_id":7,"origin_station_id":1,"destination_station_id":2,"class":"Business","status":"Waiting","seats":[{"seat_number":31}]}`)
    if err := h.Create(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
    }
}

func putJSON(t *testing.T, id, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPut, "/v1/bookings/"+id, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues(id)
    c.Set("user_id", float64(99))
    c.Set("role", model.RolePassenger)
    return c, rec
}

func bookingRowWithStatus(status string) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{
        "id", "trip_id", "train_id", "track_id", "origin_station_id",
        "destination_station_id", "passenger_id", "dependent_id", "payment_id",
        "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
        "created_at", "updated_at",
    }).AddRow(41, 7, 3, 1, 10, 11, 99, nil, 5, "Economy", status, 12, 7500, 0, now, now)
}

func TestUpdateConfirmedBookingConflicts(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(41)).
        WillReturnRows(bookingRowWithStatus(model.BookingConfirmed))
    mock.ExpectRollback()

    c, rec := putJSON(t, "41", `{"seat_number":20}`)
    if err := h.Update(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
    if !strings.Contains(rec.Body.String(), "not editable") {
        t.Fatalf("conflict reason missing: %s", rec.Body.String())
    }
}

func TestUpdateMovesSeatAfterConflictCheck(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(41)).
        WillReturnRows(bookingRowWithStatus(model.BookingWaiting))
    mock.ExpectQuery("SELECT (.+) FROM trains").WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name_english", "name_arabic", "capacity_economy", "capacity_business"}).
            AddRow(3, "HHR100", "قطار الحرمين", 100, 30))
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WithArgs(uint64(7), uint64(3), "Economy", uint32(20)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))
    mock.ExpectExec("UPDATE bookings SET class").
        WithArgs("Economy", uint32(20), uint32(7500), uint32(1), nil, uint64(41)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    c, rec := putJSON(t, "41", `{"seat_number":20,"num_of_luggage":1}`)
    if err := h.Update(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    var body struct {
        SeatNumber uint32 `json:"seat_number"`
        Status     string `json:"status"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if body.SeatNumber != 20 || body.Status != model.BookingWaiting {
        t.Fatalf("unexpected response: %s", rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestUpdateClassChangeReprices(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(41)).
        WillReturnRows(bookingRowWithStatus(model.BookingWaiting))
    mock.ExpectQuery("SELECT (.+) FROM trains").WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name_english", "name_arabic", "capacity_economy", "capacity_business"}).
            AddRow(3, "HHR100", "قطار الحرمين", 100, 30))
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WithArgs(uint64(7), uint64(3), "Business", uint32(12)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))
    mock.ExpectExec("UPDATE bookings SET class").
        WithArgs("Business", uint32(12), uint32(15000), uint32(0), nil, uint64(41)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    c, rec := putJSON(t, "41", `{"class":"Business"}`)
    if err := h.Update(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    var body struct {
        BaseFareCents uint32 `json:"base_fare_cents"`
        Class         string `json:"class"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if body.Class != model.ClassBusiness || body.BaseFareCents != 15000 {
        t.Fatalf("fare not repriced: %s", rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestCancelAlreadyCancelledConflicts(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    now := time.Now()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(41)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "trip_id", "train_id", "track_id", "origin_station_id",
            "destination_station_id", "passenger_id", "dependent_id", "payment_id",
            "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
            "created_at", "updated_at",
        }).AddRow(41, 7, 3, 1, 10, 11, 99, nil, 5, "Economy", "Cancelled", 12, 7500, 0, now, now))
    mock.ExpectRollback()

    e := echo.New()
    req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/41", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues("41")
    c.Set("user_id", float64(99))
    c.Set("role", model.RolePassenger)

    if err := h.Cancel(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestCancelForeignBookingForbidden(t *testing.T) {
    h, mock, done := newBookingHandler(t)
    defer done()

    now := time.Now()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT (.+) FROM bookings").WithArgs(uint64(41)).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "trip_id", "train_id", "track_id", "origin_station_id",
            "destination_station_id", "passenger_id", "dependent_id", "payment_id",
            "class", "status", "seat_number", "base_fare_cents", "num_of_luggage",
            "created_at", "updated_at",
        }).AddRow(41, 7, 3, 1, 10, 11, 77, nil, 5, "Economy", "Waiting", 12, 7500, 0, now, now))
    mock.ExpectRollback()

    e := echo.New()
    req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/41", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues("41")
    c.Set("user_id", float64(99)) // not the owner (77)
    c.Set("role", model.RolePassenger)

    if err := h.Cancel(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusForbidden {
        t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
    }
}
