package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

func newAvailabilityHandler(t *testing.T) (*AvailabilityHandler, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock init error: %v", err)
    }
    h := NewAvailabilityHandler(
        repository.NewBookingRepo(db),
        repository.NewTripRepo(db),
        repository.NewTrainRepo(db),
    )
    return h, mock, func() { db.Close() }
}

func seatMapCtx(t *testing.T, tripID, query string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/trips/"+tripID+"/seats"+query, nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues(tripID)
    return c, rec
}

func expectSeatMapTrip(mock sqlmock.Sqlmock, status string) {
    dep := time.Now().Add(48 * time.Hour)
    mock.ExpectQuery("SELECT (.+) FROM trips").WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "train_id", "track_id", "departure_at", "arrival_at", "status"}).
            AddRow(7, 3, 1, dep, dep.Add(2*time.Hour), status))
}

func TestSeatMapFlagsOccupiedSeats(t *testing.T) {
    h, mock, done := newAvailabilityHandler(t)
    defer done()

    expectSeatMapTrip(mock, model.TripActive)
    mock.ExpectQuery("SELECT (.+) FROM trains").WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name_english", "name_arabic", "capacity_economy", "capacity_business"}).
            AddRow(3, "HHR100", "قطار الحرمين", 100, 30))
    mock.ExpectQuery("SELECT seat_number FROM bookings").
        WithArgs(uint64(7), uint64(3), "Business").
        WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(2).AddRow(5))

    c, rec := seatMapCtx(t, "7", "?class=Business")
    if err := h.SeatMap(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    var body struct {
        Capacity uint32 `json:"capacity"`
        Free     uint32 `json:"free"`
        Seats    []struct {
            SeatNumber uint32 `json:"seat_number"`
            Occupied   bool   `json:"occupied"`
        } `json:"seats"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if body.Capacity != 30 || body.Free != 28 || len(body.Seats) != 30 {
        t.Fatalf("map dimensions wrong: %s", rec.Body.String())
    }
    for _, s := range body.Seats {
        occupied := s.SeatNumber == 2 || s.SeatNumber == 5
        if s.Occupied != occupied {
            t.Fatalf("seat %d occupancy wrong: %s", s.SeatNumber, rec.Body.String())
        }
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestSeatMapInactiveTripNotFound(t *testing.T) {
    h, mock, done := newAvailabilityHandler(t)
    defer done()

    expectSeatMapTrip(mock, model.TripCancelled)

    c, rec := seatMapCtx(t, "7", "?class=Economy")
    if err := h.SeatMap(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestSeatMapRejectsUnknownClass(t *testing.T) {
    h, _, done := newAvailabilityHandler(t)
    defer done()

    c, rec := seatMapCtx(t, "7", "?class=First")
    if err := h.SeatMap(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
    }
}
