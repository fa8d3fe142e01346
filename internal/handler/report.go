package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// ReportHandler serves the staff reports.
type ReportHandler struct {
    Reports *repository.ReportRepo
}

func NewReportHandler(r *repository.ReportRepo) *ReportHandler {
    return &ReportHandler{Reports: r}
}

// CurrentReservations lists today's non-cancelled bookings,
// optionally narrowed by ?trip_id=.
func (h *ReportHandler) CurrentReservations(c echo.Context) error {
    var tripID uint64
    if s := c.QueryParam("trip_id"); s != "" {
        n, err := strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip_id"})
        }
        tripID = n
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rows, err := h.Reports.CurrentReservations(ctx, tripID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
    }
    out := make([]echo.Map, 0, len(rows))
    for i := range rows {
        out = append(out, bookingDetailJSON(&rows[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// WaitlistedByLoyalty lists a trip's Waiting bookings for one class
// in promotion-rank order.  Query parameters: trip_id and class.
func (h *ReportHandler) WaitlistedByLoyalty(c echo.Context) error {
    tripID, err := strconv.ParseUint(c.QueryParam("trip_id"), 10, 64)
    if err != nil || tripID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id required"})
    }
    class := strings.TrimSpace(c.QueryParam("class"))
    if !model.ValidClass(class) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "class must be Economy or Business"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rows, err := h.Reports.WaitlistedByLoyalty(ctx, tripID, class)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
    }
    out := make([]echo.Map, 0, len(rows))
    for _, r := range rows {
        out = append(out, echo.Map{
            "booking_id":     r.BookingID,
            "passenger_id":   r.PassengerID,
            "passenger_name": r.PassengerName,
            "loyalty_km":     r.LoyaltyKilometers,
            "class":          r.Class,
            "seat_number":    r.SeatNumber,
            "reserved_at":    r.ReservedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"trip_id": tripID, "class": class, "waitlisted": out})
}

// LoadFactor reports per-trip occupancy for a date (?date=YYYY-MM-DD,
// default today).
func (h *ReportHandler) LoadFactor(c echo.Context) error {
    date := strings.TrimSpace(c.QueryParam("date"))
    if date == "" {
        date = time.Now().UTC().Format("2006-01-02")
    } else if _, err := time.Parse("2006-01-02", date); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rows, err := h.Reports.LoadFactor(ctx, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
    }
    out := make([]echo.Map, 0, len(rows))
    for _, r := range rows {
        out = append(out, echo.Map{
            "trip_id":     r.TripID,
            "train":       r.TrainName,
            "confirmed":   r.Confirmed,
            "capacity":    r.Capacity,
            "load_factor": r.LoadFactor,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"date": date, "trips": out})
}

// DependentsTraveling lists dependents on trips departing on a date
// (?date=YYYY-MM-DD, default today).
func (h *ReportHandler) DependentsTraveling(c echo.Context) error {
    date := strings.TrimSpace(c.QueryParam("date"))
    if date == "" {
        date = time.Now().UTC().Format("2006-01-02")
    } else if _, err := time.Parse("2006-01-02", date); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rows, err := h.Reports.DependentsTraveling(ctx, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
    }
    out := make([]echo.Map, 0, len(rows))
    for _, r := range rows {
        out = append(out, echo.Map{
            "dependent_id":   r.DependentID,
            "dependent_name": r.DependentName,
            "relation":       r.Relation,
            "passenger_id":   r.PassengerID,
            "passenger_name": r.PassengerName,
            "trip_id":        r.TripID,
            "train":          r.TrainName,
            "departure_at":   r.DepartureAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"date": date, "dependents": out})
}
