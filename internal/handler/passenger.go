package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// PassengerHandler serves the staff passenger directory, the
// reservation browse and the passenger's own profile.
type PassengerHandler struct {
    Passengers *repository.PassengerRepo
    Bookings   *repository.BookingRepo
}

func NewPassengerHandler(p *repository.PassengerRepo, b *repository.BookingRepo) *PassengerHandler {
    return &PassengerHandler{Passengers: p, Bookings: b}
}

// List searches the passenger directory (?q= matches name or email).
func (h *PassengerHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    profiles, err := h.Passengers.List(ctx, c.QueryParam("q"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list passengers failed"})
    }
    out := make([]echo.Map, 0, len(profiles))
    for _, p := range profiles {
        out = append(out, echo.Map{
            "id":         p.ID,
            "name":       p.Name,
            "email":      p.Email,
            "phone":      p.Phone,
            "loyalty_km": p.LoyaltyKilometers,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"passengers": out})
}

// Profile returns a passenger with their dependents.  Passengers can
// only view themselves; staff can view anyone.
func (h *PassengerHandler) Profile(c echo.Context) error {
    id := paramID(c, "id")
    if id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid passenger id"})
    }
    if currentRole(c) != model.RoleStaff && id != currentPersonID(c) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Passengers.GetProfile(ctx, id)
    if err != nil {
        if err == repository.ErrPersonNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "passenger not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load passenger failed"})
    }
    deps := make([]echo.Map, 0, len(p.Dependents))
    for _, d := range p.Dependents {
        deps = append(deps, echo.Map{"id": d.ID, "name": d.Name, "relation": d.Relation})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":                 p.ID,
        "name":               p.Name,
        "email":              p.Email,
        "phone":              p.Phone,
        "identification_doc": p.IdentificationDoc,
        "loyalty_km":         p.LoyaltyKilometers,
        "dependents":         deps,
    })
}

// Reservations is the staff browse over all bookings with optional
// filters: passenger_id, trip_id, status and date (trip departure
// date, YYYY-MM-DD).
func (h *PassengerHandler) Reservations(c echo.Context) error {
    var f repository.BookingFilter
    if s := c.QueryParam("passenger_id"); s != "" {
        n, err := strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid passenger_id"})
        }
        f.PassengerID = n
    }
    if s := c.QueryParam("trip_id"); s != "" {
        n, err := strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip_id"})
        }
        f.TripID = n
    }
    if s := c.QueryParam("status"); s != "" {
        if s != model.BookingWaiting && s != model.BookingConfirmed && s != model.BookingCancelled {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
        }
        f.Status = s
    }
    if s := c.QueryParam("date"); s != "" {
        if _, err := time.Parse("2006-01-02", s); err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
        }
        f.TravelDate = s
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rows, err := h.Bookings.ListFiltered(ctx, f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
    }
    out := make([]echo.Map, 0, len(rows))
    for i := range rows {
        out = append(out, bookingDetailJSON(&rows[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}
