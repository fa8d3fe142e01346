package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// AvailabilityHandler renders seat maps for a trip and class.
type AvailabilityHandler struct {
    Bookings *repository.BookingRepo
    Trips    *repository.TripRepo
    Trains   *repository.TrainRepo
}

func NewAvailabilityHandler(b *repository.BookingRepo, t *repository.TripRepo, tr *repository.TrainRepo) *AvailabilityHandler {
    return &AvailabilityHandler{Bookings: b, Trips: t, Trains: tr}
}

// SeatMap returns every seat of a class on a trip with its occupancy
// flag.  The map is a snapshot: a seat shown free can still lose a
// race with a concurrent checkout, which the checkout itself rejects.
func (h *AvailabilityHandler) SeatMap(c echo.Context) error {
    tripID := paramID(c, "id")
    if tripID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
    }
    class := strings.TrimSpace(c.QueryParam("class"))
    if class == "" {
        class = model.ClassEconomy
    }
    if !model.ValidClass(class) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "class must be Economy or Business"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    trip, err := h.Trips.GetByID(ctx, tripID)
    if err != nil {
        if err == repository.ErrTripNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
    }
    if trip.Status != model.TripActive {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
    }
    train, err := h.Trains.GetByID(ctx, trip.TrainID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load train failed"})
    }
    capacity, _ := train.CapacityForClass(class)

    occupied, err := h.Bookings.OccupiedSeats(ctx, trip.ID, trip.TrainID, class)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load seats failed"})
    }
    taken := make(map[uint32]bool, len(occupied))
    for _, n := range occupied {
        taken[n] = true
    }

    seats := make([]echo.Map, 0, capacity)
    for n := uint32(1); n <= capacity; n++ {
        seats = append(seats, echo.Map{"seat_number": n, "occupied": taken[n]})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "trip_id":  trip.ID,
        "train_id": trip.TrainID,
        "class":    class,
        "capacity": capacity,
        "free":     capacity - uint32(len(occupied)),
        "seats":    seats,
    })
}
