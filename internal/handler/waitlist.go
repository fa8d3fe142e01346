package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    q "github.com/iliyamo/railway-seat-reservation/internal/queue"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
    "github.com/iliyamo/railway-seat-reservation/internal/service"
)

// WaitlistHandler implements the staff-only promotion endpoints.
// Promotion confirms a Waiting booking and its waiting-list entry
// without touching the payment; the passenger still owes the fare.
type WaitlistHandler struct {
    Bookings *repository.BookingRepo
    Waitlist *repository.WaitlistRepo
    Trains   *repository.TrainRepo
}

func NewWaitlistHandler(b *repository.BookingRepo, w *repository.WaitlistRepo, tr *repository.TrainRepo) *WaitlistHandler {
    return &WaitlistHandler{Bookings: b, Waitlist: w, Trains: tr}
}

type promoteReq struct {
    BookingID     uint64 `json:"booking_id"`
    NewSeatNumber uint32 `json:"new_seat_number"`
}

type promoteBatchReq struct {
    TrainID    uint64 `json:"train_id"`
    TravelDate string `json:"travel_date"` // YYYY-MM-DD
}

// Promote confirms one waitlisted booking, optionally moving it to a
// new seat first.  The booking, its seat and its waiting-list entry
// flip in the same transaction; a booking that is no longer Waiting
// is a conflict, as is a seat that got taken in the meantime.
func (h *WaitlistHandler) Promote(c echo.Context) error {
    var req promoteReq
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    var passengerID, tripID uint64
    var seat uint32
    txErr := runTx(ctx, h.Bookings.DB(), func(tx *sql.Tx) error {
        return h.promoteOneTx(ctx, tx, req.BookingID, req.NewSeatNumber, &passengerID, &tripID, &seat)
    })
    if txErr != nil {
        switch {
        case txErr == repository.ErrBookingNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case txErr == repository.ErrBookingNotEditable:
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not Waiting"})
        case txErr == repository.ErrWaitlistNotFound:
            return c.JSON(http.StatusConflict, echo.Map{"error": "no pending waiting-list entry"})
        case txErr == repository.ErrCapacityExceeded:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat exceeds class capacity"})
        case errors.Is(txErr, repository.ErrSeatTaken):
            return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "promote failed"})
        }
    }

    h.publishPromotion(req.BookingID, passengerID, tripID)
    return c.JSON(http.StatusOK, echo.Map{
        "booking_id":  req.BookingID,
        "status":      model.BookingConfirmed,
        "seat_number": seat,
    })
}

// PromoteBatch confirms every waitlisted booking on a train and
// travel date in rank order: loyalty kilometers descending, then
// reservation time, then booking ID.  Seats stay where they are.
// Promotions are independent transactions so one raced booking does
// not abort the batch.
func (h *WaitlistHandler) PromoteBatch(c echo.Context) error {
    var req promoteBatchReq
    if err := c.Bind(&req); err != nil || req.TrainID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_id required"})
    }
    if _, err := time.Parse("2006-01-02", req.TravelDate); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "travel_date must be YYYY-MM-DD"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    ranked, err := h.Waitlist.ListPendingRanked(ctx, req.TrainID, req.TravelDate)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list waitlist failed"})
    }

    promoted := make([]echo.Map, 0, len(ranked))
    for _, cand := range ranked {
        var passengerID, tripID uint64
        var seat uint32
        txErr := runTx(ctx, h.Bookings.DB(), func(tx *sql.Tx) error {
            return h.promoteOneTx(ctx, tx, cand.BookingID, 0, &passengerID, &tripID, &seat)
        })
        if txErr != nil {
            // Skip bookings that changed state since the ranked read.
            continue
        }
        h.publishPromotion(cand.BookingID, passengerID, tripID)
        promoted = append(promoted, echo.Map{
            "booking_id":     cand.BookingID,
            "passenger_id":   cand.PassengerID,
            "passenger_name": cand.PassengerName,
            "loyalty_km":     cand.LoyaltyKilometers,
            "seat_number":    seat,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "train_id":    req.TrainID,
        "travel_date": req.TravelDate,
        "promoted":    promoted,
    })
}

// promoteOneTx confirms one booking and its waiting-list entry under
// lock.  A non-zero newSeat moves the booking to that seat after the
// usual capacity and conflict checks.  The passenger, trip and final
// seat are reported for the response and event payload.
func (h *WaitlistHandler) promoteOneTx(ctx context.Context, tx *sql.Tx, bookingID uint64, newSeat uint32,
    passengerID, tripID *uint64, seat *uint32) error {
    b, err := h.Bookings.GetForUpdateTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if b.Status != model.BookingWaiting {
        return repository.ErrBookingNotEditable
    }
    entry, err := h.Waitlist.GetPendingByBookingTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if newSeat != 0 && newSeat != b.SeatNumber {
        train, err := h.Trains.GetByID(ctx, b.TrainID)
        if err != nil {
            return err
        }
        capacity, _ := train.CapacityForClass(b.Class)
        if newSeat > capacity {
            return repository.ErrCapacityExceeded
        }
        taken, err := h.Bookings.TakenSeatsTx(ctx, tx, b.TripID, b.TrainID, b.Class, []uint32{newSeat})
        if err != nil {
            return err
        }
        if len(taken) > 0 {
            return seatConflictError{Seats: taken}
        }
        if err := h.Bookings.SetSeatTx(ctx, tx, bookingID, newSeat); err != nil {
            return err
        }
        b.SeatNumber = newSeat
    }
    if err := h.Bookings.ConfirmTx(ctx, tx, bookingID); err != nil {
        return err
    }
    if err := h.Waitlist.ConfirmTx(ctx, tx, entry.ID); err != nil {
        return err
    }
    *passengerID = b.PassengerID
    *tripID = b.TripID
    *seat = b.SeatNumber
    return nil
}

func (h *WaitlistHandler) publishPromotion(bookingID, passengerID, tripID uint64) {
    go func() {
        _ = service.PublishWaitlistPromoted(context.Background(), q.WaitlistPromotedEvent{
            BookingID:   bookingID,
            PassengerID: passengerID,
            TripID:      tripID,
            PromotedAt:  time.Now().UTC().Format(time.RFC3339),
        })
    }()
}
