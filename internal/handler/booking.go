package handler

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/config"
    "github.com/iliyamo/railway-seat-reservation/internal/model"
    q "github.com/iliyamo/railway-seat-reservation/internal/queue"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
    "github.com/iliyamo/railway-seat-reservation/internal/service"
)

// BookingHandler implements checkout, booking management and the
// passenger itinerary views.
type BookingHandler struct {
    Cfg           config.Config
    Bookings      *repository.BookingRepo
    Payments      *repository.PaymentRepo
    Waitlist      *repository.WaitlistRepo
    Trips         *repository.TripRepo
    Trains        *repository.TrainRepo
    Passengers    *repository.PassengerRepo
    Notifications *repository.NotificationRepo
}

func NewBookingHandler(cfg config.Config, b *repository.BookingRepo, p *repository.PaymentRepo,
    w *repository.WaitlistRepo, t *repository.TripRepo, tr *repository.TrainRepo,
    pa *repository.PassengerRepo, n *repository.NotificationRepo) *BookingHandler {
    return &BookingHandler{Cfg: cfg, Bookings: b, Payments: p, Waitlist: w,
        Trips: t, Trains: tr, Passengers: pa, Notifications: n}
}

// ----- DTOs -----

type seatReq struct {
    SeatNumber   uint32  `json:"seat_number"`
    DependentID  *uint64 `json:"dependent_id"`
    NumOfLuggage uint32  `json:"num_of_luggage"`
}

type createBookingReq struct {
    TripID        uint64    `json:"trip_id"`
    OriginID      uint64    `json:"origin_station_id"`
    DestinationID uint64    `json:"destination_station_id"`
    Class         string    `json:"class"`
    Status        string    `json:"status"` // Waiting or Confirmed
    Seats         []seatReq `json:"seats"`
}

// updateBookingReq carries the editable booking fields.  Absent
// fields keep their current value; dependent_id 0 detaches the
// dependent.
type updateBookingReq struct {
    Class         *string `json:"class"`
    SeatNumber    *uint32 `json:"seat_number"`
    BaseFareCents *uint32 `json:"base_fare_cents"`
    NumOfLuggage  *uint32 `json:"num_of_luggage"`
    DependentID   *uint64 `json:"dependent_id"`
}

// departureReminderLead is how far before departure the reminder
// fires.
const departureReminderLead = 3 * time.Hour

// errFareUnavailable reports a fare class with no configured base
// fare.
var errFareUnavailable = errors.New("no fare configured for class")

// Create performs a checkout: it validates the request, then inserts
// one payment and one booking per requested seat in a single
// transaction.  Seats are checked for conflicts under lock; any
// conflict or capacity shortfall aborts the whole checkout.  Waiting
// bookings additionally get waiting-list entries.  Events are
// published only after the transaction commits.
func (h *BookingHandler) Create(c echo.Context) error {
    pid := currentPersonID(c)
    if pid == 0 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.TripID == 0 || req.OriginID == 0 || req.DestinationID == 0 || len(req.Seats) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id, stations and seats required"})
    }
    if req.OriginID == req.DestinationID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination must differ"})
    }
    if !model.ValidClass(req.Class) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "class must be Economy or Business"})
    }
    if req.Status != model.BookingWaiting && req.Status != model.BookingConfirmed {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be Waiting or Confirmed"})
    }

    // Reject duplicate seats within the request itself.
    seen := make(map[uint32]bool, len(req.Seats))
    var seats []uint32
    var depIDs []uint64
    for _, s := range req.Seats {
        if s.SeatNumber == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number required"})
        }
        if seen[s.SeatNumber] {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("duplicate seat %d in request", s.SeatNumber)})
        }
        seen[s.SeatNumber] = true
        seats = append(seats, s.SeatNumber)
        if s.DependentID != nil {
            depIDs = append(depIDs, *s.DependentID)
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    trip, err := h.Trips.GetByID(ctx, req.TripID)
    if err != nil {
        if err == repository.ErrTripNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
    }
    if trip.Status != model.TripActive {
        return c.JSON(http.StatusConflict, echo.Map{"error": "trip is not open for booking"})
    }
    train, err := h.Trains.GetByID(ctx, trip.TrainID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load train failed"})
    }
    capacity, _ := train.CapacityForClass(req.Class)
    for _, n := range seats {
        if n > capacity {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("seat %d exceeds %s capacity %d", n, req.Class, capacity)})
        }
    }

    // Dependents must belong to the booking passenger.
    if len(depIDs) > 0 {
        owned, err := h.Passengers.DependentIDsOwned(ctx, pid, depIDs)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dependents failed"})
        }
        for _, id := range depIDs {
            if !owned[id] {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("dependent %d not found", id)})
            }
        }
    }

    fare, ok := h.Cfg.FareForClass(req.Class)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fare configured for class"})
    }
    total := fare * uint32(len(seats))

    var payment model.Payment
    var bookingIDs []uint64
    txErr := runTx(ctx, h.Bookings.DB(), func(tx *sql.Tx) error {
        taken, err := h.Bookings.TakenSeatsTx(ctx, tx, trip.ID, trip.TrainID, req.Class, seats)
        if err != nil {
            return err
        }
        if len(taken) > 0 {
            return seatConflictError{Seats: taken}
        }
        active, err := h.Bookings.CountActiveByClassTx(ctx, tx, trip.ID, trip.TrainID, req.Class)
        if err != nil {
            return err
        }
        if active+uint32(len(seats)) > capacity {
            return repository.ErrCapacityExceeded
        }

        // The payment mirrors the checkout: a staff-confirmed checkout
        // is settled immediately, a Waiting one owes the fare.
        payment = model.Payment{AmountCents: total, Status: model.PaymentPending}
        if req.Status == model.BookingConfirmed {
            payment.Status = model.PaymentCompleted
        }
        if err := h.Payments.CreateTx(ctx, tx, &payment); err != nil {
            return err
        }

        bookingIDs = bookingIDs[:0]
        for _, s := range req.Seats {
            b := model.Booking{
                TripID:        trip.ID,
                TrainID:       trip.TrainID,
                TrackID:       trip.TrackID,
                OriginID:      req.OriginID,
                DestinationID: req.DestinationID,
                PassengerID:   pid,
                DependentID:   s.DependentID,
                PaymentID:     payment.ID,
                Class:         req.Class,
                Status:        req.Status,
                SeatNumber:    s.SeatNumber,
                BaseFareCents: fare,
                NumOfLuggage:  s.NumOfLuggage,
            }
            if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
                return err
            }
            bookingIDs = append(bookingIDs, b.ID)
            if req.Status == model.BookingWaiting {
                entry := model.WaitlistEntry{
                    BookingID:  b.ID,
                    TravelDate: trip.DepartureAt,
                    ReservedAt: time.Now().UTC(),
                }
                if err := h.Waitlist.CreateTx(ctx, tx, &entry); err != nil {
                    return err
                }
            }
            sendAt := trip.DepartureAt.Add(-departureReminderLead)
            if err := h.Notifications.EnqueueTx(ctx, tx, b.ID, sendAt); err != nil {
                return err
            }
        }
        // Anchor the payment on the first booking of the group.
        return h.Payments.SetAnchorTx(ctx, tx, payment.ID, bookingIDs[0])
    })
    if txErr != nil {
        var conflict seatConflictError
        if errors.As(txErr, &conflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "seats already taken", "seats": conflict.Seats})
        }
        if txErr == repository.ErrCapacityExceeded {
            return c.JSON(http.StatusConflict, echo.Map{"error": "not enough free seats in class"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
    }

    // Post-commit, fire-and-forget notifications.  Every checkout
    // gets its itinerary; Waiting checkouts additionally get a
    // payment reminder.
    now := time.Now().UTC().Format(time.RFC3339)
    go func() {
        bg := context.Background()
        _ = service.PublishItinerary(bg, q.ItineraryEvent{
            PaymentID:   payment.ID,
            PassengerID: pid,
            TripID:      trip.ID,
            TrainName:   train.NameEnglish,
            DepartureAt: trip.DepartureAt.UTC().Format(time.RFC3339),
            Class:       req.Class,
            BookingIDs:  bookingIDs,
            Seats:       seats,
            TotalCents:  total,
            CreatedAt:   now,
        })
        if req.Status == model.BookingWaiting {
            _ = service.PublishPaymentPending(bg, q.PaymentPendingEvent{
                PaymentID:   payment.ID,
                PassengerID: pid,
                AmountCents: total,
                CreatedAt:   now,
            })
        }
    }()

    return c.JSON(http.StatusCreated, echo.Map{
        "booking_ids":      bookingIDs,
        "payment_id":       payment.ID,
        "total_cost_cents": total,
        "status":           req.Status,
    })
}

// seatConflictError carries the conflicting seat numbers out of the
// checkout transaction.  It unwraps to repository.ErrSeatTaken so
// callers can match it without knowing the concrete type.
type seatConflictError struct {
    Seats []uint32
}

func (e seatConflictError) Error() string { return repository.ErrSeatTaken.Error() }

func (e seatConflictError) Unwrap() error { return repository.ErrSeatTaken }

// Get returns one booking in itinerary detail.  Passengers can only
// see their own bookings; staff can see any.
func (h *BookingHandler) Get(c echo.Context) error {
    id := paramID(c, "id")
    if id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    bd, err := h.Bookings.GetDetail(ctx, id)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
    }
    if currentRole(c) != model.RoleStaff && bd.PassengerID != currentPersonID(c) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, bookingDetailJSON(bd))
}

// Mine lists the caller's bookings, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
    pid := currentPersonID(c)
    if pid == 0 {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    list, err := h.Bookings.ListByPassenger(ctx, pid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    out := make([]echo.Map, 0, len(list))
    for i := range list {
        out = append(out, bookingDetailJSON(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Update edits a Waiting booking: class, seat, fare, luggage or
// dependent link.  Only the owning passenger or staff may edit;
// Confirmed and Cancelled bookings are immutable.  A seat or class
// move re-validates seat uniqueness under lock, and a class move
// without an explicit fare re-prices from configuration.
func (h *BookingHandler) Update(c echo.Context) error {
    id := paramID(c, "id")
    if id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    var req updateBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Class == nil && req.SeatNumber == nil && req.BaseFareCents == nil &&
        req.NumOfLuggage == nil && req.DependentID == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
    }
    if req.Class != nil && !model.ValidClass(*req.Class) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "class must be Economy or Business"})
    }
    if req.SeatNumber != nil && *req.SeatNumber == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number must be positive"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    pid := currentPersonID(c)
    staff := currentRole(c) == model.RoleStaff

    var updated *model.Booking
    txErr := runTx(ctx, h.Bookings.DB(), func(tx *sql.Tx) error {
        b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
        if err != nil {
            return err
        }
        if !staff && b.PassengerID != pid {
            return repository.ErrForbidden
        }
        if b.Status != model.BookingWaiting {
            return repository.ErrBookingNotEditable
        }

        classMoved := req.Class != nil && *req.Class != b.Class
        if req.Class != nil {
            b.Class = *req.Class
        }
        if classMoved && req.BaseFareCents == nil {
            fare, ok := h.Cfg.FareForClass(b.Class)
            if !ok {
                return errFareUnavailable
            }
            b.BaseFareCents = fare
        }
        if req.BaseFareCents != nil {
            b.BaseFareCents = *req.BaseFareCents
        }
        seatMoved := req.SeatNumber != nil && *req.SeatNumber != b.SeatNumber
        if req.SeatNumber != nil {
            b.SeatNumber = *req.SeatNumber
        }
        if req.NumOfLuggage != nil {
            b.NumOfLuggage = *req.NumOfLuggage
        }
        if req.DependentID != nil {
            if *req.DependentID == 0 {
                b.DependentID = nil
            } else {
                owned, err := h.Passengers.DependentIDsOwned(ctx, b.PassengerID, []uint64{*req.DependentID})
                if err != nil {
                    return err
                }
                if !owned[*req.DependentID] {
                    return repository.ErrPersonNotFound
                }
                dep := *req.DependentID
                b.DependentID = &dep
            }
        }

        train, err := h.Trains.GetByID(ctx, b.TrainID)
        if err != nil {
            return err
        }
        capacity, _ := train.CapacityForClass(b.Class)
        if b.SeatNumber > capacity {
            return repository.ErrCapacityExceeded
        }
        if seatMoved || classMoved {
            taken, err := h.Bookings.TakenSeatsTx(ctx, tx, b.TripID, b.TrainID, b.Class, []uint32{b.SeatNumber})
            if err != nil {
                return err
            }
            if len(taken) > 0 {
                return seatConflictError{Seats: taken}
            }
        }
        if err := h.Bookings.UpdateFieldsTx(ctx, tx, b); err != nil {
            return err
        }
        updated = b
        return nil
    })
    if txErr != nil {
        switch {
        case txErr == repository.ErrBookingNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case txErr == repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case txErr == repository.ErrBookingNotEditable:
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking not editable in current state"})
        case txErr == repository.ErrCapacityExceeded:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat exceeds class capacity"})
        case txErr == errFareUnavailable:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fare configured for class"})
        case txErr == repository.ErrPersonNotFound:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "dependent not found"})
        default:
            var conflict seatConflictError
            if errors.As(txErr, &conflict) {
                return c.JSON(http.StatusConflict, echo.Map{"error": "seat already taken", "seats": conflict.Seats})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
        }
    }
    resp := echo.Map{
        "id":              updated.ID,
        "class":           updated.Class,
        "status":          updated.Status,
        "seat_number":     updated.SeatNumber,
        "base_fare_cents": updated.BaseFareCents,
        "num_of_luggage":  updated.NumOfLuggage,
    }
    if updated.DependentID != nil {
        resp["dependent_id"] = *updated.DependentID
    }
    return c.JSON(http.StatusOK, resp)
}

// Cancel marks a booking Cancelled, freeing its seat.  Cancellation
// is terminal; cancelling twice is a conflict.
func (h *BookingHandler) Cancel(c echo.Context) error {
    id := paramID(c, "id")
    if id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    pid := currentPersonID(c)
    staff := currentRole(c) == model.RoleStaff

    txErr := runTx(ctx, h.Bookings.DB(), func(tx *sql.Tx) error {
        b, err := h.Bookings.GetForUpdateTx(ctx, tx, id)
        if err != nil {
            return err
        }
        if !staff && b.PassengerID != pid {
            return repository.ErrForbidden
        }
        if b.Status == model.BookingCancelled {
            return repository.ErrAlreadyCancelled
        }
        return h.Bookings.CancelTx(ctx, tx, id)
    })
    if txErr != nil {
        switch txErr {
        case repository.ErrBookingNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case repository.ErrAlreadyCancelled:
            return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel booking failed"})
        }
    }
    return c.NoContent(http.StatusNoContent)
}

// bookingDetailJSON shapes a BookingDetail for responses.
func bookingDetailJSON(bd *model.BookingDetail) echo.Map {
    m := echo.Map{
        "id":                  bd.ID,
        "trip_id":             bd.TripID,
        "train":               bd.TrainName,
        "departure_at":        bd.DepartureAt,
        "arrival_at":          bd.ArrivalAt,
        "origin_station":      bd.OriginStation,
        "destination_station": bd.DestinationStation,
        "passenger_id":        bd.PassengerID,
        "passenger_name":      bd.PassengerName,
        "payment_id":          bd.PaymentID,
        "class":               bd.Class,
        "status":              bd.Status,
        "seat_number":         bd.SeatNumber,
        "base_fare_cents":     bd.BaseFareCents,
        "num_of_luggage":      bd.NumOfLuggage,
        "created_at":          bd.CreatedAt,
    }
    if bd.DependentName != nil {
        m["dependent_id"] = bd.DependentID
        m["dependent_name"] = bd.DependentName
    }
    return m
}
