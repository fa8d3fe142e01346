package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/model"
    q "github.com/iliyamo/railway-seat-reservation/internal/queue"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
    "github.com/iliyamo/railway-seat-reservation/internal/service"
)

// PaymentHandler implements payment completion and receipts.
type PaymentHandler struct {
    Bookings   *repository.BookingRepo
    Payments   *repository.PaymentRepo
    Waitlist   *repository.WaitlistRepo
    Passengers *repository.PassengerRepo
}

func NewPaymentHandler(b *repository.BookingRepo, p *repository.PaymentRepo,
    w *repository.WaitlistRepo, pa *repository.PassengerRepo) *PaymentHandler {
    return &PaymentHandler{Bookings: b, Payments: p, Waitlist: w, Passengers: pa}
}

type completePaymentReq struct {
    AmountCents uint32 `json:"amount_cents"`
}

// loyaltyCentsPerKm converts spend into loyalty kilometers credited
// on payment completion: one kilometer per whole currency unit.
const loyaltyCentsPerKm = 100

// Complete settles a payment: the tendered amount must equal the
// amount due exactly, the payment must still be Pending, and its
// anchor booking must still be Waiting.  On success the payment, its
// bookings and their waiting-list entries flip together and the
// passenger is credited loyalty kilometers.  Completion is not
// idempotent; a second call gets 409.
func (h *PaymentHandler) Complete(c echo.Context) error {
    paymentID := paramID(c, "paymentId")
    if paymentID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
    }
    var req completePaymentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    pid := currentPersonID(c)
    staff := currentRole(c) == model.RoleStaff

    var expected uint32
    var payerID uint64
    var details []model.BookingDetail
    txErr := runTx(ctx, h.Bookings.DB(), func(tx *sql.Tx) error {
        p, err := h.Payments.GetForUpdateTx(ctx, tx, paymentID)
        if err != nil {
            return err
        }
        if p.Status == model.PaymentCompleted {
            return repository.ErrPaymentCompleted
        }
        if p.BookingID == nil {
            return repository.ErrBookingNotFound
        }
        anchor, err := h.Bookings.GetForUpdateTx(ctx, tx, *p.BookingID)
        if err != nil {
            return err
        }
        // Ownership before the amount check, so probing someone
        // else's payment ID never reveals the amount due.
        if !staff && anchor.PassengerID != pid {
            return repository.ErrForbidden
        }
        expected = p.AmountCents
        if req.AmountCents != p.AmountCents {
            return repository.ErrAmountMismatch
        }
        if anchor.Status != model.BookingWaiting {
            return repository.ErrBookingNotEditable
        }
        payerID = anchor.PassengerID

        if err := h.Payments.CompleteTx(ctx, tx, paymentID); err != nil {
            return err
        }
        if _, err := h.Bookings.ConfirmByPaymentTx(ctx, tx, paymentID); err != nil {
            return err
        }
        if err := h.Waitlist.ConfirmByPaymentTx(ctx, tx, paymentID); err != nil {
            return err
        }
        details, err = h.Bookings.DetailsByPaymentTx(ctx, tx, paymentID)
        if err != nil {
            return err
        }
        return h.Passengers.AddLoyaltyTx(ctx, tx, payerID, p.AmountCents/loyaltyCentsPerKm)
    })
    if txErr != nil {
        switch txErr {
        case repository.ErrPaymentNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
        case repository.ErrPaymentCompleted:
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment already completed"})
        case repository.ErrAmountMismatch:
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount mismatch", "expected_cents": expected})
        case repository.ErrForbidden:
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case repository.ErrBookingNotFound:
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment has no bookings"})
        case repository.ErrBookingNotEditable:
            return c.JSON(http.StatusConflict, echo.Map{"error": "bookings are not in Waiting status"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "complete payment failed"})
        }
    }

    bookingIDs := make([]uint64, 0, len(details))
    bookings := make([]echo.Map, 0, len(details))
    for i := range details {
        bookingIDs = append(bookingIDs, details[i].ID)
        bookings = append(bookings, bookingDetailJSON(&details[i]))
    }

    go func() {
        _ = service.PublishPaymentCompleted(context.Background(), q.PaymentCompletedEvent{
            PaymentID:   paymentID,
            PassengerID: payerID,
            BookingIDs:  bookingIDs,
            AmountCents: expected,
            PaidAt:      time.Now().UTC().Format(time.RFC3339),
        })
    }()

    return c.JSON(http.StatusOK, echo.Map{
        "payment_id": paymentID,
        "status":     model.PaymentCompleted,
        "bookings":   bookings,
    })
}

// Receipt returns the e-ticket for a booking whose payment has
// completed.  Passengers can only pull their own receipts.
func (h *PaymentHandler) Receipt(c echo.Context) error {
    bookingID := paramID(c, "bookingId")
    if bookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
    }
    if currentRole(c) != model.RoleStaff && b.PassengerID != currentPersonID(c) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    rec, err := h.Payments.Receipt(ctx, bookingID)
    if err != nil {
        if err == repository.ErrPaymentNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no completed payment for booking"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load receipt failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "booking_id":     rec.BookingID,
        "payment_id":     rec.PaymentID,
        "passenger_name": rec.PassengerName,
        "train":          rec.TrainName,
        "departure_at":   rec.DepartureAt,
        "seat_number":    rec.SeatNumber,
        "class":          rec.Class,
        "amount_cents":   rec.AmountCents,
        "paid_at":        rec.PaidAt,
    })
}
