package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/handler"
    "github.com/iliyamo/railway-seat-reservation/internal/middleware"
    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// RegisterPassenger registers the booking and payment endpoints under
// /v1.  All routes require a valid JWT; both roles are accepted since
// staff act on bookings through the same operations, with ownership
// checks relaxed inside the handlers.
func RegisterPassenger(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler,
    pa *handler.PassengerHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RolePassenger, model.RoleStaff),
    )
    g.POST("/bookings", b.Create)
    g.GET("/bookings/:id", b.Get)
    g.PUT("/bookings/:id", b.Update)
    g.DELETE("/bookings/:id", b.Cancel)
    g.GET("/my-bookings", b.Mine)

    g.POST("/bookings/payment/:paymentId", p.Complete)
    g.GET("/payments/receipt/:bookingId", p.Receipt)

    g.GET("/passengers/:id", pa.Profile)
}
