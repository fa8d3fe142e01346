package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/handler"
    "github.com/iliyamo/railway-seat-reservation/internal/middleware"
    "github.com/iliyamo/railway-seat-reservation/internal/model"
)

// RegisterStaff registers the staff-only endpoints under /v1/admin:
// waitlist promotion, staff assignment, the passenger directory, the
// reservation browse and the reports.
func RegisterStaff(e *echo.Echo, w *handler.WaitlistHandler, s *handler.StaffHandler,
    pa *handler.PassengerHandler, r *handler.ReportHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleStaff),
    )
    g.POST("/promote-waitlist", w.Promote)
    g.POST("/promote-waitlist/batch", w.PromoteBatch)
    g.POST("/assign-staff", s.Assign)

    g.GET("/passengers", pa.List)
    g.GET("/reservations", pa.Reservations)

    g.GET("/reports/current-reservations", r.CurrentReservations)
    g.GET("/reports/waitlisted-loyalty", r.WaitlistedByLoyalty)
    g.GET("/reports/load-factor", r.LoadFactor)
    g.GET("/reports/dependents-traveling", r.DependentsTraveling)
}
