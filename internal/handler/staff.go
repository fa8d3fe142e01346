package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

// StaffHandler manages staff membership.  Assignment is a role upsert:
// a passenger gains a staff row, an existing staff member gets the new
// role.
type StaffHandler struct {
    Accounts *repository.AccountRepo
}

func NewStaffHandler(a *repository.AccountRepo) *StaffHandler {
    return &StaffHandler{Accounts: a}
}

type assignStaffReq struct {
    PersonID uint64 `json:"person_id"`
    Role     string `json:"role"`
}

// Assign grants or updates a person's staff role.  Tokens issued
// before the change keep their old role claim until they expire.
func (h *StaffHandler) Assign(c echo.Context) error {
    var req assignStaffReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Role = strings.TrimSpace(req.Role)
    if req.PersonID == 0 || req.Role == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "person_id and role required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Accounts.AssignStaff(ctx, req.PersonID, req.Role); err != nil {
        if err == repository.ErrPersonNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "person not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign staff failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"person_id": req.PersonID, "role": req.Role})
}
