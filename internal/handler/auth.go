package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/railway-seat-reservation/internal/config"
    "github.com/iliyamo/railway-seat-reservation/internal/model"
    "github.com/iliyamo/railway-seat-reservation/internal/repository"
    "github.com/iliyamo/railway-seat-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Accounts *repository.AccountRepo
    Tokens   *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, a *repository.AccountRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Accounts: a, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
    Name              string `json:"name"`
    Email             string `json:"email"`
    Password          string `json:"password"`
    Phone             string `json:"phone"`
    IdentificationDoc string `json:"identification_doc"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type personPart struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    personPart `json:"user"`
    Access  tokenPart  `json:"access"`
    Refresh tokenPart  `json:"refresh"`
}

// Register creates a passenger account and returns tokens
// immediately.  Staff accounts are provisioned out of band, not
// through the public API.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    pid, err := h.Accounts.RegisterPassenger(ctx, req.Name, req.Email, req.Password,
        strings.TrimSpace(req.Phone), strings.TrimSpace(req.IdentificationDoc), h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
    }

    pair, err := h.issueTokens(ctx, pid, model.RolePassenger)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusCreated, authResp{
        User:    personPart{ID: pid, Name: req.Name, Email: req.Email, Role: model.RolePassenger},
        Access:  pair[0],
        Refresh: pair[1],
    })
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    acc, err := h.Accounts.GetByEmail(ctx, req.Email)
    if err != nil {
        if err == repository.ErrPersonNotFound {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !utils.VerifyPassword(acc.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    pair, err := h.issueTokens(ctx, acc.ID, acc.Role)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, authResp{
        User:    personPart{ID: acc.ID, Name: acc.Name, Email: acc.Email, Role: acc.Role},
        Access:  pair[0],
        Refresh: pair[1],
    })
}

// Refresh validates a refresh token by hash, revokes it, and issues a
// new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    pid, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    _ = h.Tokens.RevokeByHash(ctx, hash)

    acc, err := h.Accounts.GetByID(ctx, pid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
    }

    pair, err := h.issueTokens(ctx, pid, acc.Role)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, authResp{
        User:    personPart{ID: pid, Name: acc.Name, Email: acc.Email, Role: acc.Role},
        Access:  pair[0],
        Refresh: pair[1],
    })
}

// Logout revokes a single session by refresh token, or every session
// of the authenticated person when no token is supplied.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if refreshToken != "" {
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }

    pid := currentPersonID(c)
    if pid == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide refresh_token or Authorization header"})
    }
    if err := h.Tokens.RevokeAllForPerson(ctx, pid); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated identity from the JWT claims.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": c.Get("user_id"),
        "role":    c.Get("role"),
    })
}

// issueTokens mints an access/refresh pair and stores the refresh
// hash.  Index 0 is the access part, index 1 the refresh part.
func (h *AuthHandler) issueTokens(ctx context.Context, pid uint64, role string) ([2]tokenPart, error) {
    var out [2]tokenPart
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, pid, role, h.Cfg.AccessTTLMin)
    if err != nil {
        return out, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return out, err
    }
    if err := h.Tokens.StoreRefresh(ctx, pid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return out, err
    }
    out[0] = tokenPart{Token: access.Token, Expires: access.Exp}
    out[1] = tokenPart{Token: refresh.Raw, Expires: refresh.Exp} // raw back to client
    return out, nil
}
