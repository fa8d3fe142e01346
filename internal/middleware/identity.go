package middleware

// identity.go holds helpers shared across middleware files.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated person's ID as a string for
// use in cache and rate-limit keys.  Returns "anon" when the request
// carries no validated token.
func currentUserID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "anon"
    }
    switch t := v.(type) {
    case string:
        if t != "" {
            return t
        }
    case float64:
        return fmt.Sprintf("%.0f", t)
    case uint64:
        return fmt.Sprintf("%d", t)
    }
    return "anon"
}
