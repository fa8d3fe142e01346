// Package handler implements the HTTP endpoints of the railway
// booking API.  Handlers own the request transactions: multi-step
// writes begin a transaction on the booking repository's pool, call
// the repositories' Tx methods, and commit once every step succeeded.
package handler

import (
    "context"
    "database/sql"
    "strconv"

    "github.com/go-sql-driver/mysql"
    "github.com/labstack/echo/v4"
)

// currentPersonID extracts the authenticated person's ID from the JWT
// claims stored by the auth middleware.  Returns 0 when the request
// carries no usable identity.
func currentPersonID(c echo.Context) uint64 {
    switch v := c.Get("user_id").(type) {
    case float64:
        return uint64(v)
    case uint64:
        return v
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// currentRole returns the role claim, or "" when absent.
func currentRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// paramID parses a numeric path parameter.  Returns 0 on bad input;
// callers respond 400 in that case.
func paramID(c echo.Context, name string) uint64 {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil {
        return 0
    }
    return n
}

// retryableMySQL reports whether err is a deadlock (1213) or a lock
// wait timeout (1205), the two transient failures worth one retry.
func retryableMySQL(err error) bool {
    if my, ok := err.(*mysql.MySQLError); ok {
        return my.Number == 1213 || my.Number == 1205
    }
    return false
}

// runTx executes fn inside a transaction, retrying once when MySQL
// reports a deadlock or lock wait timeout.  Business errors returned
// by fn are never retried; only the transaction machinery error class
// gets the second attempt.
func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
    var lastErr error
    for attempt := 0; attempt < 2; attempt++ {
        tx, err := db.BeginTx(ctx, nil)
        if err != nil {
            return err
        }
        committed := false
        err = func() error {
            defer func() {
                if !committed {
                    _ = tx.Rollback()
                }
            }()
            if err := fn(tx); err != nil {
                return err
            }
            if err := tx.Commit(); err != nil {
                return err
            }
            committed = true
            return nil
        }()
        if err == nil {
            return nil
        }
        lastErr = err
        if !retryableMySQL(err) {
            return err
        }
    }
    return lastErr
}
