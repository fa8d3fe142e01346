package handler

import (
    "net/http"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/iliyamo/railway-seat-reservation/internal/repository"
)

func newStaffHandler(t *testing.T) (*StaffHandler, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock init error: %v", err)
    }
    return NewStaffHandler(repository.NewAccountRepo(db)), mock, func() { db.Close() }
}

func TestAssignStaffUpsertsRole(t *testing.T) {
    h, mock, done := newStaffHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT id FROM persons").WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
    mock.ExpectExec("INSERT INTO staff").WithArgs(uint64(42), "Conductor").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    c, rec := staffCtx(t, "/v1/admin/assign-staff", `{"person_id":42,"role":"Conductor"}`)
    if err := h.Assign(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestAssignStaffUnknownPersonNotFound(t *testing.T) {
    h, mock, done := newStaffHandler(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT id FROM persons").WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))
    mock.ExpectRollback()

    c, rec := staffCtx(t, "/v1/admin/assign-staff", `{"person_id":42,"role":"Conductor"}`)
    if err := h.Assign(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
    }
}

func TestAssignStaffRejectsEmptyRole(t *testing.T) {
    h, _, done := newStaffHandler(t)
    defer done()

    c, rec := staffCtx(t, "/v1/admin/assign-staff", `{"person_id":42,"role":"  "}`)
    if err := h.Assign(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
    }
}
