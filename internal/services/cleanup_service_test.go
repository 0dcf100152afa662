package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"urbancabz/internal/domain/models"
)

func TestPurgeBookingsDeletesChildrenFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	svc := NewCleanupService(db)

	// Expectations are ordered: dependents must go before bookings.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fare_adjustments").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM booking_notes").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs(models.AuditEntityBooking).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec("DELETE FROM taxi_assignments").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM payments").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM bookings").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	report, err := svc.PurgeBookings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Bookings != 5 || report.Payments != 5 || report.AuditLogs != 6 {
		t.Fatalf("report wrong: %+v", report)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
