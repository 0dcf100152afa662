package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
)

func TestListEnrichesBookingsWithBulkReads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	svc := NewBookingQueryService(db)

	now := time.Now()
	bookings := sqlmock.NewRows(bookingRowColumns()).
		AddRow(41, int64(7), "Airport", "City Center", nil, nil, nil, 800.0, nil,
			nil, nil, nil, nil, models.TaxiAssignPending, string(models.BookingPaid), now, now).
		AddRow(42, int64(7), "Mall", "Station", nil, nil, nil, 300.0, nil,
			nil, nil, nil, nil, models.TaxiAssignAssigned, string(models.BookingInProgress), now, now)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookings)
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(9, 41, 800.0, "INR", string(models.PaymentSuccess), "razorpay", "pay_123", 0.0, now))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(userRow())
	mock.ExpectQuery("SELECT (.+) FROM taxi_assignments").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "driver_name", "driver_number",
			"cab_number", "cab_name", "created_at", "updated_at",
		}).AddRow(5, 42, "Ravi", "+919812345678", "KA01AB1234", "Swift Dzire", now, now))

	details, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("got %d bookings, want 2", len(details))
	}
	if len(details[0].Payments) != 1 || details[0].Payments[0].Amount != 800 {
		t.Fatalf("first booking payments wrong: %+v", details[0].Payments)
	}
	if details[0].User == nil || details[0].User.Name != "Rider" {
		t.Fatalf("first booking user not joined")
	}
	if len(details[1].AssignTaxis) != 1 || details[1].AssignTaxis[0].DriverName != "Ravi" {
		t.Fatalf("second booking assignment not joined")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetUnknownBookingReturnsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	svc := NewBookingQueryService(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns()))

	if _, err := svc.Get(context.Background(), 404); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
