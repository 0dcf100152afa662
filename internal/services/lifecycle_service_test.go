package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
)

func newMock(t *testing.T) (*LifecycleService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := NewLifecycleService(db, nil, 12)
	return svc, mock, func() { db.Close() }
}

func bookingRowColumns() []string {
	return []string{
		"id", "user_id", "pickup_location", "drop_location", "scheduled_at",
		"distance_km", "estimated_fare", "total_amount", "car_model",
		"actual_km", "extra_km", "extra_charge", "cancellation_reason",
		"taxi_assign_status", "status", "created_at", "updated_at",
	}
}

func bookingRow(mock sqlmock.Sqlmock, id int64, status models.BookingStatus, total float64, distanceKm any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingRowColumns()).AddRow(
		id, int64(7), "Airport", "City Center", nil,
		distanceKm, nil, total, nil,
		nil, nil, nil, nil,
		models.TaxiAssignPending, string(status), now, now,
	)
}

func paymentRowColumns() []string {
	return []string{
		"id", "booking_id", "amount", "currency", "status", "provider",
		"provider_txn_id", "remaining_amount", "created_at",
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCreatePendingBookingDefaultsRemainingToZero(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(41), 800.0, "INR", string(models.PaymentPending), "razorpay", "order_abc", 0.0).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPendingPayment, 800, nil))
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(9, 41, 800.0, "INR", string(models.PaymentPending), "razorpay", "order_abc", 0.0, time.Now()))

	in := CreateBookingInput{
		UserID:      7,
		Pickup:      "Airport",
		Drop:        "City Center",
		TotalAmount: floatPtr(800),
	}
	detail, err := svc.CreatePendingBooking(context.Background(), in, "order_abc", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Status != models.BookingPendingPayment {
		t.Fatalf("status = %s, want PENDING_PAYMENT", detail.Status)
	}
	if len(detail.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(detail.Payments))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePendingBookingKeepsPartialRemainder(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(42), 300.0, "INR", string(models.PaymentPending), "razorpay", "order_xyz", 700.0).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 42, models.BookingPendingPayment, 1000, nil))
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(10, 42, 300.0, "INR", string(models.PaymentPending), "razorpay", "order_xyz", 700.0, time.Now()))

	in := CreateBookingInput{
		UserID:      7,
		Pickup:      "Airport",
		Drop:        "City Center",
		TotalAmount: floatPtr(1000),
	}
	_, err := svc.CreatePendingBooking(context.Background(), in, "order_xyz", floatPtr(300))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaidBookingRejectsMissingFields(t *testing.T) {
	svc, _, done := newMock(t)
	defer done()

	cases := []CreateBookingInput{
		{Pickup: "A", Drop: "B", TotalAmount: floatPtr(100)},
		{UserID: 7, Drop: "B", TotalAmount: floatPtr(100)},
		{UserID: 7, Pickup: "A", Drop: "B"},
	}
	for i, in := range cases {
		if _, err := svc.CreatePaidBooking(context.Background(), in, nil); !domain.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	in := CreateBookingInput{UserID: 7, Pickup: "A", Drop: "B", TotalAmount: floatPtr(0)}
	if _, err := svc.CreatePaidBooking(context.Background(), in, nil); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero total, got %v", err)
	}
}

func TestReconcileFullPaymentMarksBookingPaid(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("order_abc", string(models.PaymentPending)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(9, 41, 800.0, "INR", string(models.PaymentPending), "razorpay", "order_abc", 0.0, time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WithArgs(string(models.PaymentSuccess), "pay_123", int64(9), string(models.PaymentPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingPaid), int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 800, nil))
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(9, 41, 800.0, "INR", string(models.PaymentSuccess), "razorpay", "pay_123", 0.0, time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "phone", "role", "created_at"}).
			AddRow(7, "rider@example.com", "x", "Rider", "+919876543210", models.RoleCustomer, time.Now()))

	detail, err := svc.ReconcilePaymentSuccess(context.Background(), "order_abc", "pay_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Status != models.BookingPaid {
		t.Fatalf("status = %s, want PAID", detail.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcilePartialPaymentKeepsBookingPending(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("order_xyz", string(models.PaymentPending)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(10, 42, 300.0, "INR", string(models.PaymentPending), "razorpay", "order_xyz", 700.0, time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingPendingPayment), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 42, models.BookingPendingPayment, 1000, nil))
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(10, 42, 300.0, "INR", string(models.PaymentSuccess), "razorpay", "pay_456", 700.0, time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "phone", "role", "created_at"}).
			AddRow(7, "rider@example.com", "x", "Rider", "+919876543210", models.RoleCustomer, time.Now()))

	detail, err := svc.ReconcilePaymentSuccess(context.Background(), "order_xyz", "pay_456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Status != models.BookingPendingPayment {
		t.Fatalf("status = %s, want PENDING_PAYMENT", detail.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileRacingCallbackFailsNotFound(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("order_abc", string(models.PaymentPending)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(9, 41, 800.0, "INR", string(models.PaymentPending), "razorpay", "order_abc", 0.0, time.Now()))

	// A concurrent callback settled the payment between lookup and flip, so
	// the PENDING-guarded update hits zero rows and the tx rolls back.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WithArgs(string(models.PaymentSuccess), "pay_123", int64(9), string(models.PaymentPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.ReconcilePaymentSuccess(context.Background(), "order_abc", "pay_123")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileReplayedCallbackFailsNotFound(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	// Already-reconciled payments carry the gateway payment id and SUCCESS
	// status, so the PENDING lookup finds nothing.
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("order_abc", string(models.PaymentPending)).
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()))

	_, err := svc.ReconcilePaymentSuccess(context.Background(), "order_abc", "pay_123")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionStatusWritesAuditInSameTx(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 800, nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingInProgress), int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(models.AuditEntityBooking, int64(41), models.AuditActionStatusChange,
			`{"status":"PAID"}`, `{"status":"IN_PROGRESS"}`, int64(3),
			"Status changed from PAID to IN_PROGRESS").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	booking, err := svc.TransitionStatus(context.Background(), 41, models.BookingInProgress, 3, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.BookingInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionStatusRejectsInvalidEdges(t *testing.T) {
	cases := []struct {
		from models.BookingStatus
		to   models.BookingStatus
	}{
		{models.BookingPendingPayment, models.BookingInProgress},
		{models.BookingPendingPayment, models.BookingCompleted},
		{models.BookingPaid, models.BookingCompleted},
		{models.BookingPaid, models.BookingPendingPayment},
		{models.BookingCompleted, models.BookingInProgress},
		{models.BookingCancelled, models.BookingPaid},
	}
	for _, tc := range cases {
		svc, mock, done := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM bookings").
			WillReturnRows(bookingRow(mock, 41, tc.from, 800, nil))

		_, err := svc.TransitionStatus(context.Background(), 41, tc.to, 3, "")
		if !domain.IsInvalidTransition(err) {
			t.Fatalf("%s -> %s: expected invalid transition, got %v", tc.from, tc.to, err)
		}
		done()
	}
}

func TestCancelBookingRequiresReason(t *testing.T) {
	svc, _, done := newMock(t)
	defer done()

	_, err := svc.CancelBooking(context.Background(), 41, "", 3)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelBookingRejectsTerminalStates(t *testing.T) {
	for _, status := range []models.BookingStatus{models.BookingCompleted, models.BookingCancelled} {
		svc, mock, done := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM bookings").
			WillReturnRows(bookingRow(mock, 41, status, 800, nil))

		// No audit row may be written for a rejected cancel.
		_, err := svc.CancelBooking(context.Background(), 41, "customer no-show", 3)
		if !domain.IsInvalidState(err) {
			t.Fatalf("%s: expected invalid state, got %v", status, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", status, err)
		}
		done()
	}
}

func TestCancelBookingStoresReasonAndAudit(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 800, nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingCancelled), "customer no-show", int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(models.AuditEntityBooking, int64(41), models.AuditActionCancel,
			`{"status":"PAID"}`, `{"status":"CANCELLED"}`, int64(3), "customer no-show").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	booking, err := svc.CancelBooking(context.Background(), 41, "customer no-show", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.BookingCancelled {
		t.Fatalf("status = %s, want CANCELLED", booking.Status)
	}
	if booking.CancellationReason == nil || *booking.CancellationReason != "customer no-show" {
		t.Fatalf("cancellation reason not kept on result")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddNoteRequiresContentAndBooking(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	if _, err := svc.AddNote(context.Background(), 41, 3, ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns()))
	if _, err := svc.AddNote(context.Background(), 404, 3, "call customer"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
