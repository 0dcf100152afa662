package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
)

type fakeDispatcher struct {
	sent       []string
	failDriver bool
}

func (f *fakeDispatcher) SendBookingConfirmation(ctx context.Context, phone string, booking *models.BookingDetail) error {
	f.sent = append(f.sent, "confirmation:"+phone)
	return nil
}

func (f *fakeDispatcher) SendTaxiAssignment(ctx context.Context, phone string, booking *models.Booking, assignment *models.TaxiAssignment) error {
	f.sent = append(f.sent, "customer:"+phone)
	return nil
}

func (f *fakeDispatcher) SendDriverAssignment(ctx context.Context, phone string, booking *models.Booking, assignment *models.TaxiAssignment) error {
	if f.failDriver {
		return errors.New("twilio unreachable")
	}
	f.sent = append(f.sent, "driver:"+phone)
	return nil
}

func (f *fakeDispatcher) SendPasswordResetOTP(ctx context.Context, phone, otp string, ttl time.Duration) error {
	f.sent = append(f.sent, "otp:"+phone)
	return nil
}

func TestCompleteTripFareMath(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	// Booked 10 km, drove 13, rate 15/km, 50 toll: 45 + 50 = 95 extra.
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingInProgress, 500, 10.0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingCompleted), 595.0, 13.0, 3.0, 95.0, int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO fare_adjustments").
		WithArgs(int64(41), models.FareAdjustExtraKm, 45.0, "Extra 3.0 km @ ₹15/km", int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO fare_adjustments").
		WithArgs(int64(41), models.FareAdjustToll, 50.0, "Toll charges", int64(3)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	in := CompleteTripInput{
		ActualKm:    floatPtr(13),
		RatePerKm:   floatPtr(15),
		TollCharges: 50,
	}
	booking, adj, err := svc.CompleteTrip(context.Background(), 41, in, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.ExtraKm != 3 || adj.ExtraKmCharge != 45 || adj.TotalAdjustments != 95 {
		t.Fatalf("adjustments wrong: %+v", adj)
	}
	if adj.NewTotal != 595 || booking.TotalAmount != 595 {
		t.Fatalf("new total = %.2f / %.2f, want 595", adj.NewTotal, booking.TotalAmount)
	}
	if booking.Status != models.BookingCompleted {
		t.Fatalf("status = %s, want COMPLETED", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteTripNoExtrasWritesNoFareRows(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	// Drove less than booked: no negative charges, total unchanged.
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingInProgress, 500, 10.0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingCompleted), 500.0, 8.0, 0.0, 0.0, int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, adj, err := svc.CompleteTrip(context.Background(), 41, CompleteTripInput{ActualKm: floatPtr(8)}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adj.TotalAdjustments != 0 || adj.NewTotal != 500 {
		t.Fatalf("adjustments wrong: %+v", adj)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteTripDefaultsActualToEstimate(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingInProgress, 500, 10.0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingCompleted), 500.0, 10.0, 0.0, 0.0, int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if _, _, err := svc.CompleteTrip(context.Background(), 41, CompleteTripInput{}, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteTripFromPaidBooking(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()

	// A PAID booking that never flipped to IN_PROGRESS still completes.
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 500, 10.0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(string(models.BookingCompleted), 545.0, 13.0, 3.0, 45.0, int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO fare_adjustments").
		WithArgs(int64(41), models.FareAdjustExtraKm, 45.0, "Extra 3.0 km @ ₹15/km", int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	in := CompleteTripInput{ActualKm: floatPtr(13), RatePerKm: floatPtr(15)}
	booking, adj, err := svc.CompleteTrip(context.Background(), 41, in, 3)
	if err != nil {
		t.Fatalf("completing a PAID booking: %v", err)
	}
	if booking.Status != models.BookingCompleted || adj.NewTotal != 545 {
		t.Fatalf("completion wrong: status=%s total=%.2f", booking.Status, adj.NewTotal)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteTripRejectsIneligibleStates(t *testing.T) {
	for _, status := range []models.BookingStatus{
		models.BookingPendingPayment, models.BookingCompleted, models.BookingCancelled,
	} {
		svc, mock, done := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM bookings").
			WillReturnRows(bookingRow(mock, 41, status, 500, 10.0))

		_, _, err := svc.CompleteTrip(context.Background(), 41, CompleteTripInput{}, 3)
		if !domain.IsInvalidState(err) {
			t.Fatalf("%s: expected invalid state, got %v", status, err)
		}
		done()
	}
}

func userRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "phone", "role", "created_at"}).
		AddRow(7, "rider@example.com", "x", "Rider", "+919876543210", models.RoleCustomer, time.Now())
}

func TestAssignTaxiCreatesAndStartsTrip(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()
	dispatcher := &fakeDispatcher{}
	svc.Notifier = dispatcher

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 800, nil))
	mock.ExpectQuery("SELECT (.+) FROM taxi_assignments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO taxi_assignments").
		WithArgs(int64(41), "Ravi", "+919812345678", "KA01AB1234", "Swift Dzire").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(userRow())
	mock.ExpectExec("UPDATE bookings").
		WithArgs(models.TaxiAssignAssigned, string(models.BookingInProgress), int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	in := AssignTaxiInput{
		DriverName:   "Ravi",
		DriverNumber: "+919812345678",
		CabNumber:    "KA01AB1234",
		CabName:      "Swift Dzire",
	}
	assignment, err := svc.AssignTaxi(context.Background(), 41, in, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assignment.ID != 5 {
		t.Fatalf("assignment id = %d, want 5", assignment.ID)
	}
	// Customer must be told before the driver.
	if len(dispatcher.sent) != 2 || dispatcher.sent[0] != "customer:+919876543210" || dispatcher.sent[1] != "driver:+919812345678" {
		t.Fatalf("notification order wrong: %v", dispatcher.sent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignTaxiUpdatesExistingAssignment(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()
	svc.Notifier = &fakeDispatcher{}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 800, nil))
	mock.ExpectQuery("SELECT (.+) FROM taxi_assignments").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "driver_name", "driver_number",
			"cab_number", "cab_name", "created_at", "updated_at",
		}).AddRow(5, 41, "Old Driver", "+910000000000", "KA00XX0000", "Old Cab", now, now))
	mock.ExpectExec("UPDATE taxi_assignments").
		WithArgs("Ravi", "+919812345678", "KA01AB1234", "Swift Dzire", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(userRow())
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	in := AssignTaxiInput{
		DriverName:   "Ravi",
		DriverNumber: "+919812345678",
		CabNumber:    "KA01AB1234",
		CabName:      "Swift Dzire",
	}
	assignment, err := svc.AssignTaxi(context.Background(), 41, in, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assignment.ID != 5 {
		t.Fatalf("assignment id = %d, want existing row reused", assignment.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignTaxiNotificationFailureKeepsAssignment(t *testing.T) {
	svc, mock, done := newMock(t)
	defer done()
	svc.Notifier = &fakeDispatcher{failDriver: true}

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 41, models.BookingPaid, 800, nil))
	mock.ExpectQuery("SELECT (.+) FROM taxi_assignments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO taxi_assignments").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(userRow())
	// No UPDATE bookings: the status flip is gated on both sends succeeding.

	in := AssignTaxiInput{
		DriverName:   "Ravi",
		DriverNumber: "+919812345678",
		CabNumber:    "KA01AB1234",
		CabName:      "Swift Dzire",
	}
	assignment, err := svc.AssignTaxi(context.Background(), 41, in, 3)
	if !domain.IsPartialSuccess(err) {
		t.Fatalf("expected partial success error, got %v", err)
	}
	if assignment.ID != 5 {
		t.Fatalf("assignment should persist even when notification fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignTaxiValidatesInput(t *testing.T) {
	svc, _, done := newMock(t)
	defer done()

	_, err := svc.AssignTaxi(context.Background(), 41, AssignTaxiInput{DriverName: "Ravi"}, 3)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
