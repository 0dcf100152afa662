package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/gateway"
)

type fakeGateway struct {
	orderID     string
	validSig    bool
	lastPaise   float64
	lastReceipt string
}

func (f *fakeGateway) CreateOrder(amount float64, currency, receipt string) (*gateway.Order, error) {
	f.lastPaise = amount
	f.lastReceipt = receipt
	return &gateway.Order{ID: f.orderID, Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return f.validSig
}

func TestVerifyRejectsBadSignatureWithoutTouchingStore(t *testing.T) {
	lifecycle, mock, done := newMock(t)
	defer done()
	svc := NewPaymentService(&fakeGateway{validSig: false}, lifecycle)

	_, err := svc.VerifyAndReconcile(context.Background(), "order_abc", "pay_123", "bad")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store was touched: %v", err)
	}
}

func TestVerifyRequiresAllFields(t *testing.T) {
	lifecycle, _, done := newMock(t)
	defer done()
	svc := NewPaymentService(&fakeGateway{validSig: true}, lifecycle)

	if _, err := svc.VerifyAndReconcile(context.Background(), "", "pay_123", "sig"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderPersistsPendingBooking(t *testing.T) {
	lifecycle, mock, done := newMock(t)
	defer done()
	gw := &fakeGateway{orderID: "order_new", validSig: true}
	svc := NewPaymentService(gw, lifecycle)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(50, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(50), 1200.0, "INR", string(models.PaymentPending), "razorpay", "order_new", 0.0).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WillReturnRows(bookingRow(mock, 50, models.BookingPendingPayment, 1200, nil))
	mock.ExpectQuery("SELECT (.+) FROM payments").
		WillReturnRows(sqlmock.NewRows(paymentRowColumns()).
			AddRow(11, 50, 1200.0, "INR", string(models.PaymentPending), "razorpay", "order_new", 0.0, time.Now()))

	in := CreateBookingInput{
		UserID:      7,
		Pickup:      "Airport",
		Drop:        "City Center",
		TotalAmount: floatPtr(1200),
	}
	order, err := svc.CreateOrder(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID != "order_new" {
		t.Fatalf("order id = %q", order.OrderID)
	}
	if order.Booking == nil || order.Booking.Status != models.BookingPendingPayment {
		t.Fatalf("booking not pending: %+v", order.Booking)
	}
	if gw.lastReceipt != "" {
		t.Fatalf("receipt should be left to the gateway default, got %q", gw.lastReceipt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrderRejectsNonPositivePartial(t *testing.T) {
	lifecycle, _, done := newMock(t)
	defer done()
	svc := NewPaymentService(&fakeGateway{orderID: "x"}, lifecycle)

	in := CreateBookingInput{
		UserID:      7,
		Pickup:      "A",
		Drop:        "B",
		TotalAmount: floatPtr(1000),
	}
	if _, err := svc.CreateOrder(context.Background(), in, floatPtr(0)); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
