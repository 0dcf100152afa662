package services

import (
	"context"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/gateway"
	"urbancabz/internal/logger"
)

// PaymentService fronts the gateway: it opens orders and settles verified
// callbacks through the lifecycle engine.
type PaymentService struct {
	Gateway   gateway.Client
	Lifecycle *LifecycleService
}

func NewPaymentService(gw gateway.Client, lifecycle *LifecycleService) *PaymentService {
	return &PaymentService{Gateway: gw, Lifecycle: lifecycle}
}

// CheckoutOrder is what the frontend needs to open the gateway widget.
type CheckoutOrder struct {
	OrderID  string                `json:"order_id"`
	Amount   float64               `json:"amount"`
	Currency string                `json:"currency"`
	Booking  *models.BookingDetail `json:"booking"`
}

// CreateOrder opens a gateway order for a new booking and persists the
// booking PENDING_PAYMENT with the order id attached to its pending payment.
// paymentAmount below the booking total records an upfront partial payment.
func (s *PaymentService) CreateOrder(ctx context.Context, in CreateBookingInput, paymentAmount *float64) (*CheckoutOrder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if *in.TotalAmount <= 0 {
		return nil, domain.ValidationError{Field: "total_amount", Msg: "must be positive"}
	}

	amount := *in.TotalAmount
	if paymentAmount != nil {
		if *paymentAmount <= 0 {
			return nil, domain.ValidationError{Field: "payment_amount", Msg: "must be positive"}
		}
		amount = *paymentAmount
	}

	// Empty receipt lets the gateway client generate its rcpt_<uuid> form.
	order, err := s.Gateway.CreateOrder(amount, "INR", "")
	if err != nil {
		return nil, err
	}

	detail, err := s.Lifecycle.CreatePendingBooking(ctx, in, order.ID, paymentAmount)
	if err != nil {
		// The gateway order is left dangling; it expires server-side unpaid.
		logger.WarnLogger.Warnf("order %s created but booking persist failed: %v", order.ID, err)
		return nil, err
	}

	logger.InfoLogger.Infof("order %s opened for booking %d (amount %.2f)", order.ID, detail.ID, amount)
	return &CheckoutOrder{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: order.Currency,
		Booking:  detail,
	}, nil
}

// VerifyAndReconcile checks the callback signature and, if genuine, settles
// the payment. A bad signature never touches the store.
func (s *PaymentService) VerifyAndReconcile(ctx context.Context, orderID, paymentID, signature string) (*models.BookingDetail, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, domain.ValidationError{
			Field: "razorpay_order_id/razorpay_payment_id/razorpay_signature",
			Msg:   "are required",
		}
	}

	if !s.Gateway.VerifySignature(orderID, paymentID, signature) {
		logger.WarnLogger.Warnf("order %s: signature verification failed", orderID)
		return nil, domain.ValidationError{Field: "razorpay_signature", Msg: "signature verification failed"}
	}

	detail, err := s.Lifecycle.ReconcilePaymentSuccess(ctx, orderID, paymentID)
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("order %s reconciled: booking %d now %s", orderID, detail.ID, detail.Status)
	return detail, nil
}
