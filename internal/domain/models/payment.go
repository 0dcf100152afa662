package models

import "time"

// PaymentStatus is the state of one funding attempt against a booking.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentCreated PaymentStatus = "CREATED"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment is one funding attempt against a booking. ProviderTxnID holds the
// gateway order id while the payment is pending and is overwritten with the
// gateway payment id on success. RemainingAmount is the money still owed on
// the booking after this payment (nil means full payment).
type Payment struct {
	ID              int64         `json:"id"`
	BookingID       int64         `json:"booking_id"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	Provider        string        `json:"provider"`
	ProviderTxnID   *string       `json:"provider_txn_id"`
	RemainingAmount *float64      `json:"remaining_amount"`
	CreatedAt       time.Time     `json:"created_at"`
}
