package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"

	"urbancabz/internal/domain"
)

// Order is the gateway charge intent created before payment completion.
type Order struct {
	ID       string
	Amount   float64
	Currency string
	Receipt  string
}

// Client is the payment gateway contract consumed by the payment flow.
type Client interface {
	CreateOrder(amount float64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// RazorpayClient implements Client using the Razorpay SDK for order creation
// and a local HMAC check for callback signatures.
type RazorpayClient struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// KeyID returns the public key id the frontend needs to open checkout.
func (r *RazorpayClient) KeyID() string { return r.keyID }

// CreateOrder creates a gateway order. Amounts are rupees here and paise on
// the wire.
func (r *RazorpayClient) CreateOrder(amount float64, currency, receipt string) (*Order, error) {
	if currency == "" {
		currency = "INR"
	}
	if receipt == "" {
		receipt = "rcpt_" + uuid.NewString()
	}

	data := map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, domain.UpstreamError{Provider: "razorpay", Err: err}
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, domain.UpstreamError{Provider: "razorpay", Err: fmt.Errorf("order response missing id")}
	}
	return &Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

// VerifySignature checks a payment callback's authenticity: HMAC-SHA256 over
// "orderId|paymentId" with the key secret, hex-encoded, constant-time
// compared. The digest must match the gateway byte for byte.
func (r *RazorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, r.keySecret)
}

// VerifySignature is the raw check, split out for reuse and testing.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
