package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/http/middleware"
	"urbancabz/internal/services"
)

// PaymentHandler serves the gateway checkout flow.
type PaymentHandler struct {
	Payments *services.PaymentService
	KeyID    string
}

// CreateOrder opens a gateway order and its PENDING_PAYMENT booking.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req struct {
		bookingRequest
		PaymentAmount *float64 `json:"payment_amount"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.toInput(middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	order, err := h.Payments.CreateOrder(c.Request.Context(), in, req.PaymentAmount)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order":  order,
		"key_id": h.KeyID,
	})
}

// Verify settles a completed checkout after signature verification.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}

	detail, err := h.Payments.VerifyAndReconcile(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "payment verified",
		"booking": detail,
	})
}
