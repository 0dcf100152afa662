package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/http/middleware"
	"urbancabz/internal/services"
	"urbancabz/internal/utils"
)

// BookingHandler serves the customer booking endpoints.
type BookingHandler struct {
	Lifecycle *services.LifecycleService
	Query     *services.BookingQueryService
	Tickets   *services.TicketService
}

type bookingRequest struct {
	PickupLocation string                 `json:"pickup_location"`
	DropLocation   string                 `json:"drop_location"`
	ScheduledAt    string                 `json:"scheduled_at"`
	DistanceKm     *float64               `json:"distance_km"`
	EstimatedFare  *float64               `json:"estimated_fare"`
	TotalAmount    *float64               `json:"total_amount"`
	CarModel       *string                `json:"car_model"`
	Payment        *services.PaymentInput `json:"payment"`
}

func (r bookingRequest) toInput(userID int64) (services.CreateBookingInput, error) {
	in := services.CreateBookingInput{
		UserID:        userID,
		Pickup:        r.PickupLocation,
		Drop:          r.DropLocation,
		DistanceKm:    r.DistanceKm,
		EstimatedFare: r.EstimatedFare,
		TotalAmount:   r.TotalAmount,
		CarModel:      r.CarModel,
	}
	if r.ScheduledAt != "" {
		t, err := utils.ParseScheduledAt(r.ScheduledAt)
		if err != nil {
			return in, domain.ValidationError{Field: "scheduled_at", Msg: "invalid datetime format"}
		}
		in.ScheduledAt = &t
	}
	return in, nil
}

// Create records an already-paid booking (cash or manual capture).
func (h *BookingHandler) Create(c *gin.Context) {
	var req bookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.toInput(middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	detail, err := h.Lifecycle.CreatePaidBooking(c.Request.Context(), in, req.Payment)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": detail})
}

// MyBookings lists the caller's bookings.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.Query.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Get returns one booking. Customers only see their own.
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	detail, err := h.Query.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !h.canView(c, detail.UserID) {
		RespondDomainError(c, domain.NotFoundError{Resource: "booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": detail})
}

// Ticket streams the ride ticket PDF.
func (h *BookingHandler) Ticket(c *gin.Context) {
	h.servePDF(c, h.Tickets.GenerateTicket)
}

// Invoice streams the fare invoice PDF.
func (h *BookingHandler) Invoice(c *gin.Context) {
	h.servePDF(c, h.Tickets.GenerateInvoice)
}

func (h *BookingHandler) servePDF(c *gin.Context, generate func(ctx context.Context, id int64) ([]byte, string, error)) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	detail, err := h.Query.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !h.canView(c, detail.UserID) {
		RespondDomainError(c, domain.NotFoundError{Resource: "booking"})
		return
	}

	pdf, filename, err := generate(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *BookingHandler) canView(c *gin.Context, ownerID int64) bool {
	if middleware.GetUserRole(c) == models.RoleAdmin {
		return true
	}
	return middleware.GetUserID(c) == ownerID
}
