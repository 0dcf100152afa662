package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/domain/models"
	"urbancabz/internal/http/middleware"
	"urbancabz/internal/services"
)

// AdminHandler serves booking administration: listing, status transitions,
// trip completion, cancellation, taxi assignment, notes and audit trails.
type AdminHandler struct {
	Lifecycle *services.LifecycleService
	Query     *services.BookingQueryService
	Cleanup   *services.CleanupService
}

// ListBookings returns all bookings, optionally filtered by ?status=.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	status := models.BookingStatus(c.Query("status"))
	bookings, err := h.Query.List(c.Request.Context(), status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListPendingPayments returns bookings awaiting a gateway callback.
func (h *AdminHandler) ListPendingPayments(c *gin.Context) {
	bookings, err := h.Query.ListPendingPayments(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking returns one booking with payments, user and assignment.
func (h *AdminHandler) GetBooking(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	detail, err := h.Query.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": detail})
}

// UpdateStatus applies a lifecycle transition.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := h.Lifecycle.TransitionStatus(c.Request.Context(), id,
		models.BookingStatus(req.Status), middleware.GetUserID(c), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CompleteTrip settles the fare and closes the booking.
func (h *AdminHandler) CompleteTrip(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var in services.CompleteTripInput
	if !BindJSONOrError(c, &in) {
		return
	}

	booking, adjustments, err := h.Lifecycle.CompleteTrip(c.Request.Context(), id, in, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking":     booking,
		"adjustments": adjustments,
	})
}

// CancelBooking cancels a non-terminal booking with a mandatory reason.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := h.Lifecycle.CancelBooking(c.Request.Context(), id, req.Reason, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// AssignTaxi upserts the driver assignment and notifies both parties.
func (h *AdminHandler) AssignTaxi(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var in services.AssignTaxiInput
	if !BindJSONOrError(c, &in) {
		return
	}

	assignment, err := h.Lifecycle.AssignTaxi(c.Request.Context(), id, in, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// AddNote appends an admin annotation.
func (h *AdminHandler) AddNote(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}

	note, err := h.Lifecycle.AddNote(c.Request.Context(), id, middleware.GetUserID(c), req.Content)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// ListNotes returns a booking's notes newest first.
func (h *AdminHandler) ListNotes(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	notes, err := h.Lifecycle.ListNotes(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// ListAuditLogs returns a booking's audit trail newest first.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	logs, err := h.Lifecycle.ListAuditLogs(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}

// ListFareAdjustments returns a booking's settlement lines.
func (h *AdminHandler) ListFareAdjustments(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	adjustments, err := h.Lifecycle.ListFareAdjustments(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fare_adjustments": adjustments})
}

// PurgeBookings wipes all booking data. Staging resets only.
func (h *AdminHandler) PurgeBookings(c *gin.Context) {
	report, err := h.Cleanup.PurgeBookings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": report})
}
