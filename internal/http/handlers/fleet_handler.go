package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/domain/models"
	"urbancabz/internal/http/middleware"
	"urbancabz/internal/services"
)

// FleetHandler serves the vehicle catalog.
type FleetHandler struct {
	Fleet *services.FleetService
}

// List returns active vehicles for customers; admins get everything.
func (h *FleetHandler) List(c *gin.Context) {
	activeOnly := middleware.GetUserRole(c) != models.RoleAdmin
	vehicles, err := h.Fleet.List(c.Request.Context(), activeOnly)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *FleetHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	vehicle, err := h.Fleet.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func (h *FleetHandler) Create(c *gin.Context) {
	var in models.FleetVehicle
	if !BindJSONOrError(c, &in) {
		return
	}
	vehicle, err := h.Fleet.Create(c.Request.Context(), in, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func (h *FleetHandler) Update(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	var patch models.FleetVehicleUpdate
	if !BindJSONOrError(c, &patch) {
		return
	}
	vehicle, err := h.Fleet.Update(c.Request.Context(), id, patch, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func (h *FleetHandler) Deactivate(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}
	if err := h.Fleet.Deactivate(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deactivated"})
}
