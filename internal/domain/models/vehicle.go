package models

import "time"

// FleetVehicle is a catalog entry for a bookable vehicle class. Deletion is
// soft: rows are deactivated, never removed.
type FleetVehicle struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Seats          int       `json:"seats"`
	BasePricePerKm float64   `json:"base_price_per_km"`
	Category       string    `json:"category"`
	Description    *string   `json:"description"`
	ImageURL       *string   `json:"image_url"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FleetVehicleUpdate supports PATCH-style updates via field presence.
type FleetVehicleUpdate struct {
	Name           *string  `json:"name"`
	Seats          *int     `json:"seats"`
	BasePricePerKm *float64 `json:"base_price_per_km"`
	Category       *string  `json:"category"`
	Description    *string  `json:"description"`
	ImageURL       *string  `json:"image_url"`
	IsActive       *bool    `json:"is_active"`
}
