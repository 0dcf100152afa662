package models

import "time"

// TaxiAssignment binds a driver/vehicle to exactly one booking. At most one
// live row exists per booking; writes go through lookup-then-branch upsert.
type TaxiAssignment struct {
	ID           int64     `json:"id"`
	BookingID    int64     `json:"booking_id"`
	DriverName   string    `json:"driver_name"`
	DriverNumber string    `json:"driver_number"`
	CabNumber    string    `json:"cab_number"`
	CabName      string    `json:"cab_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
