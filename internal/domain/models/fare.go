package models

import "time"

// Fare adjustment types recorded at trip completion.
const (
	FareAdjustExtraKm = "EXTRA_KM"
	FareAdjustToll    = "TOLL"
	FareAdjustWaiting = "WAITING"
)

// FareAdjustment is an itemized extra charge appended at trip completion.
type FareAdjustment struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	AdminID     int64     `json:"admin_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripAdjustments is the completion breakdown returned to the caller.
type TripAdjustments struct {
	ExtraKm          float64 `json:"extra_km"`
	ExtraKmCharge    float64 `json:"extra_km_charge"`
	TollCharges      float64 `json:"toll_charges"`
	WaitingCharges   float64 `json:"waiting_charges"`
	TotalAdjustments float64 `json:"total_adjustments"`
	NewTotal         float64 `json:"new_total"`
}
