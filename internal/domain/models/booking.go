package models

import "time"

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingPaid           BookingStatus = "PAID"
	BookingInProgress     BookingStatus = "IN_PROGRESS"
	BookingCompleted      BookingStatus = "COMPLETED"
	BookingCancelled      BookingStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are permitted.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Taxi assignment status on the booking row.
const (
	TaxiAssignPending  = "PENDING"
	TaxiAssignAssigned = "ASSIGNED"
)

// Booking is a trip request/contract between customer and operator.
type Booking struct {
	ID                 int64         `json:"id"`
	UserID             int64         `json:"user_id"`
	PickupLocation     string        `json:"pickup_location"`
	DropLocation       string        `json:"drop_location"`
	ScheduledAt        *time.Time    `json:"scheduled_at"`
	DistanceKm         *float64      `json:"distance_km"`
	EstimatedFare      *float64      `json:"estimated_fare"`
	TotalAmount        float64       `json:"total_amount"`
	CarModel           *string       `json:"car_model"`
	ActualKm           *float64      `json:"actual_km"`
	ExtraKm            *float64      `json:"extra_km"`
	ExtraCharge        *float64      `json:"extra_charge"`
	CancellationReason *string       `json:"cancellation_reason"`
	TaxiAssignStatus   string        `json:"taxi_assign_status"`
	Status             BookingStatus `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// BookingDetail is the caller-facing booking snapshot with its payments and,
// where loaded, the owning user and taxi assignments.
type BookingDetail struct {
	Booking
	Payments    []Payment        `json:"payments"`
	User        *User            `json:"user,omitempty"`
	AssignTaxis []TaxiAssignment `json:"assign_taxis,omitempty"`
}

// BookingNote is a free-text admin annotation. Append-only, no status effect.
type BookingNote struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	AdminID   int64     `json:"admin_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
