package notify

import (
	"context"
	"time"

	"urbancabz/internal/domain/models"
)

// Dispatcher sends outbound customer/driver messages. Lifecycle operations
// treat sends as best-effort except taxi assignment, where both sends gate
// the status flip.
type Dispatcher interface {
	SendBookingConfirmation(ctx context.Context, phone string, booking *models.BookingDetail) error
	SendTaxiAssignment(ctx context.Context, phone string, booking *models.Booking, assignment *models.TaxiAssignment) error
	SendDriverAssignment(ctx context.Context, phone string, booking *models.Booking, assignment *models.TaxiAssignment) error
	SendPasswordResetOTP(ctx context.Context, phone, otp string, ttl time.Duration) error
}
