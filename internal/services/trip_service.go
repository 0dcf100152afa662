package services

import (
	"context"
	"database/sql"
	"fmt"

	"urbancabz/internal/db"
	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/repositories"
)

// CompleteTripInput carries the end-of-trip figures reported by the driver.
// Zero-valued fields fall back: actual km to the booked estimate, the rate to
// the configured default.
type CompleteTripInput struct {
	ActualKm       *float64 `json:"actual_km"`
	RatePerKm      *float64 `json:"rate_per_km"`
	TollCharges    float64  `json:"toll_charges"`
	WaitingCharges float64  `json:"waiting_charges"`
	Reason         string   `json:"reason"`
}

type completionSnapshot struct {
	Status      models.BookingStatus `json:"status"`
	TotalAmount float64              `json:"total_amount"`
}

type completionResult struct {
	Status      models.BookingStatus   `json:"status"`
	TotalAmount float64                `json:"total_amount"`
	Adjustments models.TripAdjustments `json:"adjustments"`
}

// CompleteTrip settles the fare against what was actually driven and closes
// the booking. Extra distance beyond the booked estimate bills per km; tolls
// and waiting add flat. The booked distance_km stays the estimate; actuals
// land in their own columns. A PAID booking may complete directly, covering
// trips that were never marked IN_PROGRESS.
func (s *LifecycleService) CompleteTrip(ctx context.Context, bookingID int64, in CompleteTripInput, adminID int64) (models.Booking, models.TripAdjustments, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, models.TripAdjustments{}, err
	}
	if booking.Status != models.BookingInProgress && booking.Status != models.BookingPaid {
		return models.Booking{}, models.TripAdjustments{}, domain.InvalidStateError{
			State: string(booking.Status),
			Msg:   fmt.Sprintf("cannot complete a %s booking", booking.Status),
		}
	}

	estimatedKm := 0.0
	if booking.DistanceKm != nil {
		estimatedKm = *booking.DistanceKm
	}
	actualKm := estimatedKm
	if in.ActualKm != nil {
		actualKm = *in.ActualKm
	}
	rate := s.RatePerKm
	if in.RatePerKm != nil && *in.RatePerKm > 0 {
		rate = *in.RatePerKm
	}

	extraKm := actualKm - estimatedKm
	if extraKm < 0 {
		extraKm = 0
	}

	adj := models.TripAdjustments{
		ExtraKm:        extraKm,
		ExtraKmCharge:  extraKm * rate,
		TollCharges:    in.TollCharges,
		WaitingCharges: in.WaitingCharges,
	}
	adj.TotalAdjustments = adj.ExtraKmCharge + adj.TollCharges + adj.WaitingCharges
	adj.NewTotal = booking.TotalAmount + adj.TotalAdjustments

	var fareRows []models.FareAdjustment
	if adj.ExtraKmCharge > 0 {
		desc := fmt.Sprintf("Extra %.1f km @ ₹%s/km", extraKm, formatRate(rate))
		fareRows = append(fareRows, models.FareAdjustment{
			BookingID: bookingID, Type: models.FareAdjustExtraKm,
			Amount: adj.ExtraKmCharge, Description: desc, AdminID: adminID,
		})
	}
	if adj.TollCharges > 0 {
		fareRows = append(fareRows, models.FareAdjustment{
			BookingID: bookingID, Type: models.FareAdjustToll,
			Amount: adj.TollCharges, Description: "Toll charges", AdminID: adminID,
		})
	}
	if adj.WaitingCharges > 0 {
		fareRows = append(fareRows, models.FareAdjustment{
			BookingID: bookingID, Type: models.FareAdjustWaiting,
			Amount: adj.WaitingCharges, Description: "Waiting charges", AdminID: adminID,
		})
	}

	reason := in.Reason
	if reason == "" {
		reason = "Trip completed with fare adjustment"
	}

	err = db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{DB: tx}
		if err := bookings.Complete(ctx, bookingID, adj.NewTotal, actualKm, extraKm, adj.TotalAdjustments); err != nil {
			return domain.InternalError{Msg: "failed to complete booking", Err: err}
		}

		if len(fareRows) > 0 {
			fares := repositories.FareAdjustmentRepository{DB: tx}
			if err := fares.CreateMany(ctx, fareRows); err != nil {
				return domain.InternalError{Msg: "failed to record fare adjustments", Err: err}
			}
		}

		entry := auditEntry(bookingID, models.AuditActionStatusChange, adminID, reason,
			completionSnapshot{Status: booking.Status, TotalAmount: booking.TotalAmount},
			completionResult{Status: models.BookingCompleted, TotalAmount: adj.NewTotal, Adjustments: adj},
		)
		audits := repositories.AuditRepository{DB: tx}
		if _, err := audits.Append(ctx, &entry); err != nil {
			return domain.InternalError{Msg: "failed to write audit log", Err: err}
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, models.TripAdjustments{}, err
	}

	booking.Status = models.BookingCompleted
	booking.TotalAmount = adj.NewTotal
	booking.ActualKm = &actualKm
	booking.ExtraKm = &extraKm
	booking.ExtraCharge = &adj.TotalAdjustments
	return booking, adj, nil
}

// AssignTaxiInput names the driver and cab put on a booking.
type AssignTaxiInput struct {
	DriverName   string `json:"driver_name"`
	DriverNumber string `json:"driver_number"`
	CabNumber    string `json:"cab_number"`
	CabName      string `json:"cab_name"`
}

func (in AssignTaxiInput) validate() error {
	if in.DriverName == "" || in.DriverNumber == "" || in.CabNumber == "" {
		return domain.ValidationError{
			Field: "driver_name/driver_number/cab_number",
			Msg:   "are required",
		}
	}
	return nil
}

// AssignTaxi upserts a booking's single driver assignment and tells both
// parties. The booking only reaches IN_PROGRESS once the customer and driver
// notifications both go through; on a send failure the saved assignment is
// kept and the caller gets a partial-success error so the dispatch can be
// retried.
func (s *LifecycleService) AssignTaxi(ctx context.Context, bookingID int64, in AssignTaxiInput, adminID int64) (models.TaxiAssignment, error) {
	if err := in.validate(); err != nil {
		return models.TaxiAssignment{}, err
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return models.TaxiAssignment{}, err
	}

	assignments := repositories.AssignmentRepository{DB: s.DB}
	assignment, found, err := assignments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return models.TaxiAssignment{}, domain.InternalError{Msg: "failed to look up assignment", Err: err}
	}

	assignment.BookingID = bookingID
	assignment.DriverName = in.DriverName
	assignment.DriverNumber = in.DriverNumber
	assignment.CabNumber = in.CabNumber
	assignment.CabName = in.CabName

	if found {
		if err := assignments.Update(ctx, &assignment); err != nil {
			return models.TaxiAssignment{}, domain.InternalError{Msg: "failed to update assignment", Err: err}
		}
	} else {
		if _, err := assignments.Create(ctx, &assignment); err != nil {
			return models.TaxiAssignment{}, domain.InternalError{Msg: "failed to create assignment", Err: err}
		}
	}

	if err := s.notifyAssignment(ctx, &booking, &assignment); err != nil {
		return assignment, domain.PartialSuccessError{
			Msg: "taxi assigned but notification failed",
			Err: err,
		}
	}

	if err := (repositories.BookingRepository{DB: s.DB}).MarkAssigned(ctx, bookingID); err != nil {
		return assignment, domain.InternalError{Msg: "failed to mark booking assigned", Err: err}
	}
	return assignment, nil
}

// notifyAssignment sends the customer message, then the driver message.
// Order matters: the customer hears first.
func (s *LifecycleService) notifyAssignment(ctx context.Context, booking *models.Booking, assignment *models.TaxiAssignment) error {
	if s.Notifier == nil {
		return nil
	}

	users := repositories.UserRepository{DB: s.DB}
	user, err := users.GetByID(ctx, booking.UserID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}

	if err := s.Notifier.SendTaxiAssignment(ctx, user.Phone, booking, assignment); err != nil {
		return fmt.Errorf("customer notification: %w", err)
	}
	if err := s.Notifier.SendDriverAssignment(ctx, assignment.DriverNumber, booking, assignment); err != nil {
		return fmt.Errorf("driver notification: %w", err)
	}
	return nil
}

// ListAuditLogs returns a booking's audit trail newest first.
func (s *LifecycleService) ListAuditLogs(ctx context.Context, bookingID int64) ([]models.AuditLog, error) {
	audits := repositories.AuditRepository{DB: s.DB}
	out, err := audits.ListByEntity(ctx, models.AuditEntityBooking, bookingID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch audit logs", Err: err}
	}
	return out, nil
}

// ListFareAdjustments returns a booking's settlement lines.
func (s *LifecycleService) ListFareAdjustments(ctx context.Context, bookingID int64) ([]models.FareAdjustment, error) {
	fares := repositories.FareAdjustmentRepository{DB: s.DB}
	out, err := fares.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch fare adjustments", Err: err}
	}
	return out, nil
}
