package services

import (
	"context"
	"database/sql"

	"urbancabz/internal/db"
	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/logger"
	"urbancabz/internal/repositories"
)

// CleanupService purges all booking data. Maintenance endpoint for staging
// resets; fleet and user rows are untouched.
type CleanupService struct {
	DB *sql.DB
}

func NewCleanupService(database *sql.DB) *CleanupService {
	return &CleanupService{DB: database}
}

// CleanupReport counts what a purge removed, per table.
type CleanupReport struct {
	FareAdjustments int64 `json:"fare_adjustments"`
	BookingNotes    int64 `json:"booking_notes"`
	AuditLogs       int64 `json:"audit_logs"`
	TaxiAssignments int64 `json:"taxi_assignments"`
	Payments        int64 `json:"payments"`
	Bookings        int64 `json:"bookings"`
}

// PurgeBookings deletes every booking and its dependents in one transaction,
// children before parents so foreign keys hold throughout.
func (s *CleanupService) PurgeBookings(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error

		fares := repositories.FareAdjustmentRepository{DB: tx}
		if report.FareAdjustments, err = fares.DeleteAll(ctx); err != nil {
			return err
		}

		notes := repositories.NoteRepository{DB: tx}
		if report.BookingNotes, err = notes.DeleteAll(ctx); err != nil {
			return err
		}

		audits := repositories.AuditRepository{DB: tx}
		if report.AuditLogs, err = audits.DeleteByEntityType(ctx, models.AuditEntityBooking); err != nil {
			return err
		}

		assignments := repositories.AssignmentRepository{DB: tx}
		if report.TaxiAssignments, err = assignments.DeleteAll(ctx); err != nil {
			return err
		}

		payments := repositories.PaymentRepository{DB: tx}
		if report.Payments, err = payments.DeleteAll(ctx); err != nil {
			return err
		}

		bookings := repositories.BookingRepository{DB: tx}
		if report.Bookings, err = bookings.DeleteAll(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return CleanupReport{}, domain.InternalError{Msg: "cleanup failed", Err: err}
	}

	logger.WarnLogger.Warnf("booking data purged: %d bookings, %d payments, %d assignments",
		report.Bookings, report.Payments, report.TaxiAssignments)
	return report, nil
}
