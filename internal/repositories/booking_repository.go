package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

const bookingColumns = `id, user_id, pickup_location, drop_location, scheduled_at,
		distance_km, estimated_fare, total_amount, car_model,
		actual_km, extra_km, extra_charge, cancellation_reason,
		taxi_assign_status, status, created_at, updated_at`

type BookingRepository struct {
	DB db.DBTX
}

func (r BookingRepository) Create(ctx context.Context, b *models.Booking) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings
			(user_id, pickup_location, drop_location, scheduled_at, distance_km,
			 estimated_fare, total_amount, car_model, taxi_assign_status, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.PickupLocation, b.DropLocation, b.ScheduledAt, b.DistanceKm,
		b.EstimatedFare, b.TotalAmount, b.CarModel, models.TaxiAssignPending, string(b.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("booking insert id: %w", err)
	}
	b.ID = id
	return id, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = ?`, id)
	return scanBooking(row)
}

// UpdateStatus changes only the lifecycle status.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Cancel marks the booking cancelled and stores the reason.
func (r BookingRepository) Cancel(ctx context.Context, id int64, reason string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, cancellation_reason = ?
		WHERE id = ?`,
		string(models.BookingCancelled), reason, id)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}

// Complete persists the completion outcome: terminal status, adjusted total
// and the distance bookkeeping. distance_km keeps the original estimate.
func (r BookingRepository) Complete(ctx context.Context, id int64, newTotal, actualKm, extraKm, extraCharge float64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, total_amount = ?, actual_km = ?, extra_km = ?, extra_charge = ?
		WHERE id = ?`,
		string(models.BookingCompleted), newTotal, actualKm, extraKm, extraCharge, id)
	if err != nil {
		return fmt.Errorf("complete booking: %w", err)
	}
	return nil
}

// MarkAssigned flips the assignment flag and starts the trip. Called only
// after both assignment notifications succeeded.
func (r BookingRepository) MarkAssigned(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET taxi_assign_status = ?, status = ?
		WHERE id = ?`,
		models.TaxiAssignAssigned, string(models.BookingInProgress), id)
	if err != nil {
		return fmt.Errorf("mark booking assigned: %w", err)
	}
	return nil
}

// List returns bookings newest first, optionally filtered by status.
func (r BookingRepository) List(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByUser returns a customer's bookings newest first.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListPendingPayments returns bookings stuck in PENDING_PAYMENT that still
// have a gateway order awaiting its callback.
func (r BookingRepository) ListPendingPayments(ctx context.Context) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		WHERE b.status = ?
		  AND EXISTS (
			SELECT 1 FROM payments p
			WHERE p.booking_id = b.id AND p.status IN (?, ?)
		  )
		ORDER BY b.created_at DESC`,
		string(models.BookingPendingPayment),
		string(models.PaymentCreated), string(models.PaymentPending))
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// DeleteAll removes every booking row. Maintenance cleanup only.
func (r BookingRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings`)
	if err != nil {
		return 0, fmt.Errorf("delete bookings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b           models.Booking
		scheduledAt sql.NullTime
		distanceKm  sql.NullFloat64
		estimated   sql.NullFloat64
		carModel    sql.NullString
		actualKm    sql.NullFloat64
		extraKm     sql.NullFloat64
		extraCharge sql.NullFloat64
		cancelWhy   sql.NullString
		status      string
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.PickupLocation, &b.DropLocation, &scheduledAt,
		&distanceKm, &estimated, &b.TotalAmount, &carModel,
		&actualKm, &extraKm, &extraCharge, &cancelWhy,
		&b.TaxiAssignStatus, &status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	if scheduledAt.Valid {
		t := scheduledAt.Time
		b.ScheduledAt = &t
	}
	if distanceKm.Valid {
		b.DistanceKm = &distanceKm.Float64
	}
	if estimated.Valid {
		b.EstimatedFare = &estimated.Float64
	}
	if carModel.Valid {
		b.CarModel = &carModel.String
	}
	if actualKm.Valid {
		b.ActualKm = &actualKm.Float64
	}
	if extraKm.Valid {
		b.ExtraKm = &extraKm.Float64
	}
	if extraCharge.Valid {
		b.ExtraCharge = &extraCharge.Float64
	}
	if cancelWhy.Valid {
		b.CancellationReason = &cancelWhy.String
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
