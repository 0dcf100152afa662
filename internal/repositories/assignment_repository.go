package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

const assignmentColumns = `id, booking_id, driver_name, driver_number,
		cab_number, cab_name, created_at, updated_at`

type AssignmentRepository struct {
	DB db.DBTX
}

// FindByBookingID returns the live assignment for a booking, if any.
func (r AssignmentRepository) FindByBookingID(ctx context.Context, bookingID int64) (models.TaxiAssignment, bool, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM taxi_assignments
		WHERE booking_id = ?
		LIMIT 1`, bookingID)

	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TaxiAssignment{}, false, nil
		}
		return models.TaxiAssignment{}, false, fmt.Errorf("find assignment: %w", err)
	}
	return a, true, nil
}

func (r AssignmentRepository) Create(ctx context.Context, a *models.TaxiAssignment) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO taxi_assignments (booking_id, driver_name, driver_number, cab_number, cab_name)
		VALUES (?, ?, ?, ?, ?)`,
		a.BookingID, a.DriverName, a.DriverNumber, a.CabNumber, a.CabName,
	)
	if err != nil {
		return 0, fmt.Errorf("insert assignment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("assignment insert id: %w", err)
	}
	a.ID = id
	return id, nil
}

func (r AssignmentRepository) Update(ctx context.Context, a *models.TaxiAssignment) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE taxi_assignments
		SET driver_name = ?, driver_number = ?, cab_number = ?, cab_name = ?
		WHERE id = ?`,
		a.DriverName, a.DriverNumber, a.CabNumber, a.CabName, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// ListByBookingIDs loads assignments for a set of bookings, keyed by booking.
func (r AssignmentRepository) ListByBookingIDs(ctx context.Context, bookingIDs []int64) (map[int64][]models.TaxiAssignment, error) {
	out := make(map[int64][]models.TaxiAssignment)
	if len(bookingIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(bookingIDs)), ",")
	args := make([]any, len(bookingIDs))
	for i, id := range bookingIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM taxi_assignments
		WHERE booking_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out[a.BookingID] = append(out[a.BookingID], a)
	}
	return out, rows.Err()
}

// DeleteAll removes every assignment row. Maintenance cleanup only.
func (r AssignmentRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM taxi_assignments`)
	if err != nil {
		return 0, fmt.Errorf("delete assignments: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanAssignment(row rowScanner) (models.TaxiAssignment, error) {
	var a models.TaxiAssignment
	err := row.Scan(
		&a.ID, &a.BookingID, &a.DriverName, &a.DriverNumber,
		&a.CabNumber, &a.CabName, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}
