package repositories

import (
	"context"
	"fmt"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

// FareAdjustmentRepository appends itemized extra charges. Append-only.
type FareAdjustmentRepository struct {
	DB db.DBTX
}

func (r FareAdjustmentRepository) CreateMany(ctx context.Context, rows []models.FareAdjustment) error {
	for _, adj := range rows {
		if _, err := r.DB.ExecContext(ctx, `
			INSERT INTO fare_adjustments (booking_id, type, amount, description, admin_id)
			VALUES (?, ?, ?, ?, ?)`,
			adj.BookingID, adj.Type, adj.Amount, adj.Description, adj.AdminID,
		); err != nil {
			return fmt.Errorf("insert fare adjustment %s: %w", adj.Type, err)
		}
	}
	return nil
}

// ListByBooking returns a booking's adjustments oldest first.
func (r FareAdjustmentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.FareAdjustment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, booking_id, type, amount, description, admin_id, created_at
		FROM fare_adjustments
		WHERE booking_id = ?
		ORDER BY created_at ASC, id ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list fare adjustments: %w", err)
	}
	defer rows.Close()

	var out []models.FareAdjustment
	for rows.Next() {
		var a models.FareAdjustment
		if err := rows.Scan(&a.ID, &a.BookingID, &a.Type, &a.Amount, &a.Description, &a.AdminID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fare adjustment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAll removes every adjustment row. Maintenance cleanup only.
func (r FareAdjustmentRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM fare_adjustments`)
	if err != nil {
		return 0, fmt.Errorf("delete fare adjustments: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
