package repositories

import (
	"context"
	"fmt"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

// NoteRepository stores free-text admin annotations on bookings.
type NoteRepository struct {
	DB db.DBTX
}

func (r NoteRepository) Create(ctx context.Context, note *models.BookingNote) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO booking_notes (booking_id, admin_id, content)
		VALUES (?, ?, ?)`,
		note.BookingID, note.AdminID, note.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("note insert id: %w", err)
	}
	note.ID = id
	return id, nil
}

// ListByBooking returns a booking's notes newest first.
func (r NoteRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.BookingNote, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, booking_id, admin_id, content, created_at
		FROM booking_notes
		WHERE booking_id = ?
		ORDER BY created_at DESC, id DESC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list booking notes: %w", err)
	}
	defer rows.Close()

	var out []models.BookingNote
	for rows.Next() {
		var n models.BookingNote
		if err := rows.Scan(&n.ID, &n.BookingID, &n.AdminID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteAll removes every note row. Maintenance cleanup only.
func (r NoteRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM booking_notes`)
	if err != nil {
		return 0, fmt.Errorf("delete booking notes: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
