package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"urbancabz/internal/db"
	"urbancabz/internal/domain/models"
)

const paymentColumns = `id, booking_id, amount, currency, status, provider,
		provider_txn_id, remaining_amount, created_at`

type PaymentRepository struct {
	DB db.DBTX
}

func (r PaymentRepository) Create(ctx context.Context, p *models.Payment) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO payments
			(booking_id, amount, currency, status, provider, provider_txn_id, remaining_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.Amount, p.Currency, string(p.Status), p.Provider,
		p.ProviderTxnID, p.RemainingAmount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment insert id: %w", err)
	}
	p.ID = id
	return id, nil
}

// FindPendingByOrderID looks up the unique payment still awaiting its
// gateway callback. The order id lives in provider_txn_id until the payment
// succeeds, so an already-reconciled callback naturally misses here.
func (r PaymentRepository) FindPendingByOrderID(ctx context.Context, orderID string) (models.Payment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE provider_txn_id = ? AND status = ?
		LIMIT 1`,
		orderID, string(models.PaymentPending))
	return scanPayment(row)
}

// MarkSuccess flips the payment to SUCCESS and overwrites provider_txn_id
// with the gateway payment id. The PENDING guard makes the flip a compare
// and swap, so a racing duplicate callback hits zero rows.
func (r PaymentRepository) MarkSuccess(ctx context.Context, id int64, gatewayPaymentID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE payments
		SET status = ?, provider_txn_id = ?
		WHERE id = ? AND status = ?`,
		string(models.PaymentSuccess), gatewayPaymentID, id, string(models.PaymentPending))
	if err != nil {
		return fmt.Errorf("mark payment success: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByBooking returns a booking's payments oldest first.
func (r PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id = ?
		ORDER BY created_at ASC, id ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByBookingIDs loads payments for a set of bookings, keyed by booking.
func (r PaymentRepository) ListByBookingIDs(ctx context.Context, bookingIDs []int64) (map[int64][]models.Payment, error) {
	out := make(map[int64][]models.Payment)
	if len(bookingIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(bookingIDs)), ",")
	args := make([]any, len(bookingIDs))
	for i, id := range bookingIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id IN (`+placeholders+`)
		ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments by bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out[p.BookingID] = append(out[p.BookingID], p)
	}
	return out, rows.Err()
}

// DeleteAll removes every payment row. Maintenance cleanup only.
func (r PaymentRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM payments`)
	if err != nil {
		return 0, fmt.Errorf("delete payments: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanPayment(row rowScanner) (models.Payment, error) {
	var (
		p         models.Payment
		status    string
		txnID     sql.NullString
		remaining sql.NullFloat64
	)
	err := row.Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.Currency, &status, &p.Provider,
		&txnID, &remaining, &p.CreatedAt,
	)
	if err != nil {
		return models.Payment{}, err
	}
	p.Status = models.PaymentStatus(status)
	if txnID.Valid {
		p.ProviderTxnID = &txnID.String
	}
	if remaining.Valid {
		p.RemainingAmount = &remaining.Float64
	}
	return p, nil
}
