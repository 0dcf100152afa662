package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"urbancabz/internal/db"
	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/logger"
	"urbancabz/internal/notify"
	"urbancabz/internal/repositories"
)

// DefaultRatePerKm applies when a completion request carries no explicit
// per-km rate.
const DefaultRatePerKm = 12.0

// validTransitions keys the admin status state machine by current status.
// Transitions absent from this table are rejected; COMPLETED and CANCELLED
// are terminal.
var validTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPendingPayment: {models.BookingPaid, models.BookingCancelled},
	models.BookingPaid:           {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress:     {models.BookingCompleted, models.BookingCancelled},
}

// LifecycleService owns every booking/payment state transition. It holds no
// state between calls; consistency relies on the store's row-level
// transactions.
type LifecycleService struct {
	DB        *sql.DB
	Notifier  notify.Dispatcher
	RatePerKm float64
}

func NewLifecycleService(database *sql.DB, notifier notify.Dispatcher, ratePerKm float64) *LifecycleService {
	if ratePerKm <= 0 {
		ratePerKm = DefaultRatePerKm
	}
	return &LifecycleService{DB: database, Notifier: notifier, RatePerKm: ratePerKm}
}

// PaymentInput is an optional payment payload accompanying a paid booking.
type PaymentInput struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Provider      string  `json:"provider"`
	ProviderTxnID string  `json:"provider_txn_id"`
}

// CreateBookingInput carries the fields shared by both creation paths.
type CreateBookingInput struct {
	UserID        int64
	Pickup        string
	Drop          string
	ScheduledAt   *time.Time
	DistanceKm    *float64
	EstimatedFare *float64
	TotalAmount   *float64
	CarModel      *string
}

func (in CreateBookingInput) validate() error {
	if in.UserID <= 0 {
		return domain.ValidationError{Field: "user_id", Msg: "is required"}
	}
	if in.Pickup == "" || in.Drop == "" {
		return domain.ValidationError{Field: "pickup_location/drop_location", Msg: "are required"}
	}
	if in.TotalAmount == nil {
		return domain.ValidationError{Field: "total_amount", Msg: "is required"}
	}
	return nil
}

// CreatePaidBooking is the cash/manual path: the booking is born PAID, with
// an optional payment row defaulting to SUCCESS. Booking and payment insert
// as one transaction.
func (s *LifecycleService) CreatePaidBooking(ctx context.Context, in CreateBookingInput, payment *PaymentInput) (*models.BookingDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if *in.TotalAmount <= 0 {
		return nil, domain.ValidationError{Field: "total_amount", Msg: "must be positive"}
	}

	booking := models.Booking{
		UserID:         in.UserID,
		PickupLocation: in.Pickup,
		DropLocation:   in.Drop,
		ScheduledAt:    in.ScheduledAt,
		DistanceKm:     in.DistanceKm,
		EstimatedFare:  in.EstimatedFare,
		TotalAmount:    *in.TotalAmount,
		CarModel:       in.CarModel,
		Status:         models.BookingPaid,
	}

	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{DB: tx}
		if _, err := bookings.Create(ctx, &booking); err != nil {
			return domain.InternalError{Msg: "failed to create booking", Err: err}
		}
		if payment != nil {
			row := paymentFromInput(booking.ID, *payment)
			payments := repositories.PaymentRepository{DB: tx}
			if _, err := payments.Create(ctx, &row); err != nil {
				return domain.InternalError{Msg: "failed to create payment", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadDetail(ctx, booking.ID, false)
}

func paymentFromInput(bookingID int64, in PaymentInput) models.Payment {
	row := models.Payment{
		BookingID: bookingID,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Status:    models.PaymentStatus(in.Status),
		Provider:  in.Provider,
	}
	if row.Currency == "" {
		row.Currency = "INR"
	}
	if row.Status == "" {
		row.Status = models.PaymentSuccess
	}
	if row.Provider == "" {
		row.Provider = "unknown"
	}
	if in.ProviderTxnID != "" {
		txn := in.ProviderTxnID
		row.ProviderTxnID = &txn
	}
	return row
}

// CreatePendingBooking is the gateway-first path: the booking is born
// PENDING_PAYMENT with one PENDING payment carrying the gateway order id.
// paymentAmount below totalAmount records a partial payment; the difference
// is kept as remaining_amount.
func (s *LifecycleService) CreatePendingBooking(ctx context.Context, in CreateBookingInput, gatewayOrderID string, paymentAmount *float64) (*models.BookingDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	total := *in.TotalAmount
	amount := total
	if paymentAmount != nil {
		amount = *paymentAmount
	}
	remaining := total - amount
	if remaining < 0 {
		remaining = 0
	}

	booking := models.Booking{
		UserID:         in.UserID,
		PickupLocation: in.Pickup,
		DropLocation:   in.Drop,
		ScheduledAt:    in.ScheduledAt,
		DistanceKm:     in.DistanceKm,
		EstimatedFare:  in.EstimatedFare,
		TotalAmount:    total,
		CarModel:       in.CarModel,
		Status:         models.BookingPendingPayment,
	}

	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{DB: tx}
		if _, err := bookings.Create(ctx, &booking); err != nil {
			return domain.InternalError{Msg: "failed to create booking", Err: err}
		}

		orderID := gatewayOrderID
		row := models.Payment{
			BookingID:       booking.ID,
			Amount:          amount,
			Currency:        "INR",
			Status:          models.PaymentPending,
			Provider:        "razorpay",
			ProviderTxnID:   &orderID,
			RemainingAmount: &remaining,
		}
		payments := repositories.PaymentRepository{DB: tx}
		if _, err := payments.Create(ctx, &row); err != nil {
			return domain.InternalError{Msg: "failed to create payment", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadDetail(ctx, booking.ID, false)
}

// ReconcilePaymentSuccess settles a verified gateway callback. The pending
// payment keyed by the order id flips to SUCCESS and takes the gateway
// payment id; the booking reaches PAID only when nothing remains owed.
// Replayed callbacks find no PENDING row and fail with not-found.
func (s *LifecycleService) ReconcilePaymentSuccess(ctx context.Context, orderID, gatewayPaymentID string) (*models.BookingDetail, error) {
	payments := repositories.PaymentRepository{DB: s.DB}
	payment, err := payments.FindPendingByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "payment record"}
		}
		return nil, domain.InternalError{Msg: "failed to look up payment", Err: err}
	}

	isFullPayment := payment.RemainingAmount == nil || *payment.RemainingAmount == 0

	err = db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		txPayments := repositories.PaymentRepository{DB: tx}
		if err := txPayments.MarkSuccess(ctx, payment.ID, gatewayPaymentID); err != nil {
			// Zero rows means a racing callback settled this payment between
			// our lookup and the flip.
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "payment record"}
			}
			return domain.InternalError{Msg: "failed to update payment", Err: err}
		}

		status := models.BookingPendingPayment
		if isFullPayment {
			status = models.BookingPaid
		}
		txBookings := repositories.BookingRepository{DB: tx}
		if err := txBookings.UpdateStatus(ctx, payment.BookingID, status); err != nil {
			return domain.InternalError{Msg: "failed to update booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail, err := s.loadDetail(ctx, payment.BookingID, true)
	if err != nil {
		return nil, err
	}

	// Confirmation is a detached side effect: its failure is logged, never
	// re-signalled into the already-committed reconciliation.
	if s.Notifier != nil && detail.User != nil {
		go func(phone string, snapshot models.BookingDetail) {
			if err := s.Notifier.SendBookingConfirmation(context.Background(), phone, &snapshot); err != nil {
				logger.ErrorLogger.Errorf("booking %d: confirmation send failed: %v", snapshot.ID, err)
			}
		}(detail.User.Phone, *detail)
	}

	return detail, nil
}

// TransitionStatus applies an admin-driven lifecycle transition. The new
// status must be reachable from the current one in validTransitions; the
// status write and its audit record commit together.
func (s *LifecycleService) TransitionStatus(ctx context.Context, bookingID int64, to models.BookingStatus, adminID int64, reason string) (models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	if !transitionAllowed(booking.Status, to) {
		return models.Booking{}, domain.InvalidTransitionError{
			From: string(booking.Status),
			To:   string(to),
		}
	}

	if reason == "" {
		reason = fmt.Sprintf("Status changed from %s to %s", booking.Status, to)
	}

	err = db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{DB: tx}
		if err := bookings.UpdateStatus(ctx, bookingID, to); err != nil {
			return domain.InternalError{Msg: "failed to update booking status", Err: err}
		}

		entry := auditEntry(bookingID, models.AuditActionStatusChange, adminID, reason,
			statusSnapshot{Status: booking.Status},
			statusSnapshot{Status: to},
		)
		audits := repositories.AuditRepository{DB: tx}
		if _, err := audits.Append(ctx, &entry); err != nil {
			return domain.InternalError{Msg: "failed to write audit log", Err: err}
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	booking.Status = to
	return booking, nil
}

func transitionAllowed(from, to models.BookingStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CancelBooking cancels a non-terminal booking, storing the mandatory reason
// and an audit record in one transaction.
func (s *LifecycleService) CancelBooking(ctx context.Context, bookingID int64, reason string, adminID int64) (models.Booking, error) {
	if reason == "" {
		return models.Booking{}, domain.ValidationError{Field: "reason", Msg: "cancellation reason is required"}
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	if booking.Status.Terminal() {
		return models.Booking{}, domain.InvalidStateError{
			State: string(booking.Status),
			Msg:   fmt.Sprintf("cannot cancel a %s booking", booking.Status),
		}
	}

	oldStatus := booking.Status
	err = db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		bookings := repositories.BookingRepository{DB: tx}
		if err := bookings.Cancel(ctx, bookingID, reason); err != nil {
			return domain.InternalError{Msg: "failed to cancel booking", Err: err}
		}

		entry := auditEntry(bookingID, models.AuditActionCancel, adminID, reason,
			statusSnapshot{Status: oldStatus},
			statusSnapshot{Status: models.BookingCancelled},
		)
		audits := repositories.AuditRepository{DB: tx}
		if _, err := audits.Append(ctx, &entry); err != nil {
			return domain.InternalError{Msg: "failed to write audit log", Err: err}
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	booking.Status = models.BookingCancelled
	booking.CancellationReason = &reason
	return booking, nil
}

// AddNote appends a free-text admin annotation. Notes never touch status.
func (s *LifecycleService) AddNote(ctx context.Context, bookingID, adminID int64, content string) (models.BookingNote, error) {
	if content == "" {
		return models.BookingNote{}, domain.ValidationError{Field: "content", Msg: "note content is required"}
	}
	if _, err := s.getBooking(ctx, bookingID); err != nil {
		return models.BookingNote{}, err
	}

	note := models.BookingNote{BookingID: bookingID, AdminID: adminID, Content: content}
	notes := repositories.NoteRepository{DB: s.DB}
	if _, err := notes.Create(ctx, &note); err != nil {
		return models.BookingNote{}, domain.InternalError{Msg: "failed to add note", Err: err}
	}
	return note, nil
}

// ListNotes returns a booking's notes newest first.
func (s *LifecycleService) ListNotes(ctx context.Context, bookingID int64) ([]models.BookingNote, error) {
	notes := repositories.NoteRepository{DB: s.DB}
	out, err := notes.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch notes", Err: err}
	}
	return out, nil
}

type statusSnapshot struct {
	Status models.BookingStatus `json:"status"`
}

func auditEntry(bookingID int64, action string, adminID int64, reason string, oldValue, newValue any) models.AuditLog {
	entry := models.AuditLog{
		EntityType: models.AuditEntityBooking,
		EntityID:   bookingID,
		Action:     action,
		AdminID:    adminID,
		Reason:     reason,
	}
	if oldValue != nil {
		if raw, err := json.Marshal(oldValue); err == nil {
			v := string(raw)
			entry.OldValue = &v
		}
	}
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			v := string(raw)
			entry.NewValue = &v
		}
	}
	return entry
}

func (s *LifecycleService) getBooking(ctx context.Context, id int64) (models.Booking, error) {
	bookings := repositories.BookingRepository{DB: s.DB}
	booking, err := bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, domain.InternalError{Msg: "failed to fetch booking", Err: err}
	}
	return booking, nil
}

// loadDetail re-reads a booking with its payments, optionally joining the
// owning user (needed by notification).
func (s *LifecycleService) loadDetail(ctx context.Context, bookingID int64, withUser bool) (*models.BookingDetail, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	payments := repositories.PaymentRepository{DB: s.DB}
	rows, err := payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch payments", Err: err}
	}

	detail := &models.BookingDetail{Booking: booking, Payments: rows}
	if withUser {
		users := repositories.UserRepository{DB: s.DB}
		user, err := users.GetByID(ctx, booking.UserID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, domain.InternalError{Msg: "failed to fetch user", Err: err}
		}
		if err == nil {
			detail.User = &user
		}
	}
	return detail, nil
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
