package services

import (
	"context"
	"database/sql"
	"errors"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/repositories"
)

// BookingQueryService serves the admin and customer read paths. It never
// mutates state.
type BookingQueryService struct {
	DB *sql.DB
}

func NewBookingQueryService(database *sql.DB) *BookingQueryService {
	return &BookingQueryService{DB: database}
}

// List returns bookings newest first, each enriched with its payments, the
// owning user and any driver assignment. An empty status lists everything.
func (s *BookingQueryService) List(ctx context.Context, status models.BookingStatus) ([]models.BookingDetail, error) {
	bookings := repositories.BookingRepository{DB: s.DB}
	rows, err := bookings.List(ctx, status)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	return s.enrich(ctx, rows)
}

// ListPendingPayments returns bookings still waiting on a gateway callback.
func (s *BookingQueryService) ListPendingPayments(ctx context.Context) ([]models.BookingDetail, error) {
	bookings := repositories.BookingRepository{DB: s.DB}
	rows, err := bookings.ListPendingPayments(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list pending payments", Err: err}
	}
	return s.enrich(ctx, rows)
}

// ListByUser returns one customer's bookings with payments and assignments.
func (s *BookingQueryService) ListByUser(ctx context.Context, userID int64) ([]models.BookingDetail, error) {
	bookings := repositories.BookingRepository{DB: s.DB}
	rows, err := bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	return s.enrich(ctx, rows)
}

// Get returns one booking with payments, user and assignment.
func (s *BookingQueryService) Get(ctx context.Context, bookingID int64) (*models.BookingDetail, error) {
	bookings := repositories.BookingRepository{DB: s.DB}
	booking, err := bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "booking"}
		}
		return nil, domain.InternalError{Msg: "failed to fetch booking", Err: err}
	}

	details, err := s.enrich(ctx, []models.Booking{booking})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// enrich joins payments, users and assignments onto a page of bookings with
// three bulk reads instead of per-row queries.
func (s *BookingQueryService) enrich(ctx context.Context, rows []models.Booking) ([]models.BookingDetail, error) {
	details := make([]models.BookingDetail, 0, len(rows))
	if len(rows) == 0 {
		return details, nil
	}

	bookingIDs := make([]int64, 0, len(rows))
	userIDs := make([]int64, 0, len(rows))
	seenUsers := make(map[int64]bool)
	for _, b := range rows {
		bookingIDs = append(bookingIDs, b.ID)
		if !seenUsers[b.UserID] {
			seenUsers[b.UserID] = true
			userIDs = append(userIDs, b.UserID)
		}
	}

	payments := repositories.PaymentRepository{DB: s.DB}
	paymentsByBooking, err := payments.ListByBookingIDs(ctx, bookingIDs)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch payments", Err: err}
	}

	users := repositories.UserRepository{DB: s.DB}
	usersByID, err := users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch users", Err: err}
	}

	assignments := repositories.AssignmentRepository{DB: s.DB}
	assignmentsByBooking, err := assignments.ListByBookingIDs(ctx, bookingIDs)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to fetch assignments", Err: err}
	}

	for _, b := range rows {
		detail := models.BookingDetail{
			Booking:  b,
			Payments: paymentsByBooking[b.ID],
		}
		if u, ok := usersByID[b.UserID]; ok {
			user := u
			detail.User = &user
		}
		detail.AssignTaxis = assignmentsByBooking[b.ID]
		details = append(details, detail)
	}
	return details, nil
}
