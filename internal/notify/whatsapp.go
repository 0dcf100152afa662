package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"urbancabz/internal/config"
	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/logger"
	"urbancabz/internal/utils"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// WhatsAppDispatcher sends WhatsApp messages through the Twilio REST API.
// When credentials are missing the dispatcher is disabled and every send is
// a logged no-op, so a bare dev environment still runs the full lifecycle.
type WhatsAppDispatcher struct {
	cfg    config.TwilioConfig
	client *http.Client
}

func NewWhatsAppDispatcher(cfg config.TwilioConfig) *WhatsAppDispatcher {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppFrom == "" {
		logger.WarnLogger.Warn("Twilio credentials are not configured; WhatsApp notifications are disabled")
	}
	return &WhatsAppDispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *WhatsAppDispatcher) enabled() bool {
	return d.cfg.AccountSID != "" && d.cfg.AuthToken != "" && d.cfg.WhatsAppFrom != ""
}

func (d *WhatsAppDispatcher) SendBookingConfirmation(ctx context.Context, phone string, booking *models.BookingDetail) error {
	whenText := "ASAP"
	if booking.ScheduledAt != nil {
		whenText = utils.FormatDateTime(*booking.ScheduledAt)
	}

	userName := "Customer"
	if booking.User != nil && booking.User.Name != "" {
		userName = booking.User.Name
	}

	paidAmount := booking.TotalAmount
	if len(booking.Payments) > 0 {
		paidAmount = booking.Payments[0].Amount
	}
	remaining := booking.TotalAmount - paidAmount
	if remaining < 0 {
		remaining = 0
	}

	lines := []string{
		fmt.Sprintf("Hi %s,", userName),
		"",
		fmt.Sprintf("Your Urban Cabz booking #%d is confirmed.", booking.ID),
		"",
		fmt.Sprintf("Trip: %s -> %s", booking.PickupLocation, booking.DropLocation),
		fmt.Sprintf("Pickup: %s", whenText),
		"",
		"Invoice Summary",
		fmt.Sprintf("Total Fare: %s", utils.FormatINR(booking.TotalAmount)),
		fmt.Sprintf("Paid Now: %s", utils.FormatINR(paidAmount)),
		fmt.Sprintf("Remaining: %s", utils.FormatINR(remaining)),
		"",
		"A cab will be assigned shortly. You will receive driver & vehicle details soon.",
		"",
		"Thank you for riding with Urban Cabz!",
	}
	return d.send(ctx, phone, strings.Join(lines, "\n"))
}

func (d *WhatsAppDispatcher) SendTaxiAssignment(ctx context.Context, phone string, booking *models.Booking, assignment *models.TaxiAssignment) error {
	lines := []string{
		fmt.Sprintf("Your Urban Cabz booking #%d has a cab assigned.", booking.ID),
		"",
		fmt.Sprintf("Driver: %s (%s)", assignment.DriverName, assignment.DriverNumber),
		fmt.Sprintf("Cab: %s (%s)", assignment.CabName, assignment.CabNumber),
		fmt.Sprintf("Trip: %s -> %s", booking.PickupLocation, booking.DropLocation),
		"",
		"Your driver will reach the pickup point shortly.",
	}
	return d.send(ctx, phone, strings.Join(lines, "\n"))
}

func (d *WhatsAppDispatcher) SendDriverAssignment(ctx context.Context, phone string, booking *models.Booking, assignment *models.TaxiAssignment) error {
	lines := []string{
		fmt.Sprintf("New trip assigned: booking #%d.", booking.ID),
		"",
		fmt.Sprintf("Pickup: %s", booking.PickupLocation),
		fmt.Sprintf("Drop: %s", booking.DropLocation),
		fmt.Sprintf("Cab: %s (%s)", assignment.CabName, assignment.CabNumber),
	}
	return d.send(ctx, phone, strings.Join(lines, "\n"))
}

func (d *WhatsAppDispatcher) SendPasswordResetOTP(ctx context.Context, phone, otp string, ttl time.Duration) error {
	body := fmt.Sprintf("Your Urban Cabz password reset OTP is %s. It expires in %d minutes.",
		otp, int(ttl.Minutes()))
	return d.send(ctx, phone, body)
}

func (d *WhatsAppDispatcher) send(ctx context.Context, phone, body string) error {
	if !d.enabled() {
		logger.WarnLogger.Warn("WhatsApp send skipped: dispatcher disabled")
		return nil
	}

	to := utils.WhatsAppNumber(phone)
	if to == "" {
		return domain.ValidationError{Field: "phone", Msg: "no usable destination number"}
	}

	form := url.Values{}
	form.Set("From", d.cfg.WhatsAppFrom)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, d.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.UpstreamError{Provider: "twilio", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(d.cfg.AccountSID, d.cfg.AuthToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.UpstreamError{Provider: "twilio", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return domain.UpstreamError{
			Provider: "twilio",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(raw)),
		}
	}
	return nil
}
