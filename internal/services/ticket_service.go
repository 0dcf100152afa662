package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/utils"
)

// TicketService renders booking tickets and invoices as PDFs.
type TicketService struct {
	Query *BookingQueryService
}

func NewTicketService(query *BookingQueryService) *TicketService {
	return &TicketService{Query: query}
}

// GenerateTicket builds the ride ticket PDF for a paid booking.
func (s *TicketService) GenerateTicket(ctx context.Context, bookingID int64) ([]byte, string, error) {
	detail, err := s.Query.Get(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if detail.Status == models.BookingPendingPayment || detail.Status == models.BookingCancelled {
		return nil, "", domain.InvalidStateError{
			State: string(detail.Status),
			Msg:   fmt.Sprintf("no ticket for a %s booking", detail.Status),
		}
	}
	return buildTicketPDF(detail)
}

// GenerateInvoice builds the fare invoice PDF for a booking.
func (s *TicketService) GenerateInvoice(ctx context.Context, bookingID int64) ([]byte, string, error) {
	detail, err := s.Query.Get(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	return buildInvoicePDF(detail)
}

func buildTicketPDF(d *models.BookingDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Urban Cabz Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "URBAN CABZ - RIDE TICKET")
	pdf.Ln(12)

	customerName, customerPhone := "-", "-"
	if d.User != nil {
		customerName = orDash(d.User.Name)
		customerPhone = orDash(d.User.Phone)
	}

	scheduled := "-"
	if d.ScheduledAt != nil {
		scheduled = utils.FormatDateTime(*d.ScheduledAt)
	}

	driverName, cabLine := "-", "-"
	if len(d.AssignTaxis) > 0 {
		a := d.AssignTaxis[0]
		driverName = orDash(a.DriverName)
		cabLine = strings.TrimSpace(a.CabName + " " + a.CabNumber)
		if cabLine == "" {
			cabLine = "-"
		}
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking No   : #%d", d.ID),
		fmt.Sprintf("Customer     : %s", customerName),
		fmt.Sprintf("Phone        : %s", customerPhone),
		fmt.Sprintf("Pickup       : %s", orDash(d.PickupLocation)),
		fmt.Sprintf("Drop         : %s", orDash(d.DropLocation)),
		fmt.Sprintf("Scheduled    : %s", scheduled),
		fmt.Sprintf("Driver       : %s", driverName),
		fmt.Sprintf("Cab          : %s", cabLine),
		fmt.Sprintf("Status       : %s", d.Status),
		fmt.Sprintf("Fare         : Rs. %s", utils.FormatMoney(d.TotalAmount)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please show this ticket to your driver at pickup.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render ticket", Err: err}
	}
	filename := fmt.Sprintf("TICKET_%d.pdf", d.ID)
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(d *models.BookingDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Urban Cabz Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Invoice No  : INV-%d", d.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date        : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	customerName, customerPhone := "-", "-"
	if d.User != nil {
		customerName = orDash(d.User.Name)
		customerPhone = orDash(d.User.Phone)
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Name   : "+customerName)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Phone  : "+customerPhone)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	desc := fmt.Sprintf("Cab ride %s -> %s (booking #%d)",
		orDash(d.PickupLocation), orDash(d.DropLocation), d.ID)
	pdf.MultiCell(0, 6, desc, "", "", false)
	pdf.Ln(2)

	paid := 0.0
	for _, p := range d.Payments {
		if p.Status == models.PaymentSuccess {
			paid += p.Amount
		}
	}
	pdf.Cell(0, 6, "Amount paid : Rs. "+utils.FormatMoney(paid))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: Rs. "+utils.FormatMoney(d.TotalAmount))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Thank you for riding with Urban Cabz.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render invoice", Err: err}
	}
	filename := fmt.Sprintf("INVOICE_%d.pdf", d.ID)
	return buf.Bytes(), filename, nil
}

func orDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}
