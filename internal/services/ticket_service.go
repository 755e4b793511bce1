package services

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/utils"
)

// TicketService renders e-tickets for confirmed bookings.
type TicketService struct {
	Bookings domain.BookingStore
}

// BuildETicket returns the PDF bytes and a download filename for a booking.
func (s TicketService) BuildETicket(bookingID string) ([]byte, string, error) {
	b, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("RoutAfare E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ROUTAFARE E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ref    : %s", b.ID),
		fmt.Sprintf("Service        : %s", orDefault(b.ServiceName, "-")),
		fmt.Sprintf("Route          : %s", orDefault(b.Route, "-")),
		fmt.Sprintf("Departure time : %s", orDefault(b.Time, "-")),
		fmt.Sprintf("Passengers     : %d", b.Passengers),
		fmt.Sprintf("Fare           : %s", utils.FormatRupees(b.Fare)),
		fmt.Sprintf("Contact        : %s", orDefault(b.Contact, "-")),
		fmt.Sprintf("Issued         : %s", issuedAt(b.CreatedAt)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Note: schedule-based fares are estimates; confirm the final fare with the operator. Please be ready to board at the departure time.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render e-ticket", Err: err}
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", b.ID, safeFilenamePart(b.Route))
	return buf.Bytes(), filename, nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func safeFilenamePart(s string) string {
	out := unsafeFilenameRe.ReplaceAllString(s, "_")
	if out == "" {
		return "ticket"
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func issuedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
