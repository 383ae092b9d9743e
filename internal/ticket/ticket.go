// Package ticket renders approved bookings as printable PDF parking tickets.
package ticket

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/go-pdf/fpdf"
)

const timeLayout = "02 Jan 2006 15:04 MST"

type Renderer struct {
	// Title is printed at the top of every ticket.
	Title string
	Loc   *time.Location
}

func NewRenderer(title string) *Renderer {
	return &Renderer{Title: title, Loc: time.UTC}
}

// Filename is the attachment name used for a booking's ticket.
func Filename(b *models.Booking) string {
	return fmt.Sprintf("ticket-%s.pdf", b.ID)
}

func (r *Renderer) Render(b *models.Booking) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, r.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Booking "+b.ID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, row := range r.rows(b) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Present this ticket at the gate. Valid only for the slot and time shown above.", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) rows(b *models.Booking) [][2]string {
	rows := [][2]string{
		{"Status", string(b.Status)},
	}
	if b.User != nil {
		rows = append(rows, [2]string{"Name", b.User.Name})
	}
	if b.Vehicle != nil {
		rows = append(rows, [2]string{"Plate Number", b.Vehicle.PlateNumber})
	}
	if b.ParkingSlot != nil {
		rows = append(rows, [2]string{"Slot", b.ParkingSlot.SlotNumber})
		if b.ParkingSlot.Location != nil {
			rows = append(rows, [2]string{"Location", *b.ParkingSlot.Location})
		}
	}
	rows = append(rows,
		[2]string{"Start", b.StartTime.In(r.Loc).Format(timeLayout)},
		[2]string{"End", b.EndTime.In(r.Loc).Format(timeLayout)},
	)
	if b.Payment != nil {
		rows = append(rows,
			[2]string{"Amount", FormatRWF(b.Payment.Amount)},
			[2]string{"Payment", string(b.Payment.Status)},
		)
	}
	return rows
}

// FormatRWF renders an amount with thousands separators, e.g. "RWF 12,000".
func FormatRWF(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return "RWF " + sign + string(out)
}
