package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/Eursukkul/parking-service/internal/ticket"
)

var (
	ErrTicketRender  = errors.New("failed to generate ticket pdf")
	ErrMailDelivery  = errors.New("failed to send email")
	ErrMissingRecord = errors.New("booking is missing user, vehicle or slot details")
)

const displayLayout = "02 Jan 2006 15:04"

var (
	requestTemplate = template.Must(template.New("request").Parse(`<h2>New Parking Slot Request</h2>
<p>{{.UserName}} has requested a parking slot.</p>
<ul>
  <li>Slot: {{.SlotNumber}} ({{.SlotType}})</li>
  <li>Plate Number: {{.PlateNumber}}</li>
  <li>From: {{.Start}}</li>
  <li>To: {{.End}}</li>
  <li>Amount: {{.Amount}}</li>
</ul>
<p>Please review and approve or reject the request.</p>`))

	ticketTemplate = template.Must(template.New("ticket").Parse(`<h2>Your Parking Booking</h2>
<p>Dear {{.UserName}},</p>
<p>Your booking has been approved. Please find your ticket attached.</p>
<p><strong>Details:</strong></p>
<ul>
  <li>Plate Number: {{.PlateNumber}}</li>
  <li>Parking Slot: {{.SlotNumber}}</li>
  <li>Start Time: {{.Start}}</li>
  <li>End Time: {{.End}}</li>
  <li>Duration: {{.Hours}} hour(s)</li>
  <li>Amount: {{.Amount}}</li>
</ul>
<p>Best regards,<br>Parking Management Team</p>`))
)

type bookingView struct {
	UserName    string
	PlateNumber string
	SlotNumber  string
	SlotType    string
	Start       string
	End         string
	Hours       int64
	Amount      string
}

type Renderer interface {
	Render(booking *models.Booking) ([]byte, error)
}

// EmailNotifier builds and sends the booking emails.
type EmailNotifier struct {
	mailer  Mailer
	tickets Renderer
}

func NewEmailNotifier(mailer Mailer, tickets Renderer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, tickets: tickets}
}

// BookingRequested tells admins that a booking is waiting for approval.
func (n *EmailNotifier) BookingRequested(ctx context.Context, b *models.Booking, admins []string) error {
	if len(admins) == 0 {
		return nil
	}
	view, err := newBookingView(b)
	if err != nil {
		return err
	}

	body, err := execute(requestTemplate, view)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, Message{To: admins, Subject: "New Parking Slot Request", HTML: body}); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// TicketApproved mails the PDF ticket to the booking owner.
func (n *EmailNotifier) TicketApproved(ctx context.Context, b *models.Booking) error {
	pdf, err := n.tickets.Render(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTicketRender, err)
	}

	view, err := newBookingView(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	body, err := execute(ticketTemplate, view)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	msg := Message{
		To:      []string{b.User.Email},
		Subject: "Your Parking Ticket",
		HTML:    body,
		Attachments: []Attachment{{
			Filename:    ticket.Filename(b),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

func newBookingView(b *models.Booking) (bookingView, error) {
	if b.User == nil || b.Vehicle == nil || b.ParkingSlot == nil {
		return bookingView{}, ErrMissingRecord
	}

	hours := service.BillableHours(b.EndTime.Sub(b.StartTime))
	amount := hours * b.ParkingSlot.ChargePerHour
	if b.Payment != nil {
		amount = b.Payment.Amount
	}
	return bookingView{
		UserName:    b.User.Name,
		PlateNumber: b.Vehicle.PlateNumber,
		SlotNumber:  b.ParkingSlot.SlotNumber,
		SlotType:    string(b.ParkingSlot.Type),
		Start:       b.StartTime.UTC().Format(displayLayout),
		End:         b.EndTime.UTC().Format(displayLayout),
		Hours:       hours,
		Amount:      ticket.FormatRWF(amount),
	}, nil
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
