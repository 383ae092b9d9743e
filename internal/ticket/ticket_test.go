package ticket

import (
	"bytes"
	"testing"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	location := "Kigali Heights"
	start := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	b := &models.Booking{
		ID:          uuid.New(),
		Status:      models.BookingApproved,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		User:        &models.User{Name: "Aline"},
		Vehicle:     &models.Vehicle{PlateNumber: "RAB123A"},
		ParkingSlot: &models.ParkingSlot{SlotNumber: "A-01", Location: &location},
		Payment:     &models.Payment{Amount: 4000, Status: models.PaymentPending},
	}

	out, err := NewRenderer("Parking Ticket").Render(b)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "ticket-"+b.ID.String()+".pdf", Filename(b))
}

func TestRender_WithoutRelations(t *testing.T) {
	out, err := NewRenderer("Parking Ticket").Render(&models.Booking{ID: uuid.New()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatRWF(t *testing.T) {
	assert.Equal(t, "RWF 0", FormatRWF(0))
	assert.Equal(t, "RWF 2,000", FormatRWF(2000))
	assert.Equal(t, "RWF 1,234,567", FormatRWF(1234567))
	assert.Equal(t, "RWF -500", FormatRWF(-500))
}
