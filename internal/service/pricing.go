package service

import "time"

const (
	// BookingHoldDuration sets expiresAt on new bookings. It is recorded, not enforced.
	BookingHoldDuration = 2 * time.Hour

	EntryHourlyRate    int64 = 2000
	MinimumEntryCharge int64 = 2000
)

// BillableHours rounds d up to whole hours, with a minimum of one.
func BillableHours(d time.Duration) int64 {
	hours := int64(d / time.Hour)
	if d%time.Hour > 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}

func BookingFee(start, end time.Time, chargePerHour int64) int64 {
	return BillableHours(end.Sub(start)) * chargePerHour
}

// EntryCharge prices a walk-in session at the flat hourly rate.
func EntryCharge(entryAt, exitAt time.Time) int64 {
	return max(MinimumEntryCharge, BillableHours(exitAt.Sub(entryAt))*EntryHourlyRate)
}
