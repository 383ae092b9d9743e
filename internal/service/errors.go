package service

import (
	"errors"
)

// Kind classifies service errors so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
)

// Error is a classified service error. Sentinels below are compared with errors.Is.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	ErrForbidden          = newError(KindForbidden, "you are not allowed to perform this action")
	ErrInvalidCredentials = newError(KindUnauthorized, "invalid email or password")

	ErrUserNotFound     = newError(KindNotFound, "user not found")
	ErrEmailTaken       = newError(KindConflict, "email is already registered")
	ErrPasswordTooShort = newError(KindValidation, "password must be at least 6 characters")
	ErrInvalidRole      = newError(KindValidation, "invalid role")

	ErrVehicleNotFound = newError(KindNotFound, "vehicle not found")
	ErrVehicleNotOwned = newError(KindForbidden, "vehicle does not belong to you")
	ErrPlateRequired   = newError(KindValidation, "plate number is required")
	ErrPlateTaken      = newError(KindConflict, "plate number is already registered")
	ErrVehicleInUse    = newError(KindConflict, "vehicle has active bookings")

	ErrSlotNotFound        = newError(KindNotFound, "parking slot not found")
	ErrSlotUnavailable     = newError(KindConflict, "parking slot is not available")
	ErrSlotConflict        = newError(KindConflict, "slot is already booked for the selected time range")
	ErrDuplicateSlotNumber = newError(KindConflict, "slot number already exists")
	ErrSlotInUse           = newError(KindConflict, "parking slot has active bookings")
	ErrNegativeValue       = newError(KindValidation, "charge per hour and available spaces must not be negative")
	ErrInvalidSlotEnum     = newError(KindValidation, "invalid slot type, size or vehicle type")

	ErrInvalidTimeRange   = newError(KindValidation, "end time must be after start time")
	ErrBookingNotFound    = newError(KindNotFound, "booking not found")
	ErrBookingNotPending  = newError(KindConflict, "booking is not pending")
	ErrBookingNotApproved = newError(KindConflict, "booking is not approved")
	ErrBookingAlreadyPaid = newError(KindConflict, "booking is already paid")
	ErrInvalidStatus      = newError(KindValidation, "invalid booking status")
	ErrCancelOnly         = newError(KindForbidden, "you may only cancel your booking")
	ErrPaymentNotFound    = newError(KindNotFound, "payment not found")

	ErrEntryNotFound = newError(KindNotFound, "vehicle entry not found")
	ErrAlreadyExited = newError(KindConflict, "vehicle has already exited")
)
