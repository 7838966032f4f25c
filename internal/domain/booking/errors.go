package booking

import (
	"errors"
	"fmt"

	"staybook/internal/domain/shared/daterange"
)

var (
	// ErrInvalidRange is re-exported so callers can classify every booking
	// failure against this package.
	ErrInvalidRange = daterange.ErrInvalidRange

	ErrInvalidGuestCount     = errors.New("number of guests must be greater than zero")
	ErrGuestCapacityExceeded = errors.New("number of guests exceeds property capacity")
	ErrPastStartDate         = errors.New("start date cannot be in the past")
	ErrPropertyNotFound      = errors.New("property not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrUnavailable           = errors.New("property is not available for the selected period")
	ErrAlreadyCancelled      = errors.New("booking is already cancelled")
	ErrMissingProperty       = errors.New("booking requires a property")
	ErrMissingGuest          = errors.New("booking requires a guest")

	ErrPropertyIDRequired  = errors.New("property id is required")
	ErrNameRequired        = errors.New("property name is required")
	ErrDescriptionRequired = errors.New("property description is required")
	ErrMaxGuests           = errors.New("max guests must be greater than zero")
	ErrNightlyRate         = errors.New("nightly rate must be greater than zero")
	ErrBookingIDRequired   = errors.New("booking id is required")
	ErrBookingRequired     = errors.New("booking is required")
	ErrInvalidState        = errors.New("booking: invalid state transition")
)

// capacityError reports a guest count above the property limit while still
// matching ErrInvalidGuestCount.
type capacityError struct {
	requested int
	max       int
}

func (e capacityError) Error() string {
	return fmt.Sprintf("%s: %d requested, %d allowed", ErrGuestCapacityExceeded, e.requested, e.max)
}

func (e capacityError) Is(target error) bool {
	return target == ErrGuestCapacityExceeded || target == ErrInvalidGuestCount
}
