package booking

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/guest"
	"staybook/internal/domain/refund"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

type BookingID string

type BookingState string

const (
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
)

// Booking is one reservation of a property by a guest. Its price is fixed at
// creation and the only transition is CONFIRMED -> CANCELLED.
type Booking struct {
	ID BookingID
	// Property is a read-only back reference; the property's booking
	// collection is the authority on which bookings exist.
	Property    *Property
	GuestID     guest.ID
	Range       daterange.DateRange
	Guests      int
	Total       money.Money
	Refund      money.Money
	RefundRule  refund.PolicyName
	State       BookingState
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID guest.ID) ([]*Booking, error)
	ListByProperty(ctx context.Context, propertyID PropertyID) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	Property  *Property
	Guest     *guest.Guest
	Range     daterange.DateRange
	Guests    int
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Property == nil {
		return nil, ErrMissingProperty
	}
	if params.Guest == nil {
		return nil, ErrMissingGuest
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuestCount
	}
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrBookingIDRequired
	}
	if params.Range.IsZero() {
		return nil, ErrInvalidRange
	}
	total, err := params.Property.CalculateTotalPrice(params.Range)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	b := &Booking{
		ID:        BookingID(id),
		Property:  params.Property,
		GuestID:   params.Guest.ID,
		Range:     params.Range,
		Guests:    params.Guests,
		Total:     total,
		State:     StateConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingConfirmed{
		BookingID:  b.ID,
		PropertyID: params.Property.ID,
		GuestID:    b.GuestID,
		StartDate:  b.Range.Start(),
		EndDate:    b.Range.End(),
		Guests:     b.Guests,
		Total:      b.Total,
		At:         now,
	})
	return b, nil
}

// RestoreParams carries a stored booking. The owning property is attached
// by RestoreProperty.
type RestoreParams struct {
	ID          BookingID
	GuestID     guest.ID
	Range       daterange.DateRange
	Guests      int
	Total       money.Money
	Refund      money.Money
	RefundRule  refund.PolicyName
	State       BookingState
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt time.Time
	Version     int64
}

func RestoreBooking(params RestoreParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrBookingIDRequired
	}
	if params.GuestID == "" {
		return nil, ErrMissingGuest
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuestCount
	}
	if params.Range.IsZero() {
		return nil, ErrInvalidRange
	}
	switch params.State {
	case StateConfirmed, StateCancelled:
	default:
		return nil, ErrInvalidState
	}
	return &Booking{
		ID:          params.ID,
		GuestID:     params.GuestID,
		Range:       params.Range,
		Guests:      params.Guests,
		Total:       params.Total,
		Refund:      params.Refund,
		RefundRule:  params.RefundRule,
		State:       params.State,
		CreatedAt:   params.CreatedAt.UTC(),
		UpdatedAt:   params.UpdatedAt.UTC(),
		CancelledAt: params.CancelledAt.UTC(),
		Version:     params.Version,
	}, nil
}

func (b *Booking) PropertyID() PropertyID {
	if b.Property == nil {
		return ""
	}
	return b.Property.ID
}

func (b *Booking) IsCancelled() bool {
	return b.State == StateCancelled
}

// RefundQuote reports what a cancellation at now would refund without
// changing the booking.
func (b *Booking) RefundQuote(now time.Time, selector refund.Selector) refund.Quote {
	return selector.Quote(b.Total, now, b.Range.Start())
}

// Cancel moves the booking to CANCELLED and fixes the refund owed. A second
// call fails with ErrAlreadyCancelled and leaves the booking untouched.
func (b *Booking) Cancel(now time.Time, selector refund.Selector) (refund.Quote, error) {
	if b.State == StateCancelled {
		return refund.Quote{}, ErrAlreadyCancelled
	}
	if b.State != StateConfirmed {
		return refund.Quote{}, ErrInvalidState
	}
	quote := b.RefundQuote(now, selector)
	now = now.UTC()
	b.State = StateCancelled
	b.Refund = quote.Refund
	b.RefundRule = quote.Policy
	b.CancelledAt = now
	b.UpdatedAt = now
	b.Record(BookingCancelled{
		BookingID:     b.ID,
		PropertyID:    b.PropertyID(),
		Policy:        quote.Policy,
		DaysInAdvance: quote.DaysInAdvance,
		Refund:        quote.Refund,
		At:            now,
	})
	return quote, nil
}
