package booking

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

type PropertyID string

// Property is a lodging unit together with every booking ever made on it.
// Bookings are appended, never removed; cancellation is a state change.
type Property struct {
	ID          PropertyID
	Name        string
	Description string
	MaxGuests   int
	NightlyRate money.Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64

	bookings []*Booking
	events.EventRecorder
}

type PropertyRepository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, property *Property) error
}

type PropertyParams struct {
	ID          PropertyID
	Name        string
	Description string
	MaxGuests   int
	NightlyRate money.Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

func NewProperty(params PropertyParams) (*Property, error) {
	p, err := buildProperty(params)
	if err != nil {
		return nil, err
	}
	p.Record(PropertyRegistered{
		PropertyID:  p.ID,
		Name:        p.Name,
		MaxGuests:   p.MaxGuests,
		NightlyRate: p.NightlyRate,
		At:          p.CreatedAt,
	})
	return p, nil
}

// RestoreProperty rebuilds a stored property and its bookings. Stored
// bookings are trusted and attached without the availability re-check.
func RestoreProperty(params PropertyParams, bookings []*Booking) (*Property, error) {
	p, err := buildProperty(params)
	if err != nil {
		return nil, err
	}
	if !params.UpdatedAt.IsZero() {
		p.UpdatedAt = params.UpdatedAt.UTC()
	}
	p.Version = params.Version
	for _, b := range bookings {
		if b == nil {
			continue
		}
		b.Property = p
		p.bookings = append(p.bookings, b)
	}
	return p, nil
}

func buildProperty(params PropertyParams) (*Property, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrPropertyIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if params.MaxGuests <= 0 {
		return nil, ErrMaxGuests
	}
	if !params.NightlyRate.IsPositive() {
		return nil, ErrNightlyRate
	}
	rate, err := money.New(params.NightlyRate.Amount, params.NightlyRate.Currency)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Property{
		ID:          PropertyID(id),
		Name:        name,
		Description: description,
		MaxGuests:   params.MaxGuests,
		NightlyRate: rate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (p *Property) ValidateGuestCount(n int) error {
	if n <= 0 {
		return ErrInvalidGuestCount
	}
	if n > p.MaxGuests {
		return capacityError{requested: n, max: p.MaxGuests}
	}
	return nil
}

// IsAvailable reports whether no confirmed booking overlaps dr.
func (p *Property) IsAvailable(dr daterange.DateRange) bool {
	for _, b := range p.bookings {
		if b.State == StateConfirmed && b.Range.Overlaps(dr) {
			return false
		}
	}
	return true
}

func (p *Property) CalculateTotalPrice(dr daterange.DateRange) (money.Money, error) {
	nights := dr.Nights()
	if nights < 1 {
		return money.Money{}, ErrInvalidRange
	}
	return p.NightlyRate.Multiply(int64(nights)), nil
}

// AddBooking re-checks availability at append time.
func (p *Property) AddBooking(b *Booking) error {
	if b == nil {
		return ErrBookingRequired
	}
	if !p.IsAvailable(b.Range) {
		return ErrUnavailable
	}
	p.bookings = append(p.bookings, b)
	p.UpdatedAt = b.CreatedAt
	return nil
}

// Bookings returns the bookings in insertion order.
func (p *Property) Bookings() []*Booking {
	out := make([]*Booking, len(p.bookings))
	copy(out, p.bookings)
	return out
}

// Booking finds one of this property's bookings by id.
func (p *Property) Booking(id BookingID) (*Booking, bool) {
	for _, b := range p.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}
