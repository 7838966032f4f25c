package mongo

import (
	"errors"
	"fmt"
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/refund"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// ErrCorruptDocument is returned when a stored document cannot be turned back
// into an aggregate.
var ErrCorruptDocument = errors.New("mongo: corrupt document")

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type propertyDocument struct {
	ID          string        `bson:"_id"`
	Name        string        `bson:"name"`
	Description string        `bson:"description"`
	MaxGuests   int           `bson:"max_guests"`
	NightlyRate moneyDocument `bson:"nightly_rate"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
	Version     int64         `bson:"version"`
}

func newPropertyDocument(p *domainbooking.Property) propertyDocument {
	return propertyDocument{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		MaxGuests:   p.MaxGuests,
		NightlyRate: newMoneyDocument(p.NightlyRate),
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
		Version:     p.Version,
	}
}

func (d propertyDocument) toAggregate(bookings []*domainbooking.Booking) (*domainbooking.Property, error) {
	p, err := domainbooking.RestoreProperty(domainbooking.PropertyParams{
		ID:          domainbooking.PropertyID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		MaxGuests:   d.MaxGuests,
		NightlyRate: d.NightlyRate.toMoney(),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}, bookings)
	if err != nil {
		return nil, fmt.Errorf("%w: property %s: %v", ErrCorruptDocument, d.ID, err)
	}
	return p, nil
}

type guestDocument struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	CreatedAt int64  `bson:"created_at"`
}

func newGuestDocument(g *domainguest.Guest) guestDocument {
	return guestDocument{ID: string(g.ID), Name: g.Name, CreatedAt: g.CreatedAt.UnixMilli()}
}

func (d guestDocument) toAggregate() (*domainguest.Guest, error) {
	g, err := domainguest.New(domainguest.CreateParams{
		ID:        domainguest.ID(d.ID),
		Name:      d.Name,
		CreatedAt: timestampToTime(d.CreatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: guest %s: %v", ErrCorruptDocument, d.ID, err)
	}
	return g, nil
}

type bookingDocument struct {
	ID          string        `bson:"_id"`
	PropertyID  string        `bson:"property_id"`
	GuestID     string        `bson:"guest_id"`
	Range       rangeDocument `bson:"range"`
	Guests      int           `bson:"guests"`
	Total       moneyDocument `bson:"total"`
	Refund      moneyDocument `bson:"refund"`
	RefundRule  string        `bson:"refund_rule,omitempty"`
	State       string        `bson:"state"`
	CreatedAt   int64         `bson:"created_at"`
	UpdatedAt   int64         `bson:"updated_at"`
	CancelledAt int64         `bson:"cancelled_at,omitempty"`
	Version     int64         `bson:"version"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID()),
		GuestID:    string(b.GuestID),
		Range:      rangeDocument{Start: b.Range.Start().UnixMilli(), End: b.Range.End().UnixMilli()},
		Guests:     b.Guests,
		Total:      newMoneyDocument(b.Total),
		Refund:     newMoneyDocument(b.Refund),
		RefundRule: string(b.RefundRule),
		State:      string(b.State),
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
	if !b.CancelledAt.IsZero() {
		doc.CancelledAt = b.CancelledAt.UnixMilli()
	}
	return doc
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	dr, err := daterange.New(timestampToTime(d.Range.Start), timestampToTime(d.Range.End))
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s: %v", ErrCorruptDocument, d.ID, err)
	}
	var cancelledAt time.Time
	if d.CancelledAt != 0 {
		cancelledAt = timestampToTime(d.CancelledAt)
	}
	b, err := domainbooking.RestoreBooking(domainbooking.RestoreParams{
		ID:          domainbooking.BookingID(d.ID),
		GuestID:     domainguest.ID(d.GuestID),
		Range:       dr,
		Guests:      d.Guests,
		Total:       d.Total.toMoney(),
		Refund:      d.Refund.toMoney(),
		RefundRule:  refund.PolicyName(d.RefundRule),
		State:       domainbooking.BookingState(d.State),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		CancelledAt: cancelledAt,
		Version:     d.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s: %v", ErrCorruptDocument, d.ID, err)
	}
	return b, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
