package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/refund"
	"staybook/internal/domain/shared/money"
)

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(m money.Money) Money {
	return Money{Amount: m.Amount, Currency: m.Currency}
}

type Property struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MaxGuests   int       `json:"max_guests"`
	NightlyRate Money     `json:"nightly_rate"`
	CreatedAt   time.Time `json:"created_at"`
}

func MapProperty(p *domainbooking.Property) Property {
	return Property{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		MaxGuests:   p.MaxGuests,
		NightlyRate: MapMoney(p.NightlyRate),
		CreatedAt:   p.CreatedAt,
	}
}

type Guest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func MapGuest(g *domainguest.Guest) Guest {
	return Guest{ID: string(g.ID), Name: g.Name, CreatedAt: g.CreatedAt}
}

type Booking struct {
	ID          string     `json:"id"`
	PropertyID  string     `json:"property_id"`
	GuestID     string     `json:"guest_id"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Nights      int        `json:"nights"`
	Guests      int        `json:"guest_count"`
	Total       Money      `json:"total_price"`
	Status      string     `json:"status"`
	Refund      *Money     `json:"refund,omitempty"`
	RefundRule  string     `json:"refund_policy,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	out := Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID()),
		GuestID:    string(b.GuestID),
		StartDate:  b.Range.Start().Format(time.DateOnly),
		EndDate:    b.Range.End().Format(time.DateOnly),
		Nights:     b.Range.Nights(),
		Guests:     b.Guests,
		Total:      MapMoney(b.Total),
		Status:     string(b.State),
		CreatedAt:  b.CreatedAt,
	}
	if b.IsCancelled() {
		refunded := MapMoney(b.Refund)
		cancelledAt := b.CancelledAt
		out.Refund = &refunded
		out.RefundRule = string(b.RefundRule)
		out.CancelledAt = &cancelledAt
	}
	return out
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]Booking, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}

type RefundQuote struct {
	Policy        string `json:"policy"`
	DaysInAdvance int    `json:"days_in_advance"`
	Total         Money  `json:"total_price"`
	Refund        Money  `json:"refund"`
}

func MapRefundQuote(q refund.Quote) RefundQuote {
	return RefundQuote{
		Policy:        string(q.Policy),
		DaysInAdvance: q.DaysInAdvance,
		Total:         MapMoney(q.Total),
		Refund:        MapMoney(q.Refund),
	}
}
