package booking

import (
	"time"

	"staybook/internal/domain/guest"
	"staybook/internal/domain/refund"
	"staybook/internal/domain/shared/money"
)

type PropertyRegistered struct {
	PropertyID  PropertyID  `json:"property_id"`
	Name        string      `json:"name"`
	MaxGuests   int         `json:"max_guests"`
	NightlyRate money.Money `json:"nightly_rate"`
	At          time.Time   `json:"at"`
}

func (e PropertyRegistered) EventName() string     { return "property.registered" }
func (e PropertyRegistered) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyRegistered) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID   `json:"booking_id"`
	PropertyID PropertyID  `json:"property_id"`
	GuestID    guest.ID    `json:"guest_id"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Guests     int         `json:"guests"`
	Total      money.Money `json:"total"`
	At         time.Time   `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID     BookingID         `json:"booking_id"`
	PropertyID    PropertyID        `json:"property_id"`
	Policy        refund.PolicyName `json:"policy"`
	DaysInAdvance int               `json:"days_in_advance"`
	Refund        money.Money       `json:"refund"`
	At            time.Time         `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
