package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/refund"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var defaultSelector = refund.Selector{}

func TestNewBooking(t *testing.T) {
	p := newTestProperty(t)
	g := newTestGuest(t)
	dr := daterange.Must(date(2024, 12, 20), date(2024, 12, 25))

	b, err := NewBooking(CreateParams{ID: "b-1", Property: p, Guest: g, Range: dr, Guests: 2, CreatedAt: date(2024, 11, 5)})
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, b.State)
	assert.Equal(t, money.Must(50000, "USD"), b.Total)
	assert.Equal(t, g.ID, b.GuestID)
	assert.Equal(t, PropertyID("prop-1"), b.PropertyID())
	assert.False(t, b.IsCancelled())

	events := b.PendingEvents()
	require.Len(t, events, 1)
	confirmed, ok := events[0].(BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, dr.Start(), confirmed.StartDate)
	assert.Equal(t, dr.End(), confirmed.EndDate)
	assert.Equal(t, b.Total, confirmed.Total)
}

func TestNewBookingValidation(t *testing.T) {
	p := newTestProperty(t)
	g := newTestGuest(t)
	dr := daterange.Must(date(2024, 12, 20), date(2024, 12, 25))

	_, err := NewBooking(CreateParams{ID: "b", Guest: g, Range: dr, Guests: 1})
	require.ErrorIs(t, err, ErrMissingProperty)

	_, err = NewBooking(CreateParams{ID: "b", Property: p, Range: dr, Guests: 1})
	require.ErrorIs(t, err, ErrMissingGuest)

	_, err = NewBooking(CreateParams{ID: "b", Property: p, Guest: g, Range: dr, Guests: 0})
	require.ErrorIs(t, err, ErrInvalidGuestCount)

	_, err = NewBooking(CreateParams{ID: " ", Property: p, Guest: g, Range: dr, Guests: 1})
	require.ErrorIs(t, err, ErrBookingIDRequired)

	_, err = NewBooking(CreateParams{ID: "b", Property: p, Guest: g, Guests: 1})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestCancelTransitionsOnce(t *testing.T) {
	p := newTestProperty(t)
	b := book(t, p, "b-1", date(2024, 12, 20), date(2024, 12, 25))
	b.ClearEvents()

	quote, err := b.Cancel(date(2024, 12, 1), defaultSelector)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, b.State)
	assert.Equal(t, refund.PolicyFull, quote.Policy)
	assert.Equal(t, b.Total, b.Refund)
	assert.Equal(t, refund.PolicyFull, b.RefundRule)
	assert.Equal(t, date(2024, 12, 1), b.CancelledAt)
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.cancelled", b.PendingEvents()[0].EventName())

	before := *b
	_, err = b.Cancel(date(2024, 12, 2), defaultSelector)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.EqualError(t, err, "booking is already cancelled")
	assert.Equal(t, before.State, b.State)
	assert.Equal(t, before.Refund, b.Refund)
	assert.Equal(t, before.CancelledAt, b.CancelledAt)
	assert.Len(t, b.PendingEvents(), 1)
}

func TestCancelRefundDependsOnNotice(t *testing.T) {
	cases := []struct {
		name   string
		cancel int
		policy refund.PolicyName
		refund int64
	}{
		{"more than a week ahead", 11, refund.PolicyFull, 50000},
		{"exactly a week ahead", 13, refund.PolicyPartial, 25000},
		{"day before", 19, refund.PolicyPartial, 25000},
		{"same day", 20, refund.PolicyNone, 0},
		{"after start", 22, refund.PolicyNone, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestProperty(t)
			b := book(t, p, "b-1", date(2024, 12, 20), date(2024, 12, 25))
			quote, err := b.Cancel(date(2024, 12, tc.cancel), defaultSelector)
			require.NoError(t, err)
			assert.Equal(t, tc.policy, quote.Policy)
			assert.Equal(t, tc.refund, b.Refund.Amount)
			assert.Equal(t, "USD", b.Refund.Currency)
		})
	}
}

func TestRefundQuoteHasNoSideEffects(t *testing.T) {
	p := newTestProperty(t)
	b := book(t, p, "b-1", date(2024, 12, 20), date(2024, 12, 25))
	b.ClearEvents()

	quote := b.RefundQuote(date(2024, 12, 15), refund.NewSelector(30))
	assert.Equal(t, refund.PolicyPartial, quote.Policy)
	assert.Equal(t, int64(15000), quote.Refund.Amount)
	assert.Equal(t, StateConfirmed, b.State)
	assert.True(t, b.Refund.IsZero())
	assert.Empty(t, b.PendingEvents())
}

func TestRestoreBookingValidation(t *testing.T) {
	dr := daterange.Must(date(2024, 12, 20), date(2024, 12, 25))
	_, err := RestoreBooking(RestoreParams{GuestID: "g", Range: dr, Guests: 1, State: StateConfirmed})
	require.ErrorIs(t, err, ErrBookingIDRequired)
	_, err = RestoreBooking(RestoreParams{ID: "b", Range: dr, Guests: 1, State: StateConfirmed})
	require.ErrorIs(t, err, ErrMissingGuest)
	_, err = RestoreBooking(RestoreParams{ID: "b", GuestID: "g", Range: dr, Guests: 1, State: "PENDING"})
	require.ErrorIs(t, err, ErrInvalidState)

	b, err := RestoreBooking(RestoreParams{ID: "b", GuestID: "g", Range: dr, Guests: 1, State: StateCancelled})
	require.NoError(t, err)
	_, err = b.Cancel(date(2024, 12, 1), defaultSelector)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestValidateStart(t *testing.T) {
	now := date(2024, 12, 10).Add(15 * time.Hour)
	require.NoError(t, ValidateStart(date(2024, 12, 10), now))
	require.NoError(t, ValidateStart(date(2024, 12, 11), now))
	require.ErrorIs(t, ValidateStart(date(2024, 12, 9), now), ErrPastStartDate)
}
