package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
	"staybook/internal/domain/refund"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var created = time.Date(2024, 11, 1, 9, 15, 0, 0, time.UTC)

func fixtures(t *testing.T) (*domainbooking.Property, *domainbooking.Booking) {
	t.Helper()
	p, err := domainbooking.NewProperty(domainbooking.PropertyParams{
		ID:          "prop-1",
		Name:        "Cabin",
		Description: "By the lake",
		MaxGuests:   4,
		NightlyRate: money.Must(10000, "USD"),
		CreatedAt:   created,
	})
	require.NoError(t, err)
	g, err := domainguest.New(domainguest.CreateParams{ID: "guest-1", Name: "Ada", CreatedAt: created})
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        "b-1",
		Property:  p,
		Guest:     g,
		Range:     daterange.Must(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)),
		Guests:    2,
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.NoError(t, p.AddBooking(b))
	return p, b
}

func TestBookingDocumentRoundTrip(t *testing.T) {
	p, b := fixtures(t)
	_, err := b.Cancel(time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC), refund.Selector{})
	require.NoError(t, err)

	doc := newBookingDocument(b)
	assert.Equal(t, "prop-1", doc.PropertyID)
	assert.Equal(t, "CANCELLED", doc.State)
	assert.NotZero(t, doc.CancelledAt)

	restored, err := doc.toAggregate()
	require.NoError(t, err)
	prop, err := newPropertyDocument(p).toAggregate([]*domainbooking.Booking{restored})
	require.NoError(t, err)

	got, ok := prop.Booking("b-1")
	require.True(t, ok)
	assert.Same(t, prop, got.Property)
	assert.Equal(t, b.Range, got.Range)
	assert.Equal(t, b.Total, got.Total)
	assert.Equal(t, money.Must(25000, "USD"), got.Refund)
	assert.Equal(t, refund.PolicyPartial, got.RefundRule)
	assert.True(t, got.CancelledAt.Equal(b.CancelledAt))
	assert.True(t, prop.IsAvailable(b.Range), "cancelled booking frees its dates")
}

func TestConfirmedBookingHasNoCancelTime(t *testing.T) {
	_, b := fixtures(t)
	doc := newBookingDocument(b)
	assert.Zero(t, doc.CancelledAt)
	restored, err := doc.toAggregate()
	require.NoError(t, err)
	assert.True(t, restored.CancelledAt.IsZero())
	assert.Equal(t, domainbooking.StateConfirmed, restored.State)
}

func TestCorruptDocumentsAreRejected(t *testing.T) {
	_, err := propertyDocument{ID: "p", Description: "x", MaxGuests: 1, NightlyRate: moneyDocument{Amount: 1, Currency: "USD"}}.toAggregate(nil)
	assert.ErrorIs(t, err, ErrCorruptDocument)
	assert.ErrorContains(t, err, "property name is required")

	_, err = guestDocument{ID: "g"}.toAggregate()
	assert.ErrorIs(t, err, ErrCorruptDocument)

	_, b := fixtures(t)
	doc := newBookingDocument(b)
	doc.State = "PENDING"
	_, err = doc.toAggregate()
	assert.ErrorIs(t, err, ErrCorruptDocument)

	doc = newBookingDocument(b)
	doc.Range.End = doc.Range.Start
	_, err = doc.toAggregate()
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestIdempotencyDocumentKeepsFingerprint(t *testing.T) {
	doc := idempotencyDocument{
		Key:         "k-1",
		Command:     "booking.create",
		Fingerprint: "abc123",
		Payload:     []byte(`{"id":"b-1"}`),
		OccurredAt:  created,
	}
	rec := doc.toRecord()
	assert.Equal(t, "k-1", rec.Key)
	assert.Equal(t, "booking.create", rec.Command)
	assert.Equal(t, "abc123", rec.Fingerprint)
	assert.Equal(t, created, rec.OccurredAt)
}
