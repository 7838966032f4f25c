package refund

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"staybook/internal/domain/shared/money"
)

func TestSelect(t *testing.T) {
	s := Selector{}
	cases := []struct {
		days int
		want Policy
	}{
		{days: 30, want: FullRefund{}},
		{days: 8, want: FullRefund{}},
		{days: 7, want: PartialRefund{Percent: DefaultPartialPercent}},
		{days: 3, want: PartialRefund{Percent: DefaultPartialPercent}},
		{days: 1, want: PartialRefund{Percent: DefaultPartialPercent}},
		{days: 0, want: NoRefund{}},
		{days: -1, want: NoRefund{}},
		{days: -40, want: NoRefund{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.Select(tc.days), "days=%d", tc.days)
	}
}

func TestPolicyRefunds(t *testing.T) {
	total := money.Must(50000, "USD")
	assert.Equal(t, total, FullRefund{}.Refund(total))
	assert.Equal(t, money.Must(25000, "USD"), PartialRefund{Percent: 50}.Refund(total))
	assert.Equal(t, money.Must(12500, "USD"), PartialRefund{Percent: 25}.Refund(total))
	assert.Equal(t, money.Must(50000, "USD"), PartialRefund{Percent: 140}.Refund(total))
	assert.Equal(t, money.Zero("USD"), NoRefund{}.Refund(total))
}

func TestNewSelectorClampsPercent(t *testing.T) {
	assert.Equal(t, PartialRefund{Percent: 30}, NewSelector(30).Select(2))
	assert.Equal(t, PartialRefund{Percent: 100}, NewSelector(250).Select(2))
}

func TestDaysUntil(t *testing.T) {
	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 8, DaysUntil(time.Date(2024, 12, 12, 23, 59, 0, 0, time.UTC), start))
	assert.Equal(t, 1, DaysUntil(time.Date(2024, 12, 19, 8, 0, 0, 0, time.UTC), start))
	assert.Equal(t, 0, DaysUntil(time.Date(2024, 12, 20, 15, 0, 0, 0, time.UTC), start))
	assert.Equal(t, -2, DaysUntil(time.Date(2024, 12, 22, 0, 0, 0, 0, time.UTC), start))
}

func TestQuote(t *testing.T) {
	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	total := money.Must(50000, "USD")

	q := Selector{}.Quote(total, time.Date(2024, 12, 16, 10, 0, 0, 0, time.UTC), start)
	assert.Equal(t, PolicyPartial, q.Policy)
	assert.Equal(t, 4, q.DaysInAdvance)
	assert.Equal(t, money.Must(25000, "USD"), q.Refund)
	assert.Equal(t, total, q.Total)

	q = Selector{}.Quote(total, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, PolicyFull, q.Policy)
	assert.Equal(t, total, q.Refund)
}
