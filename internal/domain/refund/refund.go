// Package refund maps the time left before a stay to the share of the booking
// total returned to the guest on cancellation.
package refund

import (
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type PolicyName string

const (
	PolicyFull    PolicyName = "FULL_REFUND"
	PolicyPartial PolicyName = "PARTIAL_REFUND"
	PolicyNone    PolicyName = "NO_REFUND"
)

const (
	// DefaultPartialPercent is used when no percentage is configured.
	DefaultPartialPercent = 50
	// FullRefundAfterDays is the last day count that still only earns a partial refund.
	FullRefundAfterDays = 7
)

// Policy computes the refunded amount for a booking total.
type Policy interface {
	Name() PolicyName
	Refund(total money.Money) money.Money
}

type FullRefund struct{}

func (FullRefund) Name() PolicyName { return PolicyFull }

func (FullRefund) Refund(total money.Money) money.Money { return total }

type PartialRefund struct {
	Percent int
}

func (PartialRefund) Name() PolicyName { return PolicyPartial }

func (p PartialRefund) Refund(total money.Money) money.Money {
	return total.Percent(clampPercent(p.Percent))
}

type NoRefund struct{}

func (NoRefund) Name() PolicyName { return PolicyNone }

func (NoRefund) Refund(total money.Money) money.Money { return money.Zero(total.Currency) }

// Selector picks a policy from the number of whole days between the
// cancellation and the first night. The zero value uses DefaultPartialPercent.
type Selector struct {
	PartialPercent int
}

func NewSelector(partialPercent int) Selector {
	return Selector{PartialPercent: clampPercent(partialPercent)}
}

func (s Selector) Select(daysInAdvance int) Policy {
	switch {
	case daysInAdvance > FullRefundAfterDays:
		return FullRefund{}
	case daysInAdvance >= 1:
		return PartialRefund{Percent: s.partialPercent()}
	default:
		return NoRefund{}
	}
}

func (s Selector) partialPercent() int {
	if s.PartialPercent == 0 {
		return DefaultPartialPercent
	}
	return s.PartialPercent
}

// Quote is the outcome of applying a policy to a booking total.
type Quote struct {
	Policy        PolicyName
	DaysInAdvance int
	Total         money.Money
	Refund        money.Money
}

// Quote selects the policy for the given cancellation instant and stay start
// and applies it to total.
func (s Selector) Quote(total money.Money, now, start time.Time) Quote {
	days := DaysUntil(now, start)
	policy := s.Select(days)
	return Quote{
		Policy:        policy.Name(),
		DaysInAdvance: days,
		Total:         total,
		Refund:        policy.Refund(total),
	}
}

// DaysUntil counts calendar days from now's UTC day to start's UTC day.
// It is negative once the stay has started.
func DaysUntil(now, start time.Time) int {
	return int(daterange.Day(start).Sub(daterange.Day(now)).Hours() / 24)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
