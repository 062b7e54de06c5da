package model

import "time"

// daysInMonth is the month-to-days approximation used by per-day pricing
// and by the period-length delta in plan changes.
const daysInMonth = 30

// BillingPolicy carries the deployment-level billing constants. It is
// loaded from configuration and passed into the aggregate so policy can
// vary per deployment without recompiling.
type BillingPolicy struct {
	// LatencyDays is the grace window after which a dormant service is
	// considered long inactive and a new period anchors to the present
	// day instead of the old payday.
	LatencyDays int
	// ForbiddenDayFrom is the first day-of-month that cannot carry a
	// period anchor; anchors landing on it or later roll to the 1st of
	// the next month. Days 29-31 do not exist in every month.
	ForbiddenDayFrom int
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{LatencyDays: 10, ForbiddenDayFrom: 29}
}

// toDate truncates a moment to its calendar date at UTC midnight, so day
// arithmetic is exact regardless of wall-clock offsets.
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tomorrow(now time.Time) time.Time {
	return toDate(now).AddDate(0, 0, 1)
}

// daysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func daysBetween(a, b time.Time) int {
	return int(toDate(b).Sub(toDate(a)).Hours() / 24)
}

// advanceOffForbiddenDay moves an anchor that falls on a forbidden
// day-of-month to the 1st of the following month.
func advanceOffForbiddenDay(anchor time.Time, p BillingPolicy) time.Time {
	anchor = toDate(anchor)
	if anchor.Day() < p.ForbiddenDayFrom {
		return anchor
	}
	y, m, _ := anchor.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
