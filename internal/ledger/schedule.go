// internal/ledger/schedule.go

// Package ledger holds the pure calculation core of the credit ledger:
// due-date recurrence, balance arithmetic, and status classification.
// Every function is a pure function of its inputs; callers supply the
// reference date ("today") where one is needed.
package ledger

import (
	"time"

	"credikhaata-ledger/internal/domain"
)

// NextDueDate computes the next scheduled due date for a loan.
//
// The recurrence is anchored on the date of the last repayment in
// chronological order when any exists, else on the issue date. Starting
// from the issue date, the candidate advances one period at a time
// (+1 month for monthly, +14 days for bi-weekly, monthly for an unknown
// frequency) while it is strictly before the anchor or falls on the same
// calendar day. Only the last repayment anchors the recurrence; earlier
// repayments affect the balance but not which period is next due.
func NextDueDate(issueDate time.Time, frequency domain.Frequency, repayments []domain.Repayment) time.Time {
	start := issueDate
	if n := len(repayments); n > 0 {
		start = repayments[n-1].Date
	}

	candidate := issueDate
	for candidate.Before(start) || sameCalendarDay(candidate, start) {
		candidate = advance(candidate, frequency)
	}
	return candidate
}

func advance(t time.Time, frequency domain.Frequency) time.Time {
	if frequency == domain.FrequencyBiWeekly {
		return t.AddDate(0, 0, 14)
	}
	return t.AddDate(0, 1, 0)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Midnight truncates t to the start of its calendar day. Status
// comparisons are date-only.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
