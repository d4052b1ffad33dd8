// internal/ledger/status.go
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"credikhaata-ledger/internal/domain"
)

// LoanStatus classifies a single loan as of today. A loan with no
// remaining balance is Paid regardless of its schedule; otherwise it is
// Overdue when its next due date is strictly before today (both truncated
// to midnight), else Pending.
func LoanStatus(amount decimal.Decimal, frequency domain.Frequency, issueDate time.Time, repayments []domain.Repayment, today time.Time) domain.LoanStatus {
	if RemainingBalance(amount, repayments).Sign() <= 0 {
		return domain.LoanStatusPaid
	}
	nextDue := NextDueDate(issueDate, frequency, repayments)
	if Midnight(nextDue).Before(Midnight(today)) {
		return domain.LoanStatusOverdue
	}
	return domain.LoanStatusPending
}

// CustomerStatus classifies a customer as Overdue when any loan that
// still has a positive remaining balance is past its next due date.
// Fully-paid loans never contribute to overdue determination.
func CustomerStatus(loans []domain.Loan, today time.Time) domain.CustomerStatus {
	for _, loan := range loans {
		if RemainingBalance(loan.Amount, loan.Repayments).Sign() <= 0 {
			continue
		}
		nextDue := NextDueDate(loan.IssueDate, loan.Frequency, loan.Repayments)
		if Midnight(nextDue).Before(Midnight(today)) {
			return domain.CustomerStatusOverdue
		}
	}
	return domain.CustomerStatusUpToDate
}

// OutstandingBalance sums the remaining balances of a customer's loans,
// clamping each loan at a floor of zero so an over-repaid loan cannot
// offset what is owed on the others.
func OutstandingBalance(loans []domain.Loan) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		remaining := RemainingBalance(loan.Amount, loan.Repayments)
		if remaining.Sign() > 0 {
			total = total.Add(remaining)
		}
	}
	return total
}

// CustomerNextDueDate is the earliest next due date among loans that
// still carry a positive remaining balance. Nil when nothing is owed.
func CustomerNextDueDate(loans []domain.Loan) *time.Time {
	var earliest *time.Time
	for _, loan := range loans {
		if RemainingBalance(loan.Amount, loan.Repayments).Sign() <= 0 {
			continue
		}
		nextDue := NextDueDate(loan.IssueDate, loan.Frequency, loan.Repayments)
		if earliest == nil || nextDue.Before(*earliest) {
			due := nextDue
			earliest = &due
		}
	}
	return earliest
}
