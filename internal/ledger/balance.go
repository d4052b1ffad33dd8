// internal/ledger/balance.go
package ledger

import (
	"github.com/shopspring/decimal"

	"credikhaata-ledger/internal/domain"
)

// TotalRepaid sums the amounts of all repayments. Zero if empty.
func TotalRepaid(repayments []domain.Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range repayments {
		total = total.Add(r.Amount)
	}
	return total
}

// RemainingBalance is the loan amount minus the total repaid. It may be
// negative when a loan has been over-repaid; repayments are not validated
// against the remaining balance at this layer.
func RemainingBalance(amount decimal.Decimal, repayments []domain.Repayment) decimal.Decimal {
	return amount.Sub(TotalRepaid(repayments))
}
