// internal/export/csv.go

// Package export renders customer statements from the enriched
// projections. It is a read-only consumer of the aggregation view.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"credikhaata-ledger/internal/domain"
)

const dateLayout = "2006-01-02"

// WriteCustomerStatement writes a CSV statement for one customer: a loan
// section with derived balances and statuses, followed by a repayment
// section per loan.
func WriteCustomerStatement(w io.Writer, detail *domain.CustomerDetail) error {
	cw := csv.NewWriter(w)

	nextDue := ""
	if detail.NextDueDate != nil {
		nextDue = detail.NextDueDate.Format(dateLayout)
	}
	header := [][]string{
		{"customer", detail.Name},
		{"status", string(detail.Status)},
		{"outstanding_balance", detail.OutstandingBalance.StringFixed(2)},
		{"next_due_date", nextDue},
		{"loan_count", fmt.Sprintf("%d", detail.LoanCount)},
		{},
		{"item", "amount", "issue_date", "frequency", "remaining_balance", "next_due_date", "status"},
	}
	for _, record := range header {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write statement header: %w", err)
		}
	}

	for _, loan := range detail.Loans {
		record := []string{
			loan.ItemDescription,
			loan.Amount.StringFixed(2),
			loan.IssueDate.Format(dateLayout),
			string(loan.Frequency),
			loan.RemainingBalance.StringFixed(2),
			loan.NextDueDate.Format(dateLayout),
			string(loan.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write loan record: %w", err)
		}
		for _, repayment := range loan.Repayments {
			rec := []string{
				"repayment",
				repayment.Amount.StringFixed(2),
				repayment.Date.Format(dateLayout),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write repayment record: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
