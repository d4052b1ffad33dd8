// internal/service/view.go
package service

import (
	"sort"
	"time"

	"credikhaata-ledger/internal/domain"
	"credikhaata-ledger/internal/ledger"
	"credikhaata-ledger/internal/util"
)

// View builds read-only enriched projections by composing the ledger
// calculators over the store's raw collections. Derived fields are
// recomputed on every call and never cached across mutations.
type View struct {
	ledger LedgerService
	now    func() time.Time
}

// NewView creates a View over svc. now supplies the reference date for
// status classification; nil defaults to time.Now.
func NewView(svc LedgerService, now func() time.Time) *View {
	if now == nil {
		now = time.Now
	}
	return &View{ledger: svc, now: now}
}

// ListCustomers returns every stored customer for the active user,
// enriched with outstanding balance, next due date, aggregate status, and
// loan count.
func (v *View) ListCustomers() []domain.CustomerSummary {
	today := v.now()
	loans := v.ledger.Loans()

	summaries := []domain.CustomerSummary{}
	for _, customer := range v.ledger.Customers() {
		customerLoans := loansFor(loans, customer.ID)
		summaries = append(summaries, domain.CustomerSummary{
			Customer:           customer,
			OutstandingBalance: ledger.OutstandingBalance(customerLoans),
			NextDueDate:        ledger.CustomerNextDueDate(customerLoans),
			Status:             ledger.CustomerStatus(customerLoans, today),
			LoanCount:          len(customerLoans),
		})
	}
	return summaries
}

// CustomerDetail returns one customer enriched with their loan list. Each
// loan carries its computed next due date, remaining balance, and status;
// the list is ordered by issue date descending (most recent loan first).
// Returns util.ErrCustomerNotFound when no customer matches for the
// active user.
func (v *View) CustomerDetail(customerID string) (*domain.CustomerDetail, error) {
	var customer *domain.Customer
	for _, c := range v.ledger.Customers() {
		if c.ID == customerID {
			found := c
			customer = &found
			break
		}
	}
	if customer == nil {
		return nil, util.ErrCustomerNotFound
	}

	today := v.now()
	customerLoans := loansFor(v.ledger.Loans(), customerID)

	details := make([]domain.LoanDetail, 0, len(customerLoans))
	for _, loan := range customerLoans {
		details = append(details, domain.LoanDetail{
			Loan:             loan,
			NextDueDate:      ledger.NextDueDate(loan.IssueDate, loan.Frequency, loan.Repayments),
			RemainingBalance: ledger.RemainingBalance(loan.Amount, loan.Repayments),
			Status:           ledger.LoanStatus(loan.Amount, loan.Frequency, loan.IssueDate, loan.Repayments, today),
		})
	}
	sort.SliceStable(details, func(a, b int) bool {
		return details[b].IssueDate.Before(details[a].IssueDate)
	})

	return &domain.CustomerDetail{
		CustomerSummary: domain.CustomerSummary{
			Customer:           *customer,
			OutstandingBalance: ledger.OutstandingBalance(customerLoans),
			NextDueDate:        ledger.CustomerNextDueDate(customerLoans),
			Status:             ledger.CustomerStatus(customerLoans, today),
			LoanCount:          len(customerLoans),
		},
		Loans: details,
	}, nil
}

func loansFor(loans []domain.Loan, customerID string) []domain.Loan {
	out := []domain.Loan{}
	for _, loan := range loans {
		if loan.CustomerID == customerID {
			out = append(out, loan)
		}
	}
	return out
}
