// internal/domain/loan.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Frequency is the repayment cadence of a loan.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"   // one calendar month
	FrequencyBiWeekly Frequency = "bi-weekly" // 14 days
)

// LoanStatus is the derived repayment standing of a single loan.
type LoanStatus string

const (
	LoanStatusPaid    LoanStatus = "Paid"
	LoanStatusOverdue LoanStatus = "Overdue"
	LoanStatusPending LoanStatus = "Pending"
)

// Loan is credit extended to a customer for an item. The UserID is a
// denormalized ownership tag checked on every mutation to prevent
// cross-user access. Repayments are kept sorted ascending by date.
type Loan struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	CustomerID      string          `json:"customerId"`
	ItemDescription string          `json:"itemDescription"`
	Amount          decimal.Decimal `json:"amount"`
	IssueDate       time.Time       `json:"issueDate"`
	Frequency       Frequency       `json:"frequency"`
	Repayments      []Repayment     `json:"repayments"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewLoan creates a new Loan instance with an empty repayment history.
func NewLoan(userID, customerID, itemDescription string, amount decimal.Decimal, issueDate time.Time, frequency Frequency) *Loan {
	return &Loan{
		ID:              uuid.NewString(),
		UserID:          userID,
		CustomerID:      customerID,
		ItemDescription: itemDescription,
		Amount:          amount,
		IssueDate:       issueDate,
		Frequency:       frequency,
		Repayments:      []Repayment{},
		CreatedAt:       time.Now().UTC(),
	}
}

// Repayment is a partial payment against a loan. It is embedded in and
// owned by exactly one loan.
type Repayment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewRepayment creates a new Repayment instance.
func NewRepayment(amount decimal.Decimal, date time.Time) Repayment {
	return Repayment{
		ID:        uuid.NewString(),
		Amount:    amount,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
}

// LoanDetail is a read-only projection of a Loan augmented with derived
// fields computed at read time.
type LoanDetail struct {
	Loan
	NextDueDate      time.Time       `json:"nextDueDate"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Status           LoanStatus      `json:"status"`
}
