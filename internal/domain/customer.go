// internal/domain/customer.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus is the aggregate repayment standing of a customer.
type CustomerStatus string

const (
	CustomerStatusOverdue  CustomerStatus = "Overdue"
	CustomerStatusUpToDate CustomerStatus = "Up-to-date"
)

// Customer is a person the shopkeeper extends credit to.
// A customer is owned exclusively by the user identified by UserID.
type Customer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCustomer creates a new Customer instance stamped with an id and
// creation time, owned by userID.
func NewCustomer(userID, name, phone, address string) *Customer {
	return &Customer{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
}

// CustomerSummary is a read-only projection of a Customer augmented with
// fields derived from the customer's loans. Derived fields are recomputed
// on every read and never persisted.
type CustomerSummary struct {
	Customer
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	NextDueDate        *time.Time      `json:"nextDueDate"` // nil when nothing is owed
	Status             CustomerStatus  `json:"status"`
	LoanCount          int             `json:"loanCount"`
}

// CustomerDetail is a CustomerSummary with the customer's enriched loans
// embedded, ordered by issue date descending.
type CustomerDetail struct {
	CustomerSummary
	Loans []LoanDetail `json:"loans"`
}
