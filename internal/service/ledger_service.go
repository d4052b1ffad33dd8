// internal/service/ledger_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"credikhaata-ledger/internal/domain"
	"credikhaata-ledger/internal/kv"
	"credikhaata-ledger/internal/notify"
	"credikhaata-ledger/internal/util"
)

// CustomerInput carries the caller-supplied fields for a new customer.
type CustomerInput struct {
	Name    string
	Phone   string
	Address string
}

// CustomerPatch carries a partial customer update; nil fields are left
// unchanged.
type CustomerPatch struct {
	Name    *string
	Phone   *string
	Address *string
}

// LoanInput carries the caller-supplied fields for a new loan. All four
// of CustomerID, Amount, IssueDate, and Frequency are required.
type LoanInput struct {
	CustomerID      string
	ItemDescription string
	Amount          decimal.Decimal
	IssueDate       time.Time
	Frequency       domain.Frequency
}

// RepaymentInput carries the caller-supplied fields for a new repayment.
type RepaymentInput struct {
	Amount decimal.Decimal
	Date   time.Time
}

// LedgerService owns the in-memory customer and loan collections for the
// active user session and synchronizes them to the durable store.
//
// The execution model is a single active writer (the signed-in session):
// every mutation runs to completion before any other operation is
// observed. Persistence is write-through and synchronous; if a durable
// write fails, the in-memory mutation is kept, the failure is published
// through the Notifier, and the change is neither retried nor rolled
// back. Loading always completes during Reinitialize before any save can
// happen, so a save can never overwrite previously persisted data with an
// empty state.
type LedgerService interface {
	// Reinitialize switches the store to userID and reloads its
	// collections from the durable store. An empty userID clears the
	// session, equivalent to Clear.
	Reinitialize(ctx context.Context, userID string) error
	// Clear drops the session and empties the in-memory collections.
	Clear()
	// ActiveUserID returns the current session's user id, empty if none.
	ActiveUserID() string

	AddCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, patch CustomerPatch) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	AddLoan(ctx context.Context, in LoanInput) (*domain.Loan, error)
	AddRepayment(ctx context.Context, loanID string, in RepaymentInput) (*domain.Repayment, error)
	DeleteLoan(ctx context.Context, loanID string) error

	// Customers and Loans expose the raw stored collections for the
	// aggregation view; consumers must not mutate them.
	Customers() []domain.Customer
	Loans() []domain.Loan
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	store    kv.Store
	notifier notify.Notifier
	logger   *slog.Logger

	userID      string
	initialized bool
	customers   []domain.Customer
	loans       []domain.Loan
}

// NewLedgerService creates a LedgerService with no active session.
func NewLedgerService(store kv.Store, notifier notify.Notifier, logger *slog.Logger) LedgerService {
	return &ledgerService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *ledgerService) Reinitialize(ctx context.Context, userID string) error {
	if userID == "" {
		s.Clear()
		return nil
	}

	s.userID = userID
	s.initialized = false
	s.customers = s.loadCustomers(ctx)
	s.loans = s.loadLoans(ctx)
	s.initialized = true

	s.logger.Info("ledger session initialized",
		"user_id", userID,
		"customers", len(s.customers),
		"loans", len(s.loans))
	return nil
}

func (s *ledgerService) Clear() {
	s.userID = ""
	s.initialized = false
	s.customers = nil
	s.loans = nil
}

func (s *ledgerService) ActiveUserID() string {
	return s.userID
}

// loadCustomers reads the persisted customer collection. A missing key
// yields an empty collection; a malformed payload also yields an empty
// collection and surfaces a load-error notification, but never fails
// initialization.
func (s *ledgerService) loadCustomers(ctx context.Context) []domain.Customer {
	customers := []domain.Customer{}
	raw, err := s.store.Get(ctx, kv.CustomersKey(s.userID))
	if err != nil {
		if !util.IsError(err, util.ErrNotFound) {
			s.reportLoadError("customer", err)
		}
		return customers
	}
	if err := json.Unmarshal([]byte(raw), &customers); err != nil {
		s.reportLoadError("customer", err)
		return []domain.Customer{}
	}
	return customers
}

func (s *ledgerService) loadLoans(ctx context.Context) []domain.Loan {
	loans := []domain.Loan{}
	raw, err := s.store.Get(ctx, kv.LoansKey(s.userID))
	if err != nil {
		if !util.IsError(err, util.ErrNotFound) {
			s.reportLoadError("loan", err)
		}
		return loans
	}
	if err := json.Unmarshal([]byte(raw), &loans); err != nil {
		s.reportLoadError("loan", err)
		return []domain.Loan{}
	}
	return loans
}

func (s *ledgerService) reportLoadError(entity string, err error) {
	s.logger.Error("failed to load persisted data", "entity", entity, "user_id", s.userID, "error", err)
	s.notifier.Publish(notify.Event{
		Variant: notify.VariantDestructive,
		Title:   "Load Error",
		Message: fmt.Sprintf("Could not load %s data.", entity),
	})
}

// persistCustomers serializes the full customer collection to the durable
// store. A write failure is reported but the in-memory state is kept.
func (s *ledgerService) persistCustomers(ctx context.Context) {
	data, err := json.Marshal(s.customers)
	if err == nil {
		err = s.store.Set(ctx, kv.CustomersKey(s.userID), string(data))
	}
	if err != nil {
		s.logger.Error("failed to save customer data", "user_id", s.userID, "error", err)
		s.notifier.Publish(notify.Event{
			Variant: notify.VariantDestructive,
			Title:   "Save Error",
			Message: "Could not save customer data.",
		})
	}
}

func (s *ledgerService) persistLoans(ctx context.Context) {
	data, err := json.Marshal(s.loans)
	if err == nil {
		err = s.store.Set(ctx, kv.LoansKey(s.userID), string(data))
	}
	if err != nil {
		s.logger.Error("failed to save loan data", "user_id", s.userID, "error", err)
		s.notifier.Publish(notify.Event{
			Variant: notify.VariantDestructive,
			Title:   "Save Error",
			Message: "Could not save loan data.",
		})
	}
}

func (s *ledgerService) AddCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	if !s.initialized {
		return nil, util.ErrNoSession
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", util.ErrInvalidInput)
	}

	customer := domain.NewCustomer(s.userID, in.Name, in.Phone, in.Address)
	s.customers = append(s.customers, *customer)
	s.persistCustomers(ctx)

	s.notifier.Publish(notify.Event{
		Variant: notify.VariantSuccess,
		Title:   "Success",
		Message: fmt.Sprintf("Customer %q added.", customer.Name),
	})
	return customer, nil
}

func (s *ledgerService) UpdateCustomer(ctx context.Context, customerID string, patch CustomerPatch) (*domain.Customer, error) {
	if !s.initialized {
		return nil, util.ErrNoSession
	}

	for i := range s.customers {
		if s.customers[i].ID != customerID || s.customers[i].UserID != s.userID {
			continue
		}
		if patch.Name != nil {
			s.customers[i].Name = *patch.Name
		}
		if patch.Phone != nil {
			s.customers[i].Phone = *patch.Phone
		}
		if patch.Address != nil {
			s.customers[i].Address = *patch.Address
		}
		s.persistCustomers(ctx)

		s.notifier.Publish(notify.Event{
			Variant: notify.VariantSuccess,
			Title:   "Success",
			Message: "Customer details updated.",
		})
		updated := s.customers[i]
		return &updated, nil
	}
	return nil, util.ErrCustomerNotFound
}

func (s *ledgerService) DeleteCustomer(ctx context.Context, customerID string) error {
	if !s.initialized {
		return util.ErrNoSession
	}

	idx := -1
	for i := range s.customers {
		if s.customers[i].ID == customerID && s.customers[i].UserID == s.userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return util.ErrCustomerNotFound
	}
	name := s.customers[idx].Name

	// Cascade: every loan owned by this customer goes with it.
	kept := s.loans[:0]
	for _, loan := range s.loans {
		if loan.CustomerID == customerID && loan.UserID == s.userID {
			continue
		}
		kept = append(kept, loan)
	}
	s.loans = kept
	s.customers = append(s.customers[:idx], s.customers[idx+1:]...)

	s.persistLoans(ctx)
	s.persistCustomers(ctx)

	s.notifier.Publish(notify.Event{
		Variant: notify.VariantDestructive,
		Title:   "Deleted",
		Message: fmt.Sprintf("Customer %q and their loans removed.", name),
	})
	return nil
}

func (s *ledgerService) AddLoan(ctx context.Context, in LoanInput) (*domain.Loan, error) {
	if !s.initialized {
		return nil, util.ErrNoSession
	}
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: loan customer id is required", util.ErrInvalidInput)
	}
	if in.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: loan amount must be positive", util.ErrInvalidInput)
	}
	if in.IssueDate.IsZero() {
		return nil, fmt.Errorf("%w: loan issue date is required", util.ErrInvalidInput)
	}
	if in.Frequency == "" {
		return nil, fmt.Errorf("%w: loan frequency is required", util.ErrInvalidInput)
	}

	loan := domain.NewLoan(s.userID, in.CustomerID, in.ItemDescription, in.Amount, in.IssueDate, in.Frequency)
	s.loans = append(s.loans, *loan)
	s.persistLoans(ctx)

	item := loan.ItemDescription
	if item == "" {
		item = "Item"
	}
	s.notifier.Publish(notify.Event{
		Variant: notify.VariantSuccess,
		Title:   "Success",
		Message: fmt.Sprintf("Loan for %q added.", item),
	})
	return loan, nil
}

func (s *ledgerService) AddRepayment(ctx context.Context, loanID string, in RepaymentInput) (*domain.Repayment, error) {
	if !s.initialized {
		return nil, util.ErrNoSession
	}
	if in.Amount.IsZero() {
		return nil, fmt.Errorf("%w: repayment amount is required", util.ErrInvalidInput)
	}
	if in.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: repayment amount must be positive", util.ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: repayment date is required", util.ErrInvalidInput)
	}

	for i := range s.loans {
		if s.loans[i].ID != loanID || s.loans[i].UserID != s.userID {
			continue
		}
		repayment := domain.NewRepayment(in.Amount, in.Date)
		s.loans[i].Repayments = append(s.loans[i].Repayments, repayment)
		// The sequence stays sorted by date ascending regardless of the
		// order repayments are entered in.
		sort.SliceStable(s.loans[i].Repayments, func(a, b int) bool {
			return s.loans[i].Repayments[a].Date.Before(s.loans[i].Repayments[b].Date)
		})
		s.persistLoans(ctx)

		s.notifier.Publish(notify.Event{
			Variant: notify.VariantSuccess,
			Title:   "Success",
			Message: fmt.Sprintf("Repayment of %s recorded.", in.Amount.StringFixed(2)),
		})
		return &repayment, nil
	}
	return nil, util.ErrLoanNotFound
}

func (s *ledgerService) DeleteLoan(ctx context.Context, loanID string) error {
	if !s.initialized {
		return util.ErrNoSession
	}

	idx := -1
	for i := range s.loans {
		if s.loans[i].ID == loanID && s.loans[i].UserID == s.userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return util.ErrLoanNotFound
	}
	item := s.loans[idx].ItemDescription
	if item == "" {
		item = "Loan"
	}

	s.loans = append(s.loans[:idx], s.loans[idx+1:]...)
	s.persistLoans(ctx)

	s.notifier.Publish(notify.Event{
		Variant: notify.VariantDestructive,
		Title:   "Deleted",
		Message: fmt.Sprintf("Loan %q removed.", item),
	})
	return nil
}

func (s *ledgerService) Customers() []domain.Customer {
	return s.customers
}

func (s *ledgerService) Loans() []domain.Loan {
	return s.loans
}
