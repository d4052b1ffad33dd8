// internal/service/ledger_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credikhaata-ledger/internal/domain"
	"credikhaata-ledger/internal/kv"
	"credikhaata-ledger/internal/notify"
	"credikhaata-ledger/internal/util"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (LedgerService, *kv.Memory, *notify.Recorder) {
	t.Helper()
	store := kv.NewMemory()
	recorder := notify.NewRecorder()
	svc := NewLedgerService(store, recorder, util.GetLogger())
	return svc, store, recorder
}

func validLoanInput() LoanInput {
	return LoanInput{
		CustomerID:      "cust-1",
		ItemDescription: "Rice bag",
		Amount:          decimal.NewFromInt(500),
		IssueDate:       date(2024, time.January, 1),
		Frequency:       domain.FrequencyMonthly,
	}
}

func TestOperationsRequireSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	assert.ErrorIs(t, err, util.ErrNoSession)

	_, err = svc.UpdateCustomer(ctx, "id", CustomerPatch{})
	assert.ErrorIs(t, err, util.ErrNoSession)

	assert.ErrorIs(t, svc.DeleteCustomer(ctx, "id"), util.ErrNoSession)

	_, err = svc.AddLoan(ctx, validLoanInput())
	assert.ErrorIs(t, err, util.ErrNoSession)

	_, err = svc.AddRepayment(ctx, "id", RepaymentInput{Amount: decimal.NewFromInt(10), Date: date(2024, time.January, 2)})
	assert.ErrorIs(t, err, util.ErrNoSession)

	assert.ErrorIs(t, svc.DeleteLoan(ctx, "id"), util.ErrNoSession)
}

func TestAddCustomer(t *testing.T) {
	ctx := context.Background()
	svc, store, recorder := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha", Phone: "12345"})
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.Equal(t, "user-1", customer.UserID)
	assert.False(t, customer.CreatedAt.IsZero())

	// Write-through: the collection is persisted immediately.
	raw, err := store.Get(ctx, kv.CustomersKey("user-1"))
	require.NoError(t, err)
	assert.Contains(t, raw, "Asha")

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.VariantSuccess, events[0].Variant)

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.AddCustomer(ctx, CustomerInput{})
		assert.ErrorIs(t, err, util.ErrInvalidInput)
		assert.Len(t, svc.Customers(), 1)
	})
}

func TestUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha", Phone: "12345"})
	require.NoError(t, err)

	newName := "Asha Devi"
	updated, err := svc.UpdateCustomer(ctx, customer.ID, CustomerPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Asha Devi", updated.Name)
	assert.Equal(t, "12345", updated.Phone, "unpatched fields stay")

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdateCustomer(ctx, "missing", CustomerPatch{Name: &newName})
		assert.ErrorIs(t, err, util.ErrCustomerNotFound)
	})

	t.Run("another user's customer looks like not-found", func(t *testing.T) {
		require.NoError(t, svc.Reinitialize(ctx, "user-2"))
		_, err := svc.UpdateCustomer(ctx, customer.ID, CustomerPatch{Name: &newName})
		assert.ErrorIs(t, err, util.ErrCustomerNotFound)

		// user-1's record is untouched
		require.NoError(t, svc.Reinitialize(ctx, "user-1"))
		detail, err := svc.UpdateCustomer(ctx, customer.ID, CustomerPatch{})
		require.NoError(t, err)
		assert.Equal(t, "Asha Devi", detail.Name)
	})
}

func TestDeleteCustomerCascadesLoans(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	first, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	require.NoError(t, err)
	second, err := svc.AddCustomer(ctx, CustomerInput{Name: "Binod"})
	require.NoError(t, err)

	in := validLoanInput()
	in.CustomerID = first.ID
	_, err = svc.AddLoan(ctx, in)
	require.NoError(t, err)
	_, err = svc.AddLoan(ctx, in)
	require.NoError(t, err)

	in.CustomerID = second.ID
	kept, err := svc.AddLoan(ctx, in)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomer(ctx, first.ID))

	assert.Len(t, svc.Customers(), 1)
	require.Len(t, svc.Loans(), 1)
	assert.Equal(t, kept.ID, svc.Loans()[0].ID)
	for _, l := range svc.Loans() {
		assert.NotEqual(t, first.ID, l.CustomerID, "no orphaned loans remain")
	}

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteCustomer(ctx, first.ID), util.ErrCustomerNotFound)
	})
}

func TestAddLoanValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	tests := []struct {
		name   string
		mutate func(*LoanInput)
	}{
		{"missing customer id", func(in *LoanInput) { in.CustomerID = "" }},
		{"missing amount", func(in *LoanInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *LoanInput) { in.Amount = decimal.NewFromInt(-5) }},
		{"missing issue date", func(in *LoanInput) { in.IssueDate = time.Time{} }},
		{"missing frequency", func(in *LoanInput) { in.Frequency = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validLoanInput()
			tt.mutate(&in)
			_, err := svc.AddLoan(ctx, in)
			assert.ErrorIs(t, err, util.ErrInvalidInput)
			assert.Empty(t, svc.Loans(), "collection must stay unchanged")
		})
	}

	t.Run("valid input", func(t *testing.T) {
		loan, err := svc.AddLoan(ctx, validLoanInput())
		require.NoError(t, err)
		assert.Equal(t, "user-1", loan.UserID)
		assert.NotNil(t, loan.Repayments)
		assert.Empty(t, loan.Repayments)
	})
}

func TestAddRepayment(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	loan, err := svc.AddLoan(ctx, validLoanInput())
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.AddRepayment(ctx, loan.ID, RepaymentInput{Date: date(2024, time.January, 10)})
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		_, err = svc.AddRepayment(ctx, loan.ID, RepaymentInput{Amount: decimal.NewFromInt(-10), Date: date(2024, time.January, 10)})
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		_, err = svc.AddRepayment(ctx, loan.ID, RepaymentInput{Amount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		assert.Empty(t, svc.Loans()[0].Repayments)
	})

	t.Run("unknown loan", func(t *testing.T) {
		_, err := svc.AddRepayment(ctx, "missing", RepaymentInput{Amount: decimal.NewFromInt(10), Date: date(2024, time.January, 10)})
		assert.ErrorIs(t, err, util.ErrLoanNotFound)
	})

	t.Run("out-of-order insertion stays sorted ascending", func(t *testing.T) {
		dates := []time.Time{
			date(2024, time.March, 5),
			date(2024, time.January, 10),
			date(2024, time.February, 20),
		}
		for _, d := range dates {
			_, err := svc.AddRepayment(ctx, loan.ID, RepaymentInput{Amount: decimal.NewFromInt(50), Date: d})
			require.NoError(t, err)
		}

		repayments := svc.Loans()[0].Repayments
		require.Len(t, repayments, 3)
		for i := 1; i < len(repayments); i++ {
			assert.False(t, repayments[i].Date.Before(repayments[i-1].Date),
				"repayments must be ordered ascending by date")
		}
	})
}

func TestDeleteLoan(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	loan, err := svc.AddLoan(ctx, validLoanInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLoan(ctx, loan.ID))
	assert.Empty(t, svc.Loans())

	assert.ErrorIs(t, svc.DeleteLoan(ctx, loan.ID), util.ErrLoanNotFound)
}

func TestReinitializeReloadsPersistedData(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	recorder := notify.NewRecorder()

	first := NewLedgerService(store, recorder, util.GetLogger())
	require.NoError(t, first.Reinitialize(ctx, "user-1"))
	customer, err := first.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	require.NoError(t, err)
	in := validLoanInput()
	in.CustomerID = customer.ID
	_, err = first.AddLoan(ctx, in)
	require.NoError(t, err)

	// A fresh engine over the same store sees the same collections.
	second := NewLedgerService(store, recorder, util.GetLogger())
	require.NoError(t, second.Reinitialize(ctx, "user-1"))
	require.Len(t, second.Customers(), 1)
	assert.Equal(t, "Asha", second.Customers()[0].Name)
	require.Len(t, second.Loans(), 1)
	assert.True(t, second.Loans()[0].Amount.Equal(decimal.NewFromInt(500)))
}

func TestReinitializeWithEmptyUserClears(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))
	_, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	require.NoError(t, err)

	require.NoError(t, svc.Reinitialize(ctx, ""))
	assert.Empty(t, svc.ActiveUserID())
	assert.Empty(t, svc.Customers())

	_, err = svc.AddCustomer(ctx, CustomerInput{Name: "Binod"})
	assert.ErrorIs(t, err, util.ErrNoSession)
}

func TestCorruptPayloadLoadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	recorder := notify.NewRecorder()
	require.NoError(t, store.Set(ctx, kv.CustomersKey("user-1"), "{not json"))

	svc := NewLedgerService(store, recorder, util.GetLogger())
	require.NoError(t, svc.Reinitialize(ctx, "user-1"), "corruption must not fail initialization")
	assert.Empty(t, svc.Customers())

	events := recorder.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, notify.VariantDestructive, events[0].Variant)
	assert.Equal(t, "Load Error", events[0].Title)

	// The engine stays usable after a corrupt load.
	_, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	assert.NoError(t, err)
}

// failingStore wraps a Store and rejects writes on demand.
type failingStore struct {
	kv.Store
	failWrites bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	return f.Store.Set(ctx, key, value)
}

func TestWriteFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemory()}
	recorder := notify.NewRecorder()
	svc := NewLedgerService(store, recorder, util.GetLogger())
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	store.failWrites = true
	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	require.NoError(t, err, "the mutation itself succeeds")
	require.NotNil(t, customer)

	// Memory wins: the in-memory change is kept, not rolled back.
	require.Len(t, svc.Customers(), 1)

	// The write failure is reported.
	var sawSaveError bool
	for _, e := range recorder.Events() {
		if e.Title == "Save Error" {
			sawSaveError = true
		}
	}
	assert.True(t, sawSaveError, "a persistence failure must be surfaced")

	// Nothing reached the durable store.
	_, err = store.Store.Get(ctx, kv.CustomersKey("user-1"))
	assert.ErrorIs(t, err, util.ErrNotFound)
}
