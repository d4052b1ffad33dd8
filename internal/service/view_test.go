// internal/service/view_test.go
package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credikhaata-ledger/internal/domain"
	"credikhaata-ledger/internal/util"
)

func newTestView(t *testing.T, today time.Time) (LedgerService, *View) {
	t.Helper()
	svc, _, _ := newTestService(t)
	view := NewView(svc, func() time.Time { return today })
	return svc, view
}

func TestListCustomers(t *testing.T) {
	ctx := context.Background()
	today := date(2024, time.March, 1)
	svc, view := newTestView(t, today)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	t.Run("empty collections yield an empty list", func(t *testing.T) {
		assert.Empty(t, view.ListCustomers())
	})

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	require.NoError(t, err)

	// One overdue loan (issued 2024-01-01, due 2024-02-01, nothing repaid)
	// and one fully paid loan.
	overdueIn := LoanInput{
		CustomerID:      customer.ID,
		ItemDescription: "Seed stock",
		Amount:          decimal.NewFromInt(1000),
		IssueDate:       date(2024, time.January, 1),
		Frequency:       domain.FrequencyMonthly,
	}
	_, err = svc.AddLoan(ctx, overdueIn)
	require.NoError(t, err)

	paidIn := overdueIn
	paidIn.Amount = decimal.NewFromInt(500)
	paidLoan, err := svc.AddLoan(ctx, paidIn)
	require.NoError(t, err)
	_, err = svc.AddRepayment(ctx, paidLoan.ID, RepaymentInput{
		Amount: decimal.NewFromInt(500),
		Date:   date(2024, time.January, 15),
	})
	require.NoError(t, err)

	summaries := view.ListCustomers()
	require.Len(t, summaries, 1)
	summary := summaries[0]

	assert.Equal(t, 2, summary.LoanCount)
	assert.Equal(t, domain.CustomerStatusOverdue, summary.Status)
	// Only the overdue loan contributes; the paid loan is settled.
	assert.True(t, summary.OutstandingBalance.Equal(decimal.NewFromInt(1000)),
		"got %s", summary.OutstandingBalance)
	require.NotNil(t, summary.NextDueDate)
	assert.True(t, summary.NextDueDate.Equal(date(2024, time.February, 1)))

	t.Run("recomputed after a mutation, never cached", func(t *testing.T) {
		_, err := svc.AddRepayment(ctx, svc.Loans()[0].ID, RepaymentInput{
			Amount: decimal.NewFromInt(1000),
			Date:   date(2024, time.February, 28),
		})
		require.NoError(t, err)

		refreshed := view.ListCustomers()
		require.Len(t, refreshed, 1)
		assert.Equal(t, domain.CustomerStatusUpToDate, refreshed[0].Status)
		assert.True(t, refreshed[0].OutstandingBalance.IsZero())
		assert.Nil(t, refreshed[0].NextDueDate)
	})
}

func TestCustomerDetail(t *testing.T) {
	ctx := context.Background()
	today := date(2024, time.March, 1)
	svc, view := newTestView(t, today)
	require.NoError(t, svc.Reinitialize(ctx, "user-1"))

	customer, err := svc.AddCustomer(ctx, CustomerInput{Name: "Asha"})
	require.NoError(t, err)

	older := LoanInput{
		CustomerID: customer.ID,
		Amount:     decimal.NewFromInt(1000),
		IssueDate:  date(2024, time.January, 1),
		Frequency:  domain.FrequencyMonthly,
	}
	_, err = svc.AddLoan(ctx, older)
	require.NoError(t, err)

	newer := older
	newer.IssueDate = date(2024, time.February, 10)
	newer.Amount = decimal.NewFromInt(300)
	_, err = svc.AddLoan(ctx, newer)
	require.NoError(t, err)

	detail, err := view.CustomerDetail(customer.ID)
	require.NoError(t, err)

	require.Len(t, detail.Loans, 2)
	// Most recent loan first, distinct from the ascending repayment order.
	assert.True(t, detail.Loans[0].IssueDate.Equal(date(2024, time.February, 10)))
	assert.True(t, detail.Loans[1].IssueDate.Equal(date(2024, time.January, 1)))

	assert.Equal(t, domain.LoanStatusPending, detail.Loans[0].Status)
	assert.Equal(t, domain.LoanStatusOverdue, detail.Loans[1].Status)
	assert.True(t, detail.Loans[1].NextDueDate.Equal(date(2024, time.February, 1)))
	assert.True(t, detail.Loans[1].RemainingBalance.Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, domain.CustomerStatusOverdue, detail.Status)
	assert.Equal(t, 2, detail.LoanCount)
	assert.True(t, detail.OutstandingBalance.Equal(decimal.NewFromInt(1300)))

	t.Run("unknown customer", func(t *testing.T) {
		_, err := view.CustomerDetail("missing")
		assert.ErrorIs(t, err, util.ErrCustomerNotFound)
	})

	t.Run("another user's session cannot see the customer", func(t *testing.T) {
		require.NoError(t, svc.Reinitialize(ctx, "user-2"))
		_, err := view.CustomerDetail(customer.ID)
		assert.ErrorIs(t, err, util.ErrCustomerNotFound)
	})
}
