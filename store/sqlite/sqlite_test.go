package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/accrual"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testLoan(id string, created time.Time) *ledger.Loan {
	return &ledger.Loan{
		ID:           id,
		BorrowerName: "Maria Santos",
		Phone:        "555-0101",
		Principal:    decimal.NewFromInt(2000),
		InterestRate: decimal.NewFromFloat(0.20),
		PenaltyRate:  decimal.NewFromFloat(0.05),
		StartDate:    accrual.NewDate(2025, time.July, 6),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestStore_LoanRoundTrip(t *testing.T) {
	// GIVEN: A loan inserted with exact decimal terms
	// WHEN: Reading it back
	// THEN: Every field survives, decimals exactly

	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateLoan(ctx, testLoan("loan-1", created)))

	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)

	assert.Equal(t, "Maria Santos", got.BorrowerName)
	assert.Equal(t, "555-0101", got.Phone)
	assert.True(t, decimal.NewFromInt(2000).Equal(got.Principal))
	assert.True(t, decimal.NewFromFloat(0.20).Equal(got.InterestRate))
	assert.True(t, decimal.NewFromFloat(0.05).Equal(got.PenaltyRate))
	assert.Equal(t, accrual.NewDate(2025, time.July, 6), got.StartDate)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Empty(t, got.Payments)
}

func TestStore_GetMissingLoan(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetLoan(context.Background(), "nope")
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound)
}

func TestStore_PaymentsKeepInsertionOrder(t *testing.T) {
	// GIVEN: Two same-day payments inserted in a known order
	// WHEN: Reading the loan back
	// THEN: The rows come back in insertion order

	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateLoan(ctx, testLoan("loan-1", created)))

	day := accrual.NewDate(2025, time.July, 13)
	first := ledger.PaymentEntry{ID: "pay-1", Amount: decimal.NewFromInt(100), Date: day, CreatedAt: created.Add(time.Minute)}
	second := ledger.PaymentEntry{ID: "pay-2", Amount: decimal.NewFromInt(300), Date: day, CreatedAt: created.Add(2 * time.Minute)}
	require.NoError(t, store.AddPayment(ctx, "loan-1", first))
	require.NoError(t, store.AddPayment(ctx, "loan-1", second))

	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, got.Payments, 2)
	assert.Equal(t, "pay-1", got.Payments[0].ID)
	assert.Equal(t, "pay-2", got.Payments[1].ID)
}

func TestStore_UpdateAndDeletePayment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateLoan(ctx, testLoan("loan-1", created)))

	entry := ledger.PaymentEntry{
		ID:        "pay-1",
		Amount:    decimal.NewFromInt(100),
		Date:      accrual.NewDate(2025, time.July, 13),
		CreatedAt: created,
	}
	require.NoError(t, store.AddPayment(ctx, "loan-1", entry))

	// Edit in place
	entry.Amount = decimal.NewFromInt(400)
	entry.Date = accrual.NewDate(2025, time.July, 14)
	require.NoError(t, store.UpdatePayment(ctx, "loan-1", entry))

	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, got.Payments, 1)
	assert.True(t, decimal.NewFromInt(400).Equal(got.Payments[0].Amount))
	assert.Equal(t, accrual.NewDate(2025, time.July, 14), got.Payments[0].Date)

	// Remove
	require.NoError(t, store.DeletePayment(ctx, "loan-1", "pay-1"))
	got, err = store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Empty(t, got.Payments)

	// Gone means not found
	err = store.DeletePayment(ctx, "loan-1", "pay-1")
	assert.ErrorIs(t, err, ledger.ErrPaymentNotFound)
}

func TestStore_DeleteLoanCascadesPayments(t *testing.T) {
	// GIVEN: A loan with a payment
	// WHEN: Deleting the loan and recreating it with the same ID
	// THEN: The old payment rows are gone

	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateLoan(ctx, testLoan("loan-1", created)))
	require.NoError(t, store.AddPayment(ctx, "loan-1", ledger.PaymentEntry{
		ID:        "pay-1",
		Amount:    decimal.NewFromInt(100),
		Date:      accrual.NewDate(2025, time.July, 13),
		CreatedAt: created,
	}))

	require.NoError(t, store.DeleteLoan(ctx, "loan-1"))
	_, err := store.GetLoan(ctx, "loan-1")
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound)

	require.NoError(t, store.CreateLoan(ctx, testLoan("loan-1", created)))
	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)
	assert.Empty(t, got.Payments)
}

func TestStore_ListLoansOrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, time.July, 6, 10, 0, 0, 0, time.UTC)

	second := testLoan("loan-b", base.Add(time.Hour))
	first := testLoan("loan-a", base)
	require.NoError(t, store.CreateLoan(ctx, second))
	require.NoError(t, store.CreateLoan(ctx, first))

	loans, err := store.ListLoans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, "loan-a", loans[0].ID)
	assert.Equal(t, "loan-b", loans[1].ID)
}
