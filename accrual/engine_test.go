package accrual_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-engine/accrual"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// The canonical test loan: 2000 lent on Sunday 2025-07-06, default rates.
// First period runs [2025-07-06, 2025-07-13); interest 400 per period.

func d(month time.Month, day int) accrual.Date {
	return accrual.NewDate(2025, month, day)
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func baseTerms() accrual.Terms {
	return accrual.Terms{
		Principal: dec(2000),
		StartDate: d(time.July, 6),
	}
}

func pay(amount float64, date accrual.Date) accrual.Payment {
	return accrual.Payment{Amount: dec(amount), Date: date}
}

func mustStatus(t *testing.T, terms accrual.Terms, payments []accrual.Payment, asOf accrual.Date) accrual.Status {
	t.Helper()
	status, err := accrual.ComputeStatus(terms, payments, asOf)
	require.NoError(t, err)
	return status
}

func assertDec(t *testing.T, expected float64, actual decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "%s: expected %v, got %s", msg, expected, actual)
}

// =============================================================================
// PERIOD SETTLEMENT
// =============================================================================

func TestComputeStatus_OnTimeInterestPayment(t *testing.T) {
	// GIVEN: 2000 loan, exactly one period's interest paid on the due date
	// WHEN: Evaluating on that same date
	// THEN: Principal untouched, nothing due, loan rolled into a new period

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(400, d(time.July, 13))},
		d(time.July, 13))

	assertDec(t, 2000, status.Principal, "principal")
	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 0, status.PenaltyDue, "penalty due")
	assert.Equal(t, 0, status.DaysOverdue)
	assert.False(t, status.IsOverdue)

	// The settled period ended 07-13; the new one ends 07-20
	assert.Equal(t, d(time.July, 20), status.NextPaymentDue)
	assertDec(t, 400, status.InterestPaid, "interest paid")
	assertDec(t, 0, status.PenaltyPaid, "penalty paid")
	require.NotNil(t, status.LastInterestPaymentDate)
	assert.Equal(t, d(time.July, 13), *status.LastInterestPaymentDate)
}

func TestComputeStatus_OneDayLate_PenaltyThenInterest(t *testing.T) {
	// GIVEN: 500 paid one day past the due date
	// WHEN: The payment is allocated
	// THEN: 100 penalty (2000 x 5% x 1) first, 400 interest next, the
	//       period settles and re-anchors at the payment date

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(500, d(time.July, 14))},
		d(time.July, 14))

	assertDec(t, 2000, status.Principal, "principal")
	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 0, status.PenaltyDue, "penalty due")
	assertDec(t, 100, status.PenaltyPaid, "penalty paid")
	assertDec(t, 400, status.InterestPaid, "interest paid")

	// Penalized settlement re-anchors: next period is [07-14, 07-21)
	assert.Equal(t, d(time.July, 21), status.NextPaymentDue)
}

func TestComputeStatus_EarlyPaymentReducesPrincipal(t *testing.T) {
	// GIVEN: 400 paid three days before the first due date
	// WHEN: Evaluating before the due date
	// THEN: Nothing is due; the payment went to principal

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(400, d(time.July, 10))},
		d(time.July, 12))

	assertDec(t, 1600, status.Principal, "principal")
	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 0, status.PenaltyDue, "penalty due")
	assert.False(t, status.IsOverdue)
	assertDec(t, 400, status.PrincipalPaid, "principal paid")
}

func TestComputeStatus_SettleThenPrepayNextPeriod(t *testing.T) {
	// GIVEN: Interest settled on time at 07-13, then 1000 paid on 07-14
	// WHEN: The second payment lands inside the new period [07-13, 07-20)
	// THEN: It reduces principal directly

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{
			pay(400, d(time.July, 13)),
			pay(1000, d(time.July, 14)),
		},
		d(time.July, 14))

	assertDec(t, 1000, status.Principal, "principal")
	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 400, status.InterestPaid, "interest paid")
	assertDec(t, 1000, status.PrincipalPaid, "principal paid")
	assert.Equal(t, d(time.July, 20), status.NextPaymentDue)

	// New-period interest reflects the reduced balance
	assertDec(t, 200, status.WeeklyInterest, "weekly interest")
}

// =============================================================================
// OVERDUE REPORTING
// =============================================================================

func TestComputeStatus_NoPayments_SevenDaysOverdue(t *testing.T) {
	// GIVEN: No payments at all
	// WHEN: Evaluating a full week past the first due date
	// THEN: Interest 400 and penalty 700 (2000 x 5% x 7) are due

	status := mustStatus(t, baseTerms(), nil, d(time.July, 20))

	assertDec(t, 2000, status.Principal, "principal")
	assertDec(t, 400, status.InterestDue, "interest due")
	assertDec(t, 700, status.PenaltyDue, "penalty due")
	assertDec(t, 3100, status.TotalDue, "total due")
	assert.Equal(t, 7, status.DaysOverdue)
	assert.True(t, status.IsOverdue)
	assert.Equal(t, accrual.StateDue, status.State())
}

func TestComputeStatus_NothingDueBeforeDueDate(t *testing.T) {
	// GIVEN: A fresh loan with no payments
	// WHEN: Evaluating inside the first period
	// THEN: Nothing is due yet

	status := mustStatus(t, baseTerms(), nil, d(time.July, 10))

	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 0, status.PenaltyDue, "penalty due")
	assert.False(t, status.IsOverdue)
	assert.Equal(t, accrual.StateAccruing, status.State())
	assert.Equal(t, d(time.July, 13), status.NextPaymentDue)
	assert.Equal(t, d(time.July, 13), status.PrincipalDueDate)
}

func TestComputeStatus_LargeLatePayment_SettlesAndReducesPrincipal(t *testing.T) {
	// GIVEN: 2000 paid eight days past the due date
	// WHEN: The payment is allocated
	// THEN: Penalty 800 (2000 x 5% x 8), interest 400, remainder 800 to
	//       principal, leaving 1200 outstanding

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(2000, d(time.July, 21))},
		d(time.July, 21))

	assertDec(t, 1200, status.Principal, "principal")
	assertDec(t, 800, status.PenaltyPaid, "penalty paid")
	assertDec(t, 400, status.InterestPaid, "interest paid")
	assertDec(t, 800, status.PrincipalPaid, "principal paid")
	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 0, status.PenaltyDue, "penalty due")
}

func TestComputeStatus_PartialLatePayment_RemainsDue(t *testing.T) {
	// GIVEN: Only 300 paid two days late, against 100+100 penalty and 400 interest
	// WHEN: Evaluating two more days on
	// THEN: The period has not settled; the penalty reassessment grows with
	//       the extra late days, minus what was already paid

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(300, d(time.July, 15))},
		d(time.July, 17))

	// Payment on 07-15 (2 days late): assessed 200, pays 200 penalty + 100 interest
	assertDec(t, 200, status.PenaltyPaid, "penalty paid")
	assertDec(t, 100, status.InterestPaid, "interest paid")
	assertDec(t, 2000, status.Principal, "principal")

	// At 07-17 (4 days late): assessed 400, 200 already paid
	assertDec(t, 200, status.PenaltyDue, "penalty due")
	assertDec(t, 300, status.InterestDue, "interest due")
	assert.Equal(t, 4, status.DaysOverdue)
	assert.True(t, status.IsOverdue)
}

// =============================================================================
// PAYOFF
// =============================================================================

func TestComputeStatus_Overpayment_ClosesLoan(t *testing.T) {
	// GIVEN: 5000 paid on the due date against 400 interest + 2000 principal
	// WHEN: The payment is allocated
	// THEN: The loan closes; the excess is not owed and is not allocated

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(5000, d(time.July, 13))},
		d(time.July, 13))

	assertDec(t, 0, status.Principal, "principal")
	assertDec(t, 0, status.InterestDue, "interest due")
	assertDec(t, 0, status.PenaltyDue, "penalty due")
	assert.True(t, status.FullyPaid())
	assert.Equal(t, accrual.StateFullyPaid, status.State())
	assertDec(t, 2000, status.PrincipalPaid, "principal paid")
	assertDec(t, 400, status.InterestPaid, "interest paid")
	assertDec(t, 5000, status.TotalPaid, "total paid")
	assert.True(t, status.NextPaymentDue.IsZero(), "closed loan has no due date")
}

func TestComputeStatus_EarlyFullPayoff_NoInterestCharged(t *testing.T) {
	// GIVEN: The full principal repaid before the first due date
	// WHEN: Evaluating after what would have been the due date
	// THEN: The loan is closed with no interest collected

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(2000, d(time.July, 10))},
		d(time.July, 20))

	assertDec(t, 0, status.Principal, "principal")
	assert.True(t, status.FullyPaid())
	assertDec(t, 0, status.InterestPaid, "interest paid")
}

func TestComputeStatus_PaymentAfterClose_Ignored(t *testing.T) {
	// GIVEN: A closed loan receives a further payment
	// WHEN: Evaluating afterwards
	// THEN: The payment counts toward the raw total but allocates nothing

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{
			pay(5000, d(time.July, 13)),
			pay(100, d(time.July, 15)),
		},
		d(time.July, 16))

	assert.True(t, status.FullyPaid())
	assertDec(t, 5100, status.TotalPaid, "total paid")
	assertDec(t, 2000, status.PrincipalPaid, "principal paid")
}

// =============================================================================
// POLICY VARIANTS
// =============================================================================

func TestComputeStatus_InterestFirstPrepay(t *testing.T) {
	// GIVEN: Interest-first prepay: settle on time, then 1000 inside period two
	// WHEN: The early payment is allocated
	// THEN: 400 services period-two interest, 600 reduces principal

	cfg := accrual.DefaultConfig()
	cfg.Prepay = accrual.PrepayInterestFirst
	engine := accrual.NewEngine(cfg)

	status, err := engine.ComputeStatus(baseTerms(),
		[]accrual.Payment{
			pay(400, d(time.July, 13)),
			pay(1000, d(time.July, 14)),
		},
		d(time.July, 14))
	require.NoError(t, err)

	assertDec(t, 1400, status.Principal, "principal")
	assertDec(t, 800, status.InterestPaid, "interest paid")
	assertDec(t, 600, status.PrincipalPaid, "principal paid")
}

func TestComputeStatus_FixedCadenceRollover(t *testing.T) {
	// GIVEN: Fixed-cadence rollover and a one-day-late settlement
	// WHEN: The period rolls
	// THEN: The next period keeps the weekly cadence, ending 07-20 not 07-21

	cfg := accrual.DefaultConfig()
	cfg.Rollover = accrual.RolloverFixedCadence
	engine := accrual.NewEngine(cfg)

	status, err := engine.ComputeStatus(baseTerms(),
		[]accrual.Payment{pay(500, d(time.July, 14))},
		d(time.July, 14))
	require.NoError(t, err)

	assert.Equal(t, d(time.July, 20), status.NextPaymentDue)
	assertDec(t, 100, status.PenaltyPaid, "penalty paid")
}

func TestComputeStatus_CustomRates(t *testing.T) {
	// GIVEN: Per-loan rates overriding the defaults
	// WHEN: Evaluating overdue
	// THEN: Dues use the overridden rates

	interest := dec(0.10)
	penalty := dec(0.01)
	terms := baseTerms()
	terms.InterestRate = &interest
	terms.PenaltyRate = &penalty

	status := mustStatus(t, terms, nil, d(time.July, 15))

	assertDec(t, 200, status.InterestDue, "interest due")  // 2000 x 10%
	assertDec(t, 40, status.PenaltyDue, "penalty due")     // 2000 x 1% x 2
	assertDec(t, 200, status.WeeklyInterest, "weekly interest")
}

// =============================================================================
// DETERMINISM AND INVARIANTS
// =============================================================================

func TestComputeStatus_PaymentOrderIrrelevant(t *testing.T) {
	// GIVEN: The same payments supplied in two different slice orders
	// WHEN: Computing status
	// THEN: Results are identical

	payments := []accrual.Payment{
		pay(400, d(time.July, 13)),
		pay(1000, d(time.July, 14)),
	}
	reversed := []accrual.Payment{payments[1], payments[0]}

	a := mustStatus(t, baseTerms(), payments, d(time.July, 25))
	b := mustStatus(t, baseTerms(), reversed, d(time.July, 25))

	assert.True(t, a.Principal.Equal(b.Principal))
	assert.True(t, a.InterestDue.Equal(b.InterestDue))
	assert.True(t, a.PenaltyDue.Equal(b.PenaltyDue))
	assert.Equal(t, a.DaysOverdue, b.DaysOverdue)
	assert.Equal(t, a.NextPaymentDue, b.NextPaymentDue)
}

func TestComputeStatus_IdenticalInputsIdenticalOutput(t *testing.T) {
	// GIVEN: The exact same terms, payments, and evaluation date
	// WHEN: Computing status twice
	// THEN: Every reported value matches

	payments := []accrual.Payment{
		pay(500, d(time.July, 14)),
		pay(300, d(time.July, 22)),
	}
	asOf := d(time.July, 25)

	a := mustStatus(t, baseTerms(), payments, asOf)
	b := mustStatus(t, baseTerms(), payments, asOf)

	assert.True(t, a.Principal.Equal(b.Principal))
	assert.True(t, a.InterestDue.Equal(b.InterestDue))
	assert.True(t, a.PenaltyDue.Equal(b.PenaltyDue))
	assert.True(t, a.TotalDue.Equal(b.TotalDue))
	assert.True(t, a.TotalPaid.Equal(b.TotalPaid))
	assert.Equal(t, a.DaysOverdue, b.DaysOverdue)
	assert.Equal(t, a.NextPaymentDue, b.NextPaymentDue)
	assert.Equal(t, a.State(), b.State())
	assert.Equal(t, a.Periods, b.Periods)
}

func TestComputeStatus_PrincipalNeverIncreases(t *testing.T) {
	// GIVEN: A payment history spanning several periods
	// WHEN: Evaluating day by day across the whole range
	// THEN: Outstanding principal only ever goes down

	payments := []accrual.Payment{
		pay(400, d(time.July, 13)),
		pay(1000, d(time.July, 14)),
		pay(700, d(time.July, 21)),
	}

	prev := dec(2000)
	for day := d(time.July, 6); day.BeforeOrEqual(d(time.August, 10)); day = day.AddDays(1) {
		status := mustStatus(t, baseTerms(), payments, day)
		assert.True(t, status.Principal.LessThanOrEqual(prev),
			"principal rose at %s: %s > %s", day, status.Principal, prev)
		prev = status.Principal
	}
}

func TestComputeStatus_InputsNeverMutated(t *testing.T) {
	// GIVEN: An unsorted payments slice
	// WHEN: Computing status
	// THEN: The caller's slice keeps its original order

	payments := []accrual.Payment{
		pay(1000, d(time.July, 14)),
		pay(400, d(time.July, 13)),
	}
	_ = mustStatus(t, baseTerms(), payments, d(time.July, 20))

	assert.Equal(t, d(time.July, 14), payments[0].Date)
	assert.Equal(t, d(time.July, 13), payments[1].Date)
}

func TestComputeStatus_PeriodTrace(t *testing.T) {
	// GIVEN: A settled period followed by an overdue one
	// WHEN: Computing status
	// THEN: The trace lists both in order with correct states

	status := mustStatus(t, baseTerms(),
		[]accrual.Payment{pay(400, d(time.July, 13))},
		d(time.July, 22))

	require.Len(t, status.Periods, 2)

	first := status.Periods[0]
	assert.Equal(t, accrual.PeriodSettled, first.State)
	assert.Equal(t, d(time.July, 6), first.Start)
	assert.Equal(t, d(time.July, 13), first.End)
	assertDec(t, 400, first.InterestPaid, "first period interest paid")

	second := status.Periods[1]
	assert.Equal(t, accrual.PeriodDue, second.State)
	assert.Equal(t, d(time.July, 13), second.Start)
	assert.Equal(t, d(time.July, 20), second.End)
	assert.True(t, second.Penalized)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestComputeStatus_RejectsBadInputs(t *testing.T) {
	asOf := d(time.July, 10)
	negativeRate := dec(-0.1)

	negInterest := baseTerms()
	negInterest.InterestRate = &negativeRate
	negPenalty := baseTerms()
	negPenalty.PenaltyRate = &negativeRate

	cases := []struct {
		name     string
		terms    accrual.Terms
		payments []accrual.Payment
		asOf     accrual.Date
	}{
		{
			name:  "negative principal",
			terms: accrual.Terms{Principal: dec(-1), StartDate: d(time.July, 6)},
			asOf:  asOf,
		},
		{
			name:  "negative interest rate",
			terms: negInterest,
			asOf:  asOf,
		},
		{
			name:  "negative penalty rate",
			terms: negPenalty,
			asOf:  asOf,
		},
		{
			name:  "zero start date",
			terms: accrual.Terms{Principal: dec(2000)},
			asOf:  asOf,
		},
		{
			name:  "zero as-of date",
			terms: baseTerms(),
		},
		{
			name:     "non-positive payment amount",
			terms:    baseTerms(),
			payments: []accrual.Payment{pay(0, d(time.July, 8))},
			asOf:     asOf,
		},
		{
			name:     "zero payment date",
			terms:    baseTerms(),
			payments: []accrual.Payment{{Amount: dec(100)}},
			asOf:     asOf,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accrual.ComputeStatus(tc.terms, tc.payments, tc.asOf)
			require.Error(t, err)
			assert.True(t, accrual.IsInvalidInput(err), "expected invalid input, got %v", err)
		})
	}
}
