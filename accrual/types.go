/*
Package accrual computes the financial state of a small interest-bearing
cash loan: outstanding principal, interest currently owed, late-payment
penalty currently owed, and the next due date.

PURPOSE:
  This is the hard, reusable core of the loan ledger. Given a loan's terms,
  its payment history, and an explicit evaluation instant, ComputeStatus
  replays the loan period by period and reports where it stands. The
  computation is pure: no clock reads, no I/O, no state between calls.
  Identical inputs always produce identical output.

KEY CONCEPTS:
  - Terms: principal, per-period interest rate, per-day penalty rate, start
  - Payment: an amount on a calendar date
  - Period: a 7-day billing window; interest accrues on the principal
    outstanding at the window's start
  - Settle: a period's interest (and any incurred penalty) fully paid,
    rolling the loan into a fresh period
  - Penalty: a daily surcharge on outstanding principal once a period's
    due date has passed unsettled

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, no floats
  2. Purity: the evaluation instant is a parameter, never time.Now()
  3. One implementation: period-rollover variants are Config policies,
     not forked code paths

SEE ALSO:
  - engine.go: The period walker
  - policy.go: Rollover and prepay policy configuration
  - status.go: The reported output
*/
package accrual

import "github.com/shopspring/decimal"

// Default rates applied when Terms leaves them unset.
var (
	DefaultInterestRate = decimal.NewFromFloat(0.20) // fraction of principal per period
	DefaultPenaltyRate  = decimal.NewFromFloat(0.05) // fraction of principal per day late
)

// Terms describes a loan. InterestRate and PenaltyRate are optional; nil
// means the engine defaults apply. A rate edit by the caller is simply a new
// Terms snapshot - Terms itself is never mutated by the engine.
type Terms struct {
	Principal    decimal.Decimal
	InterestRate *decimal.Decimal
	PenaltyRate  *decimal.Decimal
	StartDate    Date
}

// Payment is a single repayment. Amount must be positive.
//
// Payments are supplied in insertion order; the engine re-sorts them by date
// ascending, keeping insertion order for same-day payments.
type Payment struct {
	Amount decimal.Decimal
	Date   Date
}
