/*
status.go - The engine's reported output

PURPOSE:
  Status is a complete snapshot of a loan at an evaluation date: the
  balances owed, the next due date, lifetime payment totals, and a
  period-by-period trace of how the walker got there. It is a pure value;
  nothing in it refers back to engine internals.
*/
package accrual

import "github.com/shopspring/decimal"

// LoanState classifies where a loan stands at the evaluation date.
type LoanState string

const (
	// StateAccruing: the open period's due date has not arrived; nothing
	// is currently owed.
	StateAccruing LoanState = "ACCRUING"

	// StateDue: the open period's due date has passed with interest (and
	// possibly penalty) outstanding.
	StateDue LoanState = "DUE"

	// StateFullyPaid: principal is zero and nothing is owed.
	StateFullyPaid LoanState = "FULLY_PAID"
)

// PeriodState classifies a single period within the trace.
type PeriodState string

const (
	PeriodSettled  PeriodState = "SETTLED_PERIOD"
	PeriodDue      PeriodState = "DUE"
	PeriodAccruing PeriodState = "ACCRUING"
)

// PeriodRecord is one entry in the period trace.
type PeriodRecord struct {
	Start Date
	End   Date

	// PrincipalAtStart is the outstanding principal when the period opened;
	// the period's interest obligation is computed from it.
	PrincipalAtStart decimal.Decimal

	InterestObligation decimal.Decimal
	InterestPaid       decimal.Decimal
	PenaltyAssessed    decimal.Decimal
	PenaltyPaid        decimal.Decimal

	// Penalized is true when the period settled (or sits) past its due date.
	Penalized bool

	State PeriodState
}

// Status is the loan's computed state at an evaluation date.
type Status struct {
	AsOf Date

	// Principal is the outstanding principal balance.
	Principal decimal.Decimal

	// InterestDue and PenaltyDue are the amounts currently owed. Both are
	// zero while the open period's due date is still in the future.
	InterestDue decimal.Decimal
	PenaltyDue  decimal.Decimal

	// TotalDue = Principal + InterestDue + PenaltyDue.
	TotalDue decimal.Decimal

	// DaysOverdue counts whole days from the open period's due date to the
	// evaluation date; zero when not overdue.
	DaysOverdue int

	// NextPaymentDue is the open period's due date. Zero when fully paid.
	NextPaymentDue Date

	// PrincipalDueDate mirrors NextPaymentDue: principal can always be
	// returned at the period boundary.
	PrincipalDueDate Date

	// WeeklyInterest is the interest one period on the current principal
	// costs.
	WeeklyInterest decimal.Decimal

	IsOverdue bool

	// Lifetime totals across all payments, by allocation bucket.
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	PenaltyPaid   decimal.Decimal
	TotalPaid     decimal.Decimal

	// LastInterestPaymentDate is the most recent date on which a payment
	// settled a period's interest; nil when no period has settled.
	LastInterestPaymentDate *Date

	// Periods is the full walk trace, oldest first.
	Periods []PeriodRecord
}

// FullyPaid reports whether the loan is closed: no principal outstanding and
// nothing due.
func (s Status) FullyPaid() bool {
	return s.Principal.IsZero() && s.InterestDue.IsZero() && s.PenaltyDue.IsZero()
}

// State classifies the status.
func (s Status) State() LoanState {
	switch {
	case s.FullyPaid():
		return StateFullyPaid
	case s.IsOverdue:
		return StateDue
	default:
		return StateAccruing
	}
}
