/*
Package ledger is the record-keeping layer around the accrual engine: loan
records with borrower metadata, their payment histories, and the portfolio
summary. The engine computes, the ledger remembers.

PURPOSE:
  Everything stateful lives here. A Loan owns its ordered payment entries;
  status is always derived by handing the loan's terms and payments to the
  pure accrual engine with an explicit evaluation date - never stored, so
  it can never go stale.

KEY CONCEPTS:
  - Loan: identity, borrower metadata, terms, owned payment entries
  - PaymentEntry: one repayment row with its own identity, editable and
    removable (unlike the engine, the ledger is not append-only: the
    operator corrects typos in place)
  - Service: the operations the HTTP layer calls
  - Storage: the persistence seam (sqlite in production, memory in tests)

SEE ALSO:
  - accrual: The pure computation
  - store/sqlite, store/memory: Storage implementations
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/accrual"
)

// Loan is a stored loan record. InterestRate and PenaltyRate are concrete:
// defaults are resolved at creation time so the record is self-describing.
type Loan struct {
	ID           string
	BorrowerName string
	Phone        string

	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	PenaltyRate  decimal.Decimal
	StartDate    accrual.Date

	// Payments in insertion order. The engine's stable sort relies on this
	// order to break same-day ties.
	Payments []PaymentEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentEntry is one repayment row.
type PaymentEntry struct {
	ID        string
	Amount    decimal.Decimal
	Date      accrual.Date
	CreatedAt time.Time
}

// Terms maps the record onto the engine's input.
func (l *Loan) Terms() accrual.Terms {
	ir := l.InterestRate
	pr := l.PenaltyRate
	return accrual.Terms{
		Principal:    l.Principal,
		InterestRate: &ir,
		PenaltyRate:  &pr,
		StartDate:    l.StartDate,
	}
}

// AccrualPayments maps the payment rows onto the engine's input, preserving
// insertion order.
func (l *Loan) AccrualPayments() []accrual.Payment {
	out := make([]accrual.Payment, len(l.Payments))
	for i, p := range l.Payments {
		out[i] = accrual.Payment{Amount: p.Amount, Date: p.Date}
	}
	return out
}
