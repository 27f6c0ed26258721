/*
store.go - Persistence seam and not-found errors

PURPOSE:
  Storage is the only thing the ledger needs from a database. Loans are
  stored whole (the payment rows belong to their loan); payment rows have
  their own mutations so a sqlite implementation can touch a single row
  instead of rewriting the loan.
*/
package ledger

import (
	"context"
	"errors"
)

// Sentinel errors for missing records. Classify with errors.Is.
var (
	ErrLoanNotFound    = errors.New("loan not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// IsNotFound reports whether err is a missing loan or payment.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound) || errors.Is(err, ErrPaymentNotFound)
}

// Storage persists loan records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// CreateLoan inserts a new loan, including any payment rows it carries.
	CreateLoan(ctx context.Context, loan *Loan) error

	// GetLoan returns a loan with its payments in insertion order, or
	// ErrLoanNotFound.
	GetLoan(ctx context.Context, id string) (*Loan, error)

	// ListLoans returns all loans, payments included, ordered by creation
	// time ascending.
	ListLoans(ctx context.Context) ([]*Loan, error)

	// UpdateLoan rewrites a loan's own fields (not its payment rows), or
	// returns ErrLoanNotFound.
	UpdateLoan(ctx context.Context, loan *Loan) error

	// DeleteLoan removes a loan and its payments, or returns
	// ErrLoanNotFound.
	DeleteLoan(ctx context.Context, id string) error

	// AddPayment appends a payment row to a loan.
	AddPayment(ctx context.Context, loanID string, entry PaymentEntry) error

	// UpdatePayment rewrites a payment row in place, or returns
	// ErrPaymentNotFound.
	UpdatePayment(ctx context.Context, loanID string, entry PaymentEntry) error

	// DeletePayment removes a payment row, or returns ErrPaymentNotFound.
	DeletePayment(ctx context.Context, loanID string, paymentID string) error

	Close() error
}
