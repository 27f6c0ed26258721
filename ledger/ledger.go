/*
ledger.go - The loan service

PURPOSE:
  Service is the operation surface the HTTP layer calls: loan CRUD, payment
  CRUD, status evaluation, portfolio summary. It validates business input,
  owns identity and timestamps, and delegates math to the accrual engine
  and persistence to Storage.

DESIGN:
  - The evaluation date is always an explicit parameter. The service never
    reads the wall clock for computation; it reads it only for record
    timestamps, through an injectable clock so tests stay deterministic.
  - Rates are concretized at creation: a loan record always knows its own
    rates, so changing the engine defaults later never rewrites history.
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/accrual"
)

// Service implements the loan operations on top of a Storage and an
// accrual engine.
type Service struct {
	store  Storage
	engine *accrual.Engine
	cfg    accrual.Config

	now func() time.Time
}

// NewService builds a service. cfg selects the engine's policies; pass
// accrual.DefaultConfig() for canonical behavior.
func NewService(store Storage, cfg accrual.Config) *Service {
	return &Service{
		store:  store,
		engine: accrual.NewEngine(cfg),
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// LOAN CRUD
// =============================================================================

// CreateLoanInput carries the fields a new loan needs. Nil rates take the
// engine defaults.
type CreateLoanInput struct {
	BorrowerName string
	Phone        string
	Principal    decimal.Decimal
	InterestRate *decimal.Decimal
	PenaltyRate  *decimal.Decimal
	StartDate    accrual.Date
}

// CreateLoan validates the input, concretizes rates, and stores the loan.
func (s *Service) CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error) {
	if strings.TrimSpace(in.BorrowerName) == "" {
		return nil, &accrual.InvalidInputError{Field: "borrower name", Reason: "must not be empty"}
	}
	if !in.Principal.IsPositive() {
		return nil, &accrual.InvalidInputError{Field: "principal", Reason: "must be positive"}
	}
	if in.StartDate.IsZero() {
		return nil, &accrual.InvalidInputError{Field: "start date", Reason: "must be set"}
	}

	interestRate := s.cfg.DefaultInterestRate
	if in.InterestRate != nil {
		interestRate = *in.InterestRate
	}
	penaltyRate := s.cfg.DefaultPenaltyRate
	if in.PenaltyRate != nil {
		penaltyRate = *in.PenaltyRate
	}
	if interestRate.IsNegative() {
		return nil, &accrual.InvalidInputError{Field: "interest rate", Reason: "must not be negative"}
	}
	if penaltyRate.IsNegative() {
		return nil, &accrual.InvalidInputError{Field: "penalty rate", Reason: "must not be negative"}
	}

	now := s.now()
	loan := &Loan{
		ID:           uuid.NewString(),
		BorrowerName: strings.TrimSpace(in.BorrowerName),
		Phone:        strings.TrimSpace(in.Phone),
		Principal:    in.Principal,
		InterestRate: interestRate,
		PenaltyRate:  penaltyRate,
		StartDate:    in.StartDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// GetLoan returns a loan by ID.
func (s *Service) GetLoan(ctx context.Context, id string) (*Loan, error) {
	return s.store.GetLoan(ctx, id)
}

// ListLoans returns all loans, oldest first.
func (s *Service) ListLoans(ctx context.Context) ([]*Loan, error) {
	return s.store.ListLoans(ctx)
}

// UpdateBorrower edits a loan's borrower metadata.
func (s *Service) UpdateBorrower(ctx context.Context, id, name, phone string) (*Loan, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &accrual.InvalidInputError{Field: "borrower name", Reason: "must not be empty"}
	}
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.BorrowerName = strings.TrimSpace(name)
	loan.Phone = strings.TrimSpace(phone)
	loan.UpdatedAt = s.now()
	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// SetRates replaces a loan's rates. Nil leaves a rate unchanged. Status is
// always recomputed from the current terms snapshot, so a rate edit takes
// effect across the loan's whole history.
func (s *Service) SetRates(ctx context.Context, id string, interestRate, penaltyRate *decimal.Decimal) (*Loan, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	if interestRate != nil {
		if interestRate.IsNegative() {
			return nil, &accrual.InvalidInputError{Field: "interest rate", Reason: "must not be negative"}
		}
		loan.InterestRate = *interestRate
	}
	if penaltyRate != nil {
		if penaltyRate.IsNegative() {
			return nil, &accrual.InvalidInputError{Field: "penalty rate", Reason: "must not be negative"}
		}
		loan.PenaltyRate = *penaltyRate
	}
	loan.UpdatedAt = s.now()
	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// DeleteLoan removes a loan and its payment history.
func (s *Service) DeleteLoan(ctx context.Context, id string) error {
	return s.store.DeleteLoan(ctx, id)
}

// =============================================================================
// PAYMENT CRUD
// =============================================================================

// RecordPayment appends a payment to a loan.
func (s *Service) RecordPayment(ctx context.Context, loanID string, amount decimal.Decimal, date accrual.Date) (*PaymentEntry, error) {
	if err := validatePayment(amount, date); err != nil {
		return nil, err
	}
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}
	entry := PaymentEntry{
		ID:        uuid.NewString(),
		Amount:    amount,
		Date:      date,
		CreatedAt: s.now(),
	}
	if err := s.store.AddPayment(ctx, loanID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// EditPayment rewrites a payment's amount and date in place. The entry keeps
// its identity and insertion timestamp.
func (s *Service) EditPayment(ctx context.Context, loanID, paymentID string, amount decimal.Decimal, date accrual.Date) (*PaymentEntry, error) {
	if err := validatePayment(amount, date); err != nil {
		return nil, err
	}
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	for _, p := range loan.Payments {
		if p.ID == paymentID {
			p.Amount = amount
			p.Date = date
			if err := s.store.UpdatePayment(ctx, loanID, p); err != nil {
				return nil, err
			}
			return &p, nil
		}
	}
	return nil, ErrPaymentNotFound
}

// RemovePayment deletes a payment row.
func (s *Service) RemovePayment(ctx context.Context, loanID, paymentID string) error {
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		return err
	}
	return s.store.DeletePayment(ctx, loanID, paymentID)
}

func validatePayment(amount decimal.Decimal, date accrual.Date) error {
	if !amount.IsPositive() {
		return &accrual.InvalidInputError{Field: "payment amount", Reason: "must be positive"}
	}
	if date.IsZero() {
		return &accrual.InvalidInputError{Field: "payment date", Reason: "must be set"}
	}
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// Status evaluates a loan at an explicit date.
func (s *Service) Status(ctx context.Context, loanID string, asOf accrual.Date) (accrual.Status, error) {
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return accrual.Status{}, err
	}
	return s.engine.ComputeStatus(loan.Terms(), loan.AccrualPayments(), asOf)
}

// StatusOf evaluates an already-loaded loan. Used by list and summary paths
// to avoid refetching.
func (s *Service) StatusOf(loan *Loan, asOf accrual.Date) (accrual.Status, error) {
	return s.engine.ComputeStatus(loan.Terms(), loan.AccrualPayments(), asOf)
}
