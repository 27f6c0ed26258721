// Package memory provides an in-memory ledger.Storage for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/loan-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu    sync.RWMutex
	loans map[string]*ledger.Loan
}

func New() *Store {
	return &Store{loans: make(map[string]*ledger.Loan)}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateLoan(_ context.Context, loan *ledger.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[loan.ID] = cloneLoan(loan)
	return nil
}

func (s *Store) GetLoan(_ context.Context, id string) (*ledger.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loans[id]
	if !ok {
		return nil, ledger.ErrLoanNotFound
	}
	return cloneLoan(loan), nil
}

func (s *Store) ListLoans(_ context.Context) ([]*ledger.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ledger.Loan, 0, len(s.loans))
	for _, loan := range s.loans {
		out = append(out, cloneLoan(loan))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateLoan(_ context.Context, loan *ledger.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.loans[loan.ID]
	if !ok {
		return ledger.ErrLoanNotFound
	}
	updated := cloneLoan(loan)
	updated.Payments = existing.Payments
	s.loans[loan.ID] = updated
	return nil
}

func (s *Store) DeleteLoan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[id]; !ok {
		return ledger.ErrLoanNotFound
	}
	delete(s.loans, id)
	return nil
}

func (s *Store) AddPayment(_ context.Context, loanID string, entry ledger.PaymentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return ledger.ErrLoanNotFound
	}
	loan.Payments = append(loan.Payments, entry)
	return nil
}

func (s *Store) UpdatePayment(_ context.Context, loanID string, entry ledger.PaymentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return ledger.ErrLoanNotFound
	}
	for i, p := range loan.Payments {
		if p.ID == entry.ID {
			entry.CreatedAt = p.CreatedAt
			loan.Payments[i] = entry
			return nil
		}
	}
	return ledger.ErrPaymentNotFound
}

func (s *Store) DeletePayment(_ context.Context, loanID string, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return ledger.ErrLoanNotFound
	}
	for i, p := range loan.Payments {
		if p.ID == paymentID {
			loan.Payments = append(loan.Payments[:i], loan.Payments[i+1:]...)
			return nil
		}
	}
	return ledger.ErrPaymentNotFound
}

// cloneLoan copies a loan and its payment slice so callers can't mutate
// stored state.
func cloneLoan(l *ledger.Loan) *ledger.Loan {
	c := *l
	c.Payments = append([]ledger.PaymentEntry(nil), l.Payments...)
	return &c
}
