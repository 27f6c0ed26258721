/*
summary.go - Portfolio-level aggregates

PURPOSE:
  The numbers the summary page shows: how much is out on the street, how
  much has come back, and how many borrowers are current, late, or done.
  Derived on demand by evaluating every loan at the same date.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/accrual"
)

// PortfolioSummary aggregates every loan's status at a single date.
type PortfolioSummary struct {
	AsOf accrual.Date

	TotalCustomers int

	// TotalPrincipalLent is the sum of original principals.
	TotalPrincipalLent decimal.Decimal

	// TotalCollected is the sum of all payments received.
	TotalCollected decimal.Decimal

	// TotalOutstanding sums each loan's principal + interest due + penalty
	// due at the evaluation date.
	TotalOutstanding decimal.Decimal

	// InterestProfit is collected minus lent, floored at zero.
	InterestProfit decimal.Decimal

	FullyPaidCount int
	ActiveCount    int
	OverdueCount   int
}

// Summary evaluates the whole portfolio at asOf.
func (s *Service) Summary(ctx context.Context, asOf accrual.Date) (PortfolioSummary, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return PortfolioSummary{}, err
	}

	sum := PortfolioSummary{
		AsOf:               asOf,
		TotalCustomers:     len(loans),
		TotalPrincipalLent: decimal.Zero,
		TotalCollected:     decimal.Zero,
		TotalOutstanding:   decimal.Zero,
		InterestProfit:     decimal.Zero,
	}

	for _, loan := range loans {
		status, err := s.StatusOf(loan, asOf)
		if err != nil {
			return PortfolioSummary{}, err
		}

		sum.TotalPrincipalLent = sum.TotalPrincipalLent.Add(loan.Principal)
		sum.TotalCollected = sum.TotalCollected.Add(status.TotalPaid)
		sum.TotalOutstanding = sum.TotalOutstanding.Add(status.TotalDue)

		switch {
		case status.FullyPaid():
			sum.FullyPaidCount++
		case status.IsOverdue:
			sum.OverdueCount++
			sum.ActiveCount++
		default:
			sum.ActiveCount++
		}
	}

	profit := sum.TotalCollected.Sub(sum.TotalPrincipalLent)
	if profit.IsPositive() {
		sum.InterestProfit = profit
	}
	return sum, nil
}
