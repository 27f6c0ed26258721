/*
normalize.go - Input validation and canonical ordering

PURPOSE:
  The engine trusts its inputs completely, so everything is checked here
  first. Normalization also establishes the canonical payment order the
  walker depends on: date ascending, insertion order preserved for
  payments on the same day.
*/
package accrual

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// normalized is the validated, ordered form of the engine's inputs.
type normalized struct {
	principal    decimal.Decimal
	interestRate decimal.Decimal
	penaltyRate  decimal.Decimal
	start        Date
	payments     []Payment
}

// normalize validates terms and payments against cfg and returns the
// canonical input for the walker. The payments slice is copied before
// sorting; the caller's slice is never reordered.
func normalize(cfg Config, terms Terms, payments []Payment, asOf Date) (normalized, error) {
	if cfg.PeriodDays <= 0 {
		return normalized{}, &InvalidInputError{Field: "period length", Reason: "must be positive"}
	}
	if terms.Principal.IsNegative() {
		return normalized{}, &InvalidInputError{Field: "principal", Reason: "must not be negative"}
	}
	if terms.StartDate.IsZero() {
		return normalized{}, &InvalidInputError{Field: "start date", Reason: "must be set"}
	}
	if asOf.IsZero() {
		return normalized{}, &InvalidInputError{Field: "as-of date", Reason: "must be set"}
	}

	interestRate := cfg.DefaultInterestRate
	if terms.InterestRate != nil {
		interestRate = *terms.InterestRate
	}
	penaltyRate := cfg.DefaultPenaltyRate
	if terms.PenaltyRate != nil {
		penaltyRate = *terms.PenaltyRate
	}
	if interestRate.IsNegative() {
		return normalized{}, &InvalidInputError{Field: "interest rate", Reason: "must not be negative"}
	}
	if penaltyRate.IsNegative() {
		return normalized{}, &InvalidInputError{Field: "penalty rate", Reason: "must not be negative"}
	}

	sorted := make([]Payment, len(payments))
	copy(sorted, payments)
	for i, p := range sorted {
		if !p.Amount.IsPositive() {
			return normalized{}, &InvalidInputError{
				Field:  fmt.Sprintf("payment %d amount", i),
				Reason: "must be positive",
			}
		}
		if p.Date.IsZero() {
			return normalized{}, &InvalidInputError{
				Field:  fmt.Sprintf("payment %d date", i),
				Reason: "must be set",
			}
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	return normalized{
		principal:    terms.Principal,
		interestRate: interestRate,
		penaltyRate:  penaltyRate,
		start:        terms.StartDate,
		payments:     sorted,
	}, nil
}
