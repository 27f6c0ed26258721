/*
policy.go - Engine configuration and rollover/prepay policies

PURPOSE:
  The ledger's history contains several divergent copies of the accrual
  calculation. They disagree on exactly two behaviors, so those two
  behaviors are explicit, named policies here instead of forked code:

  RolloverPolicy - where the next period starts after a settlement:
    RolloverPenaltyAnchored:
      A period settled late (penalty incurred) re-anchors the next period
      at the settling payment's date. A period settled clean starts the
      next period at the original period end.
    RolloverFixedCadence:
      Periods always follow the weekly cadence from the start date; a late
      settlement lands the loan in whichever cadence window contains the
      settling payment.

  PrepayPolicy - what a payment dated before the open period's due date does:
    PrepayPrincipalFirst:
      The payment reduces principal directly. Interest is collected when a
      payment lands on or after the due date. Once a period's interest is
      paid, further payments before the next due date go straight to
      principal.
    PrepayInterestFirst:
      The payment services the open period's interest before touching
      principal, so a period can settle early.

  Neither pair has an authoritative answer in the ledger's history. The
  defaults below are the pair consistent with the recorded expected figures
  for every known scenario.
*/
package accrual

import "github.com/shopspring/decimal"

// RolloverPolicy selects where the next period is anchored after settlement.
type RolloverPolicy string

const (
	RolloverPenaltyAnchored RolloverPolicy = "penalty_anchored"
	RolloverFixedCadence    RolloverPolicy = "fixed_cadence"
)

// PrepayPolicy selects how payments before the due date are allocated.
type PrepayPolicy string

const (
	PrepayPrincipalFirst PrepayPolicy = "principal_first"
	PrepayInterestFirst  PrepayPolicy = "interest_first"
)

// Config holds the engine's tunables. Zero values are not usable; start from
// DefaultConfig.
type Config struct {
	// PeriodDays is the billing period length.
	PeriodDays int

	// DefaultInterestRate applies when Terms.InterestRate is nil.
	DefaultInterestRate decimal.Decimal

	// DefaultPenaltyRate applies when Terms.PenaltyRate is nil.
	DefaultPenaltyRate decimal.Decimal

	Rollover RolloverPolicy
	Prepay   PrepayPolicy
}

// DefaultConfig returns the canonical configuration: 7-day periods, 20%
// interest per period, 5% penalty per day late, penalty-anchored rollover,
// principal-first prepay.
func DefaultConfig() Config {
	return Config{
		PeriodDays:          7,
		DefaultInterestRate: DefaultInterestRate,
		DefaultPenaltyRate:  DefaultPenaltyRate,
		Rollover:            RolloverPenaltyAnchored,
		Prepay:              PrepayPrincipalFirst,
	}
}

// ParseRolloverPolicy maps a config string to a policy.
func ParseRolloverPolicy(s string) (RolloverPolicy, error) {
	switch RolloverPolicy(s) {
	case RolloverPenaltyAnchored, RolloverFixedCadence:
		return RolloverPolicy(s), nil
	}
	return "", &InvalidInputError{Field: "rollover policy", Reason: "unknown value " + s}
}

// ParsePrepayPolicy maps a config string to a policy.
func ParsePrepayPolicy(s string) (PrepayPolicy, error) {
	switch PrepayPolicy(s) {
	case PrepayPrincipalFirst, PrepayInterestFirst:
		return PrepayPolicy(s), nil
	}
	return "", &InvalidInputError{Field: "prepay policy", Reason: "unknown value " + s}
}
