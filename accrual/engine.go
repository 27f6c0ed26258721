/*
engine.go - The period walker

PURPOSE:
  ComputeStatus replays a loan's payment history against its billing
  periods and reports the resulting Status. The walk is strictly
  chronological: payments are consumed in date order against the oldest
  unsettled period, and a period only rolls forward once its interest and
  any incurred penalty are fully covered.

KEY CONCEPTS:
  - A period's interest obligation is fixed when the period opens:
    principal outstanding at the period start times the interest rate.
    Principal reductions inside the period do not shrink it.
  - A payment on or after the period's due date allocates penalty first,
    then interest, then principal.
  - A payment strictly before the due date follows the prepay policy:
    straight to principal, or interest first.
  - A late payment assesses the penalty against the principal outstanding
    at that moment; a later, larger assessment replaces a smaller one,
    amounts already paid stay paid.
  - Where the next period starts after a settlement follows the rollover
    policy.

SEE ALSO:
  - policy.go: Config, RolloverPolicy, PrepayPolicy
  - status.go: The output
*/
package accrual

import "github.com/shopspring/decimal"

// Engine computes loan statuses under a fixed Config.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ComputeStatus evaluates the loan at asOf using the default configuration.
func ComputeStatus(terms Terms, payments []Payment, asOf Date) (Status, error) {
	return NewEngine(DefaultConfig()).ComputeStatus(terms, payments, asOf)
}

// periodLedger is the walker's view of the currently open period.
type periodLedger struct {
	start            Date
	end              Date
	principalAtStart decimal.Decimal
	obligation       decimal.Decimal
	interestPaid     decimal.Decimal
	penaltyAssessed  decimal.Decimal
	penaltyPaid      decimal.Decimal
	penalized        bool
}

func (p *periodLedger) interestRemaining() decimal.Decimal {
	r := p.obligation.Sub(p.interestPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func (p *periodLedger) penaltyRemaining() decimal.Decimal {
	r := p.penaltyAssessed.Sub(p.penaltyPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func (p *periodLedger) settled() bool {
	return p.interestPaid.GreaterThanOrEqual(p.obligation) &&
		p.penaltyPaid.GreaterThanOrEqual(p.penaltyAssessed)
}

func (p *periodLedger) record(state PeriodState) PeriodRecord {
	return PeriodRecord{
		Start:              p.start,
		End:                p.end,
		PrincipalAtStart:   p.principalAtStart,
		InterestObligation: p.obligation,
		InterestPaid:       p.interestPaid,
		PenaltyAssessed:    p.penaltyAssessed,
		PenaltyPaid:        p.penaltyPaid,
		Penalized:          p.penalized,
		State:              state,
	}
}

// ComputeStatus evaluates the loan at asOf. Payments may arrive in any
// order; they are sorted by date before the walk. The computation is pure
// and deterministic.
func (e *Engine) ComputeStatus(terms Terms, payments []Payment, asOf Date) (Status, error) {
	in, err := normalize(e.cfg, terms, payments, asOf)
	if err != nil {
		return Status{}, err
	}

	w := &walk{cfg: e.cfg, rate: in.interestRate, penRate: in.penaltyRate, principal: in.principal}
	w.open(in.start)

	for _, p := range in.payments {
		w.totalPaid = w.totalPaid.Add(p.Amount)
		if w.closed {
			continue
		}
		if p.Date.Before(w.period.end) {
			w.applyEarly(p)
		} else {
			w.applyDue(p)
		}
	}

	return w.report(asOf), nil
}

// =============================================================================
// WALK STATE
// =============================================================================

type walk struct {
	cfg     Config
	rate    decimal.Decimal
	penRate decimal.Decimal

	principal decimal.Decimal
	period    periodLedger
	closed    bool

	principalPaid decimal.Decimal
	interestPaid  decimal.Decimal
	penaltyPaid   decimal.Decimal
	totalPaid     decimal.Decimal

	lastInterestPaid *Date

	history []PeriodRecord
}

// open starts a fresh period anchored at the given date.
func (w *walk) open(anchor Date) {
	w.period = periodLedger{
		start:            anchor,
		end:              anchor.AddDays(w.cfg.PeriodDays),
		principalAtStart: w.principal,
		obligation:       w.principal.Mul(w.rate),
	}
}

// payPrincipal reduces principal by at most amount and returns the amount
// actually applied. Anything beyond the outstanding balance is not owed and
// is simply not allocated.
func (w *walk) payPrincipal(amount decimal.Decimal) decimal.Decimal {
	applied := decimal.Min(amount, w.principal)
	w.principal = w.principal.Sub(applied)
	w.principalPaid = w.principalPaid.Add(applied)
	return applied
}

// applyEarly handles a payment dated strictly before the open period's due
// date, per the prepay policy.
func (w *walk) applyEarly(p Payment) {
	remaining := p.Amount

	if w.cfg.Prepay == PrepayInterestFirst {
		toInterest := decimal.Min(remaining, w.period.interestRemaining())
		w.period.interestPaid = w.period.interestPaid.Add(toInterest)
		w.interestPaid = w.interestPaid.Add(toInterest)
		remaining = remaining.Sub(toInterest)
	}

	w.payPrincipal(remaining)

	if w.principal.IsZero() && w.cfg.Prepay == PrepayPrincipalFirst {
		// Early payoff: principal returned in full before the due date
		// closes the loan without a final interest charge.
		w.settle(p.Date)
		return
	}
	if w.cfg.Prepay == PrepayInterestFirst && w.period.settled() {
		w.settle(p.Date)
	}
}

// applyDue handles a payment dated on or after the open period's due date:
// assess any penalty, then allocate penalty, interest, principal in that
// order, then settle and roll if the period is covered.
func (w *walk) applyDue(p Payment) {
	lateDays := DaysBetween(w.period.end, p.Date)
	if lateDays > 0 {
		w.period.penalized = true
		assessed := Penalty(w.principal, w.penRate, lateDays)
		if assessed.GreaterThan(w.period.penaltyAssessed) {
			w.period.penaltyAssessed = assessed
		}
	}

	remaining := p.Amount

	toPenalty := decimal.Min(remaining, w.period.penaltyRemaining())
	w.period.penaltyPaid = w.period.penaltyPaid.Add(toPenalty)
	w.penaltyPaid = w.penaltyPaid.Add(toPenalty)
	remaining = remaining.Sub(toPenalty)

	toInterest := decimal.Min(remaining, w.period.interestRemaining())
	w.period.interestPaid = w.period.interestPaid.Add(toInterest)
	w.interestPaid = w.interestPaid.Add(toInterest)
	remaining = remaining.Sub(toInterest)

	w.payPrincipal(remaining)

	if w.period.settled() {
		w.settle(p.Date)
	}
}

// settle closes the open period and, when principal remains outstanding,
// opens the next one at the anchor chosen by the rollover policy.
func (w *walk) settle(on Date) {
	if w.period.interestPaid.IsPositive() {
		d := on
		w.lastInterestPaid = &d
	}
	w.history = append(w.history, w.period.record(PeriodSettled))

	if w.principal.IsZero() {
		w.closed = true
		return
	}
	w.open(w.nextAnchor(on))
}

// nextAnchor picks the start of the next period after a settlement on the
// given date.
func (w *walk) nextAnchor(on Date) Date {
	switch w.cfg.Rollover {
	case RolloverFixedCadence:
		// Advance along the original weekly cadence until the window
		// containing the settlement date.
		anchor := w.period.end
		for !anchor.AddDays(w.cfg.PeriodDays).After(on) {
			anchor = anchor.AddDays(w.cfg.PeriodDays)
		}
		return anchor
	default: // RolloverPenaltyAnchored
		if w.period.penalized {
			return on
		}
		return w.period.end
	}
}

// =============================================================================
// REPORTING
// =============================================================================

// report assembles the Status at asOf from the walk's final state. Dues are
// reported only once the open period's due date has passed; until then the
// period is merely accruing.
func (w *walk) report(asOf Date) Status {
	s := Status{
		AsOf:                    asOf,
		Principal:               w.principal,
		InterestDue:             decimal.Zero,
		PenaltyDue:              decimal.Zero,
		WeeklyInterest:          w.principal.Mul(w.rate),
		PrincipalPaid:           w.principalPaid,
		InterestPaid:            w.interestPaid,
		PenaltyPaid:             w.penaltyPaid,
		TotalPaid:               w.totalPaid,
		LastInterestPaymentDate: w.lastInterestPaid,
		Periods:                 append([]PeriodRecord(nil), w.history...),
	}

	if !w.closed {
		s.NextPaymentDue = w.period.end
		s.PrincipalDueDate = w.period.end

		if asOf.After(w.period.end) {
			overdueDays := DaysBetween(w.period.end, asOf)
			s.DaysOverdue = overdueDays
			s.InterestDue = w.period.interestRemaining()

			assessed := Penalty(w.principal, w.penRate, overdueDays)
			if assessed.GreaterThan(w.period.penaltyAssessed) {
				w.period.penaltyAssessed = assessed
			}
			w.period.penalized = true
			s.PenaltyDue = w.period.penaltyRemaining()

			s.Periods = append(s.Periods, w.period.record(PeriodDue))
		} else {
			s.Periods = append(s.Periods, w.period.record(PeriodAccruing))
		}
	}

	s.TotalDue = s.Principal.Add(s.InterestDue).Add(s.PenaltyDue)
	s.IsOverdue = s.DaysOverdue > 0 && s.InterestDue.Add(s.PenaltyDue).IsPositive()
	return s
}
