/*
seed.go - Demo data loader

PURPOSE:
  Populates the ledger with a small, recognizable demo portfolio so a
  fresh server has something to show: an on-time borrower, a late one,
  a prepaying one, and a delinquent one. Dates are relative to the
  request's evaluation date so the demo always shows live dues.

USAGE:
  POST /api/admin/seed            seeds relative to today
  POST /api/admin/seed?as_of=...  seeds relative to an explicit date

SEE ALSO:
  - handlers.go: Router wiring
*/
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/accrual"
	"github.com/warp/loan-engine/ledger"
)

// seedLoan is one demo borrower: a loan started some days before the
// evaluation date, with payments at offsets from the start.
type seedLoan struct {
	borrower  string
	phone     string
	principal int64
	startAgo  int // days before the evaluation date
	payments  []seedPayment
}

type seedPayment struct {
	amount   int64
	dayAfter int // days after the loan start
}

var demoPortfolio = []seedLoan{
	{
		// Pays interest on the due date, every week
		borrower: "Maria Santos", phone: "555-0101", principal: 2000, startAgo: 14,
		payments: []seedPayment{{amount: 400, dayAfter: 7}, {amount: 400, dayAfter: 14}},
	},
	{
		// Settled one day late with the penalty
		borrower: "Jon Reyes", phone: "555-0102", principal: 2000, startAgo: 10,
		payments: []seedPayment{{amount: 500, dayAfter: 8}},
	},
	{
		// Paid off early, before the first due date
		borrower: "Ana Cruz", phone: "555-0103", principal: 1000, startAgo: 5,
		payments: []seedPayment{{amount: 1000, dayAfter: 3}},
	},
	{
		// A week overdue, nothing paid
		borrower: "Ben Ocampo", phone: "555-0104", principal: 3000, startAgo: 14,
	},
	{
		// Fresh loan, first period still accruing
		borrower: "Cai Villanueva", phone: "555-0105", principal: 1500, startAgo: 2,
	},
}

// SeedDemoData loads the demo portfolio.
func (h *Handler) SeedDemoData(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	created, err := h.seed(r.Context(), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Log.WithField("loans", created).Info("demo data seeded")
	h.writeJSON(w, http.StatusCreated, map[string]int{"loans_created": created})
}

func (h *Handler) seed(ctx context.Context, asOf accrual.Date) (int, error) {
	created := 0
	for _, s := range demoPortfolio {
		start := asOf.AddDays(-s.startAgo)
		loan, err := h.Service.CreateLoan(ctx, ledger.CreateLoanInput{
			BorrowerName: s.borrower,
			Phone:        s.phone,
			Principal:    decimal.NewFromInt(s.principal),
			StartDate:    start,
		})
		if err != nil {
			return created, err
		}
		for _, p := range s.payments {
			_, err := h.Service.RecordPayment(ctx, loan.ID,
				decimal.NewFromInt(p.amount), start.AddDays(p.dayAfter))
			if err != nil {
				return created, err
			}
		}
		created++
	}
	return created, nil
}
