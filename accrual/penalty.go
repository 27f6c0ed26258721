package accrual

import "github.com/shopspring/decimal"

// Penalty returns the late surcharge on a principal balance: principal x rate
// x whole days late. Zero when daysLate is not positive.
func Penalty(principal, rate decimal.Decimal, daysLate int) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	return principal.Mul(rate).Mul(decimal.NewFromInt(int64(daysLate)))
}
