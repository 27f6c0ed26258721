/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

CONVENTIONS:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - Money and rates are decimal strings on the wire, never floats
  - Dates are YYYY-MM-DD strings

VALIDATION:
  Validation is done in handlers and the ledger service, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: The domain model these map
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/accrual"
	"github.com/warp/loan-engine/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateLoanRequest is the request to create a loan. Rates are optional;
// omitted rates take the server defaults.
type CreateLoanRequest struct {
	BorrowerName string           `json:"borrower_name"`
	Phone        string           `json:"phone"`
	Principal    decimal.Decimal  `json:"principal"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	PenaltyRate  *decimal.Decimal `json:"penalty_rate,omitempty"`
	StartDate    string           `json:"start_date"`
}

// UpdateLoanRequest edits borrower metadata and/or rates. Nil fields are
// left unchanged.
type UpdateLoanRequest struct {
	BorrowerName *string          `json:"borrower_name,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	PenaltyRate  *decimal.Decimal `json:"penalty_rate,omitempty"`
}

// PaymentRequest records or edits a payment.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LoanDTO is a loan with its computed status.
type LoanDTO struct {
	ID           string          `json:"id"`
	BorrowerName string          `json:"borrower_name"`
	Phone        string          `json:"phone,omitempty"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	PenaltyRate  decimal.Decimal `json:"penalty_rate"`
	StartDate    string          `json:"start_date"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`

	Payments []PaymentDTO `json:"payments"`
	Status   StatusDTO    `json:"status"`
}

// PaymentDTO is one payment row.
type PaymentDTO struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// StatusDTO is the computed loan status at an evaluation date.
type StatusDTO struct {
	AsOf  string `json:"as_of"`
	State string `json:"state"`

	CurrentPrincipal decimal.Decimal `json:"current_principal"`
	WeeklyInterest   decimal.Decimal `json:"weekly_interest"`
	InterestDue      decimal.Decimal `json:"interest_due"`
	PenaltyDue       decimal.Decimal `json:"penalty_due"`
	TotalDue         decimal.Decimal `json:"total_due"`

	PrincipalPaid decimal.Decimal `json:"principal_paid"`
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	PenaltyPaid   decimal.Decimal `json:"penalty_paid"`
	TotalPaid     decimal.Decimal `json:"total_paid"`

	IsOverdue   bool `json:"is_overdue"`
	DaysOverdue int  `json:"days_overdue"`
	FullyPaid   bool `json:"fully_paid"`

	NextPaymentDue          string `json:"next_payment_due,omitempty"`
	PrincipalDueDate        string `json:"principal_due_date,omitempty"`
	LastInterestPaymentDate string `json:"last_interest_payment_date,omitempty"`

	Periods []PeriodDTO `json:"periods"`
}

// PeriodDTO is one entry of the period trace.
type PeriodDTO struct {
	Start              string          `json:"start"`
	End                string          `json:"end"`
	State              string          `json:"state"`
	PrincipalAtStart   decimal.Decimal `json:"principal_at_start"`
	InterestObligation decimal.Decimal `json:"interest_obligation"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	PenaltyAssessed    decimal.Decimal `json:"penalty_assessed"`
	PenaltyPaid        decimal.Decimal `json:"penalty_paid"`
	Penalized          bool            `json:"penalized"`
}

// SummaryDTO is the portfolio summary.
type SummaryDTO struct {
	AsOf               string          `json:"as_of"`
	TotalCustomers     int             `json:"total_customers"`
	TotalPrincipalLent decimal.Decimal `json:"total_principal_lent"`
	TotalCollected     decimal.Decimal `json:"total_collected"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	InterestProfit     decimal.Decimal `json:"interest_profit"`
	FullyPaidCount     int             `json:"fully_paid_count"`
	ActiveCount        int             `json:"active_count"`
	OverdueCount       int             `json:"overdue_count"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toLoanDTO(loan *ledger.Loan, status accrual.Status) LoanDTO {
	payments := make([]PaymentDTO, len(loan.Payments))
	for i, p := range loan.Payments {
		payments[i] = PaymentDTO{ID: p.ID, Amount: p.Amount, Date: p.Date.String()}
	}
	return LoanDTO{
		ID:           loan.ID,
		BorrowerName: loan.BorrowerName,
		Phone:        loan.Phone,
		Principal:    loan.Principal,
		InterestRate: loan.InterestRate,
		PenaltyRate:  loan.PenaltyRate,
		StartDate:    loan.StartDate.String(),
		CreatedAt:    loan.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    loan.UpdatedAt.UTC().Format(time.RFC3339),
		Payments:     payments,
		Status:       toStatusDTO(status),
	}
}

func toStatusDTO(s accrual.Status) StatusDTO {
	periods := make([]PeriodDTO, len(s.Periods))
	for i, p := range s.Periods {
		periods[i] = PeriodDTO{
			Start:              p.Start.String(),
			End:                p.End.String(),
			State:              string(p.State),
			PrincipalAtStart:   p.PrincipalAtStart,
			InterestObligation: p.InterestObligation,
			InterestPaid:       p.InterestPaid,
			PenaltyAssessed:    p.PenaltyAssessed,
			PenaltyPaid:        p.PenaltyPaid,
			Penalized:          p.Penalized,
		}
	}

	dto := StatusDTO{
		AsOf:             s.AsOf.String(),
		State:            string(s.State()),
		CurrentPrincipal: s.Principal,
		WeeklyInterest:   s.WeeklyInterest,
		InterestDue:      s.InterestDue,
		PenaltyDue:       s.PenaltyDue,
		TotalDue:         s.TotalDue,
		PrincipalPaid:    s.PrincipalPaid,
		InterestPaid:     s.InterestPaid,
		PenaltyPaid:      s.PenaltyPaid,
		TotalPaid:        s.TotalPaid,
		IsOverdue:        s.IsOverdue,
		DaysOverdue:      s.DaysOverdue,
		FullyPaid:        s.FullyPaid(),
		Periods:          periods,
	}
	if !s.NextPaymentDue.IsZero() {
		dto.NextPaymentDue = s.NextPaymentDue.String()
		dto.PrincipalDueDate = s.PrincipalDueDate.String()
	}
	if s.LastInterestPaymentDate != nil {
		dto.LastInterestPaymentDate = s.LastInterestPaymentDate.String()
	}
	return dto
}

func toSummaryDTO(s ledger.PortfolioSummary) SummaryDTO {
	return SummaryDTO{
		AsOf:               s.AsOf.String(),
		TotalCustomers:     s.TotalCustomers,
		TotalPrincipalLent: s.TotalPrincipalLent,
		TotalCollected:     s.TotalCollected,
		TotalOutstanding:   s.TotalOutstanding,
		InterestProfit:     s.InterestProfit,
		FullyPaidCount:     s.FullyPaidCount,
		ActiveCount:        s.ActiveCount,
		OverdueCount:       s.OverdueCount,
	}
}
