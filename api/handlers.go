/*
handlers.go - HTTP API handlers for the loan ledger

PURPOSE:
  Exposes the loan ledger via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the ledger service.

ENDPOINTS:
  Loans:
    GET    /api/loans                  List loans with computed status
    POST   /api/loans                  Create loan
    GET    /api/loans/{id}             Loan detail + status + payments
    PUT    /api/loans/{id}             Edit borrower metadata / rates
    DELETE /api/loans/{id}             Delete loan
    GET    /api/loans/{id}/status      Status at ?as_of=YYYY-MM-DD

  Payments:
    POST   /api/loans/{id}/payments              Record payment
    PUT    /api/loans/{id}/payments/{paymentID}  Edit payment
    DELETE /api/loans/{id}/payments/{paymentID}  Remove payment

  Portfolio:
    GET    /api/summary                Portfolio aggregates

  Admin:
    POST   /api/admin/seed             Load demo data

EVALUATION INSTANT:
  The engine never reads the clock. Handlers resolve the evaluation date
  here: the ?as_of=YYYY-MM-DD query parameter when present, otherwise
  today per the server clock. Within one request every loan is evaluated
  at the same date.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed dates
  - 404: Loan or payment not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/ledger.go: The service behind these handlers
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/loan-engine/accrual"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/metrics"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *ledger.Service
	Log     *logrus.Logger

	// Now supplies "today" when no as_of override is given. Injectable so
	// tests pin the date.
	Now func() time.Time
}

// NewHandler creates a new handler around the ledger service.
func NewHandler(service *ledger.Service, log *logrus.Logger) *Handler {
	return &Handler{
		Service: service,
		Log:     log,
		Now:     time.Now,
	}
}

// asOf resolves the evaluation date for a request.
func (h *Handler) asOf(r *http.Request) (accrual.Date, error) {
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		d, err := accrual.ParseDate(raw)
		if err != nil {
			return accrual.Date{}, &accrual.InvalidInputError{
				Field: "as_of", Reason: "expected YYYY-MM-DD",
			}
		}
		return d, nil
	}
	return accrual.DateOf(h.Now()), nil
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	loans, err := h.Service.ListLoans(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]LoanDTO, 0, len(loans))
	for _, loan := range loans {
		status, err := h.computeStatus(loan, asOf)
		if err != nil {
			h.writeError(w, err)
			return
		}
		out = append(out, toLoanDTO(loan, status))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &accrual.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return
	}
	startDate, err := accrual.ParseDate(req.StartDate)
	if err != nil {
		h.writeError(w, &accrual.InvalidInputError{Field: "start_date", Reason: "expected YYYY-MM-DD"})
		return
	}

	loan, err := h.Service.CreateLoan(r.Context(), ledger.CreateLoanInput{
		BorrowerName: req.BorrowerName,
		Phone:        req.Phone,
		Principal:    req.Principal,
		InterestRate: req.InterestRate,
		PenaltyRate:  req.PenaltyRate,
		StartDate:    startDate,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	status, err := h.computeStatus(loan, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toLoanDTO(loan, status))
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	loan, err := h.Service.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	status, err := h.computeStatus(loan, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLoanDTO(loan, status))
}

func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &accrual.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return
	}

	id := chi.URLParam(r, "id")
	ctx := r.Context()

	loan, err := h.Service.GetLoan(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if req.BorrowerName != nil || req.Phone != nil {
		name := loan.BorrowerName
		phone := loan.Phone
		if req.BorrowerName != nil {
			name = *req.BorrowerName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if loan, err = h.Service.UpdateBorrower(ctx, id, name, phone); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if req.InterestRate != nil || req.PenaltyRate != nil {
		if loan, err = h.Service.SetRates(ctx, id, req.InterestRate, req.PenaltyRate); err != nil {
			h.writeError(w, err)
			return
		}
	}

	status, err := h.computeStatus(loan, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLoanDTO(loan, status))
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteLoan(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	loan, err := h.Service.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	status, err := h.computeStatus(loan, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toStatusDTO(status))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.Amount, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, PaymentDTO{
		ID: entry.ID, Amount: entry.Amount, Date: entry.Date.String(),
	})
}

func (h *Handler) EditPayment(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	entry, err := h.Service.EditPayment(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "paymentID"), req.Amount, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PaymentDTO{
		ID: entry.ID, Amount: entry.Amount, Date: entry.Date.String(),
	})
}

func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	err := h.Service.RemovePayment(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "paymentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodePayment(w http.ResponseWriter, r *http.Request) (PaymentRequest, accrual.Date, bool) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &accrual.InvalidInputError{Field: "body", Reason: "malformed JSON"})
		return req, accrual.Date{}, false
	}
	date, err := accrual.ParseDate(req.Date)
	if err != nil {
		h.writeError(w, &accrual.InvalidInputError{Field: "date", Reason: "expected YYYY-MM-DD"})
		return req, accrual.Date{}, false
	}
	return req, date, true
}

// =============================================================================
// PORTFOLIO
// =============================================================================

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sum, err := h.Service.Summary(r.Context(), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSummaryDTO(sum))
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SHARED PLUMBING
// =============================================================================

func (h *Handler) computeStatus(loan *ledger.Loan, asOf accrual.Date) (accrual.Status, error) {
	metrics.StatusComputations.Inc()
	status, err := h.Service.StatusOf(loan, asOf)
	if err != nil && accrual.IsInvalidInput(err) {
		metrics.ComputationErrors.Inc()
	}
	return status, err
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.WithError(err).Error("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case accrual.IsInvalidInput(err):
		code = http.StatusBadRequest
	case ledger.IsNotFound(err):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		h.Log.WithError(err).Error("internal error")
	}
	h.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}
