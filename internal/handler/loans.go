package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/farmworker-finance/internal/middleware"
)

type loanRequest struct {
	ProductID string          `json:"productId"`
	Amount    decimal.Decimal `json:"amount"`
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListProducts())
}

// CheckEligibility previews an application. A rejection is a normal
// response here, not an error.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	decision, err := h.svc.CheckEligibility(r.Context(), mux.Vars(r)["id"], req.ProductID, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// ApplyForLoan approves and disburses a loan
func (h *Handler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	workerID := mux.Vars(r)["id"]
	loan, decision, err := h.svc.ApplyForLoan(r.Context(), workerID, req.ProductID, req.Amount)
	if err != nil {
		if decision.ProductID != "" && !decision.Eligible {
			h.writeErrorWithDecision(w, r, err, &decision)
			return
		}
		h.writeError(w, r, err)
		return
	}
	if op, ok := middleware.OperatorFromContext(r.Context()); ok {
		h.log.Infof("Loan %s for worker %s approved by %s", loan.ID, workerID, op)
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.svc.GetLoan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// MakePayment repays part of a loan from the owner's savings
func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	loan, err := h.svc.MakeLoanPayment(r.Context(), mux.Vars(r)["id"], req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if op, ok := middleware.OperatorFromContext(r.Context()); ok {
		h.log.Infof("Payment of %s on loan %s posted by %s", req.Amount, loan.ID, op)
	}
	writeJSON(w, http.StatusOK, loan)
}
