package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type amountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *Handler) GetSavings(w http.ResponseWriter, r *http.Request) {
	acct, err := h.svc.GetSavingsAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// Deposit credits the worker's savings
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Deposit(r.Context(), mux.Vars(r)["id"], req.Amount, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// Withdraw debits the worker's savings
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Withdraw(r.Context(), mux.Vars(r)["id"], req.Amount, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// ApplyInterest credits a month of interest if one is due
func (h *Handler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	acct, credited, err := h.svc.ApplyMonthlyInterest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":  acct,
		"credited": credited,
	})
}
