package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dan9191/farmworker-finance/internal/lending"
	"github.com/Dan9191/farmworker-finance/internal/models"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Kind     string            `json:"kind"`
	Decision *lending.Decision `json:"decision,omitempty"`
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientTenure),
		errors.Is(err, models.ErrAmountExceedsLimit),
		errors.Is(err, models.ErrCreditScoreTooLow),
		errors.Is(err, models.ErrDebtToIncomeExceeded),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrBelowMinimumBalance),
		errors.Is(err, models.ErrLoanClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.writeErrorWithDecision(w, r, err, nil)
}

func (h *Handler) writeErrorWithDecision(w http.ResponseWriter, r *http.Request, err error, d *lending.Decision) {
	resp := errorResponse{Error: err.Error(), Kind: models.ErrorKind(err), Decision: d}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		if resp.Kind == "internal" {
			resp.Error = "internal server error"
		}
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a request body strictly; malformed input is an invalid
// record
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRecord, err)
	}
	return nil
}
