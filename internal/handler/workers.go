package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dan9191/farmworker-finance/internal/models"
	"github.com/Dan9191/farmworker-finance/internal/service"
)

// RegisterWorker handles worker registration
func (h *Handler) RegisterWorker(w http.ResponseWriter, r *http.Request) {
	var req service.NewWorker
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	worker, err := h.svc.RegisterWorker(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := h.svc.GetWorker(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

// RecordPayroll ingests one payroll record for the worker in the path
func (h *Handler) RecordPayroll(w http.ResponseWriter, r *http.Request) {
	var rec models.PayrollRecord
	if err := decodeJSON(r, &rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec.WorkerID = mux.Vars(r)["id"]
	profile, err := h.svc.RecordPayroll(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// RecordProduction ingests one production record for the worker in the path
func (h *Handler) RecordProduction(w http.ResponseWriter, r *http.Request) {
	var rec models.ProductionRecord
	if err := decodeJSON(r, &rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec.WorkerID = mux.Vars(r)["id"]
	profile, err := h.svc.RecordProduction(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) GetCreditProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetCreditProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) RecalculateCreditProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.RecalculateCreditProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
