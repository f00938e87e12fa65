// Package handler exposes the service over a JSON HTTP API.
package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/farmworker-finance/internal/config"
	"github.com/Dan9191/farmworker-finance/internal/integrations/keyrate"
	"github.com/Dan9191/farmworker-finance/internal/metrics"
	"github.com/Dan9191/farmworker-finance/internal/middleware"
	"github.com/Dan9191/farmworker-finance/internal/service"
)

// RateSource provides the benchmark key rate
type RateSource interface {
	GetKeyRate(ctx context.Context) (keyrate.Rate, error)
}

type Handler struct {
	svc   *service.Service
	rates RateSource
	log   *logrus.Logger
}

func NewHandler(svc *service.Service, rates RateSource, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, rates: rates, log: log}
}

// NewRouter wires every route. /health, /metrics and /login are public;
// everything else needs an operator token. m may be nil.
func NewRouter(h *Handler, cfg *config.Config, log *logrus.Logger, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(log))
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	// Protected routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg))

	api.HandleFunc("/workers", h.RegisterWorker).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}", h.GetWorker).Methods(http.MethodGet)
	api.HandleFunc("/workers/{id}/payroll", h.RecordPayroll).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}/production", h.RecordProduction).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}/credit-profile", h.GetCreditProfile).Methods(http.MethodGet)
	api.HandleFunc("/workers/{id}/credit-profile/recalculate", h.RecalculateCreditProfile).Methods(http.MethodPost)

	api.HandleFunc("/workers/{id}/savings", h.GetSavings).Methods(http.MethodGet)
	api.HandleFunc("/workers/{id}/savings/deposit", h.Deposit).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}/savings/withdraw", h.Withdraw).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}/savings/interest", h.ApplyInterest).Methods(http.MethodPost)

	api.HandleFunc("/loan-products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/workers/{id}/loans/eligibility", h.CheckEligibility).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}/loans", h.ApplyForLoan).Methods(http.MethodPost)
	api.HandleFunc("/workers/{id}/loans", h.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", h.MakePayment).Methods(http.MethodPost)

	api.HandleFunc("/benchmark-rate", h.BenchmarkRate).Methods(http.MethodGet)
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles operator authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	token, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// BenchmarkRate returns the latest central bank key rate
func (h *Handler) BenchmarkRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.GetKeyRate(r.Context())
	if err != nil {
		h.log.Errorf("Failed to get key rate: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "key rate feed unavailable", Kind: "internal"})
		return
	}
	writeJSON(w, http.StatusOK, rate)
}
