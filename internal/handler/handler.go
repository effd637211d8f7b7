package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/amortization"
	"github.com/Dan9191/fintrack/internal/middleware"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/service"
	"github.com/Dan9191/fintrack/internal/utils"
)

// Handler serves the JSON endpoints
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type emiResponse struct {
	amortization.Summary
	Schedule []amortization.Installment `json:"schedule,omitempty"`
}

// EMI handles installment calculation: ?principal=&rate=&tenure=[&schedule=true&start=YYYY-MM-DD]
func (h *Handler) EMI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	principal, err := decimal.NewFromString(q.Get("principal"))
	if err != nil {
		http.Error(w, "invalid principal", http.StatusBadRequest)
		return
	}
	rate, err := decimal.NewFromString(q.Get("rate"))
	if err != nil {
		http.Error(w, "invalid rate", http.StatusBadRequest)
		return
	}
	tenure, err := strconv.Atoi(q.Get("tenure"))
	if err != nil {
		http.Error(w, "invalid tenure", http.StatusBadRequest)
		return
	}

	summary, err := amortization.Calculate(principal, rate, tenure)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := emiResponse{Summary: summary}

	if q.Get("schedule") == "true" {
		start := utils.Day(time.Now())
		if s := q.Get("start"); s != "" {
			if start, err = utils.ParseDate(s); err != nil {
				http.Error(w, "invalid start", http.StatusBadRequest)
				return
			}
		}
		if resp.Schedule, err = amortization.Schedule(principal, rate, tenure, start); err != nil {
			h.writeError(w, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Benchmarks handles the market reference view
func (h *Handler) Benchmarks(w http.ResponseWriter, r *http.Request) {
	loans, insurance, err := h.svc.Benchmarks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"loans":     loans,
		"insurance": insurance,
	})
}

// Dashboard handles the aggregated dashboard for the authenticated user
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	d, err := h.svc.Dashboard(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// CreateProfile handles explicit profile initialization
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	p, err := h.svc.InitProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

type incomeRequest struct {
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// UpdateProfile handles monthly income changes
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	p, err := h.svc.UpdateIncome(r.Context(), userID, req.MonthlyIncome)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrPrecondition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrSourceUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.log.Errorf("Request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
