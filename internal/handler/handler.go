// Package handler exposes the REST API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/money"
	"github.com/finwise/finance-service/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses. Validation failures
// are 400, missing entities 404, payments against a settled liability 409,
// commit failures 503.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *ledger.InsufficientFundsError
	var transient *ledger.TransientError

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrLiabilityCompleted):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &transient):
		h.log.Errorf("Transient failure: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporary failure, please retry"})
	case errors.As(err, &insufficient),
		errors.Is(err, ledger.ErrInvalidSchedule),
		errors.Is(err, ledger.ErrScheduleShrinkBelowPaid),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidPaymentAmount),
		errors.Is(err, ledger.ErrAssetNotLiquid),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrInvalidAmount):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.log.Errorf("Request failed: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
