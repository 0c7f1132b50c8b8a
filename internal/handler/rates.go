package handler

import (
	"net/http"

	"github.com/finwise/finance-service/internal/integrations/rates"
)

// RatesHandler serves the cached FX reference rates.
type RatesHandler struct {
	client *rates.Client
}

func NewRatesHandler(client *rates.Client) *RatesHandler {
	return &RatesHandler{client: client}
}

// Rates returns the latest EUR-based reference rates
func (h *RatesHandler) Rates(w http.ResponseWriter, r *http.Request) {
	rs, err := h.client.Rates()
	if err != nil {
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: "rates unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"base": "EUR", "rates": rs})
}
