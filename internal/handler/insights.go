package handler

import "net/http"

// Dashboard returns the aggregate overview
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// Recommendations returns the payment-priority plan
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.Recommendations(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}
