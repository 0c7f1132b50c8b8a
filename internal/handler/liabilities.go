package handler

import (
	"net/http"

	"github.com/finwise/finance-service/internal/service"
)

type liabilityRequest struct {
	Type              string  `json:"liability_type"`
	Description       string  `json:"description"`
	TotalAmount       string  `json:"total_amount"`
	Currency          string  `json:"currency"`
	InstallmentsTotal int     `json:"installments_total"`
	Frequency         string  `json:"frequency"`
	DueDate           string  `json:"due_date"`
	PriorityScore     int     `json:"priority_score"`
	InterestRate      float64 `json:"interest_rate"`
}

// CreateLiability records a new liability with its installment schedule
func (h *Handler) CreateLiability(w http.ResponseWriter, r *http.Request) {
	var req liabilityRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Type == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "liability_type is required"})
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	liability, err := h.svc.CreateLiability(r.Context(), service.LiabilityParams{
		Type:              req.Type,
		Description:       req.Description,
		TotalAmount:       req.TotalAmount,
		Currency:          req.Currency,
		InstallmentsTotal: req.InstallmentsTotal,
		Frequency:         req.Frequency,
		DueDate:           due,
		PriorityScore:     req.PriorityScore,
		InterestRate:      req.InterestRate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, liability)
}

type liabilityEditRequest struct {
	Type              *string  `json:"liability_type"`
	Description       *string  `json:"description"`
	TotalAmount       *string  `json:"total_amount"`
	InstallmentsTotal *int     `json:"installments_total"`
	Frequency         *string  `json:"frequency"`
	NextDueDate       *string  `json:"next_due_date"`
	PriorityScore     *int     `json:"priority_score"`
	InterestRate      *float64 `json:"interest_rate"`
}

// UpdateLiability re-baselines an existing liability
func (h *Handler) UpdateLiability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req liabilityEditRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	params := service.LiabilityEditParams{
		Type:              req.Type,
		Description:       req.Description,
		TotalAmount:       req.TotalAmount,
		InstallmentsTotal: req.InstallmentsTotal,
		Frequency:         req.Frequency,
		PriorityScore:     req.PriorityScore,
		InterestRate:      req.InterestRate,
	}
	if req.NextDueDate != nil {
		d, err := parseDate(*req.NextDueDate)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		params.NextDueDate = &d
	}

	liability, err := h.svc.UpdateLiability(r.Context(), id, params)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, liability)
}

// Liability returns one liability
func (h *Handler) Liability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	liability, err := h.svc.LiabilityByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, liability)
}

// ListLiabilities returns the user's liabilities
func (h *Handler) ListLiabilities(w http.ResponseWriter, r *http.Request) {
	liabilities, err := h.svc.ListLiabilities(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, liabilities)
}

// LiabilityTypes returns the available liability type labels
func (h *Handler) LiabilityTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.LiabilityTypes(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"types": types})
}

type paymentRequest struct {
	PaymentAccount string `json:"payment_account"`
	PaymentType    string `json:"payment_type"`
	Amount         string `json:"payment_amount"`
}

// Pay applies one payment to a liability
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.PaymentAccount == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "payment_account is required"})
		return
	}

	result, err := h.svc.Pay(r.Context(), id, service.PaymentParams{
		Account: req.PaymentAccount,
		Type:    req.PaymentType,
		Amount:  req.Amount,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
