package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/finwise/finance-service/internal/service"
	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

type assetRequest struct {
	Type         string `json:"asset_type"`
	Description  string `json:"description"`
	Value        string `json:"asset_value"`
	Currency     string `json:"currency"`
	IsLiquid     bool   `json:"is_liquid"`
	DateReceived string `json:"date_received"`
}

// CreateAsset records a new asset
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Type == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "asset_type is required"})
		return
	}

	params := service.AssetParams{
		Type:        req.Type,
		Description: req.Description,
		Value:       req.Value,
		Currency:    req.Currency,
		IsLiquid:    req.IsLiquid,
	}
	if req.DateReceived != "" {
		d, err := parseDate(req.DateReceived)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		params.DateReceived = d
	}

	asset, err := h.svc.CreateAsset(r.Context(), params)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

type assetEditRequest struct {
	Type         *string `json:"asset_type"`
	Description  *string `json:"description"`
	Value        *string `json:"asset_value"`
	Currency     *string `json:"currency"`
	IsLiquid     *bool   `json:"is_liquid"`
	DateReceived *string `json:"date_received"`
}

// UpdateAsset edits an existing asset
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req assetEditRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	params := service.AssetEditParams{
		Type:        req.Type,
		Description: req.Description,
		Value:       req.Value,
		Currency:    req.Currency,
		IsLiquid:    req.IsLiquid,
	}
	if req.DateReceived != nil {
		d, err := parseDate(*req.DateReceived)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		params.DateReceived = &d
	}

	asset, err := h.svc.UpdateAsset(r.Context(), id, params)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// ListAssets returns the user's assets
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.svc.ListAssets(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

// AssetTypes returns the available asset type labels
func (h *Handler) AssetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.AssetTypes(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"types": types})
}

type tentativeAssetRequest struct {
	Type         string `json:"asset_type"`
	Description  string `json:"description"`
	Amount       string `json:"asset_amount"`
	Currency     string `json:"currency"`
	ExpectedDate string `json:"expected_date"`
}

// CreateTentativeAsset records an expected future holding
func (h *Handler) CreateTentativeAsset(w http.ResponseWriter, r *http.Request) {
	var req tentativeAssetRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Type == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "asset_type is required"})
		return
	}
	expected, err := parseDate(req.ExpectedDate)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	tentative, err := h.svc.CreateTentativeAsset(r.Context(), service.AssetParams{
		Type:        req.Type,
		Description: req.Description,
		Value:       req.Amount,
		Currency:    req.Currency,
	}, expected)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tentative)
}

// ListTentativeAssets returns the user's expected holdings
func (h *Handler) ListTentativeAssets(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTentativeAssets(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}
