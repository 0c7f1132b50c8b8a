package handler

import (
	"net/http"

	"github.com/finwise/finance-service/internal/models"
	"github.com/finwise/finance-service/internal/service"
)

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	CurrencyPref string `json:"currency_pref"`
}

type registerResponse struct {
	User      *models.User `json:"user"`
	SecretKey string       `json:"secret_key"`
}

// Register handles user registration. The response carries the account
// secret key; it is never shown again.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "username, email and password are required"})
		return
	}

	user, secretKey, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Name, req.Password, req.CurrencyPref)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, registerResponse{User: user, SecretKey: secretKey})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	SecretKey   string `json:"secret_key"`
	NewPassword string `json:"new_password"`
}

// ResetPassword replaces the password after verifying the account secret key
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.NewPassword == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "new_password is required"})
		return
	}

	newSecret, err := h.svc.ResetPassword(r.Context(), req.Username, req.SecretKey, req.NewPassword)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"secret_key": newSecret})
}

// Profile returns the authenticated user
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Profile(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name          *string `json:"name"`
	CurrencyPref  *string `json:"currency_pref"`
	MonthlySalary *string `json:"monthly_salary"`
	OtherIncome   *string `json:"other_income"`
}

// UpdateProfile stores the editable profile fields
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), service.ProfileParams{
		Name:          req.Name,
		CurrencyPref:  req.CurrencyPref,
		MonthlySalary: req.MonthlySalary,
		OtherIncome:   req.OtherIncome,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
