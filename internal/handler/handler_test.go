package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finwise/finance-service/internal/cache"
	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/events"
	"github.com/finwise/finance-service/internal/handler"
	"github.com/finwise/finance-service/internal/integrations/assistant"
	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/middleware"
	"github.com/finwise/finance-service/internal/repository"
	"github.com/finwise/finance-service/internal/service"
	"github.com/finwise/finance-service/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		BudgetPercent: 70,
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	repo := repository.NewMemory()
	engine := ledger.NewEngine(repo, log)
	svc := service.NewService(repo, engine, cache.NewMemory(), events.Noop{}, assistant.Stub{}, email.NewSender(cfg, log), log, cfg)
	h := handler.NewHandler(svc, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/auth/reset-password", h.ResetPassword).Methods("POST")

	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/profile", h.Profile).Methods("GET")
	authRouter.HandleFunc("/assets", h.CreateAsset).Methods("POST")
	authRouter.HandleFunc("/assets", h.ListAssets).Methods("GET")
	authRouter.HandleFunc("/liabilities", h.CreateLiability).Methods("POST")
	authRouter.HandleFunc("/liabilities/{id:[0-9]+}/pay", h.Pay).Methods("POST")
	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/recommendations", h.Recommendations).Methods("GET")
	return r
}

func doJSON(t *testing.T, r *mux.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *mux.Router) string {
	t.Helper()
	w := doJSON(t, r, "POST", "/api/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"name":     "Bob",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var reg struct {
		SecretKey string `json:"secret_key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.SecretKey)

	w = doJSON(t, r, "POST", "/api/auth/login", "", map[string]string{
		"username": "bob",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, "POST", "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/auth/login", "", map[string]string{
		"username": "bob",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "GET", "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, "GET", "/api/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/assets", token, map[string]any{
		"asset_type":  "Checking Account",
		"asset_value": "5000.00",
		"is_liquid":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/liabilities", token, map[string]any{
		"liability_type":     "Student Loan",
		"total_amount":       "3500.00",
		"installments_total": 10,
		"frequency":          "monthly",
		"due_date":           "2026-09-01",
		"priority_score":     85,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var liability struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &liability))

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/liabilities/%d/pay", liability.ID), token, map[string]string{
		"payment_account": "Checking Account",
		"payment_type":    "installment",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Paid struct {
			Cents int64 `json:"cents"`
		} `json:"paid"`
		Liability struct {
			RemainingAmount struct {
				Cents int64 `json:"cents"`
			} `json:"remaining_amount"`
			InstallmentsPaid int `json:"installments_paid"`
		} `json:"liability"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(35000), result.Paid.Cents)
	assert.Equal(t, int64(315000), result.Liability.RemainingAmount.Cents)
	assert.Equal(t, 1, result.Liability.InstallmentsPaid)
}

func TestPaymentInsufficientFunds(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/assets", token, map[string]any{
		"asset_type":  "Checking Account",
		"asset_value": "10.00",
		"is_liquid":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/liabilities", token, map[string]any{
		"liability_type":     "Credit Card",
		"total_amount":       "1000.00",
		"installments_total": 4,
		"frequency":          "monthly",
		"due_date":           "2026-09-01",
		"priority_score":     60,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var liability struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &liability))

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/liabilities/%d/pay", liability.ID), token, map[string]string{
		"payment_account": "Checking Account",
		"payment_type":    "installment",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// The message names the asset and its available balance.
	assert.Contains(t, resp.Error, "Checking Account")
	assert.Contains(t, resp.Error, "USD 10.00")
}

func TestPaymentUnknownLiability(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/liabilities/42/pay", token, map[string]string{
		"payment_account": "Checking Account",
		"payment_type":    "installment",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentOnCompletedLiabilityConflicts(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/assets", token, map[string]any{
		"asset_type":  "Checking Account",
		"asset_value": "5000.00",
		"is_liquid":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/liabilities", token, map[string]any{
		"liability_type":     "Credit Card",
		"total_amount":       "100.00",
		"installments_total": 1,
		"frequency":          "monthly",
		"due_date":           "2026-09-01",
		"priority_score":     60,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var liability struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &liability))

	payURL := fmt.Sprintf("/api/liabilities/%d/pay", liability.ID)
	w = doJSON(t, r, "POST", payURL, token, map[string]string{
		"payment_account": "Checking Account",
		"payment_type":    "full",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", payURL, token, map[string]string{
		"payment_account": "Checking Account",
		"payment_type":    "installment",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/assets", token, map[string]any{
		"asset_type":  "Cash",
		"asset_value": "2000.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard struct {
		TotalAssets struct {
			Cents int64 `json:"cents"`
		} `json:"total_assets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, int64(200000), dashboard.TotalAssets.Cents)
}

func TestRecommendationsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "GET", "/api/recommendations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var plan struct {
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Empty(t, plan.Recommendations)
}

func TestCreateLiabilityValidation(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, "POST", "/api/liabilities", token, map[string]any{
		"liability_type":     "Credit Card",
		"total_amount":       "1000.00",
		"installments_total": 0,
		"frequency":          "monthly",
		"due_date":           "2026-09-01",
		"priority_score":     60,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
