package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CodeWizard18/AgriConnect/internal/api"
	"github.com/CodeWizard18/AgriConnect/internal/auth"
	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/models"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "integration-test-secret",
			TokenTTL:  time.Hour,
			OTPTTL:    10 * time.Minute,
		},
		Uploads: config.UploadConfig{
			Dir:      "uploads",
			MaxBytes: 5 << 20,
		},
		Orders: config.OrderConfig{
			DeliveryFee: decimal.NewFromInt(20),
		},
	}
}

func postJSON(t *testing.T, client *http.Client, url string, body interface{}, token string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do request: %v", err)
	}
	return resp
}

func getWithToken(t *testing.T, client *http.Client, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("Build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	return body
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	server := httptest.NewServer(api.NewRouter(db, testConfig(), auth.LogOTPSender{}))
	defer server.Close()
	client := server.Client()

	resp := postJSON(t, client, server.URL+"/api/auth/signup", map[string]string{
		"name":     "Flow Customer",
		"email":    "flow@example.com",
		"password": "secret123",
		"role":     "customer",
		"phone":    "9876543210",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Signup: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Login before verification is rejected.
	resp = postJSON(t, client, server.URL+"/api/auth/login", map[string]string{
		"email":    "flow@example.com",
		"password": "secret123",
	}, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Unverified login: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	user, err := store.GetUserByEmail(context.Background(), db, "flow@example.com")
	if err != nil {
		t.Fatalf("Load user: %v", err)
	}

	resp = postJSON(t, client, server.URL+"/api/auth/verify-otp", map[string]string{
		"email": "flow@example.com",
		"otp":   user.OTP,
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Verify OTP: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/api/auth/login", map[string]string{
		"email":    "flow@example.com",
		"password": "secret123",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)

	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Expected JWT in login response")
	}

	resp = getWithToken(t, client, server.URL+"/api/auth/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Me: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password stays generic.
	resp = postJSON(t, client, server.URL+"/api/auth/login", map[string]string{
		"email":    "flow@example.com",
		"password": "wrong",
	}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Bad password: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBlockedUserTokenStopsWorking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	cfg := testConfig()
	server := httptest.NewServer(api.NewRouter(db, cfg, auth.LogOTPSender{}))
	defer server.Close()
	client := server.Client()

	customer := createTestUser(t, db, models.RoleCustomer, "Blocked Soon", "soon@example.com")

	token, err := auth.SignToken(cfg.Auth.JWTSecret, customer, cfg.Auth.TokenTTL)
	if err != nil {
		t.Fatalf("Sign token: %v", err)
	}

	resp := getWithToken(t, client, server.URL+"/api/auth/me", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Me before block: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if _, err := store.UpdateUserStatus(context.Background(), db, customer.ID, models.UserStatusBlocked); err != nil {
		t.Fatalf("Block user: %v", err)
	}

	// Same token, next request: the live status check rejects it.
	resp = getWithToken(t, client, server.URL+"/api/auth/me", token)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Me after block: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleGatesOnOrders(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	cfg := testConfig()
	server := httptest.NewServer(api.NewRouter(db, cfg, auth.LogOTPSender{}))
	defer server.Close()
	client := server.Client()

	farmer := createTestUser(t, db, models.RoleFarmer, "Gate Farmer", "gate-farmer@example.com")
	customer := createTestUser(t, db, models.RoleCustomer, "Gate Customer", "gate-customer@example.com")

	farmerToken, err := auth.SignToken(cfg.Auth.JWTSecret, farmer, cfg.Auth.TokenTTL)
	if err != nil {
		t.Fatalf("Sign token: %v", err)
	}
	customerToken, err := auth.SignToken(cfg.Auth.JWTSecret, customer, cfg.Auth.TokenTTL)
	if err != nil {
		t.Fatalf("Sign token: %v", err)
	}

	// Customer endpoints reject farmers and vice versa.
	resp := getWithToken(t, client, server.URL+"/api/orders/customer", farmerToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Farmer on customer orders: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = getWithToken(t, client, server.URL+"/api/orders/farmer", customerToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Customer on farmer orders: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = getWithToken(t, client, server.URL+"/api/admin/stats", customerToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Customer on admin stats: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// No token at all.
	resp = getWithToken(t, client, server.URL+"/api/orders/customer", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Anonymous: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
