package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/demo-credit/wallet-service/internal/config"
	"github.com/demo-credit/wallet-service/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppName:         "wallet-service-test",
			AppEnv:          "dev",
			JWTSecret:       "test-secret",
			TokenTTL:        time.Hour,
			LoginRatePerMin: 100,
		},
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func register(t *testing.T, app *fiber.App, email string) (token, accountNo string) {
	t.Helper()
	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/users", "", fiber.Map{
		"email":      email,
		"first_name": "Ada",
		"last_name":  "Obi",
		"phone":      "+2348012345678",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: status %d body %v", email, status, body)
	}
	token, _ = body["token"].(string)
	walletBody, _ := body["wallet"].(map[string]any)
	accountNo, _ = walletBody["account_number"].(string)
	if token == "" || accountNo == "" {
		t.Fatalf("register %s: missing token or account number in %v", email, body)
	}
	return token, accountNo
}

func TestRegisterFundTransferFlow(t *testing.T) {
	app := newTestApp(t)

	senderToken, _ := register(t, app, "ada@example.com")
	recipientToken, recipientAccountNo := register(t, app, "chidi@example.com")

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/fund", senderToken, fiber.Map{
		"amount":    "5000",
		"reference": "REF123456789",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("fund: status %d body %v", status, body)
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/transfer", senderToken, fiber.Map{
		"recipient_account_no": recipientAccountNo,
		"amount":               "2000",
		"description":          "rent split",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("transfer: status %d body %v", status, body)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/wallet", senderToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("sender wallet: status %d body %v", status, body)
	}
	if got := walletBalance(t, body); got != "3000.00" {
		t.Fatalf("sender balance: got %s, want 3000.00", got)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/wallet", recipientToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("recipient wallet: status %d body %v", status, body)
	}
	if got := walletBalance(t, body); got != "2000.00" {
		t.Fatalf("recipient balance: got %s, want 2000.00", got)
	}
}

func TestDuplicateFundReferenceConflicts(t *testing.T) {
	app := newTestApp(t)
	token, _ := register(t, app, "ada@example.com")

	payload := fiber.Map{"amount": "1000", "reference": "REF123456789"}
	if status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/fund", token, payload); status != fiber.StatusCreated {
		t.Fatalf("first fund: status %d body %v", status, body)
	}
	if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/fund", token, payload); status != fiber.StatusConflict {
		t.Fatalf("duplicate fund: expected %d got %d", fiber.StatusConflict, status)
	}

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/wallet", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("wallet: status %d", status)
	}
	if got := walletBalance(t, body); got != "1000.00" {
		t.Fatalf("balance after duplicate fund: got %s, want 1000.00", got)
	}
}

func TestTransferInsufficientFundsRejected(t *testing.T) {
	app := newTestApp(t)
	senderToken, _ := register(t, app, "ada@example.com")
	_, recipientAccountNo := register(t, app, "chidi@example.com")

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/transfer", senderToken, fiber.Map{
		"recipient_account_no": recipientAccountNo,
		"amount":               "500",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
}

func TestWalletEndpointsRequireAuth(t *testing.T) {
	app := newTestApp(t)

	for _, tc := range []struct{ method, path string }{
		{fiber.MethodGet, "/api/v1/wallet"},
		{fiber.MethodGet, "/api/v1/wallet/transactions"},
		{fiber.MethodPost, "/api/v1/wallet/fund"},
		{fiber.MethodPost, "/api/v1/wallet/withdraw"},
		{fiber.MethodPost, "/api/v1/wallet/transfer"},
	} {
		status, _ := doJSON(t, app, tc.method, tc.path, "", nil)
		if status != fiber.StatusUnauthorized {
			t.Fatalf("%s %s: expected %d got %d", tc.method, tc.path, fiber.StatusUnauthorized, status)
		}
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "ada@example.com")

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/users", "", fiber.Map{
		"email":      "ada@example.com",
		"first_name": "Ada",
		"last_name":  "Obi",
	})
	if status != fiber.StatusConflict {
		t.Fatalf("expected %d got %d", fiber.StatusConflict, status)
	}
}

func TestLoginReturnsTokenAndWallet(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "ada@example.com")

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "ada@example.com",
	})
	if status != fiber.StatusOK {
		t.Fatalf("login: status %d body %v", status, body)
	}
	if token, _ := body["token"].(string); token == "" {
		t.Fatalf("login response missing token: %v", body)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "nobody@example.com",
	})
	if status != fiber.StatusNotFound {
		t.Fatalf("unknown email: expected %d got %d", fiber.StatusNotFound, status)
	}
}

func TestTransactionHistoryPagination(t *testing.T) {
	app := newTestApp(t)
	token, _ := register(t, app, "ada@example.com")

	for i := 0; i < 5; i++ {
		status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/fund", token, fiber.Map{
			"amount":    "100",
			"reference": fmt.Sprintf("REF-%d-abcdef", i),
		})
		if status != fiber.StatusCreated {
			t.Fatalf("fund %d: status %d body %v", i, status, body)
		}
	}

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/wallet/transactions?page=1&page_size=2", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("history: status %d body %v", status, body)
	}
	txns, _ := body["transactions"].([]any)
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions on page, got %d", len(txns))
	}
	pagination, _ := body["pagination"].(map[string]any)
	if total, _ := pagination["total"].(float64); total != 5 {
		t.Fatalf("expected total 5, got %v", pagination["total"])
	}
}

func TestLoginRateLimited(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	err = Setup(app, Deps{
		Cfg: config.Config{
			AppName:         "wallet-service-test",
			AppEnv:          "dev",
			JWTSecret:       "test-secret",
			TokenTTL:        time.Hour,
			IdempotencyTTL:  time.Minute,
			LoginRatePerMin: 2,
		},
		Cache:  cache,
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}

	payload := fiber.Map{"email": "ada@example.com"}
	for i := 0; i < 2; i++ {
		if status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", payload); status == fiber.StatusTooManyRequests {
			t.Fatalf("attempt %d rate limited too early", i+1)
		}
	}
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", payload)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("expected %d after burst, got %d", fiber.StatusTooManyRequests, status)
	}
}

func walletBalance(t *testing.T, body map[string]any) string {
	t.Helper()
	balance, ok := body["balance"].(string)
	if !ok {
		t.Fatalf("missing balance in response %v", body)
	}
	return balance
}
