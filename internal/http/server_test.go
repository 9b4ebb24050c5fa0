package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finbook/internal/auth"
	"finbook/internal/services"
	"finbook/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "finbook.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	sessions := auth.NewSessions(repo, time.Hour)
	txs := services.NewTransactionService(repo, nil)
	srv := NewServer(":0", repo, txs, sessions)

	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		_ = repo.Close()
	})
	return srv
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

// register creates a user through the handler and returns the issued
// session cookie.
func register(t *testing.T, srv *Server, username string) *http.Cookie {
	t.Helper()

	rr := postForm(srv, "/register", url.Values{
		"username": {username},
		"password": {"supersecret"},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("register did not set a session cookie")
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(srv, path, nil); rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	rr := get(srv, "/", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location=%q, want /login", loc)
	}
}

func TestRegisterAndDashboard(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	rr := get(srv, "/", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "alice") {
		t.Error("dashboard missing username")
	}
	if !strings.Contains(body, "No transactions yet") {
		t.Error("empty dashboard should invite the first transaction")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	rr := postForm(srv, "/register", url.Values{
		"username": {"alice"},
		"password": {"anothersecret"},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/register" {
		t.Errorf("redirect location=%q, want /register", loc)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	rr := postForm(srv, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrongpassword"},
	}, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location=%q, want /login", loc)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			t.Error("failed login must not issue a session")
		}
	}
}

func TestLoginThenLogout(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	rr := postForm(srv, "/login", url.Values{
		"username": {"alice"},
		"password": {"supersecret"},
	}, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("login status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}

	if rr := get(srv, "/logout", cookie); rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status=%d", rr.Code)
	}
	// Session is revoked server-side, so the old cookie no longer works.
	if rr := get(srv, "/", cookie); rr.Code != http.StatusSeeOther {
		t.Errorf("dashboard after logout status=%d, want redirect", rr.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	rr := postForm(srv, "/transactions", url.Values{
		"date":        {"2025-06-01"},
		"description": {"weekly groceries"},
		"category":    {"Food"},
		"amount":      {"42.00"},
	}, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("create status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	body := get(srv, "/", cookie).Body.String()
	if !strings.Contains(body, "weekly groceries") {
		t.Fatal("dashboard missing created transaction")
	}
	if !strings.Contains(body, "-$42.00") {
		t.Errorf("expense amount not rendered as negative USD: %s", body)
	}

	// First insert in a fresh database gets id 1.
	rr = postForm(srv, "/transactions/delete", url.Values{"id": {"1"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if body := get(srv, "/", cookie).Body.String(); strings.Contains(body, "weekly groceries") {
		t.Error("dashboard still shows deleted transaction")
	}
}

func TestTransactionRejectsUnknownCategory(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	rr := postForm(srv, "/transactions", url.Values{
		"date":        {"2025-06-01"},
		"description": {"mystery"},
		"category":    {"Lobbying"},
		"amount":      {"10.00"},
	}, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/add" {
		t.Fatalf("status=%d location=%q, want redirect back to /add", rr.Code, rr.Header().Get("Location"))
	}
}

func TestInvestmentLifecycle(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	rr := postForm(srv, "/investments", url.Values{
		"date":   {"2025-05-10"},
		"ticker": {"vti"},
		"shares": {"2.5"},
		"price":  {"220.50"},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create status=%d", rr.Code)
	}

	body := get(srv, "/investments", cookie).Body.String()
	if !strings.Contains(body, "VTI") {
		t.Error("ticker not uppercased in listing")
	}
	if !strings.Contains(body, "$551.25") {
		t.Errorf("position value not rendered: %s", body)
	}

	rr = postForm(srv, "/investments/delete", url.Values{"id": {"1"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if body := get(srv, "/investments", cookie).Body.String(); strings.Contains(body, "VTI") {
		t.Error("listing still shows deleted holding")
	}
}

func TestCurrencyPreference(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	rr := postForm(srv, "/settings/currency", url.Values{"currency": {"EUR"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("currency status=%d", rr.Code)
	}

	if body := get(srv, "/", cookie).Body.String(); !strings.Contains(body, "€") {
		t.Error("dashboard not rendered in EUR after preference change")
	}

	rr = postForm(srv, "/settings/currency", url.Values{"currency": {"DOGE"}}, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("invalid currency status=%d", rr.Code)
	}
}

func TestSavingsGoalUpdate(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	rr := postForm(srv, "/settings/goal", url.Values{"goal": {"1000"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("goal status=%d", rr.Code)
	}
	if body := get(srv, "/", cookie).Body.String(); !strings.Contains(body, "$1000.00") {
		t.Error("dashboard missing updated goal")
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv := newTestServer(t)
	cookie := register(t, srv, "alice")

	if rr := get(srv, "/nonexistent", cookie); rr.Code != http.StatusNotFound {
		t.Errorf("status=%d, want 404", rr.Code)
	}
}
