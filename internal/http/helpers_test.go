package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"finbook/internal/core"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"tab\tkept", "tab\tkept"},
		{"null\x00byte", "nullbyte"},
		{"bell\x07gone", "bellgone"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayAmount(t *testing.T) {
	tests := []struct {
		cents    int64
		currency string
		want     string
	}{
		{1234, "USD", "$12.34"},
		{999, "EUR", "€9.19"},
		{-4200, "USD", "-$42.00"},
		{1234, "NOPE", "$12.34"}, // unknown code falls back to stored value
	}
	for _, tt := range tests {
		if got := displayAmount(tt.cents, tt.currency); got != tt.want {
			t.Errorf("displayAmount(%d, %s) = %q, want %q", tt.cents, tt.currency, got, tt.want)
		}
	}
}

func TestCentsToInput(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{500000, "5000.00"},
		{1, "0.01"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		if got := centsToInput(tt.cents); got != tt.want {
			t.Errorf("centsToInput(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestBreakdownRowsScaleToLargest(t *testing.T) {
	rows := breakdownRows([]core.CategoryAmount{
		{Name: "Rent", Amount: core.Money{Cents: 100000}},
		{Name: "Food", Amount: core.Money{Cents: 50000}},
		{Name: "Misc", Amount: core.Money{Cents: 100}},
	}, "USD")

	if rows[0].Width != 100 {
		t.Errorf("largest category width = %d, want 100", rows[0].Width)
	}
	if rows[1].Width != 50 {
		t.Errorf("half-size category width = %d, want 50", rows[1].Width)
	}
	if rows[2].Width < minBarWidth {
		t.Errorf("tiny category width = %d, want at least %d", rows[2].Width, minBarWidth)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	setFlash(rr, "Transaction recorded.")

	var cookieHeader string
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashCookie {
			cookieHeader = c.Name + "=" + c.Value
		}
	}
	if cookieHeader == "" {
		t.Fatal("setFlash did not set cookie")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", cookieHeader)
	rr2 := httptest.NewRecorder()
	if got := popFlash(rr2, req); got != "Transaction recorded." {
		t.Errorf("popFlash = %q", got)
	}

	// popFlash must expire the cookie.
	cleared := false
	for _, c := range rr2.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("popFlash did not clear the cookie")
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct", "203.0.113.9:4321", "", "203.0.113.9"},
		{"trusted proxy forwards", "127.0.0.1:1234", "198.51.100.7", "198.51.100.7"},
		{"untrusted peer ignored", "203.0.113.9:4321", "198.51.100.7", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	m := &securityMetrics{}

	req := httptest.NewRequest("GET", "/..%2f..%2fetc/passwd", nil)
	req.URL.Path = "/../../etc/passwd"
	if !detectSuspiciousRequest(req, m) {
		t.Error("path traversal not flagged")
	}

	clean := httptest.NewRequest("GET", "/add", nil)
	clean.Header.Set("User-Agent", "Mozilla/5.0")
	if detectSuspiciousRequest(clean, m) {
		t.Error("normal request flagged")
	}

	long := httptest.NewRequest("GET", "/?q="+strings.Repeat("a", 3000), nil)
	if !detectSuspiciousRequest(long, m) {
		t.Error("oversized URL not flagged")
	}
}
