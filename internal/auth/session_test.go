package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finbook/internal/storage"
)

// fakeStore is an in-memory SessionStore.
type fakeStore struct {
	sessions map[string]fakeSession
}

type fakeSession struct {
	userID    int64
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]fakeSession)}
}

func (f *fakeStore) CreateSession(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	f.sessions[token] = fakeSession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, token string) (int64, error) {
	s, ok := f.sessions[token]
	if !ok || time.Now().After(s.expiresAt) {
		return 0, storage.ErrSessionNotFound
	}
	return s.userID, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for token, s := range f.sessions {
		if now.After(s.expiresAt) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionsIssueAndResolve(t *testing.T) {
	store := newFakeStore()
	sessions := NewSessions(store, time.Hour)

	rec := httptest.NewRecorder()
	if err := sessions.Issue(context.Background(), rec, 42); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}

	userID, ok := sessions.UserID(requestWithCookies(rec))
	if !ok || userID != 42 {
		t.Fatalf("UserID = %d %v, want 42 true", userID, ok)
	}
}

func TestSessionsNoCookie(t *testing.T) {
	sessions := NewSessions(newFakeStore(), time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := sessions.UserID(req); ok {
		t.Fatalf("request without cookie should not resolve")
	}
}

func TestSessionsClear(t *testing.T) {
	store := newFakeStore()
	sessions := NewSessions(store, time.Hour)

	rec := httptest.NewRecorder()
	if err := sessions.Issue(context.Background(), rec, 7); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req := requestWithCookies(rec)

	clearRec := httptest.NewRecorder()
	sessions.Clear(clearRec, req)

	if len(store.sessions) != 0 {
		t.Fatalf("session should be revoked in store")
	}
	cleared := clearRec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %+v", cleared)
	}
}

func TestSessionsExpiry(t *testing.T) {
	store := newFakeStore()
	sessions := NewSessions(store, -time.Minute) // already expired when issued

	rec := httptest.NewRecorder()
	if err := sessions.Issue(context.Background(), rec, 9); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, ok := sessions.UserID(requestWithCookies(rec)); ok {
		t.Fatalf("expired session should not resolve")
	}
}
