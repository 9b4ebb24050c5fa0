package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie issued on login.
const CookieName = "finbook_session"

// SessionStore is the persistence needed by the manager; implemented
// by storage.Repository.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetSession(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Sessions issues, resolves and revokes cookie-backed sessions.
type Sessions struct {
	store SessionStore
	ttl   time.Duration

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewSessions(store SessionStore, ttl time.Duration) *Sessions {
	return &Sessions{
		store:       store,
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
}

// Issue creates a session for the user and sets the cookie.
func (s *Sessions) Issue(ctx context.Context, w http.ResponseWriter, userID int64) error {
	token := uuid.NewString()
	expiresAt := time.Now().Add(s.ttl)

	if err := s.store.CreateSession(ctx, token, userID, expiresAt); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// UserID resolves the request's session cookie to a user id.
func (s *Sessions) UserID(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	userID, err := s.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// Clear revokes the request's session and expires the cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		if err := s.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// StartCleanup periodically removes expired sessions until Stop is
// called.
func (s *Sessions) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n, err := s.store.DeleteExpiredSessions(context.Background())
				if err != nil {
					slog.Error("Session cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Debug("Session cleanup completed", "removed", n)
				}
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

// Stop terminates the cleanup goroutine.
func (s *Sessions) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}
