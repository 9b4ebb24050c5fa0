package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"finbook/internal/auth"
	"finbook/internal/storage"
)

const maxUsernameLen = 32

type authView struct {
	Flash string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := s.sessions.UserID(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "login.html", authView{Flash: popFlash(w, r)})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	user, hash, err := s.repo.GetUserByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.ErrorContext(r.Context(), "Login lookup failed", "error", err)
		}
		setFlash(w, "Invalid username or password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if !auth.CheckPassword(password, hash) {
		slog.WarnContext(r.Context(), "Failed login attempt", "username", username)
		setFlash(w, "Invalid username or password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := s.sessions.Issue(r.Context(), w, user.ID); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "user_id", user.ID)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := s.sessions.UserID(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "register.html", authView{Flash: popFlash(w, r)})
	case http.MethodPost:
		s.handleRegisterSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	if username == "" || len(username) > maxUsernameLen || strings.ContainsAny(username, " \t") {
		setFlash(w, "Username must be 1-32 characters without spaces.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			setFlash(w, "Password must be at least 8 characters.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "Password hash failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	id, err := s.repo.CreateUser(r.Context(), username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			setFlash(w, "That username is already taken.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "User creation failed", "error", err, "username", username)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	if err := s.repo.EnsureSettings(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Settings bootstrap failed", "error", err, "user_id", id)
	}

	if err := s.sessions.Issue(r.Context(), w, id); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "user_id", id)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
