package http

import (
	"log/slog"
	"net/http"

	"finbook/internal/core"
)

func (s *Server) handleSavingsGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	uid := userID(r)

	cents, err := core.ParseDecimalToCents(r.Form.Get("goal"))
	if err != nil || cents < 0 {
		setFlash(w, "Goal must be a positive amount.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.repo.SetSavingsGoal(r.Context(), uid, core.Money{Cents: cents}); err != nil {
		slog.ErrorContext(r.Context(), "Savings goal update failed", "error", err, "user_id", uid)
		http.Error(w, "failed to update goal", http.StatusInternalServerError)
		return
	}

	s.invalidateDashboard(uid)
	slog.InfoContext(r.Context(), "Savings goal updated", "user_id", uid, "goal_cents", cents)
	setFlash(w, "Savings goal updated.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	uid := userID(r)
	code := sanitizeInput(r.Form.Get("currency"))

	if !core.ValidCurrency(code) {
		setFlash(w, "Unsupported currency.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.repo.UpdateCurrency(r.Context(), uid, code); err != nil {
		slog.ErrorContext(r.Context(), "Currency update failed", "error", err, "user_id", uid)
		http.Error(w, "failed to update currency", http.StatusInternalServerError)
		return
	}

	s.invalidateDashboard(uid)
	slog.InfoContext(r.Context(), "Currency updated", "user_id", uid, "currency", code)
	setFlash(w, "Display currency set to "+code+".")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
