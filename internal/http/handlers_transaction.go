package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finbook/internal/core"
	"finbook/internal/storage"
)

type addFormView struct {
	Today             string
	IncomeCategories  []string
	ExpenseCategories []string
	RecentCategories  []string
	Flash             string
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uid := userID(r)
	recent, err := s.repo.RecentCategories(r.Context(), uid, 6)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent categories lookup failed", "error", err, "user_id", uid)
	}

	// Category lists come from the seeded table; the in-code lists
	// cover a database hiccup.
	income, err := s.repo.CategoriesByKind(r.Context(), core.CategoryIncome)
	if err != nil || len(income) == 0 {
		income = core.IncomeCategories
	}
	expense, err := s.repo.CategoriesByKind(r.Context(), core.CategoryExpense)
	if err != nil || len(expense) == 0 {
		expense = core.ExpenseCategories
	}

	s.render(w, r, "add.html", addFormView{
		Today:             time.Now().UTC().Format("2006-01-02"),
		IncomeCategories:  income,
		ExpenseCategories: expense,
		RecentCategories:  recent,
		Flash:             popFlash(w, r),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
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

	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		// Missing or malformed date falls back to today.
		date = core.Date{Time: time.Now().UTC()}
	}

	description := sanitizeInput(r.Form.Get("description"))
	category := sanitizeInput(r.Form.Get("category"))

	kind, ok := core.KindOf(category)
	if !ok {
		setFlash(w, "Unknown category.")
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		setFlash(w, "Invalid amount.")
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}

	t := core.Transaction{
		UserID:      uid,
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      core.Money{Cents: core.NormalizeSign(kind, cents)},
	}
	if err := t.Validate(); err != nil {
		setFlash(w, "Invalid transaction: "+err.Error())
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}

	id, err := s.txs.Create(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "user_id", uid)
		http.Error(w, "failed to save transaction", http.StatusInternalServerError)
		return
	}

	s.invalidateDashboard(uid)
	slog.InfoContext(r.Context(), "Transaction created",
		"id", id,
		"user_id", uid,
		"category", category,
		"amount_cents", t.Amount.Cents)
	setFlash(w, "Transaction recorded.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
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
	id, err := strconv.ParseInt(r.Form.Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := s.txs.Delete(r.Context(), id, uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			setFlash(w, "Transaction not found.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "id", id, "user_id", uid)
		http.Error(w, "failed to delete transaction", http.StatusInternalServerError)
		return
	}

	s.invalidateDashboard(uid)
	slog.InfoContext(r.Context(), "Transaction deleted", "id", id, "user_id", uid)
	setFlash(w, "Transaction deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
