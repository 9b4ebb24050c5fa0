package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbook/internal/core"
	"finbook/internal/storage"
)

type investmentsView struct {
	Currency       string
	Today          string
	Positions      []positionRow
	PortfolioTotal string
	Flash          string
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListInvestments(w, r)
	case http.MethodPost:
		s.handleCreateInvestment(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	user, err := s.repo.GetUserByID(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err, "user_id", uid)
		http.Error(w, "failed to load investments", http.StatusInternalServerError)
		return
	}

	investments, err := s.repo.ListInvestments(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Investment list failed", "error", err, "user_id", uid)
		http.Error(w, "failed to load investments", http.StatusInternalServerError)
		return
	}

	view := investmentsView{
		Currency: user.Currency,
		Today:    time.Now().UTC().Format("2006-01-02"),
		Flash:    popFlash(w, r),
	}
	positions := make([]core.PortfolioPosition, 0, len(investments))
	for _, inv := range investments {
		value := inv.Value()
		positions = append(positions, core.PortfolioPosition{
			Ticker: inv.Ticker,
			Shares: inv.Shares,
			Price:  inv.Price,
			Value:  value,
		})
		view.Positions = append(view.Positions, positionRow{
			ID:     inv.ID,
			Ticker: inv.Ticker,
			Shares: inv.Shares.String(),
			Price:  displayAmount(inv.Price.Cents, user.Currency),
			Value:  displayAmount(value.Cents, user.Currency),
		})
	}
	view.PortfolioTotal = displayAmount(core.PortfolioTotal(positions).Cents, user.Currency)

	s.render(w, r, "investments.html", view)
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	uid := userID(r)

	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		date = core.Date{Time: time.Now().UTC()}
	}

	ticker := strings.ToUpper(sanitizeInput(r.Form.Get("ticker")))

	shares, err := decimal.NewFromString(strings.TrimSpace(r.Form.Get("shares")))
	if err != nil {
		setFlash(w, "Invalid share count.")
		http.Redirect(w, r, "/investments", http.StatusSeeOther)
		return
	}

	priceCents, err := core.ParseDecimalToCents(r.Form.Get("price"))
	if err != nil {
		setFlash(w, "Invalid price.")
		http.Redirect(w, r, "/investments", http.StatusSeeOther)
		return
	}

	inv := core.Investment{
		UserID: uid,
		Date:   date,
		Ticker: ticker,
		Shares: shares,
		Price:  core.Money{Cents: priceCents},
	}
	if err := inv.Validate(); err != nil {
		setFlash(w, "Invalid investment: "+err.Error())
		http.Redirect(w, r, "/investments", http.StatusSeeOther)
		return
	}

	id, err := s.repo.CreateInvestment(r.Context(), inv)
	if err != nil {
		slog.ErrorContext(r.Context(), "Investment create failed", "error", err, "user_id", uid)
		http.Error(w, "failed to save investment", http.StatusInternalServerError)
		return
	}

	s.invalidateDashboard(uid)
	slog.InfoContext(r.Context(), "Investment created",
		"id", id,
		"user_id", uid,
		"ticker", ticker)
	setFlash(w, "Investment recorded.")
	http.Redirect(w, r, "/investments", http.StatusSeeOther)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "invalid investment id", http.StatusBadRequest)
		return
	}

	if err := s.repo.DeleteInvestment(r.Context(), id, uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			setFlash(w, "Investment not found.")
			http.Redirect(w, r, "/investments", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "Investment delete failed", "error", err, "id", id, "user_id", uid)
		http.Error(w, "failed to delete investment", http.StatusInternalServerError)
		return
	}

	s.invalidateDashboard(uid)
	slog.InfoContext(r.Context(), "Investment deleted", "id", id, "user_id", uid)
	setFlash(w, "Investment deleted.")
	http.Redirect(w, r, "/investments", http.StatusSeeOther)
}
