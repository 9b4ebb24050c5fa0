package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"finbook/internal/core"
)

const (
	recentLimit  = 10
	monthsShown  = 6
	minBarWidth  = 2
	fullBarWidth = 100
)

type txRow struct {
	ID          int64
	Date        string
	Description string
	Category    string
	Amount      string
	Negative    bool
}

type categoryRow struct {
	Name   string
	Amount string
	Width  int
}

type monthRow struct {
	Month    string
	Income   string
	Expenses string
}

type positionRow struct {
	ID     int64
	Ticker string
	Shares string
	Price  string
	Value  string
}

type dashboardView struct {
	Username        string
	Currency        string
	Currencies      []string
	Income          string
	Expenses        string
	Balance         string
	BalanceNegative bool
	SavingsRate     int
	Goal            string
	GoalRaw         string
	GoalProgress    int
	Recent          []txRow
	Breakdown       []categoryRow
	Monthly         []monthRow
	Positions       []positionRow
	PortfolioTotal  string
	Insights        []core.Insight
	Flash           string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uid := userID(r)
	key := s.dashCacheKey(uid)

	if view, found := s.dashCache.Get(key); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "user_id", uid)
		view.Flash = popFlash(w, r)
		s.render(w, r, "dashboard.html", view)
		return
	}

	view, err := s.buildDashboard(r, uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard build failed", "error", err, "user_id", uid)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	s.dashCache.Set(key, view)
	view.Flash = popFlash(w, r)
	s.render(w, r, "dashboard.html", view)
}

// buildDashboard runs the per-user aggregate queries in parallel and
// assembles the rendered view. The returned view carries no flash
// message so it can be cached.
func (s *Server) buildDashboard(r *http.Request, uid int64) (dashboardView, error) {
	var (
		user        core.User
		summary     core.Summary
		recent      []core.Transaction
		breakdown   []core.CategoryAmount
		flows       []core.MonthlyFlow
		investments []core.Investment
		goal        core.Money
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		user, err = s.repo.GetUserByID(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		summary, err = s.repo.Summary(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.RecentTransactions(ctx, uid, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		breakdown, err = s.repo.CategoryBreakdown(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		flows, err = s.repo.MonthlyFlows(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		investments, err = s.repo.ListInvestments(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		goal, err = s.repo.GetSavingsGoal(ctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboardView{}, fmt.Errorf("load dashboard data: %w", err)
	}

	cur := user.Currency

	view := dashboardView{
		Username:        user.Username,
		Currency:        cur,
		Currencies:      core.SupportedCurrencies(),
		Income:          displayAmount(summary.Income.Cents, cur),
		Expenses:        displayAmount(summary.Expenses.Cents, cur),
		Balance:         displayAmount(summary.Balance.Cents, cur),
		BalanceNegative: summary.Balance.Cents < 0,
		SavingsRate:     core.SavingsRate(summary),
		Goal:            displayAmount(goal.Cents, cur),
		GoalRaw:         centsToInput(goal.Cents),
		GoalProgress:    int(core.GoalProgress(summary.Balance, goal)),
	}

	for _, t := range recent {
		view.Recent = append(view.Recent, txRow{
			ID:          t.ID,
			Date:        t.Date.ISO(),
			Description: t.Description,
			Category:    t.Category,
			Amount:      displayAmount(t.Amount.Cents, cur),
			Negative:    t.Amount.Cents < 0,
		})
	}

	view.Breakdown = breakdownRows(breakdown, cur)

	if len(flows) > monthsShown {
		flows = flows[len(flows)-monthsShown:]
	}
	for _, f := range flows {
		view.Monthly = append(view.Monthly, monthRow{
			Month:    f.Month,
			Income:   displayAmount(f.Income.Cents, cur),
			Expenses: displayAmount(f.Expenses.Cents, cur),
		})
	}

	positions := make([]core.PortfolioPosition, 0, len(investments))
	for _, inv := range investments {
		p := core.PortfolioPosition{
			Ticker: inv.Ticker,
			Shares: inv.Shares,
			Price:  inv.Price,
			Value:  inv.Value(),
		}
		positions = append(positions, p)
		view.Positions = append(view.Positions, positionRow{
			ID:     inv.ID,
			Ticker: inv.Ticker,
			Shares: inv.Shares.String(),
			Price:  displayAmount(inv.Price.Cents, cur),
			Value:  displayAmount(p.Value.Cents, cur),
		})
	}
	view.PortfolioTotal = displayAmount(core.PortfolioTotal(positions).Cents, cur)

	view.Insights = core.BuildInsights(summary, breakdown, positions)

	return view, nil
}

// breakdownRows scales category bars against the largest category so
// the biggest spender always renders full width.
func breakdownRows(breakdown []core.CategoryAmount, currency string) []categoryRow {
	var maxCents int64
	for _, c := range breakdown {
		if c.Amount.Cents > maxCents {
			maxCents = c.Amount.Cents
		}
	}

	rows := make([]categoryRow, 0, len(breakdown))
	for _, c := range breakdown {
		width := 0
		if maxCents > 0 && c.Amount.Cents > 0 {
			width = int((c.Amount.Cents*100 + maxCents/2) / maxCents)
			if width < minBarWidth {
				width = minBarWidth
			}
			if width > fullBarWidth {
				width = fullBarWidth
			}
		}
		rows = append(rows, categoryRow{
			Name:   c.Name,
			Amount: displayAmount(c.Amount.Cents, currency),
			Width:  width,
		})
	}
	return rows
}

// centsToInput renders cents as a plain decimal suitable for a form
// input value.
func centsToInput(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}
