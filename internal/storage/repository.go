package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finbook/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Repository is the SQLite-backed store for all entities.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection, used by readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ---- users ----

// CreateUser inserts a new user and returns its id. A duplicate
// username maps to ErrUsernameTaken.
func (r *Repository) CreateUser(ctx context.Context, username string, pwHash []byte) (int64, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return 0, ErrUsernameTaken
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, pw_hash, currency) VALUES (?, ?, ?)",
		username, pwHash, core.DefaultCurrency)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return id, nil
}

// GetUserByUsername returns the user and its password hash for login.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, []byte, error) {
	var u core.User
	var hash []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, currency, pw_hash FROM users WHERE username = ?",
		username).Scan(&u.ID, &u.Username, &u.Currency, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, nil, ErrNotFound
	}
	if err != nil {
		return core.User{}, nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, hash, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, currency FROM users WHERE id = ?",
		id).Scan(&u.ID, &u.Username, &u.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *Repository) UpdateCurrency(ctx context.Context, userID int64, currency string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET currency = ? WHERE id = ?", currency, userID)
	if err != nil {
		return fmt.Errorf("update currency: %w", err)
	}
	return nil
}

// ---- settings ----

// EnsureSettings creates the settings row for a user if missing.
func (r *Repository) EnsureSettings(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_settings (user_id) VALUES (?)", userID)
	if err != nil {
		return fmt.Errorf("ensure settings row: %w", err)
	}
	return nil
}

func (r *Repository) GetSavingsGoal(ctx context.Context, userID int64) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		"SELECT savings_goal_cents FROM user_settings WHERE user_id = ?",
		userID).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{Cents: core.DefaultSavingsGoal}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get savings goal: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *Repository) SetSavingsGoal(ctx context.Context, userID int64, goal core.Money) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, savings_goal_cents)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET savings_goal_cents = excluded.savings_goal_cents`,
		userID, goal.Cents)
	if err != nil {
		return fmt.Errorf("set savings goal: %w", err)
	}
	return nil
}

// ---- sessions ----

func (r *Repository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession resolves a token to a user id. Expired or unknown tokens
// return ErrSessionNotFound.
func (r *Repository) GetSession(ctx context.Context, token string) (int64, error) {
	var userID int64
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?",
		token).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if time.Now().After(expiresAt) {
		return 0, ErrSessionNotFound
	}
	return userID, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes stale sessions and returns the count.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions count: %w", err)
	}
	return n, nil
}

// ---- transactions ----

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, date, description, category, amount_cents)
		VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.Date.ISO(), t.Description, t.Category, t.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", t.UserID,
		"category", t.Category,
		"amount_cents", t.Amount.Cents)
	return id, nil
}

// DeleteTransaction removes a transaction by id scoped to its owner.
// Deleting someone else's row (or a missing one) is ErrNotFound.
func (r *Repository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction count: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTransaction fetches a single transaction by id, unscoped. Used by
// the sync worker which operates across users.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	var date string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, description, category, amount_cents
		FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.UserID, &date, &t.Description, &t.Category, &t.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	return t, nil
}

// RecentTransactions returns the newest transactions for a user,
// ordered by date then id descending.
func (r *Repository) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, description, category, amount_cents
		FROM transactions WHERE user_id = ?
		ORDER BY date DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date string
		if err := rows.Scan(&t.ID, &t.UserID, &date, &t.Description, &t.Category, &t.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Summary computes the income/expenses/balance totals for a user.
// Expenses is returned as an absolute value.
func (r *Repository) Summary(ctx context.Context, userID int64) (core.Summary, error) {
	var s core.Summary
	err := r.db.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents END), 0),
		  COALESCE(ABS(SUM(CASE WHEN amount_cents < 0 THEN amount_cents END)), 0),
		  COALESCE(SUM(amount_cents), 0)
		FROM transactions WHERE user_id = ?`, userID).
		Scan(&s.Income.Cents, &s.Expenses.Cents, &s.Balance.Cents)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return s, nil
}

// CategoryBreakdown returns absolute expense totals per category,
// ordered descending.
func (r *Repository) CategoryBreakdown(ctx context.Context, userID int64) ([]core.CategoryAmount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, ABS(SUM(amount_cents)) AS total
		FROM transactions WHERE user_id = ? AND amount_cents < 0
		GROUP BY category ORDER BY total DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var c core.CategoryAmount
		if err := rows.Scan(&c.Name, &c.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category amount: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthlyFlows returns income/expense buckets per YYYY-MM month in
// chronological order.
func (r *Repository) MonthlyFlows(ctx context.Context, userID int64) ([]core.MonthlyFlow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(date, 1, 7) AS m,
		       COALESCE(SUM(CASE WHEN amount_cents > 0 THEN amount_cents ELSE 0 END), 0),
		       COALESCE(ABS(SUM(CASE WHEN amount_cents < 0 THEN amount_cents ELSE 0 END)), 0)
		FROM transactions WHERE user_id = ?
		GROUP BY m ORDER BY m`, userID)
	if err != nil {
		return nil, fmt.Errorf("monthly flows: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyFlow
	for rows.Next() {
		var f core.MonthlyFlow
		if err := rows.Scan(&f.Month, &f.Income.Cents, &f.Expenses.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly flow: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RecentCategories returns the n most recently used distinct category
// names for quick entry.
func (r *Repository) RecentCategories(ctx context.Context, userID int64, n int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category FROM transactions
		WHERE user_id = ? GROUP BY category ORDER BY MAX(id) DESC LIMIT ?`,
		userID, n)
	if err != nil {
		return nil, fmt.Errorf("recent categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoriesByKind lists seeded category names for one kind.
func (r *Repository) CategoriesByKind(ctx context.Context, kind core.CategoryKind) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM categories WHERE kind = ? ORDER BY id", string(kind))
	if err != nil {
		return nil, fmt.Errorf("categories by kind: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ---- investments ----

func (r *Repository) CreateInvestment(ctx context.Context, inv core.Investment) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO investments (user_id, date, ticker, shares, price_cents)
		VALUES (?, ?, ?, ?, ?)`,
		inv.UserID, inv.Date.ISO(), inv.Ticker, inv.Shares.String(), inv.Price.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert investment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("investment id: %w", err)
	}

	slog.InfoContext(ctx, "Investment saved",
		"id", id,
		"user_id", inv.UserID,
		"ticker", inv.Ticker)
	return id, nil
}

func (r *Repository) DeleteInvestment(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM investments WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete investment count: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListInvestments(ctx context.Context, userID int64) ([]core.Investment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, ticker, shares, price_cents
		FROM investments WHERE user_id = ?
		ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var out []core.Investment
	for rows.Next() {
		var inv core.Investment
		var date, shares string
		if err := rows.Scan(&inv.ID, &inv.UserID, &date, &inv.Ticker, &shares, &inv.Price.Cents); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		if inv.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse investment date %q: %w", date, err)
		}
		if inv.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("parse investment shares %q: %w", shares, err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
