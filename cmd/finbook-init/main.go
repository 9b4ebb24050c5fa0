// Command finbook-init bootstraps the database and creates an initial
// user account. Run once before first use:
//
//	finbook-init -username admin
//
// The password is read from stdin (or the FINBOOK_PASSWORD variable
// for non-interactive setups).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"finbook/internal/auth"
	"finbook/internal/config"
	applog "finbook/internal/log"
	"finbook/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.Setup(slog.LevelInfo)

	username := flag.String("username", "", "username for the new account")
	flag.Parse()

	if strings.TrimSpace(*username) == "" {
		fmt.Fprintln(os.Stderr, "usage: finbook-init -username <name>")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	password := os.Getenv("FINBOOK_PASSWORD")
	if password == "" {
		fmt.Print("Password: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			logger.Error("Failed to read password from stdin")
			os.Exit(1)
		}
		password = strings.TrimSpace(scanner.Text())
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("Password rejected", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	id, err := repo.CreateUser(ctx, strings.TrimSpace(*username), hash)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			logger.Error("Username already exists", "username", *username)
		} else {
			logger.Error("Failed to create user", "error", err)
		}
		os.Exit(1)
	}

	if err := repo.EnsureSettings(ctx, id); err != nil {
		logger.Error("Failed to create default settings", "error", err, "user_id", id)
		os.Exit(1)
	}

	logger.Info("User created", "user_id", id, "username", *username, "db", cfg.SQLiteDBPath)
}
