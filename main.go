package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/minijira/api"
	"github.com/CrowderSoup/minijira/config"
	"github.com/CrowderSoup/minijira/database"
	"github.com/CrowderSoup/minijira/services"
	"github.com/CrowderSoup/minijira/store"
)

var (
	configPath string
	envFile    string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:           "minijira",
	Short:         "Local companion for the mini-jira kanban board",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		if err := loaded.ApplyFlags(cmd.Flags()); err != nil {
			return err
		}
		cfg = loaded

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ~/.config/minijira/config.toml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	config.RegisterFlags(flags)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds what every command needs: the local database, the API client
// authenticated from the stored session, and the application state.
type app struct {
	db       *sqlx.DB
	sessions *database.SessionStore
	client   *api.Client
	store    *store.Store
	auth     *services.AuthService
	logger   *slog.Logger
}

func newApp() (*app, error) {
	logger := slog.Default()

	db, err := database.InitDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sessions := database.NewSessionStore(db)
	client, err := api.NewClient(cfg.APIBase(), sessions, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	st := store.New()
	return &app{
		db:       db,
		sessions: sessions,
		client:   client,
		store:    st,
		auth:     services.NewAuthService(client, sessions, st, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// pageSize is the stored preference, else the configured default.
func (a *app) pageSize(ctx context.Context) int {
	value, err := a.sessions.Preference(ctx, database.PrefPageSize, "")
	if err != nil {
		a.logger.Warn("read page size preference", "error", err)
		return cfg.PageSize
	}
	size, err := strconv.Atoi(value)
	if err != nil || size < 1 {
		return cfg.PageSize
	}
	return size
}

var errNotSignedIn = errors.New("not signed in, run minijira login first")

// requireSession restores the stored session and fails when there is none
// or it has expired.
func (a *app) requireSession(ctx context.Context) error {
	if err := a.auth.Restore(ctx); err != nil {
		return err
	}
	if !a.store.State().Auth.IsAuthenticated {
		return errNotSignedIn
	}
	return nil
}
