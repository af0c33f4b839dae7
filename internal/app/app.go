// Package app wires the gitjot components together from an AppConfig.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/99designs/keyring"

	"github.com/nhle/gitjot/internal/auth"
	"github.com/nhle/gitjot/internal/credential"
	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/notes"
	"github.com/nhle/gitjot/internal/store"
	appsync "github.com/nhle/gitjot/internal/sync"
)

// runTimeout bounds a single background drain.
const runTimeout = 2 * time.Minute

// App holds the long-lived components of one gitjot process.
type App struct {
	Config      *model.AppConfig
	Logger      *slog.Logger
	Store       *store.SQLiteStore
	Credentials *credential.Store
	GitHub      *github.Client
	Queue       *notes.Queue
	History     *notes.History
	Notes       *notes.Service
	Scheduler   *appsync.Scheduler
	Auth        *auth.Manager
}

// New opens the local database and the system keyring and builds every
// component from cfg.
func New(ctx context.Context, cfg *model.AppConfig, logger *slog.Logger) (*App, error) {
	ring, err := credential.OpenKeyring(credential.KeyringOptions{
		Backend:      cfg.Storage.KeyringBackend,
		FileDir:      cfg.Storage.KeyringDir,
		FilePassword: cfg.Storage.KeyringPassword,
	})
	if err != nil {
		return nil, err
	}
	return NewWithKeyring(ctx, cfg, logger, ring)
}

// NewWithKeyring is New with an explicit keyring backend.
func NewWithKeyring(ctx context.Context, cfg *model.AppConfig, logger *slog.Logger, ring keyring.Keyring) (*App, error) {
	if dir := filepath.Dir(cfg.Storage.DBPath); cfg.Storage.DBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
		}
	}

	st, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, logger, ring, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *model.AppConfig, logger *slog.Logger, ring keyring.Keyring, st *store.SQLiteStore) (*App, error) {
	creds, err := credential.NewStore(ring)
	if err != nil {
		return nil, err
	}

	queue, err := notes.NewQueue(ctx, st)
	if err != nil {
		return nil, err
	}
	history, err := notes.NewHistory(ctx, st, cfg.History.Retention)
	if err != nil {
		return nil, err
	}

	gh := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.WebURL, cfg.GitHub.Timeout())

	worker := appsync.NewWorker(gh, creds, queue, history, logger.With("component", "sync"))
	scheduler := appsync.NewScheduler(worker, appsync.SchedulerConfig{
		Interval:   seconds(cfg.Sync.IntervalSec),
		MinBackoff: seconds(cfg.Sync.MinBackoffSec),
		MaxBackoff: seconds(cfg.Sync.MaxBackoffSec),
		RunTimeout: runTimeout,
	}, logger.With("component", "scheduler"))

	svc := notes.NewService(notes.Deps{
		API:         gh,
		Credentials: creds,
		Queue:       queue,
		History:     history,
		Logger:      logger.With("component", "notes"),
		OnQueued:    scheduler.Trigger,
	})

	manager := auth.NewManager(auth.ManagerConfig{
		API:          gh,
		Credentials:  creds,
		Sessions:     st,
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		Scope:        cfg.GitHub.Scope,
		Web: auth.WebConfig{
			RedirectURI:   cfg.GitHub.RedirectURI,
			AppInstallURL: cfg.GitHub.AppInstallURL,
			SessionTTL:    seconds(cfg.OAuth.SessionTTLSec),
		},
		Runs:    scheduler,
		Queue:   queue,
		History: history,
		Logger:  logger.With("component", "auth"),
	})

	return &App{
		Config:      cfg,
		Logger:      logger,
		Store:       st,
		Credentials: creds,
		GitHub:      gh,
		Queue:       queue,
		History:     history,
		Notes:       svc,
		Scheduler:   scheduler,
		Auth:        manager,
	}, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Repo returns "owner/name" of the signed-in repository, or "".
func (a *App) Repo() string {
	cred := a.Credentials.Get()
	if cred == nil || !cred.HasRepo() {
		return ""
	}
	return cred.RepoFullName()
}

// Close stops the scheduler and closes the database.
func (a *App) Close() error {
	a.Scheduler.Stop()
	return a.Store.Close()
}
