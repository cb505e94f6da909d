// Package cli implements the interactive terminal client for the portal:
// the REPL, the guided signup/verification and password-reset flows, and the
// profile editor.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/techwork/portal-cli/internal/api"
	"github.com/techwork/portal-cli/internal/auth"
	"github.com/techwork/portal-cli/internal/avatar"
	"github.com/techwork/portal-cli/internal/config"
	"github.com/techwork/portal-cli/internal/logging"
	"github.com/techwork/portal-cli/internal/session"

	_ "modernc.org/sqlite"
)

// AvatarUploader is the storage surface the profile editor needs.
type AvatarUploader interface {
	Upload(ctx context.Context, userID string, data []byte) (string, error)
}

type App struct {
	config      *config.Config
	authService auth.Service
	store       *session.Store
	uploader    AvatarUploader
	log         logging.Logger
	reader      *bufio.Reader

	// wasAuthed tracks the last observed auth state so the session watcher
	// can tell a forced logout apart from an ordinary mutation.
	wasAuthed bool
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := session.OpenDB(ctx, c.SessionDBPath)
	if err != nil {
		log.Error(ctx, "error initializing session database", "error", err)
		return nil, err
	}

	store := session.NewStore(session.NewSQLiteRepository(db))
	client := api.New(c.ServerURL, store, log, c.RequestTimeout)
	svc := auth.NewService(client, store, log)
	uploader := avatar.NewUploader(c.Storage)

	app := &App{
		config:      c,
		authService: svc,
		store:       store,
		uploader:    uploader,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
		wasAuthed:   store.IsAuthenticated(ctx),
	}

	store.Watch(app.onSessionChange)
	return app, nil
}

// onSessionChange reacts to token mutations, in particular the forced clear
// performed by the transport's 401 hook mid-flow.
func (a *App) onSessionChange(key string) {
	if key != session.KeyToken {
		return
	}
	authed := a.store.IsAuthenticated(context.Background())
	if a.wasAuthed && !authed {
		printlnFn("Your session has ended. Please log in again.")
	}
	a.wasAuthed = authed
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated(context.Background())
}

// getStatus renders the prompt decoration: the cached username when there is
// one, "signed-in" when only a token exists, "guest" otherwise.
func (a *App) getStatus() string {
	ctx := context.Background()
	if !a.authService.IsAuthenticated(ctx) {
		return "guest"
	}
	if u := a.authService.CurrentUser(ctx); u != nil && u.Username != "" {
		return u.Username
	}
	return "signed-in"
}

func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to the TechWork portal CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
