// Package jobs implements the editorial jobs: reports built from the Trello
// board, the posts registry sync and the sheet-to-database imports. Each job
// is a sequential routine run by the scheduler or by a bot command.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/database"
	"github.com/edgard/sysblokbot/internal/sheets"
	"github.com/edgard/sysblokbot/internal/trello"
)

// TrelloClient is the part of *trello.Client used by jobs.
type TrelloClient interface {
	ListID(alias trello.ListAlias) string
	ListIDs(aliases ...trello.ListAlias) []string
	GetBoard(ctx context.Context) (trello.Board, error)
	GetBoardLabels(ctx context.Context) ([]trello.Label, error)
	GetCards(ctx context.Context, listIDs ...string) ([]trello.Card, error)
	GetCustomFields(ctx context.Context, cardID string) (trello.CardCustomFields, error)
	GetActionsCreateCard(ctx context.Context, cardIDs []string) (map[string][]trello.ActionCreateCard, error)
	GetActionsUpdateCard(ctx context.Context, cardIDs []string) (map[string][]trello.ActionUpdateCard, error)
	UpdateConfig(ctx context.Context, cfg config.TrelloConfig) error
}

// SheetsClient is the part of *sheets.Client used by jobs.
type SheetsClient interface {
	UpdatePostsRegistry(ctx context.Context, posts []sheets.RegistryPost) ([]string, error)
	FetchRubrics(ctx context.Context) ([]database.Rubric, error)
	FetchStrings(ctx context.Context) ([]database.BotString, error)
}

// Store is the part of database.Store used by jobs.
type Store interface {
	RunSQLMaintenance(ctx context.Context) error
	GetRubrics(ctx context.Context) ([]database.Rubric, error)
	ReplaceRubrics(ctx context.Context, rubrics []database.Rubric) error
	ReplaceStrings(ctx context.Context, strs []database.BotString) error
}

// Texts resolves user-facing strings, see texts.Loader.
type Texts interface {
	Load(ctx context.Context, id string, args ...any) string
}

var (
	_ TrelloClient = (*trello.Client)(nil)
	_ SheetsClient = (*sheets.Client)(nil)
	_ Store        = (database.Store)(nil)
)

// JobDeps contains all dependencies required by jobs.
type JobDeps struct {
	Logger *slog.Logger
	Trello TrelloClient
	Sheets SheetsClient
	Store  Store
	Texts  Texts

	// ReloadConfig re-reads the configuration file for the config updater.
	ReloadConfig func() (*config.Config, error)

	// Settings holds the notification thresholds; zero values use the config defaults.
	Settings config.JobsConfig

	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

func (d JobDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d JobDeps) staleAfter() time.Duration {
	if d.Settings.StaleAfter > 0 {
		return d.Settings.StaleAfter
	}
	return config.DefaultStaleAfter
}

func (d JobDeps) reminderWindow() time.Duration {
	if d.Settings.ReminderWindow > 0 {
		return d.Settings.ReminderWindow
	}
	return config.DefaultReminderWindow
}
