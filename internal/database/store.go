package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the database operations used by jobs and handlers.
type Store interface {
	// RunSQLMaintenance runs VACUUM and ANALYZE.
	RunSQLMaintenance(ctx context.Context) error

	// GetRubrics returns all rubrics ordered by name.
	GetRubrics(ctx context.Context) ([]Rubric, error)

	// ReplaceRubrics atomically replaces all rubrics. A later rubric with
	// the same name replaces an earlier one.
	ReplaceRubrics(ctx context.Context, rubrics []Rubric) error

	// GetString returns the string with the given id. ok is false when it is not stored.
	GetString(ctx context.Context, id string) (value string, ok bool, err error)

	// ReplaceStrings atomically replaces all strings.
	ReplaceStrings(ctx context.Context, strs []BotString) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance...")

	// VACUUM must run outside a transaction in sqlite
	for _, stmt := range []string{"VACUUM;", "ANALYZE;"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return fmt.Errorf("database maintenance timed out: %w", err)
			}
			return fmt.Errorf("failed to execute %s: %w", stmt, err)
		}
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}

func (s *sqlxStore) GetRubrics(ctx context.Context) ([]Rubric, error) {
	var rubrics []Rubric
	err := s.db.SelectContext(ctx, &rubrics,
		`SELECT id, name, vk_tag, tg_tag, updated_at FROM rubrics ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("failed to get rubrics: %w", err)
	}
	return rubrics, nil
}

func (s *sqlxStore) ReplaceRubrics(ctx context.Context, rubrics []Rubric) error {
	now := time.Now().UTC()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rubrics;`); err != nil {
			return fmt.Errorf("failed to clear rubrics: %w", err)
		}
		for i := range rubrics {
			r := rubrics[i]
			r.UpdatedAt = now
			_, err := tx.NamedExecContext(ctx,
				`INSERT OR REPLACE INTO rubrics (name, vk_tag, tg_tag, updated_at) VALUES (:name, :vk_tag, :tg_tag, :updated_at);`, r)
			if err != nil {
				return fmt.Errorf("failed to insert rubric %q: %w", r.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Rubrics replaced", "count", len(rubrics))
	return nil
}

func (s *sqlxStore) GetString(ctx context.Context, id string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM strings WHERE id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get string %q: %w", id, err)
	}
	return value, true, nil
}

func (s *sqlxStore) ReplaceStrings(ctx context.Context, strs []BotString) error {
	now := time.Now().UTC()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM strings;`); err != nil {
			return fmt.Errorf("failed to clear strings: %w", err)
		}
		for i := range strs {
			str := strs[i]
			str.UpdatedAt = now
			// later rows with the same id win, like in the sheet
			_, err := tx.NamedExecContext(ctx,
				`INSERT OR REPLACE INTO strings (id, value, updated_at) VALUES (:id, :value, :updated_at);`, str)
			if err != nil {
				return fmt.Errorf("failed to insert string %q: %w", str.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Strings replaced", "count", len(strs))
	return nil
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *sqlxStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
