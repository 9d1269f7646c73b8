package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
)

// newFetchRubricsSheetJob creates the job replacing the stored rubrics with
// the rubrics sheet.
func newFetchRubricsSheetJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		rubrics, err := deps.Sheets.FetchRubrics(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch rubrics: %w", err)
		}
		if err := deps.Store.ReplaceRubrics(ctx, rubrics); err != nil {
			return err
		}
		return send(ctx, html.EscapeString(deps.Texts.Load(ctx, texts.RubricsUpdated, len(rubrics))))
	}
}

// newFetchStringsSheetJob creates the job replacing the stored bot strings
// with the strings sheet.
func newFetchStringsSheetJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		strs, err := deps.Sheets.FetchStrings(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch strings: %w", err)
		}
		if err := deps.Store.ReplaceStrings(ctx, strs); err != nil {
			return err
		}
		return send(ctx, html.EscapeString(deps.Texts.Load(ctx, texts.StringsUpdated, len(strs))))
	}
}

// newConfigUpdaterJob creates the job re-reading the configuration file and
// pushing the Trello section into the client.
func newConfigUpdaterJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		if deps.ReloadConfig == nil {
			return fmt.Errorf("config reloading is not configured")
		}
		cfg, err := deps.ReloadConfig()
		if err != nil {
			return err
		}
		if err := deps.Trello.UpdateConfig(ctx, cfg.Trello); err != nil {
			return fmt.Errorf("failed to apply trello config: %w", err)
		}
		return send(ctx, html.EscapeString(deps.Texts.Load(ctx, texts.ConfigUpdated)))
	}
}

// newSQLMaintenanceJob creates the job running database maintenance. It
// reports nothing.
func newSQLMaintenanceJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, _ telegram.SendFunc) error {
		return deps.Store.RunSQLMaintenance(ctx)
	}
}
