package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/sysblokbot/internal/telegram"
)

// Job names, used as scheduler config keys and by command handlers.
const (
	FillPostsList      = "fill_posts_list"
	TrelloBoardState   = "trello_board_state"
	PublicationPlans   = "publication_plans"
	EditorialReport    = "editorial_report"
	IllustrativeReport = "illustrative_report"
	FetchRubricsSheet  = "db_fetch_rubrics_sheet"
	FetchStringsSheet  = "db_fetch_strings_sheet"
	ConfigUpdater      = "config_updater"
	SQLMaintenance     = "sql_maintenance"

	TrelloBoardStateNotifications = "trello_board_state_notifications"
	TrelloGetArticlesRubric       = "trello_get_articles_rubric"
	TrelloGetArticlesArts         = "trello_get_articles_arts"
	IllustrativeReportColumns     = "illustrative_report_columns"
	SendReminders                 = "send_reminders"
)

// JobFunc is a job body. Reports are delivered through send; the returned
// error means the job could not complete.
type JobFunc func(ctx context.Context, send telegram.SendFunc) error

// RegisterAllJobs returns all jobs keyed by name, each wrapped with logging.
func RegisterAllJobs(deps JobDeps) map[string]JobFunc {
	jobs := map[string]JobFunc{
		FillPostsList:      newFillPostsListJob(deps),
		TrelloBoardState:   newTrelloBoardStateJob(deps),
		PublicationPlans:   newPublicationPlansJob(deps),
		EditorialReport:    newEditorialReportJob(deps),
		IllustrativeReport: newIllustrativeReportJob(deps),
		FetchRubricsSheet:  newFetchRubricsSheetJob(deps),
		FetchStringsSheet:  newFetchStringsSheetJob(deps),
		ConfigUpdater:      newConfigUpdaterJob(deps),
		SQLMaintenance:     newSQLMaintenanceJob(deps),

		TrelloBoardStateNotifications: newBoardStateNotificationsJob(deps),
		TrelloGetArticlesRubric:       newArticlesRubricJob(deps),
		TrelloGetArticlesArts:         newArticlesArtsJob(deps),
		IllustrativeReportColumns:     newIllustrativeReportColumnsJob(deps),
		SendReminders:                 newSendRemindersJob(deps),
	}
	for name, job := range jobs {
		jobs[name] = withLogging(deps, name, job)
	}

	deps.Logger.Info("Initialized jobs", "count", len(jobs))
	return jobs
}

func withLogging(deps JobDeps, name string, job JobFunc) JobFunc {
	log := deps.Logger.With("job", name)

	return func(ctx context.Context, send telegram.SendFunc) error {
		log.InfoContext(ctx, "Starting job")
		startTime := time.Now()

		err := job(ctx, send)

		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Job failed", "error", err, "duration", duration)
			return fmt.Errorf("job %s failed: %w", name, err)
		}

		log.InfoContext(ctx, "Job completed", "duration", duration)
		return nil
	}
}
