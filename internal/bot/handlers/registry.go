package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/sysblokbot/internal/bot/jobs"
	"github.com/edgard/sysblokbot/internal/telegram"
)

// JobCommands maps admin commands to the jobs they run.
var JobCommands = map[string]string{
	"get_trello_board_state":  jobs.TrelloBoardState,
	"get_publication_plans":   jobs.PublicationPlans,
	"get_editorial_report":    jobs.EditorialReport,
	"get_illustrative_report": jobs.IllustrativeReport,
	"fill_posts_list":         jobs.FillPostsList,
	"update_rubrics":          jobs.FetchRubricsSheet,
	"update_strings":          jobs.FetchStringsSheet,
	"update_config":           jobs.ConfigUpdater,

	"get_illustrative_report_columns":       jobs.IllustrativeReportColumns,
	"get_articles_rubric":                   jobs.TrelloGetArticlesRubric,
	"get_articles_arts":                     jobs.TrelloGetArticlesArts,
	"send_trello_board_state_notifications": jobs.TrelloBoardStateNotifications,
	"send_reminders":                        jobs.SendReminders,
}

// RegisterAllCommands returns the routes of all bot commands keyed by command.
func RegisterAllCommands(deps HandlerDeps) map[string]telegram.Route {
	routes := map[string]telegram.Route{
		"/start": {
			Match:   telegram.CommandMatcher("start", deps.botUsername),
			Handler: NewStartHandler(deps),
		},
		"/help": {
			Match:   telegram.CommandMatcher("help", deps.botUsername),
			Handler: NewHelpHandler(deps),
		},
	}

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}
	for command, jobName := range JobCommands {
		routes["/"+command] = telegram.Route{
			Match:      telegram.CommandMatcher(command, deps.botUsername),
			Handler:    NewJobHandler(deps, jobName),
			Middleware: adminMiddleware,
		}
	}

	return routes
}
