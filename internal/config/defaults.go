package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel      = "info"
	DefaultDBPath        = "sysblokbot.db"
	DefaultTrelloURL     = "https://api.trello.com/1/"
	DefaultTrelloTimeout = 30 * time.Second

	DefaultStaleAfter     = 14 * 24 * time.Hour
	DefaultReminderWindow = 48 * time.Hour
)

// DefaultListPrefixes maps list aliases to the list name prefixes of the editorial board.
var DefaultListPrefixes = map[string]string{
	"topic_suggestion": "Topic suggestion",
	"topic_ready":      "Topic ready",
	"in_progress":      "In progress",
	"to_edit":          "To edit",
	"edited_next_week": "Edited next week",
	"edited_sometimes": "Edited sometimes",
	"to_chief_editor":  "To chief editor",
	"proofreading":     "Proofreading",
	"typesetting":      "Typesetting",
	"done":             "Done",
}

// DefaultCustomFieldPrefixes maps custom field aliases to the custom field name prefixes.
var DefaultCustomFieldPrefixes = map[string]string{
	"author":      "Author",
	"editor":      "Editor",
	"illustrator": "Illustrator",
	"google_doc":  "Google doc",
	"title":       "Title",
	"cover":       "Cover",
}

var defaults = map[string]any{
	"logger.level": DefaultLogLevel,
	"logger.json":  false,

	"database.path": DefaultDBPath,

	"trello.base_url":    DefaultTrelloURL,
	"trello.timeout":     DefaultTrelloTimeout,
	"trello.retry_count": 0,

	"sheets.posts_registry.range": "Registry!A:M",
	"sheets.rubrics.range":        "Rubrics!A:C",
	"sheets.strings.range":        "Strings!A:B",

	"jobs.stale_after":     DefaultStaleAfter,
	"jobs.reminder_window": DefaultReminderWindow,

	"messages.welcome": "Hi! I am the editorial board bot. Use /help to see what I can do.",
	"messages.help": "Available commands:\n" +
		"/get_trello_board_state - board health report\n" +
		"/get_publication_plans - upcoming publications\n" +
		"/get_editorial_report - editorial pipeline report\n" +
		"/get_illustrative_report - illustrators report\n" +
		"/get_illustrative_report_columns - illustrations by board column\n" +
		"/get_articles_rubric - open topics by rubric\n" +
		"/get_articles_arts - posts waiting for illustrations\n" +
		"/send_trello_board_state_notifications - board problems by member\n" +
		"/send_reminders - upcoming deadlines by member\n" +
		"/fill_posts_list - update the posts registry\n" +
		"/update_rubrics - reload rubrics from the sheet\n" +
		"/update_strings - reload bot strings from the sheet\n" +
		"/update_config - reload configuration",
	"messages.unauthorized":    "You are not allowed to run this command.",
	"messages.unknown_command": "Unknown command. Use /help to see available commands.",
	"messages.job_failed":      "The job failed, see logs for details.",
	"messages.job_timeout":     "The job took too long and was cancelled.",
}
