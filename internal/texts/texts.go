// Package texts resolves user-facing report strings. Strings are edited by
// the editorial team in a Google Sheet and synced into the store; built-in
// defaults cover every id the jobs use.
package texts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edgard/sysblokbot/internal/database"
)

// String ids used by jobs.
const (
	FillPostsListSuccess   = "fill_posts_list_job__success"
	FillPostsListUnchanged = "fill_posts_list_job__unchanged"

	LabelMainPost = "common_trello_label__main_post"
	LabelArchive  = "common_trello_label__archive"

	ErrorsHeader          = "common_errors__header"
	ErrorBadTitle         = "common_errors__bad_title"
	ErrorBadGoogleDoc     = "common_errors__bad_google_doc"
	ErrorBadAuthors       = "common_errors__bad_authors"
	ErrorBadEditors       = "common_errors__bad_editors"
	ErrorBadCover         = "common_errors__bad_cover"
	ErrorBadIllustrators  = "common_errors__bad_illustrators"
	ErrorBadDueDate       = "common_errors__bad_due_date"
	ErrorBadLabelNames    = "common_errors__bad_label_names"
	ErrorMissingMembers   = "common_errors__missing_members"
	ErrorOverdue          = "common_errors__overdue"
	ErrorStale            = "common_errors__stale"
	BoardStateHeader      = "trello_board_state_job__header"
	BoardStateAllGood     = "trello_board_state_job__all_good"
	PublicationPlansTitle = "publication_plans_job__title"
	PublicationPlansEmpty = "publication_plans_job__empty"
	EditorialReportTitle  = "editorial_report_job__title"
	EditorialReportList   = "editorial_report_job__list"
	EditorialReportEmpty  = "editorial_report_job__empty"
	IllustrativeTitle     = "illustrative_report_job__title"
	IllustrativeNoArtist  = "illustrative_report_job__no_illustrator"
	IllustrativeEmpty     = "illustrative_report_job__empty"
	IllustrativeColumn    = "illustrative_report_columns_job__column"
	NotificationsHeader   = "trello_board_state_notifications_job__header"
	ArticlesRubricTitle   = "trello_get_articles_rubric_job__title"
	ArticlesRubricGroup   = "trello_get_articles_rubric_job__rubric"
	ArticlesRubricNone    = "trello_get_articles_rubric_job__no_rubric"
	ArticlesRubricEmpty   = "trello_get_articles_rubric_job__empty"
	ArtsTitle             = "trello_get_articles_arts_job__title"
	ArtsNoIllustrator     = "trello_get_articles_arts_job__no_illustrator"
	ArtsNoCover           = "trello_get_articles_arts_job__no_cover"
	ArtsEmpty             = "trello_get_articles_arts_job__empty"
	RemindersHeader       = "send_reminders_job__header"
	RubricsUpdated        = "db_fetch_rubrics_sheet_job__success"
	StringsUpdated        = "db_fetch_strings_sheet_job__success"
	ConfigUpdated         = "config_updater_job__success"

	CardDue          = "common_card__due"
	CardAuthors      = "common_card__authors"
	CardEditors      = "common_card__editors"
	CardIllustrators = "common_card__illustrators"
)

// Defaults are used when the store has no value for an id.
var Defaults = map[string]string{
	FillPostsListSuccess:   "New posts were added to the registry:",
	FillPostsListUnchanged: "The posts registry is up to date, nothing to add.",

	LabelMainPost: "Main post",
	LabelArchive:  "Archive",

	ErrorsHeader:         "Some cards need attention before the report can be built:",
	ErrorBadTitle:        "No title for the website:",
	ErrorBadGoogleDoc:    "No Google doc link:",
	ErrorBadAuthors:      "No authors:",
	ErrorBadEditors:      "No editors:",
	ErrorBadCover:        "No cover:",
	ErrorBadIllustrators: "No illustrators:",
	ErrorBadDueDate:      "No due date:",
	ErrorBadLabelNames:   "No rubric label:",
	ErrorMissingMembers:  "Nobody is assigned:",
	ErrorOverdue:         "Due date has passed:",
	ErrorStale:           "No updates for a long time:",

	BoardStateHeader:      "Board state report",
	BoardStateAllGood:     "Board is in order, no problems found.",
	PublicationPlansTitle: "Publication plans:",
	PublicationPlansEmpty: "Nothing is planned for publication.",
	EditorialReportTitle:  "Editorial report",
	EditorialReportList:   "%s (%d):",
	EditorialReportEmpty:  "No cards in editing.",
	IllustrativeTitle:     "Illustrations report",
	IllustrativeNoArtist:  "Without illustrator:",
	IllustrativeEmpty:     "No cards need illustrations.",
	IllustrativeColumn:    "%s (%d):",
	NotificationsHeader:   "Cards that need attention, by member",
	ArticlesRubricTitle:   "Open topics by rubric",
	ArticlesRubricGroup:   "%s (%d):",
	ArticlesRubricNone:    "Without rubric:",
	ArticlesRubricEmpty:   "No open topics on the board.",
	ArtsTitle:             "Illustration status",
	ArtsNoIllustrator:     "Need an illustrator:",
	ArtsNoCover:           "Waiting for a cover:",
	ArtsEmpty:             "Every post in work has its illustrations.",
	RemindersHeader:       "Deadlines coming up",
	RubricsUpdated:        "Rubrics updated: %d.",
	StringsUpdated:        "Bot strings updated: %d.",
	ConfigUpdated:         "Configuration reloaded.",

	CardDue:          "due %s",
	CardAuthors:      "Authors: %s",
	CardEditors:      "Editors: %s",
	CardIllustrators: "Illustrators: %s",
}

// StringStore is the part of database.Store the loader reads from.
type StringStore interface {
	GetString(ctx context.Context, id string) (string, bool, error)
}

var _ StringStore = (database.Store)(nil)

// Loader resolves string ids: stored value, then default, then the id itself.
type Loader struct {
	store StringStore
	log   *slog.Logger
}

// NewLoader creates a Loader. store may be nil, in which case only defaults are used.
func NewLoader(store StringStore, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{store: store, log: log.With("component", "texts")}
}

// Load returns the string for id, formatted with args when any are given.
// Store failures are logged and fall back to defaults. A value whose verbs
// do not match args is returned unformatted.
func (l *Loader) Load(ctx context.Context, id string, args ...any) string {
	value := l.lookup(ctx, id)
	if len(args) == 0 {
		return value
	}

	formatted := fmt.Sprintf(value, args...)
	if strings.Contains(formatted, "%!") {
		l.log.WarnContext(ctx, "String does not match its arguments", "string_id", id, "value", value, "args", len(args))
		return value
	}
	return formatted
}

func (l *Loader) lookup(ctx context.Context, id string) string {
	if l.store != nil {
		value, ok, err := l.store.GetString(ctx, id)
		if err != nil {
			l.log.WarnContext(ctx, "Failed to load string from store, using default", "string_id", id, "error", err)
		} else if ok {
			return value
		}
	}
	if value, ok := Defaults[id]; ok {
		return value
	}
	l.log.WarnContext(ctx, "Unknown string id", "string_id", id)
	return id
}
