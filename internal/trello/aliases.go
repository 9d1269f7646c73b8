package trello

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAliasNotFound is returned when no board item name starts with the alias prefix.
	ErrAliasNotFound = errors.New("alias matches no item")
	// ErrAmbiguousAlias is returned when several board item names start with the alias prefix.
	ErrAmbiguousAlias = errors.New("alias is ambiguous")
)

// ListAlias is a stable name of a board list, independent of its display name.
type ListAlias string

// List aliases in board order.
const (
	ListTopicSuggestion ListAlias = "topic_suggestion"
	ListTopicReady      ListAlias = "topic_ready"
	ListInProgress      ListAlias = "in_progress"
	ListToEdit          ListAlias = "to_edit"
	ListEditedNextWeek  ListAlias = "edited_next_week"
	ListEditedSometimes ListAlias = "edited_sometimes"
	ListToChiefEditor   ListAlias = "to_chief_editor"
	ListProofreading    ListAlias = "proofreading"
	ListTypesetting     ListAlias = "typesetting"
	ListDone            ListAlias = "done"
)

// ListAliases lists every list alias the client resolves at start-up.
var ListAliases = []ListAlias{
	ListTopicSuggestion,
	ListTopicReady,
	ListInProgress,
	ListToEdit,
	ListEditedNextWeek,
	ListEditedSometimes,
	ListToChiefEditor,
	ListProofreading,
	ListTypesetting,
	ListDone,
}

// CustomFieldAlias is a stable name of a board custom field type.
type CustomFieldAlias string

// Custom field aliases.
const (
	FieldAuthor      CustomFieldAlias = "author"
	FieldEditor      CustomFieldAlias = "editor"
	FieldIllustrator CustomFieldAlias = "illustrator"
	FieldGoogleDoc   CustomFieldAlias = "google_doc"
	FieldTitle       CustomFieldAlias = "title"
	FieldCover       CustomFieldAlias = "cover"
)

// CustomFieldAliases lists every custom field alias the client resolves at start-up.
var CustomFieldAliases = []CustomFieldAlias{
	FieldAuthor,
	FieldEditor,
	FieldIllustrator,
	FieldGoogleDoc,
	FieldTitle,
	FieldCover,
}

type namedItem struct {
	ID   string
	Name string
}

// resolveAliases maps every alias to the id of the single item whose name
// starts with the alias prefix.
func resolveAliases[A ~string](kind string, aliases []A, prefixes map[string]string, items []namedItem) (map[A]string, error) {
	result := make(map[A]string, len(aliases))
	for _, alias := range aliases {
		prefix, ok := prefixes[string(alias)]
		if !ok || prefix == "" {
			return nil, fmt.Errorf("%w: no name prefix configured for %s alias %q", ErrAliasNotFound, kind, alias)
		}

		var matches []namedItem
		for _, item := range items {
			if strings.HasPrefix(item.Name, prefix) {
				matches = append(matches, item)
			}
		}

		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: %s alias %q (prefix %q)", ErrAliasNotFound, kind, alias, prefix)
		case 1:
			result[alias] = matches[0].ID
		default:
			names := make([]string, 0, len(matches))
			for _, m := range matches {
				names = append(names, m.Name)
			}
			return nil, fmt.Errorf("%w: %s alias %q (prefix %q) matches %s",
				ErrAmbiguousAlias, kind, alias, prefix, strings.Join(names, ", "))
		}
	}
	return result, nil
}
