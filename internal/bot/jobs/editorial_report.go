package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

var editorialLists = []trello.ListAlias{
	trello.ListToEdit,
	trello.ListEditedNextWeek,
	trello.ListEditedSometimes,
	trello.ListToChiefEditor,
}

// newEditorialReportJob creates the job listing cards of every editorial
// list with their authors and editors.
func newEditorialReportJob(deps JobDeps) JobFunc {
	format := CardFormat{ShowDue: true, ShowAuthors: true, ShowEditors: true}

	return func(ctx context.Context, send telegram.SendFunc) error {
		paragraphs := []string{bold(deps.Texts.Load(ctx, texts.EditorialReportTitle))}

		for _, alias := range editorialLists {
			cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListID(alias))
			if err != nil {
				return fmt.Errorf("failed to get cards of %s: %w", alias, err)
			}
			if len(cards) == 0 {
				continue
			}
			sortByDue(cards)

			items := make([]string, 0, len(cards))
			for _, card := range cards {
				fields, err := deps.Trello.GetCustomFields(ctx, card.ID)
				if err != nil {
					return fmt.Errorf("failed to get custom fields of card %s: %w", card.ID, err)
				}
				items = append(items, FormatCard(ctx, deps.Texts, card, &fields, format))
			}

			header := deps.Texts.Load(ctx, texts.EditorialReportList, listName(cards, alias), len(cards))
			paragraphs = append(paragraphs, bold(header)+"\n"+numbered(items))
		}

		if len(paragraphs) == 1 {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.EditorialReportEmpty)))
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}

// listName returns the board name of the list the cards are in, or the alias
// when the list is unknown.
func listName(cards []trello.Card, alias trello.ListAlias) string {
	for _, card := range cards {
		if card.List != nil {
			return card.List.Name
		}
	}
	return string(alias)
}
