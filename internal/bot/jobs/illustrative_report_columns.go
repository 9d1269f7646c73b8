package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
)

// newIllustrativeReportColumnsJob creates the illustrations report laid out
// by board list instead of by illustrator.
func newIllustrativeReportColumnsJob(deps JobDeps) JobFunc {
	format := CardFormat{ShowDue: true, ShowIllustrators: true}

	return func(ctx context.Context, send telegram.SendFunc) error {
		labels := loadServiceLabels(ctx, deps.Texts)
		paragraphs := []string{bold(deps.Texts.Load(ctx, texts.IllustrativeTitle))}

		for _, alias := range illustrativeLists {
			cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListID(alias))
			if err != nil {
				return fmt.Errorf("failed to get cards of %s: %w", alias, err)
			}
			sortByDue(cards)

			var items []string
			for _, card := range cards {
				if labels.isArchive(card) {
					continue
				}
				fields, err := deps.Trello.GetCustomFields(ctx, card.ID)
				if err != nil {
					return fmt.Errorf("failed to get custom fields of card %s: %w", card.ID, err)
				}
				items = append(items, FormatCard(ctx, deps.Texts, card, &fields, format))
			}
			if len(items) == 0 {
				continue
			}

			header := deps.Texts.Load(ctx, texts.IllustrativeColumn, listName(cards, alias), len(items))
			paragraphs = append(paragraphs, bold(header)+"\n"+numbered(items))
		}

		if len(paragraphs) == 1 {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.IllustrativeEmpty)))
		}
		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
