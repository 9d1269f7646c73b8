package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

var artsLists = append(append([]trello.ListAlias{}, illustrativeLists...), trello.ListTypesetting)

// newArticlesArtsJob creates the job listing posts in work that still need
// an illustrator or a cover. Archive posts are skipped.
func newArticlesArtsJob(deps JobDeps) JobFunc {
	format := CardFormat{ShowDue: true, ShowIllustrators: true}

	return func(ctx context.Context, send telegram.SendFunc) error {
		cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(artsLists...)...)
		if err != nil {
			return fmt.Errorf("failed to get cards: %w", err)
		}
		sortByDue(cards)

		labels := loadServiceLabels(ctx, deps.Texts)
		var noIllustrator, noCover []string
		for _, card := range cards {
			if labels.isArchive(card) {
				continue
			}
			fields, err := deps.Trello.GetCustomFields(ctx, card.ID)
			if err != nil {
				return fmt.Errorf("failed to get custom fields of card %s: %w", card.ID, err)
			}

			switch {
			case len(fields.Illustrators) == 0:
				noIllustrator = append(noIllustrator, FormatCard(ctx, deps.Texts, card, &fields, format))
			case fields.Cover == nil:
				noCover = append(noCover, FormatCard(ctx, deps.Texts, card, &fields, format))
			}
		}

		paragraphs := []string{bold(deps.Texts.Load(ctx, texts.ArtsTitle))}
		if len(noIllustrator) > 0 {
			paragraphs = append(paragraphs, bold(deps.Texts.Load(ctx, texts.ArtsNoIllustrator))+"\n"+numbered(noIllustrator))
		}
		if len(noCover) > 0 {
			paragraphs = append(paragraphs, bold(deps.Texts.Load(ctx, texts.ArtsNoCover))+"\n"+numbered(noCover))
		}
		if len(paragraphs) == 1 {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.ArtsEmpty)))
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
