package jobs

import (
	"context"
	"fmt"
	"html"
	"slices"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

var illustrativeLists = []trello.ListAlias{
	trello.ListInProgress,
	trello.ListToEdit,
	trello.ListEditedNextWeek,
	trello.ListEditedSometimes,
	trello.ListToChiefEditor,
	trello.ListProofreading,
}

// newIllustrativeReportJob creates the job grouping cards in work by
// illustrator. Archive posts need no illustrations and are skipped.
func newIllustrativeReportJob(deps JobDeps) JobFunc {
	format := CardFormat{ShowDue: true}

	return func(ctx context.Context, send telegram.SendFunc) error {
		cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(illustrativeLists...)...)
		if err != nil {
			return fmt.Errorf("failed to get cards: %w", err)
		}
		sortByDue(cards)

		labels := loadServiceLabels(ctx, deps.Texts)
		byIllustrator := map[string][]string{}
		var unassigned []string

		for _, card := range cards {
			if labels.isArchive(card) {
				continue
			}
			fields, err := deps.Trello.GetCustomFields(ctx, card.ID)
			if err != nil {
				return fmt.Errorf("failed to get custom fields of card %s: %w", card.ID, err)
			}

			item := FormatCard(ctx, deps.Texts, card, &fields, format)
			if len(fields.Illustrators) == 0 {
				unassigned = append(unassigned, item)
				continue
			}
			for _, name := range fields.Illustrators {
				byIllustrator[name] = append(byIllustrator[name], item)
			}
		}

		paragraphs := []string{bold(deps.Texts.Load(ctx, texts.IllustrativeTitle))}
		if len(byIllustrator) == 0 && len(unassigned) == 0 {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.IllustrativeEmpty)))
			return telegram.PrettySend(ctx, paragraphs, send)
		}

		names := make([]string, 0, len(byIllustrator))
		for name := range byIllustrator {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			paragraphs = append(paragraphs, bold(name)+"\n"+numbered(byIllustrator[name]))
		}
		if len(unassigned) > 0 {
			paragraphs = append(paragraphs, bold(deps.Texts.Load(ctx, texts.IllustrativeNoArtist))+"\n"+numbered(unassigned))
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
