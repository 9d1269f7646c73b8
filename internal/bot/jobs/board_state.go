package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

// boardStateLists are the lists of cards somebody is working on.
var boardStateLists = []trello.ListAlias{
	trello.ListInProgress,
	trello.ListToEdit,
	trello.ListEditedNextWeek,
	trello.ListEditedSometimes,
	trello.ListToChiefEditor,
	trello.ListProofreading,
	trello.ListTypesetting,
}

// newTrelloBoardStateJob creates the job reporting cards in work that are
// overdue or miss a due date, an assignee or a rubric label.
func newTrelloBoardStateJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(boardStateLists...)...)
		if err != nil {
			return fmt.Errorf("failed to get cards: %w", err)
		}
		sortByDue(cards)

		now := deps.now()
		errs := CardErrors{}
		for _, card := range cards {
			CheckCard(card, errs, CardCheck{
				BadDueDate:     card.Due == nil,
				Overdue:        card.Due != nil && card.Due.Before(now),
				MissingMembers: len(card.MemberIDs) == 0,
				BadLabelNames:  len(card.RubricLabels()) == 0,
			})
		}

		paragraphs := []string{bold(deps.Texts.Load(ctx, texts.BoardStateHeader))}
		if len(errs) == 0 {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.BoardStateAllGood)))
		} else {
			paragraphs = append(paragraphs, FormatErrors(ctx, deps.Texts, errs)[1:]...)
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
