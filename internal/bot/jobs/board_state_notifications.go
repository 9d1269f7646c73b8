package jobs

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

// newBoardStateNotificationsJob creates the job sending the problems of
// cards in work to their members. Besides the board state checks it flags
// cards without updates for longer than the stale threshold.
func newBoardStateNotificationsJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(boardStateLists...)...)
		if err != nil {
			return fmt.Errorf("failed to get cards: %w", err)
		}
		sortByDue(cards)

		activity, err := cardActivity(ctx, deps.Trello, cards)
		if err != nil {
			return err
		}

		now := deps.now()
		staleBefore := now.Add(-deps.staleAfter())

		item := func(card trello.Card) string {
			last, known := activity[card.ID]
			problems := CardCheck{
				BadDueDate:    card.Due == nil,
				Overdue:       card.Due != nil && card.Due.Before(now),
				BadLabelNames: len(card.RubricLabels()) == 0,
				Stale:         known && last.Before(staleBefore),
			}.problems()
			if len(problems) == 0 {
				return ""
			}

			names := make([]string, len(problems))
			for i, id := range problems {
				names[i] = strings.TrimSuffix(deps.Texts.Load(ctx, id), ":")
			}
			return "- " + cardLink(card, card.Name) + ": " + html.EscapeString(strings.Join(names, "; "))
		}

		paragraphs := []string{bold(deps.Texts.Load(ctx, texts.NotificationsHeader))}
		if groups := groupByMember(ctx, deps.Texts, cards, item); len(groups) > 0 {
			paragraphs = append(paragraphs, groups...)
		} else {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.BoardStateAllGood)))
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
