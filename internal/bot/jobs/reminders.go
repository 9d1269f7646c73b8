package jobs

import (
	"context"
	"fmt"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

// newSendRemindersJob creates the job reminding members of cards in work
// that are due within the reminder window. Nothing is sent when no deadline
// is near.
func newSendRemindersJob(deps JobDeps) JobFunc {
	format := CardFormat{ShowDue: true}

	return func(ctx context.Context, send telegram.SendFunc) error {
		cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(boardStateLists...)...)
		if err != nil {
			return fmt.Errorf("failed to get cards: %w", err)
		}
		sortByDue(cards)

		now := deps.now()
		until := now.Add(deps.reminderWindow())
		groups := groupByMember(ctx, deps.Texts, cards, func(card trello.Card) string {
			if card.Due == nil || card.Due.Before(now) || card.Due.After(until) {
				return ""
			}
			return "- " + FormatCard(ctx, deps.Texts, card, nil, format)
		})
		if len(groups) == 0 {
			deps.Logger.DebugContext(ctx, "No deadlines within the reminder window", "window", deps.reminderWindow())
			return nil
		}

		paragraphs := append([]string{bold(deps.Texts.Load(ctx, texts.RemindersHeader))}, groups...)
		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
