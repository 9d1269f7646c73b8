package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

// topicLists hold topics nobody has started writing yet.
var topicLists = []trello.ListAlias{
	trello.ListTopicSuggestion,
	trello.ListTopicReady,
}

// newArticlesRubricJob creates the job listing open topics grouped by rubric
// label, in the order the labels are defined on the board.
func newArticlesRubricJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		board, err := deps.Trello.GetBoard(ctx)
		if err != nil {
			return fmt.Errorf("failed to get board: %w", err)
		}
		labels, err := deps.Trello.GetBoardLabels(ctx)
		if err != nil {
			return fmt.Errorf("failed to get board labels: %w", err)
		}
		cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(topicLists...)...)
		if err != nil {
			return fmt.Errorf("failed to get cards: %w", err)
		}

		byLabel := map[string][]string{}
		var noRubric []string
		for _, card := range cards {
			item := cardLink(card, card.Name)
			if card.List != nil {
				item += " (" + html.EscapeString(card.List.Name) + ")"
			}

			rubrics := card.RubricLabels()
			if len(rubrics) == 0 {
				noRubric = append(noRubric, item)
				continue
			}
			for _, l := range rubrics {
				byLabel[l.ID] = append(byLabel[l.ID], item)
			}
		}

		title := bold(deps.Texts.Load(ctx, texts.ArticlesRubricTitle))
		if board.URL != "" {
			title += "\n" + fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(board.URL), html.EscapeString(board.Name))
		}
		paragraphs := []string{title}

		for _, l := range labels {
			items := byLabel[l.ID]
			if l.Color == trello.LabelColorBlack || len(items) == 0 {
				continue
			}
			header := deps.Texts.Load(ctx, texts.ArticlesRubricGroup, l.Name, len(items))
			paragraphs = append(paragraphs, bold(header)+"\n"+numbered(items))
		}
		if len(noRubric) > 0 {
			paragraphs = append(paragraphs, bold(deps.Texts.Load(ctx, texts.ArticlesRubricNone))+"\n"+numbered(noRubric))
		}

		if len(paragraphs) == 1 {
			paragraphs = append(paragraphs, html.EscapeString(deps.Texts.Load(ctx, texts.ArticlesRubricEmpty)))
		}
		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
