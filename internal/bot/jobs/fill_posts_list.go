package jobs

import (
	"context"
	"fmt"
	"html"

	"github.com/edgard/sysblokbot/internal/database"
	"github.com/edgard/sysblokbot/internal/sheets"
	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

// newFillPostsListJob creates the job appending ready posts to the registry
// sheet. Nothing is written while any card has problems; the problems are
// reported instead.
func newFillPostsListJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		rubrics, err := deps.Store.GetRubrics(ctx)
		if err != nil {
			return err
		}

		errs := CardErrors{}
		posts, err := retrieveRegistryPosts(ctx, deps,
			[]trello.ListAlias{trello.ListProofreading, trello.ListDone},
			rubrics, errs)
		if err != nil {
			return err
		}

		var paragraphs []string
		if len(errs) > 0 {
			deps.Logger.InfoContext(ctx, "Cards are not ready for the registry", "problems", errs.Len())
			paragraphs = FormatErrors(ctx, deps.Texts, errs)
		} else {
			added, err := deps.Sheets.UpdatePostsRegistry(ctx, posts)
			if err != nil {
				return err
			}
			if len(added) == 0 {
				paragraphs = []string{html.EscapeString(deps.Texts.Load(ctx, texts.FillPostsListUnchanged))}
			} else {
				titles := make([]string, len(added))
				for i, title := range added {
					titles[i] = html.EscapeString(title)
				}
				paragraphs = []string{html.EscapeString(deps.Texts.Load(ctx, texts.FillPostsListSuccess)), numbered(titles)}
			}
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}

// retrieveRegistryPosts loads the cards of the given lists ordered by due
// date, validates them for the registry and converts the valid ones. Problems
// are recorded in errs.
func retrieveRegistryPosts(
	ctx context.Context,
	deps JobDeps,
	aliases []trello.ListAlias,
	rubrics []database.Rubric,
	errs CardErrors,
) ([]sheets.RegistryPost, error) {
	cards, err := deps.Trello.GetCards(ctx, deps.Trello.ListIDs(aliases...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	sortByDue(cards)

	labels := loadServiceLabels(ctx, deps.Texts)
	editedNextWeek := deps.Trello.ListID(trello.ListEditedNextWeek)

	posts := make([]sheets.RegistryPost, 0, len(cards))
	for _, card := range cards {
		isMain := labels.isMain(card)
		isArchive := labels.isArchive(card)

		fields, err := deps.Trello.GetCustomFields(ctx, card.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get custom fields of card %s: %w", card.ID, err)
		}

		ok := CheckCard(card, errs, CardCheck{
			BadTitle:        fields.Title == nil && card.ListID != editedNextWeek,
			BadGoogleDoc:    fields.GoogleDoc == nil,
			BadAuthors:      len(fields.Authors) == 0,
			BadEditors:      len(fields.Editors) == 0,
			BadCover:        fields.Cover == nil && !isArchive,
			BadIllustrators: len(fields.Illustrators) == 0 && !isArchive,
			BadDueDate:      card.Due == nil,
			BadLabelNames:   len(card.RubricLabels()) == 0,
		})
		if !ok {
			continue
		}

		posts = append(posts, sheets.NewRegistryPost(card, fields, isMain, isArchive, rubrics))
	}

	return posts, nil
}
