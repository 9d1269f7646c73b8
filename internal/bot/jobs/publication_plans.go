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

// newPublicationPlansJob creates the job listing posts that are about to be
// published, validated with the registry rules.
func newPublicationPlansJob(deps JobDeps) JobFunc {
	return func(ctx context.Context, send telegram.SendFunc) error {
		rubrics, err := deps.Store.GetRubrics(ctx)
		if err != nil {
			return err
		}

		errs := CardErrors{}
		posts, err := retrieveRegistryPosts(ctx, deps,
			[]trello.ListAlias{trello.ListProofreading, trello.ListTypesetting, trello.ListDone},
			rubrics, errs)
		if err != nil {
			return err
		}

		var paragraphs []string
		switch {
		case len(errs) > 0:
			paragraphs = FormatErrors(ctx, deps.Texts, errs)
		case len(posts) == 0:
			paragraphs = []string{html.EscapeString(deps.Texts.Load(ctx, texts.PublicationPlansEmpty))}
		default:
			items := make([]string, 0, len(posts))
			for _, post := range posts {
				item := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(post.TrelloLink), html.EscapeString(post.Title))
				if post.Due != nil {
					item = post.Due.Format(dueLayout) + " " + item
				}
				if len(post.Rubrics) > 0 {
					item += " [" + html.EscapeString(strings.Join(post.Rubrics, ", ")) + "]"
				}
				items = append(items, item)
			}
			paragraphs = []string{bold(deps.Texts.Load(ctx, texts.PublicationPlansTitle)), numbered(items)}
		}

		return telegram.PrettySend(ctx, paragraphs, send)
	}
}
