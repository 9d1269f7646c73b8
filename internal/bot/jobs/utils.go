package jobs

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strings"
	"time"

	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

const dueLayout = "02.01"

// CardCheck lists the problems found on a card. A true field is a problem.
type CardCheck struct {
	BadTitle        bool
	BadGoogleDoc    bool
	BadAuthors      bool
	BadEditors      bool
	BadCover        bool
	BadIllustrators bool
	BadDueDate      bool
	BadLabelNames   bool
	MissingMembers  bool
	Overdue         bool
	Stale           bool
}

func (c CardCheck) problems() []string {
	var ids []string
	for _, p := range []struct {
		bad bool
		id  string
	}{
		{c.BadTitle, texts.ErrorBadTitle},
		{c.BadGoogleDoc, texts.ErrorBadGoogleDoc},
		{c.BadAuthors, texts.ErrorBadAuthors},
		{c.BadEditors, texts.ErrorBadEditors},
		{c.BadCover, texts.ErrorBadCover},
		{c.BadIllustrators, texts.ErrorBadIllustrators},
		{c.BadDueDate, texts.ErrorBadDueDate},
		{c.BadLabelNames, texts.ErrorBadLabelNames},
		{c.MissingMembers, texts.ErrorMissingMembers},
		{c.Overdue, texts.ErrorOverdue},
		{c.Stale, texts.ErrorStale},
	} {
		if p.bad {
			ids = append(ids, p.id)
		}
	}
	return ids
}

// errorOrder is the order error groups are reported in.
var errorOrder = []string{
	texts.ErrorBadTitle,
	texts.ErrorBadGoogleDoc,
	texts.ErrorBadAuthors,
	texts.ErrorBadEditors,
	texts.ErrorBadCover,
	texts.ErrorBadIllustrators,
	texts.ErrorBadDueDate,
	texts.ErrorBadLabelNames,
	texts.ErrorMissingMembers,
	texts.ErrorOverdue,
	texts.ErrorStale,
}

// CardErrors groups cards by problem. Keys are error string ids.
type CardErrors map[string][]trello.Card

// Len returns the number of problems recorded.
func (e CardErrors) Len() int {
	n := 0
	for _, cards := range e {
		n += len(cards)
	}
	return n
}

// CheckCard records every problem of check under card and reports whether
// the card has none.
func CheckCard(card trello.Card, errs CardErrors, check CardCheck) bool {
	problems := check.problems()
	for _, id := range problems {
		errs[id] = append(errs[id], card)
	}
	return len(problems) == 0
}

// FormatErrors renders errs as report paragraphs: a header, then one
// paragraph per problem listing the affected cards.
func FormatErrors(ctx context.Context, t Texts, errs CardErrors) []string {
	if len(errs) == 0 {
		return nil
	}

	paragraphs := []string{html.EscapeString(t.Load(ctx, texts.ErrorsHeader))}
	for _, id := range errorOrder {
		cards := errs[id]
		if len(cards) == 0 {
			continue
		}
		lines := []string{bold(t.Load(ctx, id))}
		for _, card := range cards {
			lines = append(lines, "- "+cardLink(card, card.Name))
		}
		paragraphs = append(paragraphs, strings.Join(lines, "\n"))
	}
	return paragraphs
}

// CardFormat selects the optional parts of FormatCard output.
type CardFormat struct {
	ShowDue          bool
	ShowAuthors      bool
	ShowEditors      bool
	ShowIllustrators bool
}

// FormatCard renders a card as an HTML link, titled from fields when the
// title field is set, followed by the parts selected in format.
func FormatCard(ctx context.Context, t Texts, card trello.Card, fields *trello.CardCustomFields, format CardFormat) string {
	title := card.Name
	if fields != nil && fields.Title != nil && *fields.Title != "" {
		title = *fields.Title
	}

	line := cardLink(card, title)
	if format.ShowDue && card.Due != nil {
		line += " (" + html.EscapeString(t.Load(ctx, texts.CardDue, card.Due.Format(dueLayout))) + ")"
	}

	lines := []string{line}
	if fields != nil {
		lines = appendPeople(ctx, t, lines, format.ShowAuthors, texts.CardAuthors, fields.Authors)
		lines = appendPeople(ctx, t, lines, format.ShowEditors, texts.CardEditors, fields.Editors)
		lines = appendPeople(ctx, t, lines, format.ShowIllustrators, texts.CardIllustrators, fields.Illustrators)
	}
	return strings.Join(lines, "\n")
}

func appendPeople(ctx context.Context, t Texts, lines []string, show bool, id string, people []string) []string {
	if !show || len(people) == 0 {
		return lines
	}
	return append(lines, html.EscapeString(t.Load(ctx, id, strings.Join(people, ", "))))
}

func cardLink(card trello.Card, title string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(card.Link()), html.EscapeString(title))
}

func bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}

// numbered renders items as a numbered list.
func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d) %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// sortByDue sorts cards by due date, cards without one first.
func sortByDue(cards []trello.Card) {
	slices.SortStableFunc(cards, func(a, b trello.Card) int {
		switch {
		case a.Due == nil && b.Due == nil:
			return 0
		case a.Due == nil:
			return -1
		case b.Due == nil:
			return 1
		default:
			return a.Due.Compare(*b.Due)
		}
	})
}

// serviceLabels holds the names of the main post and archive labels.
type serviceLabels struct {
	main    string
	archive string
}

func loadServiceLabels(ctx context.Context, t Texts) serviceLabels {
	return serviceLabels{
		main:    t.Load(ctx, texts.LabelMainPost),
		archive: t.Load(ctx, texts.LabelArchive),
	}
}

func (l serviceLabels) isMain(card trello.Card) bool    { return card.HasLabel(l.main) }
func (l serviceLabels) isArchive(card trello.Card) bool { return card.HasLabel(l.archive) }

// groupByMember renders item for every card under each of its members, in
// member order, followed by the cards nobody is assigned to. Cards item
// returns an empty string for are left out.
func groupByMember(ctx context.Context, t Texts, cards []trello.Card, item func(trello.Card) string) []string {
	members := map[string]trello.Member{}
	byMember := map[string][]string{}
	var unassigned []string

	for _, card := range cards {
		line := item(card)
		if line == "" {
			continue
		}
		if len(card.Members) == 0 {
			unassigned = append(unassigned, line)
			continue
		}
		for _, m := range card.Members {
			members[m.ID] = m
			byMember[m.ID] = append(byMember[m.ID], line)
		}
	}

	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return strings.Compare(members[a].String(), members[b].String())
	})

	paragraphs := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		paragraphs = append(paragraphs, bold(members[id].String())+"\n"+strings.Join(byMember[id], "\n"))
	}
	if len(unassigned) > 0 {
		paragraphs = append(paragraphs, bold(t.Load(ctx, texts.ErrorMissingMembers))+"\n"+strings.Join(unassigned, "\n"))
	}
	return paragraphs
}

// lastActivity returns when a card was last updated, or created when it was
// never updated. ok is false when neither is known.
func lastActivity(updates []trello.ActionUpdateCard, creates []trello.ActionCreateCard) (last time.Time, ok bool) {
	for _, a := range updates {
		if a.Date.After(last) {
			last = a.Date
		}
	}
	if !last.IsZero() {
		return last, true
	}
	for _, a := range creates {
		if a.Date.After(last) {
			last = a.Date
		}
	}
	return last, !last.IsZero()
}

// cardActivity returns the last activity of every card that has any, see
// lastActivity. Creation actions are fetched only for never updated cards.
func cardActivity(ctx context.Context, client TrelloClient, cards []trello.Card) (map[string]time.Time, error) {
	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}

	updates, err := client.GetActionsUpdateCard(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get card updates: %w", err)
	}

	activity := make(map[string]time.Time, len(ids))
	var neverUpdated []string
	for _, id := range ids {
		if last, ok := lastActivity(updates[id], nil); ok {
			activity[id] = last
		} else {
			neverUpdated = append(neverUpdated, id)
		}
	}
	if len(neverUpdated) == 0 {
		return activity, nil
	}

	creates, err := client.GetActionsCreateCard(ctx, neverUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to get card creations: %w", err)
	}
	for _, id := range neverUpdated {
		if last, ok := lastActivity(nil, creates[id]); ok {
			activity[id] = last
		}
	}
	return activity, nil
}
