package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/database"
	"github.com/edgard/sysblokbot/internal/logger"
	"github.com/edgard/sysblokbot/internal/sheets"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

var testNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

type fakeTrello struct {
	board   trello.Board
	labels  []trello.Label
	cards   map[string][]trello.Card
	fields  map[string]trello.CardCustomFields
	updates map[string][]trello.ActionUpdateCard
	creates map[string][]trello.ActionCreateCard
	updated *config.TrelloConfig
	err     error

	// createRequests records the card ids creation actions were asked for.
	createRequests []string
}

func listID(alias trello.ListAlias) string { return "list_" + string(alias) }

func (f *fakeTrello) ListID(alias trello.ListAlias) string { return listID(alias) }

func (f *fakeTrello) ListIDs(aliases ...trello.ListAlias) []string {
	ids := make([]string, len(aliases))
	for i, a := range aliases {
		ids[i] = listID(a)
	}
	return ids
}

func (f *fakeTrello) GetBoard(context.Context) (trello.Board, error) { return f.board, f.err }

func (f *fakeTrello) GetBoardLabels(context.Context) ([]trello.Label, error) { return f.labels, f.err }

func (f *fakeTrello) GetActionsUpdateCard(_ context.Context, cardIDs []string) (map[string][]trello.ActionUpdateCard, error) {
	res := map[string][]trello.ActionUpdateCard{}
	for _, id := range cardIDs {
		res[id] = f.updates[id]
	}
	return res, f.err
}

func (f *fakeTrello) GetActionsCreateCard(_ context.Context, cardIDs []string) (map[string][]trello.ActionCreateCard, error) {
	f.createRequests = append(f.createRequests, cardIDs...)
	res := map[string][]trello.ActionCreateCard{}
	for _, id := range cardIDs {
		res[id] = f.creates[id]
	}
	return res, f.err
}

func (f *fakeTrello) GetCards(_ context.Context, listIDs ...string) ([]trello.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	var cards []trello.Card
	for _, id := range listIDs {
		cards = append(cards, f.cards[id]...)
	}
	return cards, nil
}

func (f *fakeTrello) GetCustomFields(_ context.Context, cardID string) (trello.CardCustomFields, error) {
	fields := f.fields[cardID]
	fields.CardID = cardID
	return fields, nil
}

func (f *fakeTrello) UpdateConfig(_ context.Context, cfg config.TrelloConfig) error {
	if f.err != nil {
		return f.err
	}
	f.updated = &cfg
	return nil
}

// addCard puts card into the list with alias and attaches it to the list.
func (f *fakeTrello) addCard(alias trello.ListAlias, card trello.Card, fields trello.CardCustomFields) {
	if f.cards == nil {
		f.cards = map[string][]trello.Card{}
		f.fields = map[string]trello.CardCustomFields{}
	}
	card.ListID = listID(alias)
	card.List = &trello.List{ID: card.ListID, Name: strings.ToUpper(string(alias))}
	f.cards[card.ListID] = append(f.cards[card.ListID], card)
	f.fields[card.ID] = fields
}

type fakeSheets struct {
	registry []string
	posts    []sheets.RegistryPost
	rubrics  []database.Rubric
	strs     []database.BotString
	calls    int
}

func (f *fakeSheets) UpdatePostsRegistry(_ context.Context, posts []sheets.RegistryPost) ([]string, error) {
	f.calls++
	f.posts = posts
	var added []string
	for _, p := range posts {
		known := false
		for _, link := range f.registry {
			if link == p.TrelloLink {
				known = true
			}
		}
		if !known {
			f.registry = append(f.registry, p.TrelloLink)
			added = append(added, p.Title)
		}
	}
	return added, nil
}

func (f *fakeSheets) FetchRubrics(context.Context) ([]database.Rubric, error) { return f.rubrics, nil }

func (f *fakeSheets) FetchStrings(context.Context) ([]database.BotString, error) { return f.strs, nil }

type fakeStore struct {
	rubrics     []database.Rubric
	strs        []database.BotString
	maintenance int
	err         error
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error {
	f.maintenance++
	return f.err
}

func (f *fakeStore) GetRubrics(context.Context) ([]database.Rubric, error) { return f.rubrics, f.err }

func (f *fakeStore) ReplaceRubrics(_ context.Context, rubrics []database.Rubric) error {
	if f.err != nil {
		return f.err
	}
	f.rubrics = rubrics
	return nil
}

func (f *fakeStore) ReplaceStrings(_ context.Context, strs []database.BotString) error {
	if f.err != nil {
		return f.err
	}
	f.strs = strs
	return nil
}

type testEnv struct {
	trello *fakeTrello
	sheets *fakeSheets
	store  *fakeStore
	deps   JobDeps
	sent   []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		trello: &fakeTrello{},
		sheets: &fakeSheets{},
		store:  &fakeStore{},
	}
	env.deps = JobDeps{
		Logger: logger.Discard(),
		Trello: env.trello,
		Sheets: env.sheets,
		Store:  env.store,
		Texts:  texts.NewLoader(nil, logger.Discard()),
		Now:    func() time.Time { return testNow },
	}
	return env
}

func (e *testEnv) send(_ context.Context, text string) error {
	e.sent = append(e.sent, text)
	return nil
}

func (e *testEnv) output() string {
	return strings.Join(e.sent, "\n\n")
}

func ptr[T any](v T) *T { return &v }

var (
	alice = trello.Member{ID: "m1", Username: "alice", FullName: "Alice"}
	bob   = trello.Member{ID: "m2", Username: "bob", FullName: "Bob"}
)

func updatedDaysAgo(days int) []trello.ActionUpdateCard {
	return []trello.ActionUpdateCard{{Date: testNow.AddDate(0, 0, -days)}}
}

func due(days int) *time.Time {
	return ptr(testNow.AddDate(0, 0, days))
}

// readyCard returns a card and fields passing every registry check.
func readyCard(id, name string, dueDays int) (trello.Card, trello.CardCustomFields) {
	card := trello.Card{
		ID:        id,
		Name:      name,
		ShortURL:  "https://trello.com/c/" + id,
		Due:       due(dueDays),
		MemberIDs: []string{"m1"},
		Labels:    []trello.Label{{Name: "Science", Color: "green"}},
	}
	fields := trello.CardCustomFields{
		Authors:      []string{"Alice"},
		Editors:      []string{"Bob"},
		Illustrators: []string{"Carol"},
		GoogleDoc:    ptr("https://docs.google.com/" + id),
		Title:        ptr(name + " title"),
		Cover:        ptr("https://cover/" + id),
	}
	return card, fields
}
