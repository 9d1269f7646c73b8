package trello

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/logger"
)

const (
	testBaseURL = "https://api.trello.test/1"
	testBoardID = "board1"
)

func testConfig() config.TrelloConfig {
	return config.TrelloConfig{
		APIKey:              "key",
		Token:               "token",
		BoardID:             testBoardID,
		BaseURL:             testBaseURL + "/",
		ListPrefixes:        config.DefaultListPrefixes,
		CustomFieldPrefixes: config.DefaultCustomFieldPrefixes,
	}
}

func boardURL(suffix string) string {
	return fmt.Sprintf("%s/boards/%s%s", testBaseURL, testBoardID, suffix)
}

func testLists() []map[string]any {
	lists := make([]map[string]any, 0, len(ListAliases))
	for _, alias := range ListAliases {
		lists = append(lists, map[string]any{
			"id":   "list_" + string(alias),
			"name": config.DefaultListPrefixes[string(alias)] + " (board column)",
		})
	}
	return lists
}

func testFieldTypes() []map[string]any {
	types := make([]map[string]any, 0, len(CustomFieldAliases))
	for _, alias := range CustomFieldAliases {
		types = append(types, map[string]any{
			"id":   "cf_" + string(alias),
			"name": config.DefaultCustomFieldPrefixes[string(alias)],
			"type": "text",
		})
	}
	return types
}

func testMembers() []map[string]any {
	return []map[string]any{
		{"id": "m1", "username": "alice", "fullName": "Alice A"},
		{"id": "m2", "username": "bob", "fullName": "Bob B"},
	}
}

// newMockedTransport returns a transport preloaded with the start-up endpoints.
func newMockedTransport() *httpmock.MockTransport {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, boardURL("/lists"), httpmock.NewJsonResponderOrPanic(http.StatusOK, testLists()))
	transport.RegisterResponder(http.MethodGet, boardURL("/customFields"), httpmock.NewJsonResponderOrPanic(http.StatusOK, testFieldTypes()))
	transport.RegisterResponder(http.MethodGet, boardURL("/members"), httpmock.NewJsonResponderOrPanic(http.StatusOK, testMembers()))
	return transport
}

func newTestClient(t *testing.T, transport *httpmock.MockTransport) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), testConfig(), logger.Discard(), WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)
	return c
}

func TestNewClient_ResolvesAliases(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newMockedTransport())

	for _, alias := range ListAliases {
		assert.Equal(t, "list_"+string(alias), c.ListID(alias))
	}
	for _, alias := range CustomFieldAliases {
		assert.Equal(t, "cf_"+string(alias), c.CustomFieldTypeID(alias))
	}
	assert.Equal(t, []string{"list_proofreading", "list_done"}, c.ListIDs(ListProofreading, ListDone))
	assert.Equal(t, testBoardID, c.BoardID())
}

func TestNewClient_SendsCredentials(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponderWithQuery(http.MethodGet, boardURL("/lists"),
		map[string]string{"key": "key", "token": "token"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, testLists()))
	transport.RegisterResponderWithQuery(http.MethodGet, boardURL("/customFields"),
		map[string]string{"key": "key", "token": "token"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, testFieldTypes()))

	newTestClient(t, transport)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestNewClient_AliasErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lists   []map[string]any
		wantErr error
	}{
		{
			name:    "alias matches two lists",
			lists:   append(testLists(), map[string]any{"id": "dup", "name": "Done archive"}),
			wantErr: ErrAmbiguousAlias,
		},
		{
			name:    "alias matches no list",
			lists:   testLists()[1:],
			wantErr: ErrAliasNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport := newMockedTransport()
			transport.RegisterResponder(http.MethodGet, boardURL("/lists"), httpmock.NewJsonResponderOrPanic(http.StatusOK, tt.lists))

			_, err := NewClient(context.Background(), testConfig(), logger.Discard(), WithHTTPClient(&http.Client{Transport: transport}))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveAliases(t *testing.T) {
	t.Parallel()

	items := []namedItem{
		{ID: "1", Name: "Author"},
		{ID: "2", Name: "Editor in chief"},
		{ID: "3", Name: "Editor"},
	}

	got, err := resolveAliases("custom field", []CustomFieldAlias{FieldAuthor}, map[string]string{"author": "Auth"}, items)
	require.NoError(t, err)
	assert.Equal(t, map[CustomFieldAlias]string{FieldAuthor: "1"}, got)

	_, err = resolveAliases("custom field", []CustomFieldAlias{FieldEditor}, map[string]string{"editor": "Editor"}, items)
	require.ErrorIs(t, err, ErrAmbiguousAlias)
	assert.Contains(t, err.Error(), "Editor in chief, Editor")

	_, err = resolveAliases("custom field", []CustomFieldAlias{FieldCover}, map[string]string{"author": "Author"}, items)
	require.ErrorIs(t, err, ErrAliasNotFound)
}

func TestGetCards(t *testing.T) {
	t.Parallel()

	due := "2024-03-01T09:00:00.000Z"
	cards := []map[string]any{
		{"id": "c1", "name": "First", "idList": "list_proofreading", "idMembers": []string{"m1"}, "due": due,
			"labels": []map[string]any{{"id": "l1", "name": "Science", "color": "green"}}},
		{"id": "c2", "name": "Second", "idList": "list_done", "idMembers": []string{}, "due": nil},
		{"id": "c3", "name": "Elsewhere", "idList": "list_in_progress", "idMembers": []string{"m2"}},
		{"id": "c4", "name": "Ghost member", "idList": "list_done", "idMembers": []string{"unknown"}},
	}

	t.Run("several lists are filtered from board cards", func(t *testing.T) {
		t.Parallel()

		transport := newMockedTransport()
		transport.RegisterResponder(http.MethodGet, boardURL("/cards"), httpmock.NewJsonResponderOrPanic(http.StatusOK, cards))
		c := newTestClient(t, transport)

		got, err := c.GetCards(context.Background(), c.ListIDs(ListProofreading, ListDone)...)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "c1", got[0].ID)
		require.NotNil(t, got[0].List)
		assert.Equal(t, "list_proofreading", got[0].List.ID)
		require.Len(t, got[0].Members, 1)
		assert.Equal(t, "alice", got[0].Members[0].Username)
		require.NotNil(t, got[0].Due)
		assert.True(t, got[0].Due.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
		assert.Equal(t, []string{"Science"}, got[0].LabelNames())

		assert.Nil(t, got[1].Due)
		assert.Empty(t, got[1].Members)
		assert.Empty(t, got[2].Members, "unknown member ids resolve to nothing")
	})

	t.Run("single list uses the list endpoint", func(t *testing.T) {
		t.Parallel()

		transport := newMockedTransport()
		transport.RegisterResponder(http.MethodGet, testBaseURL+"/lists/list_done/cards",
			httpmock.NewJsonResponderOrPanic(http.StatusOK, cards[1:2]))
		c := newTestClient(t, transport)

		got, err := c.GetCards(context.Background(), c.ListID(ListDone))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Second", got[0].Name)
		assert.Equal(t, 0, transport.GetCallCountInfo()["GET "+boardURL("/cards")])
	})

	t.Run("no lists returns the whole board", func(t *testing.T) {
		t.Parallel()

		transport := newMockedTransport()
		transport.RegisterResponder(http.MethodGet, boardURL("/cards"), httpmock.NewJsonResponderOrPanic(http.StatusOK, cards))
		c := newTestClient(t, transport)

		got, err := c.GetCards(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, len(cards))
	})
}

func TestGetCustomFields(t *testing.T) {
	t.Parallel()

	transport := newMockedTransport()
	transport.RegisterResponder(http.MethodGet, testBaseURL+"/cards/c1/customFieldItems",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{
			{"id": "i1", "idCustomField": "cf_author", "value": map[string]any{"text": "Alice, Bob ,"}},
			{"id": "i2", "idCustomField": "cf_title", "value": map[string]any{"text": "How rivers work"}},
			{"id": "i3", "idCustomField": "cf_title", "value": map[string]any{"text": "ignored duplicate"}},
			{"id": "i4", "idCustomField": "cf_google_doc", "value": map[string]any{"text": "https://docs.google.com/d/1"}},
			{"id": "i5", "idCustomField": "foreign", "value": map[string]any{"text": "not ours"}},
		}))
	c := newTestClient(t, transport)

	fields, err := c.GetCustomFields(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "c1", fields.CardID)
	assert.Equal(t, []string{"Alice", "Bob"}, fields.Authors)
	assert.Empty(t, fields.Editors)
	assert.NotNil(t, fields.Editors)
	assert.Empty(t, fields.Illustrators)
	require.NotNil(t, fields.Title)
	assert.Equal(t, "How rivers work", *fields.Title)
	require.NotNil(t, fields.GoogleDoc)
	assert.Nil(t, fields.Cover)

	byAlias, err := c.GetCardCustomFieldsByAlias(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, byAlias, 3)
}

func TestGetActions(t *testing.T) {
	t.Parallel()

	transport := newMockedTransport()
	transport.RegisterResponderWithQuery(http.MethodGet, testBaseURL+"/cards/c1/actions",
		map[string]string{"filter": "updateCard", "key": "key", "token": "token"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{{
			"id":   "a1",
			"type": "updateCard",
			"date": "2024-02-10T12:00:00.000Z",
			"data": map[string]any{
				"card":       map[string]any{"id": "c1", "name": "First"},
				"listBefore": map[string]any{"id": "list_to_edit", "name": "To edit"},
				"listAfter":  map[string]any{"id": "list_proofreading", "name": "Proofreading"},
				"old":        map[string]any{"idList": "list_to_edit"},
			},
			"memberCreator": map[string]any{"id": "m1", "username": "alice"},
		}}))
	transport.RegisterResponderWithQuery(http.MethodGet, testBaseURL+"/cards/c1/actions",
		map[string]string{"filter": "createCard", "key": "key", "token": "token"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{{
			"id":   "a0",
			"type": "createCard",
			"date": "2024-01-01T08:00:00.000Z",
			"data": map[string]any{
				"card": map[string]any{"id": "c1", "name": "First"},
				"list": map[string]any{"id": "list_topic_suggestion", "name": "Topic suggestion"},
			},
		}}))
	c := newTestClient(t, transport)

	updates, err := c.GetActionsUpdateCard(context.Background(), []string{"c1"})
	require.NoError(t, err)
	require.Len(t, updates["c1"], 1)
	upd := updates["c1"][0]
	require.NotNil(t, upd.ListBefore)
	require.NotNil(t, upd.ListAfter)
	assert.Equal(t, "list_proofreading", upd.ListAfter.ID)
	assert.Equal(t, "alice", upd.MemberCreator.Username)

	creates, err := c.GetActionsCreateCard(context.Background(), []string{"c1"})
	require.NoError(t, err)
	require.Len(t, creates["c1"], 1)
	assert.Equal(t, "list_topic_suggestion", creates["c1"][0].ListID)
	assert.Equal(t, 2024, creates["c1"][0].Date.Year())
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	transport := newMockedTransport()
	transport.RegisterResponder(http.MethodGet, boardURL("/labels"), httpmock.NewStringResponder(http.StatusUnauthorized, "invalid token\n"))
	c := newTestClient(t, transport)

	_, err := c.GetBoardLabels(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid token", apiErr.Body[:13])
	assert.Equal(t, "trello API GET boards/board1/labels returned 401: invalid token", err.Error())
}

func TestUpdateConfig(t *testing.T) {
	t.Parallel()

	transport := newMockedTransport()
	c := newTestClient(t, transport)

	otherBoard := testConfig()
	otherBoard.BoardID = "board2"
	transport.RegisterResponder(http.MethodGet, testBaseURL+"/boards/board2/lists",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{{"id": "x", "name": "Unrelated"}}))

	err := c.UpdateConfig(context.Background(), otherBoard)
	require.ErrorIs(t, err, ErrAliasNotFound)
	assert.Equal(t, testBoardID, c.BoardID(), "failed update keeps the previous board")
	assert.Equal(t, "list_done", c.ListID(ListDone))

	renamed := testConfig()
	renamed.ListPrefixes = map[string]string{}
	for k, v := range config.DefaultListPrefixes {
		renamed.ListPrefixes[k] = v
	}
	renamed.ListPrefixes["done"] = "Done (board"
	require.NoError(t, c.UpdateConfig(context.Background(), renamed))
	assert.Equal(t, "list_done", c.ListID(ListDone))
}
