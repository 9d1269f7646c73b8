// Package trello implements a typed client for the Trello REST API.
// It maps board, list, card, member, and custom field JSON into Go types
// and resolves stable list and custom field aliases to board ids.
package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	resty "github.com/go-resty/resty/v2"

	"github.com/edgard/sysblokbot/internal/config"
)

const (
	retryWaitTime    = 500 * time.Millisecond
	retryMaxWaitTime = 5 * time.Second
)

// APIError is returned when Trello answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trello API %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

// session is the credential and alias state requests are made with.
// It is replaced as a whole on config updates.
type session struct {
	apiKey  string
	token   string
	boardID string

	lists  map[ListAlias]string
	fields map[CustomFieldAlias]string
}

// Client wraps the Trello REST API for a single board.
type Client struct {
	http *resty.Client
	log  *slog.Logger

	mu    sync.RWMutex
	state *session
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient makes the client send requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// NewClient creates a Trello client and resolves list and custom field
// aliases against the configured board. It fails if any alias matches zero
// or more than one board item.
func NewClient(ctx context.Context, cfg config.TrelloConfig, log *slog.Logger, opts ...Option) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "trello_client")

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(cfg.BaseURL)
	rc.SetTimeout(cfg.Timeout)
	rc.SetLogger(restyLogger{log})
	rc.SetHeader("Accept", "application/json")
	if cfg.RetryCount > 0 {
		rc.SetRetryCount(cfg.RetryCount)
		rc.SetRetryWaitTime(retryWaitTime)
		rc.SetRetryMaxWaitTime(retryMaxWaitTime)
		rc.AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil || resp == nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		})
	}

	c := &Client{http: rc, log: log}
	if err := c.UpdateConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize trello client: %w", err)
	}

	log.Info("Trello client initialized", "board_id", cfg.BoardID, "base_url", cfg.BaseURL)
	return c, nil
}

// UpdateConfig switches credentials and board and re-resolves aliases.
// The previous state is kept when resolution fails. Base URL and timeout
// are fixed at construction.
func (c *Client) UpdateConfig(ctx context.Context, cfg config.TrelloConfig) error {
	s := &session{
		apiKey:  cfg.APIKey,
		token:   cfg.Token,
		boardID: cfg.BoardID,
	}

	lists, err := c.getLists(ctx, s)
	if err != nil {
		return err
	}
	items := make([]namedItem, 0, len(lists))
	for _, l := range lists {
		items = append(items, namedItem{ID: l.ID, Name: l.Name})
	}
	if s.lists, err = resolveAliases("list", ListAliases, cfg.ListPrefixes, items); err != nil {
		return err
	}

	fieldTypes, err := c.getBoardCustomFieldTypes(ctx, s)
	if err != nil {
		return err
	}
	items = items[:0]
	for _, f := range fieldTypes {
		items = append(items, namedItem{ID: f.ID, Name: f.Name})
	}
	if s.fields, err = resolveAliases("custom field", CustomFieldAliases, cfg.CustomFieldPrefixes, items); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	c.log.DebugContext(ctx, "Trello aliases resolved", "lists", len(s.lists), "custom_fields", len(s.fields))
	return nil
}

func (c *Client) current() *session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// BoardID returns the configured board id.
func (c *Client) BoardID() string {
	return c.current().boardID
}

// ListID returns the board list id of alias.
func (c *Client) ListID(alias ListAlias) string {
	return c.current().lists[alias]
}

// ListIDs returns the board list ids of aliases, in the given order.
func (c *Client) ListIDs(aliases ...ListAlias) []string {
	s := c.current()
	ids := make([]string, 0, len(aliases))
	for _, a := range aliases {
		ids = append(ids, s.lists[a])
	}
	return ids
}

// CustomFieldTypeID returns the board custom field type id of alias.
func (c *Client) CustomFieldTypeID(alias CustomFieldAlias) string {
	return c.current().fields[alias]
}

// GetBoard fetches the configured board.
func (c *Client) GetBoard(ctx context.Context) (Board, error) {
	s := c.current()
	var board Board
	err := c.get(ctx, s, "boards/"+s.boardID, nil, &board)
	return board, err
}

// GetBoardLabels fetches all labels defined on the board.
func (c *Client) GetBoardLabels(ctx context.Context) ([]Label, error) {
	s := c.current()
	var labels []Label
	if err := c.get(ctx, s, "boards/"+s.boardID+"/labels", nil, &labels); err != nil {
		return nil, err
	}
	c.log.DebugContext(ctx, "Fetched board labels", "count", len(labels))
	return labels, nil
}

// GetLists fetches the open lists of the board.
func (c *Client) GetLists(ctx context.Context) ([]List, error) {
	return c.getLists(ctx, c.current())
}

func (c *Client) getLists(ctx context.Context, s *session) ([]List, error) {
	var lists []List
	if err := c.get(ctx, s, "boards/"+s.boardID+"/lists", nil, &lists); err != nil {
		return nil, err
	}
	c.log.DebugContext(ctx, "Fetched lists", "count", len(lists))
	return lists, nil
}

// GetMembers fetches the board members.
func (c *Client) GetMembers(ctx context.Context) ([]Member, error) {
	return c.getMembers(ctx, c.current())
}

func (c *Client) getMembers(ctx context.Context, s *session) ([]Member, error) {
	var members []Member
	if err := c.get(ctx, s, "boards/"+s.boardID+"/members", nil, &members); err != nil {
		return nil, err
	}
	c.log.DebugContext(ctx, "Fetched members", "count", len(members))
	return members, nil
}

// GetBoardCustomFieldTypes fetches the custom field definitions of the board.
func (c *Client) GetBoardCustomFieldTypes(ctx context.Context) ([]CustomFieldType, error) {
	return c.getBoardCustomFieldTypes(ctx, c.current())
}

func (c *Client) getBoardCustomFieldTypes(ctx context.Context, s *session) ([]CustomFieldType, error) {
	var types []CustomFieldType
	if err := c.get(ctx, s, "boards/"+s.boardID+"/customFields", nil, &types); err != nil {
		return nil, err
	}
	c.log.DebugContext(ctx, "Fetched custom field types", "count", len(types))
	return types, nil
}

// GetCards fetches cards of the given lists, or of the whole board when no
// list is given, and attaches their list and members.
func (c *Client) GetCards(ctx context.Context, listIDs ...string) ([]Card, error) {
	s := c.current()

	var cards []Card
	if len(listIDs) == 1 {
		if err := c.get(ctx, s, "lists/"+listIDs[0]+"/cards", nil, &cards); err != nil {
			return nil, err
		}
	} else {
		if err := c.get(ctx, s, "boards/"+s.boardID+"/cards", nil, &cards); err != nil {
			return nil, err
		}
		if len(listIDs) > 0 {
			cards = slices.DeleteFunc(cards, func(card Card) bool {
				return !slices.Contains(listIDs, card.ListID)
			})
		}
	}

	members, err := c.getMembers(ctx, s)
	if err != nil {
		return nil, err
	}
	lists, err := c.getLists(ctx, s)
	if err != nil {
		return nil, err
	}

	listsByID := make(map[string]*List, len(lists))
	for i := range lists {
		listsByID[lists[i].ID] = &lists[i]
	}

	for i := range cards {
		card := &cards[i]
		if l, ok := listsByID[card.ListID]; ok {
			card.List = l
		} else {
			c.log.ErrorContext(ctx, "List not found for card", "card_id", card.ID, "list_id", card.ListID)
		}

		if len(card.MemberIDs) == 0 {
			continue
		}
		for _, m := range members {
			if slices.Contains(card.MemberIDs, m.ID) {
				card.Members = append(card.Members, m)
			}
		}
		if len(card.Members) == 0 {
			c.log.ErrorContext(ctx, "Members not found for card", "card_id", card.ID, "member_ids", card.MemberIDs)
		}
	}

	c.log.DebugContext(ctx, "Fetched cards", "count", len(cards), "lists", len(listIDs))
	return cards, nil
}

// GetCardCustomFields fetches the custom field items of a card.
func (c *Client) GetCardCustomFields(ctx context.Context, cardID string) ([]CustomField, error) {
	var fields []CustomField
	if err := c.get(ctx, c.current(), "cards/"+cardID+"/customFieldItems", nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// GetCardCustomFieldsByAlias fetches the custom field items of a card keyed
// by alias. The first item of each configured type wins; unset fields are absent.
func (c *Client) GetCardCustomFieldsByAlias(ctx context.Context, cardID string) (map[CustomFieldAlias]CustomField, error) {
	fields, err := c.GetCardCustomFields(ctx, cardID)
	if err != nil {
		return nil, err
	}

	s := c.current()
	result := make(map[CustomFieldAlias]CustomField, len(s.fields))
	for alias, typeID := range s.fields {
		for _, f := range fields {
			if f.TypeID == typeID {
				result[alias] = f
				break
			}
		}
	}
	return result, nil
}

// GetCustomFields fetches the editorial fields of a card.
func (c *Client) GetCustomFields(ctx context.Context, cardID string) (CardCustomFields, error) {
	byAlias, err := c.GetCardCustomFieldsByAlias(ctx, cardID)
	if err != nil {
		return CardCustomFields{}, err
	}

	text := func(alias CustomFieldAlias) *string {
		f, ok := byAlias[alias]
		if !ok {
			return nil
		}
		v := f.String()
		return &v
	}
	people := func(alias CustomFieldAlias) []string {
		f, ok := byAlias[alias]
		if !ok {
			return []string{}
		}
		return splitNames(f.String())
	}

	return CardCustomFields{
		CardID:       cardID,
		Authors:      people(FieldAuthor),
		Editors:      people(FieldEditor),
		Illustrators: people(FieldIllustrator),
		GoogleDoc:    text(FieldGoogleDoc),
		Title:        text(FieldTitle),
		Cover:        text(FieldCover),
	}, nil
}

func splitNames(s string) []string {
	names := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// GetActionCreateCard fetches the createCard actions of a card.
func (c *Client) GetActionCreateCard(ctx context.Context, cardID string) ([]ActionCreateCard, error) {
	actions, err := c.getActions(ctx, cardID, "createCard")
	if err != nil {
		return nil, err
	}
	res := make([]ActionCreateCard, 0, len(actions))
	for _, a := range actions {
		res = append(res, a.toCreateCard())
	}
	return res, nil
}

// GetActionsCreateCard fetches createCard actions for several cards, keyed by card id.
func (c *Client) GetActionsCreateCard(ctx context.Context, cardIDs []string) (map[string][]ActionCreateCard, error) {
	res := make(map[string][]ActionCreateCard, len(cardIDs))
	for _, id := range cardIDs {
		actions, err := c.GetActionCreateCard(ctx, id)
		if err != nil {
			return nil, err
		}
		res[id] = actions
	}
	return res, nil
}

// GetActionUpdateCard fetches the updateCard actions of a card, newest first.
func (c *Client) GetActionUpdateCard(ctx context.Context, cardID string) ([]ActionUpdateCard, error) {
	actions, err := c.getActions(ctx, cardID, "updateCard")
	if err != nil {
		return nil, err
	}
	res := make([]ActionUpdateCard, 0, len(actions))
	for _, a := range actions {
		res = append(res, a.toUpdateCard())
	}
	return res, nil
}

// GetActionsUpdateCard fetches updateCard actions for several cards, keyed by card id.
func (c *Client) GetActionsUpdateCard(ctx context.Context, cardIDs []string) (map[string][]ActionUpdateCard, error) {
	res := make(map[string][]ActionUpdateCard, len(cardIDs))
	for _, id := range cardIDs {
		actions, err := c.GetActionUpdateCard(ctx, id)
		if err != nil {
			return nil, err
		}
		res[id] = actions
	}
	return res, nil
}

func (c *Client) getActions(ctx context.Context, cardID, filter string) ([]action, error) {
	var actions []action
	err := c.get(ctx, c.current(), "cards/"+cardID+"/actions", map[string]string{"filter": filter}, &actions)
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// get performs a GET request with the session credentials and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, s *session, path string, query map[string]string, out any) error {
	if s == nil {
		return fmt.Errorf("trello client is not initialized")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetQueryParam("key", s.apiKey).
		SetQueryParam("token", s.token).
		Get(path)
	if err != nil {
		return fmt.Errorf("trello request GET %s failed: %w", path, err)
	}

	c.log.DebugContext(ctx, "Trello request", "path", path, "status", resp.StatusCode(), "duration", resp.Time())

	if resp.IsError() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Method:     http.MethodGet,
			Path:       path,
			Body:       resp.String(),
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode trello response for %s: %w", path, err)
	}
	return nil
}

// restyLogger forwards resty's internal messages to slog.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
