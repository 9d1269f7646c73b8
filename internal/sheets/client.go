// Package sheets reads and appends Google Sheets ranges used by the editorial
// jobs: the posts registry, the rubrics table and the bot strings table.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/database"
)

const (
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

// Client wraps the Sheets values API.
type Client struct {
	srv *sheets.Service
	cfg config.SheetsConfig
	log *slog.Logger
}

// NewClient creates a Client authenticated with the service account
// credentials file from cfg. Extra options are appended after the
// credentials and take precedence.
func NewClient(ctx context.Context, cfg config.SheetsConfig, log *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	srv, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		srv: srv,
		cfg: cfg,
		log: log.With("component", "sheets"),
	}, nil
}

// ReadRows returns the cells of readRange as strings. Trailing empty cells
// are omitted by the API, so rows may have different lengths.
func (c *Client) ReadRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}

	c.log.DebugContext(ctx, "Read sheet range", "spreadsheet_id", spreadsheetID, "range", readRange, "rows", len(rows))
	return rows, nil
}

// AppendRows appends rows after the last non-empty row of appendRange.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, appendRange string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	_, err := c.srv.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to range %s: %w", appendRange, err)
	}

	c.log.InfoContext(ctx, "Appended rows", "spreadsheet_id", spreadsheetID, "range", appendRange, "rows", len(rows))
	return nil
}

// UpdatePostsRegistry appends posts that are not in the registry yet and
// returns the titles of the added posts. A post is known when its Trello
// link is already present in the registry.
func (c *Client) UpdatePostsRegistry(ctx context.Context, posts []RegistryPost) ([]string, error) {
	reg := c.cfg.PostsRegistry
	existing, err := c.ReadRows(ctx, reg.SpreadsheetID, reg.Range)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		if link := cell(row, colTrelloLink); link != "" {
			known[link] = struct{}{}
		}
	}

	var (
		rows  [][]string
		added []string
	)
	for _, post := range posts {
		if _, ok := known[post.TrelloLink]; ok {
			continue
		}
		known[post.TrelloLink] = struct{}{}
		rows = append(rows, post.Row())
		added = append(added, post.Title)
	}

	if err := c.AppendRows(ctx, reg.SpreadsheetID, reg.Range, rows); err != nil {
		return nil, err
	}
	return added, nil
}

// FetchRubrics reads the rubrics table: name, VK tag, Telegram tag.
func (c *Client) FetchRubrics(ctx context.Context) ([]database.Rubric, error) {
	rows, err := c.ReadRows(ctx, c.cfg.Rubrics.SpreadsheetID, c.cfg.Rubrics.Range)
	if err != nil {
		return nil, err
	}

	var rubrics []database.Rubric
	for _, row := range skipHeader(rows) {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		rubrics = append(rubrics, database.Rubric{
			Name:  name,
			VKTag: cell(row, 1),
			TGTag: cell(row, 2),
		})
	}
	return rubrics, nil
}

// FetchStrings reads the bot strings table: id, value.
func (c *Client) FetchStrings(ctx context.Context) ([]database.BotString, error) {
	rows, err := c.ReadRows(ctx, c.cfg.Strings.SpreadsheetID, c.cfg.Strings.Range)
	if err != nil {
		return nil, err
	}

	var strs []database.BotString
	for _, row := range skipHeader(rows) {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		// values are kept verbatim, leading spaces may be intended
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		strs = append(strs, database.BotString{ID: id, Value: value})
	}
	return strs, nil
}

func skipHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
