package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/sysblokbot/internal/bot/jobs"
	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/logger"
	"github.com/edgard/sysblokbot/internal/telegram"
)

const (
	testToken   = "123:test"
	testAdminID = 42
	testChatID  = -1001
)

type sentMessage struct {
	ChatID string
	Text   string
}

// newTestBot returns a bot whose API calls are answered by an httpmock
// transport recording every sendMessage call.
func newTestBot(t *testing.T) (*tgbot.Bot, func() []sentMessage) {
	t.Helper()

	var (
		mu   sync.Mutex
		sent []sentMessage
	)
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, "https://api.telegram.org/bot"+testToken+"/sendMessage",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				return nil, err
			}
			mu.Lock()
			sent = append(sent, sentMessage{ChatID: req.FormValue("chat_id"), Text: req.FormValue("text")})
			mu.Unlock()
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"ok":     true,
				"result": map[string]any{"message_id": 1, "date": 0, "chat": map[string]any{"id": testChatID, "type": "group"}},
			})
		})

	b, err := tgbot.New(testToken,
		tgbot.WithSkipGetMe(),
		tgbot.WithHTTPClient(time.Second, &http.Client{Transport: transport}))
	require.NoError(t, err)

	return b, func() []sentMessage {
		mu.Lock()
		defer mu.Unlock()
		return append([]sentMessage(nil), sent...)
	}
}

func testDeps(jobMap map[string]jobs.JobFunc) HandlerDeps {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			AdminUserID: testAdminID,
			BotInfo:     &models.User{Username: "sysblokbot"},
		},
		Messages: config.MessagesConfig{
			Welcome:        "Hi from @botname",
			Help:           "help text",
			Unauthorized:   "nope",
			UnknownCommand: "unknown",
			JobFailed:      "failed",
			JobTimeout:     "timeout",
		},
	}
	return HandlerDeps{Logger: logger.Discard(), Config: cfg, Jobs: jobMap}
}

func commandUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   7,
			Text: text,
			Chat: models.Chat{ID: testChatID},
			From: &models.User{ID: userID},
		},
	}
}

func TestTextHandlers(t *testing.T) {
	t.Parallel()
	b, sent := newTestBot(t)
	deps := testDeps(nil)

	NewStartHandler(deps)(context.Background(), b, commandUpdate(1, "/start"))
	NewHelpHandler(deps)(context.Background(), b, commandUpdate(1, "/help"))
	NewUnknownCommandHandler(deps)(context.Background(), b, commandUpdate(1, "/nope"))
	NewUnknownCommandHandler(deps)(context.Background(), b, commandUpdate(1, "just chatting"))
	NewUnknownCommandHandler(deps)(context.Background(), b, commandUpdate(1, "/nope@otherbot"))

	assert.Equal(t, []sentMessage{
		{ChatID: "-1001", Text: "Hi from @sysblokbot"},
		{ChatID: "-1001", Text: "help text"},
		{ChatID: "-1001", Text: "unknown"},
	}, sent())
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()
	b, sent := newTestBot(t)

	called := 0
	next := func(context.Context, *tgbot.Bot, *models.Update) { called++ }
	handler := AdminOnly(testDeps(nil))(next)

	handler(context.Background(), b, commandUpdate(7, "/fill_posts_list"))
	assert.Zero(t, called)
	assert.Equal(t, []sentMessage{{ChatID: "-1001", Text: "nope"}}, sent())

	handler(context.Background(), b, commandUpdate(testAdminID, "/fill_posts_list"))
	assert.Equal(t, 1, called)
}

func TestJobHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		job  jobs.JobFunc
		want []string
	}{
		{
			name: "report goes to requesting chat",
			job: func(ctx context.Context, send telegram.SendFunc) error {
				return send(ctx, "report")
			},
			want: []string{"report"},
		},
		{
			name: "failure",
			job: func(context.Context, telegram.SendFunc) error {
				return errors.New("trello is down")
			},
			want: []string{"failed"},
		},
		{
			name: "timeout",
			job: func(ctx context.Context, _ telegram.SendFunc) error {
				<-ctx.Done()
				return ctx.Err()
			},
			want: []string{"timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, sent := newTestBot(t)
			deps := testDeps(map[string]jobs.JobFunc{jobs.FillPostsList: tt.job})
			deps.JobTimeout = 50 * time.Millisecond

			NewJobHandler(deps, jobs.FillPostsList)(context.Background(), b, commandUpdate(testAdminID, "/fill_posts_list"))

			var texts []string
			for _, m := range sent() {
				assert.Equal(t, "-1001", m.ChatID)
				texts = append(texts, m.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	routes := RegisterAllCommands(testDeps(nil))
	assert.Len(t, routes, 2+len(JobCommands))

	assert.Empty(t, routes["/start"].Middleware)
	for command := range JobCommands {
		route, ok := routes["/"+command]
		require.True(t, ok, command)
		assert.True(t, route.Match(commandUpdate(testAdminID, "/"+command)), command)
		assert.Len(t, route.Middleware, 1)
	}
}

func TestRegisterAllCommands_GroupCommandSuffix(t *testing.T) {
	t.Parallel()

	match := RegisterAllCommands(testDeps(nil))["/fill_posts_list"].Match

	assert.True(t, match(commandUpdate(testAdminID, "/fill_posts_list@sysblokbot")))
	assert.False(t, match(commandUpdate(testAdminID, "/fill_posts_list@otherbot")))
	assert.False(t, match(commandUpdate(testAdminID, "/get_publication_plans@sysblokbot")))
}
