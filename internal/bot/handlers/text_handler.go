package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sysblokbot/internal/telegram"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps: deps, name: "start", text: deps.Config.Messages.Welcome}.Handle
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps: deps, name: "help", text: deps.Config.Messages.Help}.Handle
}

// NewUnknownCommandHandler returns the default handler. It answers unknown
// commands with a hint and ignores plain messages and commands addressed to
// other bots.
func NewUnknownCommandHandler(deps HandlerDeps) bot.HandlerFunc {
	h := textHandler{deps: deps, name: "unknown_command", text: deps.Config.Messages.UnknownCommand}

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		_, target, ok := telegram.ParseCommand(update.Message.Text)
		if !ok || !telegram.AddressedTo(target, deps.botUsername()) {
			return
		}
		h.Handle(ctx, b, update)
	}
}

// textHandler replies with a static message.
type textHandler struct {
	deps HandlerDeps
	name string
	text string
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling command", "chat_id", chatID, "user_id", update.Message.From.ID)

	text := h.text
	if username := h.deps.botUsername(); username != "" {
		text = strings.ReplaceAll(text, "@botname", "@"+username)
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
