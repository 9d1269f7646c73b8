package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/sysblokbot/internal/telegram"
)

// NewJobHandler returns a handler running the named job and sending its
// report into the chat the command came from.
func NewJobHandler(deps HandlerDeps, jobName string) bot.HandlerFunc {
	return jobHandler{deps: deps, jobName: jobName}.Handle
}

type jobHandler struct {
	deps    HandlerDeps
	jobName string
}

func (h jobHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "job", "job", h.jobName)

	if update.Message == nil {
		log.WarnContext(ctx, "Received update without message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	job, ok := h.deps.Jobs[h.jobName]
	if !ok {
		log.ErrorContext(ctx, "Job is not registered")
		h.reply(ctx, b, chatID, h.deps.Config.Messages.JobFailed)
		return
	}

	log.InfoContext(ctx, "Running job on request", "chat_id", chatID)

	jobCtx, cancel := context.WithTimeout(ctx, h.deps.jobTimeout())
	defer cancel()

	err := job(jobCtx, telegram.ChatSender(b, chatID, h.deps.Logger))
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		log.WarnContext(ctx, "Job timed out", "timeout", h.deps.jobTimeout())
		h.reply(ctx, b, chatID, h.deps.Config.Messages.JobTimeout)
	default:
		// the job wrapper has logged the error already
		h.reply(ctx, b, chatID, h.deps.Config.Messages.JobFailed)
	}
}

func (h jobHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send job status", "error", err, "chat_id", chatID)
	}
}
