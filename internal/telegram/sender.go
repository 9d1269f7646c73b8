package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageLimit is the maximum length of a Telegram text message in characters.
const MessageLimit = 4096

const paragraphSep = "\n\n"

// SendFunc delivers one message. Reports are sent through it so that jobs
// do not depend on where the message ends up.
type SendFunc func(ctx context.Context, text string) error

// MessageSender is the part of *bot.Bot used to deliver messages.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

var _ MessageSender = (*bot.Bot)(nil)

// ChatSender returns a SendFunc posting HTML messages to chatID with link
// previews disabled.
func ChatSender(s MessageSender, chatID int64, log *slog.Logger) SendFunc {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "sender", "chat_id", chatID)

	return func(ctx context.Context, text string) error {
		_, err := s.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:             chatID,
			Text:               text,
			ParseMode:          models.ParseModeHTML,
			LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "length", utf8.RuneCountInString(text))
			return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
		}
		return nil
	}
}

// PrettySend joins paragraphs into as few messages as fit the Telegram limit
// and sends them in order. It stops at the first failed message.
func PrettySend(ctx context.Context, paragraphs []string, send SendFunc) error {
	for _, msg := range SplitMessages(paragraphs, MessageLimit) {
		if err := send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// SplitMessages packs paragraphs, separated by a blank line, into messages
// of at most limit characters. A paragraph that does not fit on its own is
// split on line breaks, and a line that still does not fit is cut into
// limit-sized pieces. Empty paragraphs are dropped.
func SplitMessages(paragraphs []string, limit int) []string {
	if limit <= 0 {
		panic("telegram: message limit must be positive")
	}

	var (
		messages []string
		current  strings.Builder
		size     int
	)
	flush := func() {
		if size > 0 {
			messages = append(messages, current.String())
			current.Reset()
			size = 0
		}
	}
	add := func(chunk, sep string) {
		n := utf8.RuneCountInString(chunk)
		if size > 0 && size+utf8.RuneCountInString(sep)+n > limit {
			flush()
		}
		if size > 0 {
			current.WriteString(sep)
			size += utf8.RuneCountInString(sep)
		}
		current.WriteString(chunk)
		size += n
	}

	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if utf8.RuneCountInString(p) <= limit {
			add(p, paragraphSep)
			continue
		}

		// oversized paragraph: start it in a fresh message and pack its lines
		flush()
		for _, line := range strings.Split(p, "\n") {
			for _, piece := range cut(line, limit) {
				add(piece, "\n")
			}
		}
		flush()
	}
	flush()

	return messages
}

// cut splits an HTML line into pieces of at most limit runes. A line that
// has to be cut loses its tags, since a piece must not hold half an element,
// and no piece ends inside an entity.
func cut(s string, limit int) []string {
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	r := []rune(stripTags(s))
	var pieces []string
	for len(r) > limit {
		n := limit
		if amp := openEntity(r[:n]); amp > 0 {
			n = amp
		}
		pieces = append(pieces, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		pieces = append(pieces, string(r))
	}
	return pieces
}

// stripTags drops everything between < and >. Text is HTML-escaped, so a
// literal < always starts a tag.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, c := range s {
		switch {
		case c == '<':
			inTag = true
		case c == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// openEntity returns the index of an entity left unterminated at the end of
// r, or -1.
func openEntity(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		switch r[i] {
		case ';':
			return -1
		case '&':
			return i
		}
	}
	return -1
}
