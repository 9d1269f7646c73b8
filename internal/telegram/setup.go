// Package telegram sets up the Telegram bot, registers its handlers and
// sends multi-paragraph reports split into Telegram-sized messages.
package telegram

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

// Route is a handler together with how it is matched and its middleware.
type Route struct {
	Match      bot.MatchFunc
	Handler    bot.HandlerFunc
	Middleware []bot.Middleware
}

// NewTelegramBot creates a new Telegram bot instance.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// applyMiddleware wraps handler so that the first middleware is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers routes with the bot, applying each route's middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, routes map[string]Route) error {
	if b == nil {
		return errors.New("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(routes) == 0 {
		log.Warn("No handlers provided for registration")
		return nil
	}

	for name, route := range routes {
		if route.Handler == nil || route.Match == nil {
			log.Warn("Skipping registration for incomplete route", "command", name)
			continue
		}
		b.RegisterHandlerMatchFunc(route.Match, applyMiddleware(route.Handler, route.Middleware))
		log.Debug("Registered handler", "command", name, "middleware_count", len(route.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", len(routes))
	return nil
}
