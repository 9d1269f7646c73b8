package handlers

import (
	"log/slog"
	"time"

	"github.com/edgard/sysblokbot/internal/bot/jobs"
	"github.com/edgard/sysblokbot/internal/config"
)

// DefaultJobTimeout bounds a job started by a command.
const DefaultJobTimeout = 5 * time.Minute

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Jobs   map[string]jobs.JobFunc

	// JobTimeout overrides DefaultJobTimeout when positive.
	JobTimeout time.Duration
}

func (d HandlerDeps) jobTimeout() time.Duration {
	if d.JobTimeout > 0 {
		return d.JobTimeout
	}
	return DefaultJobTimeout
}

// botUsername returns the bot username once GetMe has filled it in.
func (d HandlerDeps) botUsername() string {
	if d.Config == nil || d.Config.Telegram.BotInfo == nil {
		return ""
	}
	return d.Config.Telegram.BotInfo.Username
}
