package telegram

import (
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ParseCommand splits a message starting with a bot command into the
// command name and the bot username it is addressed to. Group clients send
// commands as /name@username; target is empty for a plain /name.
func ParseCommand(text string) (name, target string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	token := strings.Fields(text)[0][1:]
	name, target, _ = strings.Cut(token, "@")
	if name == "" {
		return "", "", false
	}
	return name, target, true
}

// AddressedTo reports whether a command with the given target is meant for
// the bot with username. A command without a target is meant for every bot.
func AddressedTo(target, username string) bool {
	return target == "" || strings.EqualFold(target, username)
}

// CommandMatcher returns a MatchFunc accepting text messages that start with
// /command or /command@username. username is read on every update since it
// is only known after GetMe.
func CommandMatcher(command string, username func() string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		name, target, ok := ParseCommand(update.Message.Text)
		return ok && name == command && AddressedTo(target, username())
	}
}
