// Package main contains the entrypoint for the editorial board bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/sysblokbot/internal/bot"
	"github.com/edgard/sysblokbot/internal/bot/handlers"
	"github.com/edgard/sysblokbot/internal/bot/jobs"
	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/database"
	"github.com/edgard/sysblokbot/internal/logger"
	"github.com/edgard/sysblokbot/internal/sheets"
	"github.com/edgard/sysblokbot/internal/telegram"
	"github.com/edgard/sysblokbot/internal/texts"
	"github.com/edgard/sysblokbot/internal/trello"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, runs the bot until ctx is cancelled and
// returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	trelloClient, err := trello.NewClient(ctx, cfg.Trello, log)
	if err != nil {
		log.Error("Failed to initialize Trello client", "error", err)
		return 1
	}

	sheetsClient, err := sheets.NewClient(ctx, cfg.Sheets, log)
	if err != nil {
		log.Error("Failed to initialize Sheets client", "error", err)
		return 1
	}

	jobMap := jobs.RegisterAllJobs(jobs.JobDeps{
		Logger: log,
		Trello: trelloClient,
		Sheets: sheetsClient,
		Store:  store,
		Texts:  texts.NewLoader(store, log),
		ReloadConfig: func() (*config.Config, error) {
			return config.LoadConfig(*configPath)
		},
		Settings: cfg.Jobs,
	})

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Jobs:   jobMap,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewUnknownCommandHandler(hDeps)),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, jobMap, telegram.ChatSender(tg, cfg.Telegram.ReportChatID, log))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	log.Info("Starting bot")
	if err := bot.NewBot(log, tg, sched).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Bot stopped due to error", "error", err)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}
