// Package config provides configuration loading, validation, and management
// for the editorial bot. It reads a YAML file through viper, applies
// defaults and BOT_* environment overrides, and validates the result.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the root configuration structure.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Trello    TrelloConfig    `mapstructure:"trello"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds the sqlite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TelegramConfig holds bot credentials and chat routing.
type TelegramConfig struct {
	Token        string `mapstructure:"token"          validate:"required"`
	AdminUserID  int64  `mapstructure:"admin_user_id"  validate:"required,gt=0"`
	ReportChatID int64  `mapstructure:"report_chat_id" validate:"required,ne=0"`

	// BotInfo is filled at runtime from GetMe.
	BotInfo *models.User `mapstructure:"-"`
}

// TrelloConfig holds the Trello API credentials and board layout.
// ListPrefixes and CustomFieldPrefixes map an alias to the prefix the
// matching list or custom field name starts with on the board.
type TrelloConfig struct {
	APIKey              string            `mapstructure:"api_key"               validate:"required"`
	Token               string            `mapstructure:"token"                 validate:"required"`
	BoardID             string            `mapstructure:"board_id"              validate:"required"`
	BaseURL             string            `mapstructure:"base_url"              validate:"required,url"`
	Timeout             time.Duration     `mapstructure:"timeout"               validate:"min=1s,max=5m"`
	RetryCount          int               `mapstructure:"retry_count"           validate:"min=0,max=10"`
	ListPrefixes        map[string]string `mapstructure:"list_prefixes"         validate:"required,dive,required"`
	CustomFieldPrefixes map[string]string `mapstructure:"custom_field_prefixes" validate:"required,dive,required"`
}

// SheetsConfig holds Google Sheets credentials and the ranges jobs read from or append to.
type SheetsConfig struct {
	CredentialsFile string     `mapstructure:"credentials_file" validate:"required"`
	PostsRegistry   SheetRange `mapstructure:"posts_registry"`
	Rubrics         SheetRange `mapstructure:"rubrics"`
	Strings         SheetRange `mapstructure:"strings"`
}

// SheetRange addresses an A1 range inside a spreadsheet.
type SheetRange struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id" validate:"required"`
	Range         string `mapstructure:"range"          validate:"required"`
}

// SchedulerConfig holds the configuration for all scheduled jobs.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig holds the configuration for a single scheduled job.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// JobsConfig holds the thresholds of the board notification jobs.
type JobsConfig struct {
	// StaleAfter is how long a card in work may go without updates.
	StaleAfter time.Duration `mapstructure:"stale_after" validate:"min=24h"`
	// ReminderWindow is how far ahead deadline reminders look.
	ReminderWindow time.Duration `mapstructure:"reminder_window" validate:"min=1h"`
}

// MessagesConfig holds static bot replies.
type MessagesConfig struct {
	Welcome        string `mapstructure:"welcome"         validate:"required"`
	Help           string `mapstructure:"help"            validate:"required"`
	Unauthorized   string `mapstructure:"unauthorized"    validate:"required"`
	UnknownCommand string `mapstructure:"unknown_command" validate:"required"`
	JobFailed      string `mapstructure:"job_failed"      validate:"required"`
	JobTimeout     string `mapstructure:"job_timeout"     validate:"required"`
}
