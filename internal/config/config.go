// Package config defines the bot configuration and its loading hooks.
//
// Conventions:
//   - Defaults live in New; Load layers a YAML file and the environment on top.
//   - Secrets (tokens, ledger credentials) only ever come from the environment
//     or an untracked file, never from defaults.
package config

import (
	"context"
	"time"
	_ "time/tzdata" // zones resolve on hosts without a zoneinfo database
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the liveness HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the picks and events documents.
	DataDir    string `koanf:"data_dir"`
	PicksFile  string `koanf:"picks_file"`
	EventsFile string `koanf:"events_file"`

	// StoreBackend is "file" or "redis".
	StoreBackend string `koanf:"store_backend"`
	RedisAddr    string `koanf:"redis_addr"`
	RedisDB      int    `koanf:"redis_db"`
	RedisPrefix  string `koanf:"redis_prefix"`

	// Timezone is the IANA zone used for triggers and timestamps.
	Timezone string `koanf:"timezone"`

	// Standard five-field cron expressions evaluated in Timezone.
	RevealSchedule   string `koanf:"reveal_schedule"`
	RotateSchedule   string `koanf:"rotate_schedule"`
	ReminderSchedule string `koanf:"reminder_schedule"`

	// CommandPrefix precedes every command token, e.g. "!pick".
	CommandPrefix string `koanf:"command_prefix"`

	// Discord identifiers.
	DiscordToken    string `koanf:"discord_token"`
	RevealChannelID string `koanf:"reveal_channel_id"`
	OwnerID         string `koanf:"owner_id"`
	GuildID         string `koanf:"guild_id"`

	// Ledger (Google Sheets) access.
	LedgerCredentials string `koanf:"ledger_credentials"`
	LedgerID          string `koanf:"ledger_id"`
	// LedgerParticipants maps a participant name to the A1 cell holding their total.
	LedgerParticipants map[string]string `koanf:"ledger_participants"`

	// Timeouts for outbound collaborator calls.
	LedgerTimeout time.Duration `koanf:"ledger_timeout"`
	SendTimeout   time.Duration `koanf:"send_timeout"`

	// QueueSize bounds the event loop task queue.
	QueueSize int `koanf:"queue_size"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8080",
		DataDir:            ".",
		PicksFile:          "picks.json",
		EventsFile:         "events.json",
		StoreBackend:       BackendFile,
		RedisAddr:          "localhost:6379",
		RedisPrefix:        "fairway:",
		Timezone:           "America/New_York",
		RevealSchedule:     "0 21 * * 3",
		RotateSchedule:     "0 9 * * 1",
		ReminderSchedule:   "0 12 * * 3",
		CommandPrefix:      "!",
		LedgerParticipants: map[string]string{},
		LedgerTimeout:      10 * time.Second,
		SendTimeout:        10 * time.Second,
		QueueSize:          1024,
	}
}

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LedgerEnabled reports whether ledger access was configured.
func (c *Config) LedgerEnabled() bool {
	return c.LedgerCredentials != "" && c.LedgerID != ""
}
