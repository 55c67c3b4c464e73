package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/fairway/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When the bot token is missing", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then startup is refused with a clear error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "discord_token must be set")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FAIRWAY_DISCORD_TOKEN", "token")
			_ = os.Setenv("FAIRWAY_ADDR", ":9090")
			_ = os.Setenv("FAIRWAY_OWNER_ID", "512106151241056257")
			_ = os.Setenv("FAIRWAY_REVEAL_CHANNEL_ID", "1390047692163645480")
			_ = os.Setenv("FAIRWAY_SEND_TIMEOUT", "3s")
			_ = os.Setenv("FAIRWAY_QUEUE_SIZE", "16")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DiscordToken, convey.ShouldEqual, "token")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.OwnerID, convey.ShouldEqual, "512106151241056257")
				convey.So(cfg.RevealChannelID, convey.ShouldEqual, "1390047692163645480")
				convey.So(cfg.SendTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.PicksFile, convey.ShouldEqual, "picks.json")
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			yamlContent := `
addr: ":7070"
timezone: "Europe/London"
reveal_schedule: "30 20 * * 3"
ledger_id: "sheet-123"
ledger_participants:
  Alice: "Standings!B2"
  Bob: "Standings!B3"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FAIRWAY_CONFIG", tmpFile)
			_ = os.Setenv("FAIRWAY_DISCORD_TOKEN", "token")
			_ = os.Setenv("FAIRWAY_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.Timezone, convey.ShouldEqual, "Europe/London")
				convey.So(cfg.RevealSchedule, convey.ShouldEqual, "30 20 * * 3")
				convey.So(cfg.RotateSchedule, convey.ShouldEqual, "0 9 * * 1")
				convey.So(cfg.LedgerParticipants, convey.ShouldResemble, map[string]string{
					"Alice": "Standings!B2",
					"Bob":   "Standings!B3",
				})
				convey.So(cfg.LedgerEnabled(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("FAIRWAY_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("FAIRWAY_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			_ = os.Setenv("FAIRWAY_DISCORD_TOKEN", "token")
			_ = os.Setenv("FAIRWAY_TIMEZONE", "Mars/Olympus_Mons")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "timezone")
			})
		})

		convey.Convey("When the store backend is unknown", func() {
			_ = os.Setenv("FAIRWAY_DISCORD_TOKEN", "token")
			_ = os.Setenv("FAIRWAY_STORE_BACKEND", "s3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "store_backend")
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("FAIRWAY_DISCORD_TOKEN", "token")
			_ = os.Setenv("FAIRWAY_QUEUE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"FAIRWAY_CONFIG",
		"FAIRWAY_ADDR",
		"FAIRWAY_DISCORD_TOKEN",
		"FAIRWAY_OWNER_ID",
		"FAIRWAY_REVEAL_CHANNEL_ID",
		"FAIRWAY_SEND_TIMEOUT",
		"FAIRWAY_QUEUE_SIZE",
		"FAIRWAY_TIMEZONE",
		"FAIRWAY_STORE_BACKEND",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fairway-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
