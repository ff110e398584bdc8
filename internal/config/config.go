package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreSQLite = "sqlite"
	StoreDiskv  = "diskv"
)

// Config keeps runtime settings for the bot and the CLI.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportInterval time.Duration
	StoreDriver    string
	DiskvPath      string
	// AutoScheduleAt is the HH:MM of the daily auto-schedule run; empty disables it.
	AutoScheduleAt string
	UndoCapacity   int
}

// Load reads configuration from an optional polytask.yaml and environment
// variables with sane defaults. POLYTASK_CONFIG points at another file.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("telegram_token", "")
	v.SetDefault("database_url", "daily_planner.db")
	v.SetDefault("report_interval_hours", "5")
	v.SetDefault("store_driver", StoreSQLite)
	v.SetDefault("diskv_path", "polytask-data")
	v.SetDefault("autoschedule_at", "07:00")
	v.SetDefault("undo_capacity", 20)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv("POLYTASK_CONFIG")); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("polytask")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		ReportInterval: parseInterval(strings.TrimSpace(v.GetString("report_interval_hours"))),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		DiskvPath:      strings.TrimSpace(v.GetString("diskv_path")),
		AutoScheduleAt: strings.TrimSpace(v.GetString("autoschedule_at")),
		UndoCapacity:   v.GetInt("undo_capacity"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "daily_planner.db"
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}
	if cfg.UndoCapacity <= 0 {
		cfg.UndoCapacity = 20
	}

	switch cfg.StoreDriver {
	case "":
		cfg.StoreDriver = StoreSQLite
	case StoreSQLite, StoreDiskv:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// RequireToken reports the missing Telegram token the bot cannot start without.
func (c Config) RequireToken() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
