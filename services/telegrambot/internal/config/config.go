package config

import (
	"os"
	"time"

	"github.com/natjoub/factory/pkg/config"
)

type Config struct {
	BotToken     string
	TelegramAPI  string
	AuthURL      string
	OrderURL     string
	InventoryURL string
	PollTimeout  time.Duration
	LogLevel     string
}

func Load() *Config {
	config.LoadDotenv()

	cfg := &Config{
		BotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPI:  config.EnvDefault("TELEGRAM_API_URL", ""),
		AuthURL:      os.Getenv("AUTH_URL"),
		OrderURL:     os.Getenv("ORDER_URL"),
		InventoryURL: os.Getenv("INVENTORY_URL"),
		PollTimeout:  time.Duration(config.EnvIntDefault("TELEGRAM_POLL_TIMEOUT_SECONDS", 30)) * time.Second,
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
	}

	config.MustNonEmpty(cfg.BotToken, "TELEGRAM_BOT_TOKEN")
	config.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	config.MustNonEmpty(cfg.OrderURL, "ORDER_URL")
	config.MustNonEmpty(cfg.InventoryURL, "INVENTORY_URL")

	return cfg
}
