package config

import (
	"os"

	"github.com/natjoub/factory/pkg/config"
)

type Config struct {
	ListenAddr   string
	AuthURL      string
	InventoryURL string
	OrderURL     string
	JWTSecret    []byte
	JWTIssuer    string
	JWTAudience  string
	LogLevel     string
}

func Load() *Config {
	config.LoadDotenv()

	cfg := &Config{
		ListenAddr:   config.EnvDefault("GATEWAY_LISTEN_ADDR", ":8080"),
		AuthURL:      os.Getenv("AUTH_URL"),
		InventoryURL: os.Getenv("INVENTORY_URL"),
		OrderURL:     os.Getenv("ORDER_URL"),
		JWTSecret:    []byte(os.Getenv("JWT_HS256_SECRET")),
		JWTIssuer:    config.EnvDefault("JWT_ISSUER", "factory-auth"),
		JWTAudience:  config.EnvDefault("JWT_AUDIENCE", "factory-services"),
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
	}

	config.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	config.MustNonEmpty(cfg.InventoryURL, "INVENTORY_URL")
	config.MustNonEmpty(cfg.OrderURL, "ORDER_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_HS256_SECRET")

	return cfg
}
