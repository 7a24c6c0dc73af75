package config

import (
	"os"

	"github.com/natjoub/factory/pkg/config"
)

type Config struct {
	ListenAddr   string
	DatabaseURL  string
	JWTSecret    []byte
	JWTIssuer    string
	JWTAudience  string
	InventoryURL string
	KafkaBrokers []string
	LogLevel     string
}

func Load() *Config {
	config.LoadDotenv()

	cfg := &Config{
		ListenAddr:   config.EnvDefault("ORDER_LISTEN_ADDR", ":8083"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    []byte(os.Getenv("JWT_HS256_SECRET")),
		JWTIssuer:    config.EnvDefault("JWT_ISSUER", "factory-auth"),
		JWTAudience:  config.EnvDefault("JWT_AUDIENCE", "factory-services"),
		InventoryURL: os.Getenv("INVENTORY_URL"),
		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_HS256_SECRET")
	config.MustNonEmpty(cfg.InventoryURL, "INVENTORY_URL")

	return cfg
}
