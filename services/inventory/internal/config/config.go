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
	AuthURL      string
	ESURL        string
	ESUser       string
	ESPassword   string
	ESIndex      string
	KafkaBrokers []string
	LogLevel     string
}

func Load() *Config {
	config.LoadDotenv()

	cfg := &Config{
		ListenAddr:   config.EnvDefault("INVENTORY_LISTEN_ADDR", ":8082"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    []byte(os.Getenv("JWT_HS256_SECRET")),
		JWTIssuer:    config.EnvDefault("JWT_ISSUER", "factory-auth"),
		JWTAudience:  config.EnvDefault("JWT_AUDIENCE", "factory-services"),
		AuthURL:      os.Getenv("AUTH_URL"),
		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
		ESIndex:      config.EnvDefault("ES_INDEX", "inventory_items"),
		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_HS256_SECRET")
	config.MustNonEmpty(cfg.AuthURL, "AUTH_URL")

	return cfg
}
