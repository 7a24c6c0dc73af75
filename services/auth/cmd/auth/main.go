package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/db"
	"github.com/natjoub/factory/pkg/events"
	"github.com/natjoub/factory/pkg/logging"
	loggingmw "github.com/natjoub/factory/pkg/middleware/logging"
	"github.com/natjoub/factory/pkg/tokens"
	"github.com/natjoub/factory/services/auth/internal/config"
	"github.com/natjoub/factory/services/auth/internal/httpserver"
	"github.com/natjoub/factory/services/auth/internal/repo"
	"github.com/natjoub/factory/services/auth/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New("auth", cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	e.Use(loggingmw.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	gormRepo := &repo.GormRepo{DB: gdb}
	if err := gormRepo.Migrate(initCtx); err != nil {
		cancel()
		log.Fatalf("db migrate error: %v", err)
	}
	cancel()

	var producer *events.Producer
	var publisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
	}

	codec := tokens.Codec{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}

	svc := service.New(gormRepo, codec, publisher)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Codec:       codec,
		Blacklist:   gormRepo,
	})

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go sweepExpiredTokens(sweepCtx, gormRepo, logger)

	go func() {
		logger.Info("auth service listening", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}
}

// sweepExpiredTokens deletes expired refresh and blacklist rows hourly.
// Expired rows are already invisible to queries; this just keeps the
// tables from growing forever.
func sweepExpiredTokens(ctx context.Context, r *repo.GormRepo, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		refresh, err := r.DeleteExpiredRefreshTokens(ctx)
		if err != nil {
			logger.Error("refresh token sweep failed", "error", err)
			continue
		}
		blacklisted, err := r.DeleteExpiredBlacklistedTokens(ctx)
		if err != nil {
			logger.Error("blacklist sweep failed", "error", err)
			continue
		}
		if refresh > 0 || blacklisted > 0 {
			logger.Info("expired tokens swept", "refresh", refresh, "blacklisted", blacklisted)
		}
	}
}
