package main

import (
	"context"
	"log"
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
	"github.com/natjoub/factory/services/order/internal/client"
	"github.com/natjoub/factory/services/order/internal/config"
	"github.com/natjoub/factory/services/order/internal/httpserver"
	"github.com/natjoub/factory/services/order/internal/repo"
	"github.com/natjoub/factory/services/order/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New("order", cfg.LogLevel)

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

	svc := &service.Service{
		Repo:      gormRepo,
		Inventory: client.NewInventoryClient(cfg.InventoryURL),
		Events:    publisher,
	}
	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: svc},
		Codec:        codec,
	})

	go func() {
		logger.Info("order service listening", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

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
