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

	"github.com/natjoub/factory/gateway/internal/config"
	"github.com/natjoub/factory/gateway/internal/httpserver"
	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
	loggingmw "github.com/natjoub/factory/pkg/middleware/logging"
	"github.com/natjoub/factory/pkg/tokens"
)

func main() {
	cfg := config.Load()
	logger := logging.New("gateway", cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	e.Use(loggingmw.RequestLogger(logger))

	err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:      cfg.AuthURL,
		InventoryURL: cfg.InventoryURL,
		OrderURL:     cfg.OrderURL,
		Codec: tokens.Codec{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
	})
	if err != nil {
		log.Fatalf("gateway init error: %v", err)
	}

	go func() {
		logger.Info("gateway listening", "addr", cfg.ListenAddr)
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
}
