package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/services/telegrambot/internal/backend"
	"github.com/natjoub/factory/services/telegrambot/internal/bot"
	"github.com/natjoub/factory/services/telegrambot/internal/config"
	"github.com/natjoub/factory/services/telegrambot/internal/session"
	"github.com/natjoub/factory/services/telegrambot/internal/telegram"
)

func main() {
	cfg := config.Load()
	logger := logging.New("telegrambot", cfg.LogLevel)

	authClient := backend.NewAuthClient(cfg.AuthURL)
	tg := telegram.NewClient(cfg.TelegramAPI, cfg.BotToken, cfg.PollTimeout)

	b := &bot.Bot{
		TG:          tg,
		Auth:        authClient,
		Orders:      backend.NewOrderClient(cfg.OrderURL),
		Inventory:   backend.NewInventoryClient(cfg.InventoryURL),
		Sessions:    session.NewStore(authClient),
		Logger:      logger,
		PollTimeout: cfg.PollTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("telegram bot polling")
	if err := b.Run(ctx, tg); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("telegram bot stopped")
}
