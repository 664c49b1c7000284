package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"homework_bot/internal/bot"
	"homework_bot/internal/config"
	"homework_bot/internal/notify"
	"homework_bot/internal/practicum"
	"homework_bot/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	client := practicum.New(http.DefaultClient, cfg.Endpoint, cfg.PracticumToken, cfg.RequestTimeout)

	b, err := bot.New(cfg.TelegramToken, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	gate := notify.NewGate(b, cfg.ChatID, log)

	sched := scheduler.New(client, gate, log)
	sched.SetTickInterval(cfg.PollInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot", "account", b.Username(), "endpoint", cfg.Endpoint, "poll_interval", cfg.PollInterval)

	go sched.Run(ctx)

	b.Run(ctx, sched)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
