package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homework_bot/internal/config"
	"homework_bot/internal/scheduler"
)

// A quiet getUpdates call is held open server-side for the long-poll hold,
// so the hold must stay below the HTTP client timeout or the client aborts
// every quiet poll.
const (
	longPollMargin = 5 * time.Second
	longPollMax    = 60 // seconds
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller is the scheduler surface the bot drives from chat commands.
type Poller interface {
	ForceCheck()
	Snapshot() scheduler.Snapshot
}

// Bot is the Telegram bot that sends notifications and handles commands.
type Bot struct {
	api      telegramAPI
	cfg      *config.Config
	log      *slog.Logger
	username string
}

// New creates a Bot with the given Telegram token and config.
func New(token string, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	httpc := &http.Client{Timeout: cfg.RequestTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:      api,
		cfg:      cfg,
		log:      log,
		username: api.Self.UserName,
	}, nil
}

// Username returns the bot account name reported by Telegram.
func (b *Bot) Username() string {
	return b.username
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, poller Poller) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout()

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsChatAllowed(update.Message.Chat.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(update.Message, poller)
		}
	}
}

func (b *Bot) pollTimeout() int {
	t := int((b.cfg.RequestTimeout - longPollMargin) / time.Second)
	if t < 1 {
		return 1
	}
	if t > longPollMax {
		return longPollMax
	}
	return t
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.SendMessage(chatID, text); err != nil {
		b.log.Error("send reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message, poller Poller) {
	cmd := msg.Command()
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "status":
		b.handleStatus(chatID, poller)
	case "check":
		b.handleCheck(chatID, poller)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
