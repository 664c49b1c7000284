// Package notify dispatches chat notifications and suppresses consecutive duplicates.
package notify

import (
	"log/slog"
	"sync"
)

// Notifier is the interface for delivering a text message to a chat.
type Notifier interface {
	SendMessage(chatID int64, text string) error
}

// Gate wraps a Notifier and drops candidate messages that repeat the last
// delivered one, so a condition that persists across polls is reported once.
// Safe for concurrent use.
type Gate struct {
	notifier Notifier
	chatID   int64
	log      *slog.Logger

	mu   sync.Mutex
	last string
}

// NewGate creates a Gate delivering to the given chat. The last delivered
// message starts out empty.
func NewGate(notifier Notifier, chatID int64, log *slog.Logger) *Gate {
	return &Gate{
		notifier: notifier,
		chatID:   chatID,
		log:      log,
	}
}

// Offer dispatches text unless it equals the last delivered message. The
// remembered message advances only when delivery succeeds: a failed send
// keeps the previous one, so the same text can go out on a later attempt.
// Delivery failures are logged, never returned. Reports whether the message
// was delivered.
func (g *Gate) Offer(text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if text == g.last {
		g.log.Debug("duplicate notification suppressed", "chat_id", g.chatID)
		return false
	}

	if err := g.notifier.SendMessage(g.chatID, text); err != nil {
		g.log.Error("send notification", "chat_id", g.chatID, "error", err)
		return false
	}

	g.log.Debug("notification sent", "chat_id", g.chatID)
	g.last = text
	return true
}

// Last returns the last successfully delivered message, or the empty string
// when nothing has been delivered yet.
func (g *Gate) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
