package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"homework_bot/internal/config"
	"homework_bot/internal/scheduler"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
}

type mockAPI struct {
	mu      sync.Mutex
	sent    []sentMsg
	err     error
	updates chan tgbotapi.Update
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return tgbotapi.Message{}, m.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text})
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if m.updates != nil {
		return m.updates
	}
	return make(tgbotapi.UpdatesChannel)
}

func (m *mockAPI) StopReceivingUpdates() {}

func (m *mockAPI) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

func (m *mockAPI) getSent() []sentMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]sentMsg, len(m.sent))
	copy(cp, m.sent)
	return cp
}

type mockPoller struct {
	mu     sync.Mutex
	forced int
	snap   scheduler.Snapshot
}

func (m *mockPoller) ForceCheck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced++
}

func (m *mockPoller) Snapshot() scheduler.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockPoller) forceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forced
}

// --- helpers ---

func newTestBot(t *testing.T) (*Bot, *mockAPI) {
	t.Helper()
	api := &mockAPI{}
	b := &Bot{
		api: api,
		cfg: &config.Config{ChatID: 100},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return b, api
}

func commandMessage(chatID int64, cmd string) *tgbotapi.Message {
	text := "/" + cmd
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
		Chat: &tgbotapi.Chat{ID: chatID},
	}
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

// --- handler tests ---

func TestHandleStart(t *testing.T) {
	b, api := newTestBot(t)
	b.handleStart(100)
	requireContains(t, api.lastText(), "Welcome to Homework Status Bot")
}

func TestHandleHelp(t *testing.T) {
	b, api := newTestBot(t)
	b.handleHelp(100)
	requireContains(t, api.lastText(), "/status")
	requireContains(t, api.lastText(), "/check")
}

func TestHandleStatus(t *testing.T) {
	b, api := newTestBot(t)
	poller := &mockPoller{snap: scheduler.Snapshot{
		Cursor:   1549962000,
		LastSent: "Изменился статус проверки работы \"proj1\". Работа взята на проверку ревьюером.",
	}}

	b.handleStatus(100, poller)

	reply := api.lastText()
	requireContains(t, reply, "Cursor: 1549962000")
	requireContains(t, reply, "Работа взята на проверку")
}

func TestHandleCheck(t *testing.T) {
	b, api := newTestBot(t)
	poller := &mockPoller{}

	b.handleCheck(100, poller)

	if diff := cmp.Diff(1, poller.forceCount()); diff != "" {
		t.Errorf("force count mismatch (-want +got):\n%s", diff)
	}
	requireContains(t, api.lastText(), "Check scheduled")
}

func TestHandleCommand(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(commandMessage(100, "status"), &mockPoller{})
		requireContains(t, api.lastText(), "Poller state")
	})

	t.Run("check", func(t *testing.T) {
		b, api := newTestBot(t)
		poller := &mockPoller{}
		b.handleCommand(commandMessage(100, "check"), poller)
		if diff := cmp.Diff(1, poller.forceCount()); diff != "" {
			t.Errorf("force count mismatch (-want +got):\n%s", diff)
		}
		requireContains(t, api.lastText(), "Check scheduled")
	})

	t.Run("unknown", func(t *testing.T) {
		b, api := newTestBot(t)
		b.handleCommand(commandMessage(100, "bogus"), &mockPoller{})
		requireContains(t, api.lastText(), "Unknown command")
	})
}

// --- update loop tests ---

func TestRunHonorsOnlyConfiguredChat(t *testing.T) {
	b, api := newTestBot(t)
	poller := &mockPoller{}

	api.updates = make(chan tgbotapi.Update, 3)
	api.updates <- tgbotapi.Update{Message: commandMessage(999, "check")}
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "plain text, not a command",
		Chat: &tgbotapi.Chat{ID: 100},
	}}
	api.updates <- tgbotapi.Update{Message: commandMessage(100, "check")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		b.Run(ctx, poller)
		close(done)
	}()

	waitFor(t, func() bool { return len(api.getSent()) == 2 })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	sent := api.getSent()
	if diff := cmp.Diff(int64(999), sent[0].ChatID); diff != "" {
		t.Errorf("first reply chat mismatch (-want +got):\n%s", diff)
	}
	requireContains(t, sent[0].Text, "Access denied.")
	if diff := cmp.Diff(int64(100), sent[1].ChatID); diff != "" {
		t.Errorf("second reply chat mismatch (-want +got):\n%s", diff)
	}
	requireContains(t, sent[1].Text, "Check scheduled")

	if diff := cmp.Diff(1, poller.forceCount()); diff != "" {
		t.Errorf("only the configured chat may force checks (-want +got):\n%s", diff)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPollTimeoutStaysBelowClientTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    int
	}{
		{
			name:    "default request timeout keeps a margin",
			timeout: 30 * time.Second,
			want:    25,
		},
		{
			name:    "long request timeout capped at sixty seconds",
			timeout: 10 * time.Minute,
			want:    60,
		},
		{
			name:    "short request timeout floors at one second",
			timeout: 3 * time.Second,
			want:    1,
		},
		{
			name:    "unset request timeout floors at one second",
			timeout: 0,
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bot{cfg: &config.Config{RequestTimeout: tt.timeout}}

			got := b.pollTimeout()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("poll timeout mismatch (-want +got):\n%s", diff)
			}
			if hold := time.Duration(got) * time.Second; tt.timeout > longPollMargin && hold >= tt.timeout {
				t.Errorf("hold %v must stay below the client timeout %v", hold, tt.timeout)
			}
		})
	}
}

// --- send tests ---

func TestSendMessage(t *testing.T) {
	b, api := newTestBot(t)

	if err := b.SendMessage(100, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []sentMsg{{ChatID: 100, Text: "hello"}}
	if diff := cmp.Diff(want, api.getSent()); diff != "" {
		t.Errorf("sent messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessageError(t *testing.T) {
	b, api := newTestBot(t)
	api.err = errors.New("telegram down")

	err := b.SendMessage(100, "hello")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "telegram down") {
		t.Errorf("error should carry the cause, got: %v", err)
	}
}

// --- formatting tests ---

func TestFormatSnapshot(t *testing.T) {
	lastCheck := time.Date(2019, 2, 12, 9, 40, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap scheduler.Snapshot
		want []string
	}{
		{
			name: "fresh poller",
			snap: scheduler.Snapshot{Cursor: 1549962000},
			want: []string{
				"Cursor: 1549962000 (2019-02-12 09:00 UTC)",
				"Last check: never",
				"Nothing sent yet.",
			},
		},
		{
			name: "after delivery",
			snap: scheduler.Snapshot{
				Cursor:    1549962000,
				LastCheck: lastCheck,
				LastSent:  "Изменился статус проверки работы \"proj1\". Работа взята на проверку ревьюером.",
			},
			want: []string{
				"Last check: 2019-02-12 09:40 UTC",
				"Last message:",
				"Работа взята на проверку",
			},
		},
		{
			name: "after failure",
			snap: scheduler.Snapshot{
				Cursor:    42,
				LastCheck: lastCheck,
				LastError: "request to x returned status 503 (from_date=42): boom",
			},
			want: []string{
				"Last error:",
				"503",
				"Nothing sent yet.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSnapshot(tt.snap)
			for _, want := range tt.want {
				requireContains(t, got, want)
			}
		})
	}
}
