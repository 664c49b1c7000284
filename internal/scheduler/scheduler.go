package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"homework_bot/internal/domain"
	"homework_bot/internal/notify"
	"homework_bot/internal/practicum"
	"homework_bot/internal/status"
)

// defaultPollInterval matches the API's recommended 600-second retry period.
const defaultPollInterval = 600 * time.Second

// StatusSource is the interface for fetching homework status updates.
type StatusSource interface {
	HomeworkStatuses(ctx context.Context, from int64) (*practicum.Statuses, error)
}

// Snapshot is a point-in-time view of the polling state.
type Snapshot struct {
	Cursor    int64
	LastCheck time.Time
	LastError string
	LastSent  string
}

// Scheduler periodically polls the status API and routes homework updates
// and failure diagnostics through the notification gate. Polling happens on
// the Run goroutine only; other goroutines observe state through Snapshot.
type Scheduler struct {
	source StatusSource
	gate   *notify.Gate
	log    *slog.Logger
	tick   time.Duration
	force  chan struct{}

	mu        sync.Mutex
	cursor    int64
	lastCheck time.Time
	lastErr   string
}

// New creates a Scheduler that starts tracking from the current time.
func New(source StatusSource, gate *notify.Gate, log *slog.Logger) *Scheduler {
	return &Scheduler{
		source: source,
		gate:   gate,
		log:    log,
		tick:   defaultPollInterval,
		force:  make(chan struct{}, 1),
		cursor: time.Now().Unix(),
	}
}

// SetTickInterval overrides the default 600-second poll interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the polling loop, blocking until ctx is cancelled. The first
// cycle runs immediately; afterwards one cycle runs per tick or forced check.
func (s *Scheduler) Run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		case <-s.force:
			s.poll(ctx)
		}
	}
}

// ForceCheck requests an immediate poll without waiting for the next tick.
// Requests arriving while one is already pending are coalesced.
func (s *Scheduler) ForceCheck() {
	select {
	case s.force <- struct{}{}:
	default:
	}
}

// Snapshot returns the current polling state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Cursor:    s.cursor,
		LastCheck: s.lastCheck,
		LastError: s.lastErr,
		LastSent:  s.gate.Last(),
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	err := s.runCycle(ctx)
	if err == nil {
		s.recordCheck("")
		return
	}

	kind := domain.KindOf(err)
	if kind == domain.KindEmptyResult {
		s.log.Info("no homework updates", "error", err)
	} else {
		s.log.Error("poll cycle failed", "kind", string(kind), "error", err)
	}

	// Every failure goes to the chat as a diagnostic; the gate drops repeats
	// of the one already delivered.
	s.gate.Offer(diagnostic(err, kind))
	s.recordCheck(err.Error())
}

func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.Errorf(domain.KindUnclassified, "poll cycle panicked: %v", r)
		}
	}()
	return s.cycle(ctx)
}

func (s *Scheduler) cycle(ctx context.Context) error {
	resp, err := s.source.HomeworkStatuses(ctx, s.cursorValue())
	if err != nil {
		return err
	}

	// Advance the cursor before interpreting, so a failure past this point
	// cannot replay the same update on the next poll.
	s.setCursor(resp.CurrentDate)

	msg, err := status.Message(resp.Homeworks[0])
	if err != nil {
		return err
	}

	s.gate.Offer(msg)
	return nil
}

func (s *Scheduler) cursorValue() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Scheduler) setCursor(v int64) {
	s.mu.Lock()
	s.cursor = v
	s.mu.Unlock()
}

func (s *Scheduler) recordCheck(errText string) {
	s.mu.Lock()
	s.lastCheck = time.Now().UTC()
	s.lastErr = errText
	s.mu.Unlock()
}

func diagnostic(err error, kind domain.Kind) string {
	if kind == domain.KindUnclassified {
		return fmt.Sprintf("unexpected failure: %v", err)
	}
	return err.Error()
}
