package bot

import (
	"fmt"
	"strings"
	"time"

	"homework_bot/internal/scheduler"
)

const timeLayout = "2006-01-02 15:04 UTC"

// FormatSnapshot formats the poller state for the /status command.
func FormatSnapshot(s scheduler.Snapshot) string {
	var b strings.Builder
	b.WriteString("Poller state:\n")
	fmt.Fprintf(&b, "Cursor: %d (%s)\n", s.Cursor, time.Unix(s.Cursor, 0).UTC().Format(timeLayout))

	if s.LastCheck.IsZero() {
		b.WriteString("Last check: never\n")
	} else {
		fmt.Fprintf(&b, "Last check: %s\n", s.LastCheck.Format(timeLayout))
	}

	if s.LastError != "" {
		fmt.Fprintf(&b, "Last error: %s\n", s.LastError)
	}

	if s.LastSent == "" {
		b.WriteString("Nothing sent yet.")
	} else {
		fmt.Fprintf(&b, "Last message:\n%s", s.LastSent)
	}
	return b.String()
}
