package testing

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Entry is one line captured by TestLogger.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// TestLogger forwards log lines to t.Logf and keeps them for assertions.
//
// A missing value for a trailing key is recorded as "!MISSING".
type TestLogger struct {
	t       *testing.T
	mu      sync.Mutex
	entries []Entry
	done    bool
}

var _ types.Logger = (*TestLogger)(nil)

// NewTestLogger creates a logger bound to t.
//
// Lines logged after the test returns are kept but not forwarded, so
// late hook goroutines cannot panic the test binary.
func NewTestLogger(t *testing.T) *TestLogger {
	l := &TestLogger{t: t}
	t.Cleanup(func() {
		l.mu.Lock()
		l.done = true
		l.mu.Unlock()
	})

	return l
}

func (l *TestLogger) Debug(msg string, keysAndValues ...any) { l.add("DEBUG", msg, keysAndValues) }

func (l *TestLogger) Info(msg string, keysAndValues ...any) { l.add("INFO", msg, keysAndValues) }

func (l *TestLogger) Warn(msg string, keysAndValues ...any) { l.add("WARN", msg, keysAndValues) }

func (l *TestLogger) Error(msg string, keysAndValues ...any) { l.add("ERROR", msg, keysAndValues) }

// Fatal fails the test immediately.
func (l *TestLogger) Fatal(msg string, keysAndValues ...any) {
	l.add("FATAL", msg, keysAndValues)
	l.t.FailNow()
}

// Entries returns the captured lines at level ("" for all levels).
func (l *TestLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

// Contains reports whether a line at level has msg as its message.
func (l *TestLogger) Contains(level, msg string) bool {
	for _, e := range l.Entries(level) {
		if e.Message == msg {
			return true
		}
	}

	return false
}

func (l *TestLogger) add(level, msg string, keysAndValues []any) {
	e := Entry{Level: level, Message: msg, Fields: make(map[string]any, len(keysAndValues)/2)}

	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var val any = "!MISSING"
		if i+1 < len(keysAndValues) {
			val = keysAndValues[i+1]
		}
		e.Fields[key] = val
		_, _ = fmt.Fprintf(&b, " %s=%v", key, val)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if !l.done {
		l.t.Logf("%s: %s%s", level, msg, b.String())
	}
}
