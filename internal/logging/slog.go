// Package logging provides the types.Logger implementations used by the
// coordinator, the store adapters and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Slog adapts a *slog.Logger to types.Logger.
type Slog struct {
	logger *slog.Logger
	exit   func(code int)
}

var _ types.Logger = (*Slog)(nil)

// NewSlog wraps logger.
//
// Parameters:
//   - logger: Underlying slog logger
//
// Returns:
//   - *Slog: Adapter usable wherever a types.Logger is accepted
//
// Example:
//
//	logger := logging.NewSlog(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
//	logger.Info("coordinator started", "items", 120)
func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{logger: logger, exit: os.Exit}
}

// NewSlogDefault wraps slog.Default().
func NewSlogDefault() *Slog {
	return NewSlog(slog.Default())
}

// NewText logs key=value lines to w, at debug level when verbose is set.
//
// This is the CLI format: one line per event, stderr by default, so command
// output on stdout stays machine readable.
func NewText(w io.Writer, verbose bool) *Slog {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return NewSlog(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (l *Slog) Debug(msg string, keysAndValues ...any) { l.log(slog.LevelDebug, msg, keysAndValues) }

func (l *Slog) Info(msg string, keysAndValues ...any) { l.log(slog.LevelInfo, msg, keysAndValues) }

func (l *Slog) Warn(msg string, keysAndValues ...any) { l.log(slog.LevelWarn, msg, keysAndValues) }

func (l *Slog) Error(msg string, keysAndValues ...any) { l.log(slog.LevelError, msg, keysAndValues) }

// Fatal logs at error level, since slog has no fatal level, and exits with status 1.
func (l *Slog) Fatal(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues)
	l.exit(1)
}

func (l *Slog) log(level slog.Level, msg string, keysAndValues []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, msg, keysAndValues...)
}

// Nop discards everything. It is the default logger of every component.
type Nop struct{}

var _ types.Logger = Nop{}

// NewNop returns a logger that discards all messages.
func NewNop() Nop { return Nop{} }

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// Fatal discards the message and does not exit.
func (Nop) Fatal(string, ...any) {}
