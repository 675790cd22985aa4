package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*Slog, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})

	return NewSlog(slog.New(handler)), buf
}

func TestSlog_Levels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *Slog)
		want []string
	}{
		{
			name: "debug",
			log:  func(l *Slog) { l.Debug("cache miss", "user_id", "u1") },
			want: []string{"cache miss", "user_id=u1", "level=DEBUG"},
		},
		{
			name: "info",
			log:  func(l *Slog) { l.Info("submission recorded", "phase", "quant") },
			want: []string{"submission recorded", "phase=quant", "level=INFO"},
		},
		{
			name: "warn",
			log:  func(l *Slog) { l.Warn("insufficient overlap", "available", 3) },
			want: []string{"insufficient overlap", "available=3", "level=WARN"},
		},
		{
			name: "error",
			log:  func(l *Slog) { l.Error("store call failed", "kind", "unavailable") },
			want: []string{"store call failed", "kind=unavailable", "level=ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(slog.LevelDebug)
			tt.log(logger)

			for _, w := range tt.want {
				require.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestSlog_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	require.Empty(t, buf.String())

	logger.Warn("warn message")
	require.Contains(t, buf.String(), "warn message")
}

func TestSlog_FatalExits(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	var code int
	logger.exit = func(c int) { code = c }

	logger.Fatal("config unusable", "path", "study.yaml")

	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), "level=ERROR")
	require.Contains(t, buf.String(), "path=study.yaml")
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer

	NewText(&buf, false).Debug("hidden")
	require.Empty(t, buf.String())

	NewText(&buf, true).Debug("shown", "item", "source_a/1")
	require.Contains(t, buf.String(), "item=source_a/1")
}

func TestNop(t *testing.T) {
	logger := NewNop()

	require.NotPanics(t, func() {
		logger.Debug("m", "k", "v")
		logger.Info("m")
		logger.Warn("m", "odd")
		logger.Error("m", "k1", "v1", "k2", "v2")
		logger.Fatal("m")
	})
}

func TestNewSlogDefault(t *testing.T) {
	require.NotNil(t, NewSlogDefault().logger)
}
