package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level   string
	LogFile string
	NoColor bool
	Console io.Writer // defaults to os.Stderr
}

// NewLogger creates a new zerolog logger with dual output (console + file)
func NewLogger(cfg Config) *zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	noColor := cfg.NoColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"
	consoleWriter := zerolog.ConsoleWriter{
		Out:        newProgressSafeWriter(console),
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}

	writers := []io.Writer{consoleWriter}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &logger
}

// parseLevel converts string level to zerolog.Level, defaulting to info
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return parsed
}

// NewTestLogger creates a logger for testing that writes to a buffer
func NewTestLogger(w io.Writer) *zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &logger
}

// progressSafeWriter serializes console writes and clears the current
// terminal line first, so log lines do not interleave with a progress bar
// redrawing on the same stream.
type progressSafeWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func newProgressSafeWriter(out io.Writer) *progressSafeWriter {
	return &progressSafeWriter{out: out}
}

const clearLine = "\r\033[K"

func (w *progressSafeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.out, clearLine); err != nil {
		return 0, err
	}
	return w.out.Write(p)
}
