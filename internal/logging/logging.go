// Package logging configures the structured logger used by the tape engine.
//
// The engine logs at Debug level only (tape built, optimizer summary,
// compare changes), so the default Info level keeps replay silent.
// Output goes to stderr: human-readable text on a terminal, JSON otherwise.
//
//	logging.SetDefault(logging.New(logging.Config{Level: "debug"}))
//	logging.Default().Debug("tape recorded", "ops", n)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Config selects the level and destination of the logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Empty means info.
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`

	// JSON forces the JSON handler. When false the handler is chosen from
	// the destination: text for a terminal, JSON for anything else.
	JSON bool `yaml:"json" json:"json"`

	// Output defaults to os.Stderr.
	Output io.Writer `yaml:"-" json:"-"`
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger from cfg.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.JSON || !isTerminal(out) {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	defaultLogger.Store(New(Config{}))
}

// Default returns the engine-wide logger.
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the engine-wide logger.
func SetDefault(l *slog.Logger) {
	defaultLogger.Store(l)
}
