// Package logging provides structured logging with file and optional console output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one line of in-memory log history, shown in the TUI status bar.
type Entry struct {
	Time    time.Time
	Level   zerolog.Level
	Message string
}

// Config holds logger configuration.
type Config struct {
	Dir        string `yaml:"dir"`         // log file directory, empty disables the file
	Level      string `yaml:"level"`       // debug, info, warn, error
	Console    bool   `yaml:"console"`     // also write to stderr
	MaxHistory int    `yaml:"max_history"` // entries kept in memory
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Dir:        filepath.Join(home, ".voxgrid", "logs"),
		Level:      "info",
		MaxHistory: 200,
	}
}

// Logger wraps zerolog with a log file and a bounded history.
type Logger struct {
	zlog    zerolog.Logger
	file    *os.File
	path    string
	mu      sync.RWMutex
	history []Entry
	maxHist int
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New creates a Logger. The terminal UI owns stdout, so console output
// goes to stderr.
func New(cfg Config) (*Logger, error) {
	l := &Logger{maxHist: cfg.MaxHistory}
	if l.maxHist <= 0 {
		l.maxHist = 200
	}

	var writers []io.Writer
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.path = filepath.Join(cfg.Dir, fmt.Sprintf("voxgrid_%s.log", time.Now().Format("2006-01-02")))

		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		writers = append(writers, file)
	}
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	out := io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}

	l.zlog = zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		Hook(zerolog.HookFunc(l.record)).
		With().
		Timestamp().
		Str("app", "voxgrid").
		Logger()

	l.zlog.Debug().Str("file", l.path).Str("level", cfg.Level).Msg("logger initialized")
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), maxHist: 1}
}

func (l *Logger) record(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.NoLevel || msg == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.history = append(l.history, Entry{Time: time.Now(), Level: level, Message: msg})
	if len(l.history) > l.maxHist {
		l.history = l.history[len(l.history)-l.maxHist:]
	}
}

// History returns up to limit recent entries, oldest first.
func (l *Logger) History(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	out := make([]Entry, limit)
	copy(out, l.history[len(l.history)-limit:])
	return out
}

// Path returns the current log file path, empty when file logging is off.
func (l *Logger) Path() string {
	return l.path
}

// Component returns a zerolog.Logger with the component field set.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	l.zlog.Debug().Msg("logger shutting down")
	return l.file.Close()
}
