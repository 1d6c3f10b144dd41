// Package logging configures the process-wide logrus logger. The TUI owns
// the terminal, so output goes to a file and, through Buffer, to the in-app
// log pane.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields so callers need not import logrus.
type Fields = logrus.Fields

var rootLogger = logrus.New()

// DefaultPath returns $XDG_STATE_HOME/claude-logview/claude-logview.log,
// falling back to ~/.local/state.
func DefaultPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "claude-logview.log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "claude-logview", "claude-logview.log")
}

// Setup points the root logger at path (DefaultPath when empty) with the
// given level name. Returns the file closer and the resolved path.
func Setup(path, level string) (io.Closer, string, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, "", fmt.Errorf("log level: %w", err)
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", err
	}
	rootLogger.SetFormatter(PlainFormatter{})
	rootLogger.SetOutput(f)
	rootLogger.SetLevel(lvl)
	return f, path, nil
}

// Discard silences the root logger, for --dump and tests.
func Discard() {
	rootLogger.SetOutput(io.Discard)
}

// Root returns the shared logger.
func Root() *logrus.Logger { return rootLogger }

// AddHook attaches h to the root logger.
func AddHook(h logrus.Hook) { rootLogger.AddHook(h) }

// Named returns an entry tagged with a component field.
func Named(component string) *logrus.Entry {
	entry := logrus.NewEntry(rootLogger)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

// PlainFormatter writes `[timestamp] [LEVEL] [component] message k=v`.
type PlainFormatter struct{}

// Format implements logrus.Formatter.
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	parts := make([]string, 0, 5)
	parts = append(parts,
		"["+entry.Time.UTC().Format(time.RFC3339Nano)+"]",
		"["+strings.ToUpper(entry.Level.String())+"]",
	)
	if c, ok := entry.Data["component"].(string); ok && c != "" {
		parts = append(parts, "["+c+"]")
	}
	parts = append(parts, entry.Message)
	if f := formatFields(entry.Data); f != "" {
		parts = append(parts, f)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "component" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
