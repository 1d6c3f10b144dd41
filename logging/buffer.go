package logging

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Buffer is a logrus hook that keeps the last N formatted records in
// memory for the log pane. It is safe for concurrent use: the watcher and
// stdin goroutines log while the UI reads.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	fmt   logrus.Formatter
}

// NewBuffer returns a Buffer holding up to capacity lines.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{lines: make([]string, capacity), fmt: PlainFormatter{}}
}

// Levels implements logrus.Hook.
func (b *Buffer) Levels() []logrus.Level { return logrus.AllLevels }

// Fire implements logrus.Hook.
func (b *Buffer) Fire(entry *logrus.Entry) error {
	out, err := b.fmt.Format(entry)
	if err != nil {
		return err
	}
	line := strings.TrimRight(string(out), "\n")

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines[b.next] = line
	b.next = (b.next + 1) % len(b.lines)
	if b.next == 0 {
		b.full = true
	}
	return nil
}

// Lines returns the buffered records, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		return append([]string(nil), b.lines[:b.next]...)
	}
	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	return append(out, b.lines[:b.next]...)
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.lines)
	}
	return b.next
}
