package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kylesnowschwartz/claude-logview/logging"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/sirupsen/logrus"
)

// watcherDebounce is the delay after the last write event before reading.
// It coalesces the bursts Claude Code writes during a tool round-trip.
const watcherDebounce = 200 * time.Millisecond

// fileTail tracks how far a session log and its sub-agent transcripts have
// been read. Not safe for concurrent use; the watcher goroutine owns it
// once following starts.
type fileTail struct {
	path      string
	positions map[string]parser.Position
}

func newFileTail(path string) *fileTail {
	return &fileTail{path: path, positions: make(map[string]parser.Position)}
}

// subagentDir is where sub-agent transcripts of the session are written.
func (t *fileTail) subagentDir() string {
	return filepath.Join(filepath.Dir(t.path), strings.TrimSuffix(filepath.Base(t.path), ".jsonl"), "subagents")
}

// read returns every entry written since the previous call: the session
// log first, then each sub-agent transcript. New transcripts are picked up
// as they appear. A failing sub-agent file does not stop the others.
func (t *fileTail) read() ([]parser.ConversationEntry, error) {
	entries, pos, err := parser.ReadFrom(t.path, t.positions[t.path])
	t.positions[t.path] = pos
	if err != nil {
		return entries, err
	}

	files, err := parser.SubagentFiles(t.path)
	if err != nil {
		return entries, err
	}
	var errs []error
	for _, sf := range files {
		var sub []parser.ConversationEntry
		prev, seen := t.positions[sf.Path]
		if !seen {
			sub, pos, err = parser.ReadSubagentFile(sf)
		} else {
			sub, pos, err = parser.ReadFrom(sf.Path, prev)
			parser.MarkSubagent(sub, sf.AgentID)
		}
		t.positions[sf.Path] = pos
		entries = append(entries, sub...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return entries, errors.Join(errs...)
}

// sessionWatcher follows a session log and its sub-agent directory and
// pushes newly appended entries through a channel.
//
// All reading happens on the run() goroutine. Timer callbacks send signals
// instead of reading directly, avoiding data races on the tail.
type sessionWatcher struct {
	tail    *fileTail
	sub     chan []parser.ConversationEntry
	errc    chan error
	done    chan struct{}
	signals chan struct{} // debounced read trigger; capacity 1
	log     *logrus.Entry

	// Guards the debounce timer so Stop can cancel it safely.
	// Does NOT guard the tail, which only run() touches.
	mu       sync.Mutex
	debounce *time.Timer
	stopOnce sync.Once
}

func newSessionWatcher(tail *fileTail) *sessionWatcher {
	return &sessionWatcher{
		tail:    tail,
		sub:     make(chan []parser.ConversationEntry),
		errc:    make(chan error, 1),
		done:    make(chan struct{}),
		signals: make(chan struct{}, 1),
		log:     logging.Named("watcher").WithField("path", tail.path),
	}
}

// Updates implements feed.
func (w *sessionWatcher) Updates() <-chan []parser.ConversationEntry { return w.sub }

// Errors implements feed.
func (w *sessionWatcher) Errors() <-chan error { return w.errc }

// Stop signals the watcher goroutine to exit and cancels any pending
// debounce. Safe to call more than once.
func (w *sessionWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	})
}

// sendSignal does a non-blocking send on the signals channel.
// If a signal is already pending, this is a no-op.
func (w *sessionWatcher) sendSignal() {
	select {
	case w.signals <- struct{}{}:
	default:
	}
}

// reportErr forwards err without blocking; an unread error is replaced.
func (w *sessionWatcher) reportErr(err error) {
	w.log.WithError(err).Warn("watch error")
	select {
	case w.errc <- err:
	default:
	}
}

// watchDir adds dir to watcher. A directory that cannot be watched is not
// fatal: only the follow features that depend on it stop working.
func (w *sessionWatcher) watchDir(watcher *fsnotify.Watcher, dir string) bool {
	if err := watcher.Add(dir); err != nil {
		w.log.WithError(err).WithField("dir", dir).Debug("cannot watch directory")
		return false
	}
	return true
}

// run starts the fsnotify loop. Intended to be called as a goroutine.
//
// Batches are never dropped: entries read while the UI is busy accumulate
// in pending and go out with the next send.
func (w *sessionWatcher) run() {
	defer close(w.sub)
	defer close(w.errc)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.reportErr(err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.tail.path); err != nil {
		w.reportErr(err)
		return
	}
	// The session directory appears when the first sub-agent starts, so
	// watch the project directory until then.
	w.watchDir(watcher, filepath.Dir(w.tail.path))
	subDir := w.tail.subagentDir()
	subWatched := w.watchDir(watcher, subDir)
	w.log.WithField("subagents", subWatched).Info("watching")

	var pending []parser.ConversationEntry
	for {
		var out chan []parser.ConversationEntry
		if len(pending) > 0 {
			out = w.sub
		}

		select {
		case <-w.done:
			return

		case out <- pending:
			pending = nil

		case <-w.signals:
			entries, err := w.tail.read()
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				w.reportErr(err)
			}
			if len(entries) > 0 {
				w.log.WithField("entries", len(entries)).Debug("read")
				pending = append(pending, entries...)
			}
			if !subWatched {
				if _, err := os.Stat(subDir); err == nil {
					subWatched = w.watchDir(watcher, subDir)
				}
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event, subDir) {
				continue
			}
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(watcherDebounce, w.sendSignal)
			w.mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal: forward to the TUI, never to stderr (leaks through
			// the alt screen).
			w.reportErr(err)
		}
	}
}

// relevant reports whether event can carry new entries: a write to the
// session log, or any change inside the sub-agent directory, or the
// creation of the session directory itself.
func (w *sessionWatcher) relevant(event fsnotify.Event, subDir string) bool {
	switch {
	case event.Name == w.tail.path:
		return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
	case filepath.Dir(event.Name) == subDir:
		return strings.HasSuffix(event.Name, ".jsonl")
	case event.Name == filepath.Dir(subDir):
		return event.Has(fsnotify.Create)
	}
	return false
}
