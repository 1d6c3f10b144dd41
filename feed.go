package main

import (
	tea "charm.land/bubbletea/v2"
	"github.com/kylesnowschwartz/claude-logview/parser"
)

// feed is a live producer of entry batches: the file watcher in follow
// mode or the stdin stream. Both channels are closed when the feed ends.
type feed interface {
	Updates() <-chan []parser.ConversationEntry
	Errors() <-chan error
	Stop()
}

// Feed messages carry their source so messages from a feed that was
// stopped by a reload can be told apart from the current one.

// entriesMsg delivers a batch of newly parsed entries.
type entriesMsg struct {
	entries []parser.ConversationEntry
	src     feed
}

// feedClosedMsg reports that the feed has no more data.
type feedClosedMsg struct {
	src feed
}

// feedErrMsg reports a non-fatal error from the feed.
type feedErrMsg struct {
	err error
	src feed
}

// reloadedMsg carries a fresh read of a file source.
type reloadedMsg struct {
	entries []parser.ConversationEntry
	tail    *fileTail
	err     error
}

// waitForEntries blocks on the next batch. Returns feedClosedMsg once the
// channel is closed so the model can drop its live indicator.
func waitForEntries(f feed) tea.Cmd {
	if f == nil {
		return nil
	}
	updates := f.Updates()
	return func() tea.Msg {
		batch, ok := <-updates
		if !ok {
			return feedClosedMsg{src: f}
		}
		return entriesMsg{entries: batch, src: f}
	}
}

// waitForFeedErr blocks on the error channel. Returns nil when the channel
// is closed, unblocking the goroutine.
func waitForFeedErr(f feed) tea.Cmd {
	if f == nil {
		return nil
	}
	errc := f.Errors()
	return func() tea.Msg {
		err, ok := <-errc
		if !ok {
			return nil
		}
		return feedErrMsg{err: err, src: f}
	}
}

// reloadCmd reads a session log and its sub-agent transcripts from the
// start.
func reloadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		tail := newFileTail(path)
		entries, err := tail.read()
		return reloadedMsg{entries: entries, tail: tail, err: err}
	}
}
