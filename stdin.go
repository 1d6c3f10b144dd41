package main

import (
	"io"
	"sync"

	"github.com/kylesnowschwartz/claude-logview/logging"
	"github.com/kylesnowschwartz/claude-logview/parser"
)

// stdinFeed streams entries from piped input. Entries that arrive while the
// UI is busy are batched into a single message.
type stdinFeed struct {
	stream   *parser.Stream
	sub      chan []parser.ConversationEntry
	errc     chan error
	done     chan struct{}
	stopOnce sync.Once
}

func newStdinFeed(r io.Reader) *stdinFeed {
	return &stdinFeed{
		stream: parser.NewStream(r),
		sub:    make(chan []parser.ConversationEntry),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Updates implements feed.
func (f *stdinFeed) Updates() <-chan []parser.ConversationEntry { return f.sub }

// Errors implements feed.
func (f *stdinFeed) Errors() <-chan error { return f.errc }

// Stop ends the feed. A read already blocked on the input is abandoned.
func (f *stdinFeed) Stop() {
	f.stopOnce.Do(func() { close(f.done) })
}

// run reads until EOF, then flushes and closes both channels. Intended to
// be called as a goroutine.
func (f *stdinFeed) run() {
	defer close(f.sub)
	defer close(f.errc)
	log := logging.Named("stdin")

	in := make(chan parser.ConversationEntry, 256)
	go func() {
		defer close(in)
		for {
			e, ok := f.stream.Next()
			if !ok {
				return
			}
			select {
			case in <- e:
			case <-f.done:
				return
			}
		}
	}()

	var pending []parser.ConversationEntry
	total := 0
	for in != nil || len(pending) > 0 {
		var out chan []parser.ConversationEntry
		if len(pending) > 0 {
			out = f.sub
		}
		select {
		case e, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, e)
			total++
		case out <- pending:
			pending = nil
		case <-f.done:
			return
		}
	}

	// The reader goroutine has exited, so the stream is no longer in use.
	if err := f.stream.Err(); err != nil {
		log.WithError(err).Error("read failed")
		f.errc <- err
	}
	log.WithField("entries", total).Info("input closed")
}
