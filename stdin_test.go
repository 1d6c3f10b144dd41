package main

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

// drain collects every batch until the feed closes its updates channel.
func drain(t *testing.T, f *stdinFeed) []parser.ConversationEntry {
	t.Helper()
	var all []parser.ConversationEntry
	timeout := time.After(2 * time.Second)
	for {
		select {
		case batch, ok := <-f.Updates():
			if !ok {
				return all
			}
			all = append(all, batch...)
		case <-timeout:
			t.Fatal("feed did not close within 2s")
		}
	}
}

func TestStdinFeed_DeliversAllEntries(t *testing.T) {
	input := userLine("u1", "one") + "not json\n" + userLine("u2", "two")
	f := newStdinFeed(strings.NewReader(input))
	go f.run()

	got := drain(t, f)
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	if got[0].Entry.UUID != "u1" || got[2].Entry.UUID != "u2" {
		t.Errorf("order = %q, %q, want u1, u2", got[0].Entry.UUID, got[2].Entry.UUID)
	}
	if !got[1].IsMalformed() {
		t.Error("second line should be malformed")
	}

	if err, ok := <-f.Errors(); ok {
		t.Errorf("unexpected error %v", err)
	}
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("broken pipe")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestStdinFeed_ReportsReadError(t *testing.T) {
	f := newStdinFeed(&failingReader{data: userLine("u1", "one")})
	go f.run()

	got := drain(t, f)
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	select {
	case err := <-f.Errors():
		if err == nil || !strings.Contains(err.Error(), "broken pipe") {
			t.Errorf("error = %v, want broken pipe", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}
}

func TestStdinFeed_Stop(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	f := newStdinFeed(pr)
	go f.run()

	f.Stop()
	f.Stop()
	drain(t, f)
}
