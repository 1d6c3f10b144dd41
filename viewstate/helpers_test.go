package viewstate

import (
	"fmt"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

// expandedExtra is how many lines the test height calculator adds for an
// expanded entry.
const expandedExtra = 10

// testEntry builds a valid assistant entry in session s1 with the given uuid.
func testEntry(id string, opts ...func(*parser.LogEntry)) parser.ConversationEntry {
	e := parser.LogEntry{
		UUID:      id,
		SessionID: "s1",
		Type:      "assistant",
		Role:      "assistant",
	}
	for _, opt := range opts {
		opt(&e)
	}
	return parser.NewValid(e)
}

func inSession(id string) func(*parser.LogEntry) {
	return func(e *parser.LogEntry) { e.SessionID = id }
}

func withModel(m string) func(*parser.LogEntry) {
	return func(e *parser.LogEntry) { e.Model = m }
}

// malformedEntry builds a malformed entry in session s1.
func malformedEntry(line int) parser.ConversationEntry {
	return parser.NewMalformed(parser.MalformedEntry{
		LineNumber: line,
		Raw:        "{not json",
		Err:        fmt.Errorf("bad json"),
		SessionID:  "s1",
	})
}

// heightsCalc returns a calculator that reads heights from a map keyed by
// entry ID. Malformed entries get the zero sentinel, expanded entries grow by
// expandedExtra, and NoWrap collapses any non-zero height to a single line.
// calls counts invocations.
func heightsCalc(heights map[string]int, calls *int) HeightCalculator {
	return func(e *parser.ConversationEntry, expanded bool, wrap WrapMode) LineHeight {
		if calls != nil {
			*calls++
		}
		if e.IsMalformed() {
			return ZeroHeight
		}
		h := heights[e.ID()]
		if h == 0 {
			return ZeroHeight
		}
		if wrap == NoWrap {
			h = 1
		}
		if expanded {
			h += expandedExtra
		}
		return HeightOf(h)
	}
}

// conversationWithHeights builds a laid-out conversation whose entries e0..eN
// have the given heights.
func conversationWithHeights(hs ...int) (*ConversationViewState, map[string]int) {
	heights := make(map[string]int, len(hs))
	entries := make([]parser.ConversationEntry, len(hs))
	for i, h := range hs {
		id := fmt.Sprintf("e%d", i)
		heights[id] = h
		entries[i] = testEntry(id)
	}
	c := NewConversation("", entries)
	c.RecomputeLayout(testParams, heightsCalc(heights, nil))
	return c, heights
}

var testParams = LayoutParams{Width: 80, GlobalWrap: Wrap}

func cumulative(c *ConversationViewState) []LineOffset {
	out := make([]LineOffset, c.Len())
	for i := range out {
		out[i], _ = c.EntryCumulativeY(EntryIndex(i))
	}
	return out
}
