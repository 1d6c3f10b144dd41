package viewstate

import (
	"time"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

// SessionViewState holds the main conversation of one session plus its
// sub-agent conversations. Sub-agent entries are stashed as pending until
// the sub-agent is first accessed, so sub-agents the user never opens cost
// no layout work.
type SessionViewState struct {
	id        string
	startLine LineOffset
	startTime time.Time

	main      *ConversationViewState
	subagents map[string]*ConversationViewState
	pending   map[string][]parser.ConversationEntry
	order     []string // sub-agent ids in first-seen order
}

// NewSession returns an empty session whose content begins at startLine in
// the whole log.
func NewSession(id string, startLine LineOffset) *SessionViewState {
	return &SessionViewState{
		id:        id,
		startLine: startLine,
		main:      NewConversation("", nil),
		subagents: make(map[string]*ConversationViewState),
		pending:   make(map[string][]parser.ConversationEntry),
	}
}

// ID returns the session identifier.
func (s *SessionViewState) ID() string { return s.id }

// StartLine returns the session's offset within the whole log.
func (s *SessionViewState) StartLine() LineOffset { return s.startLine }

// SetStartLine moves the session's offset within the whole log.
func (s *SessionViewState) SetStartLine(line LineOffset) { s.startLine = line }

// StartTime returns the earliest timestamp seen, zero if none.
func (s *SessionViewState) StartTime() time.Time { return s.startTime }

// Main returns the main-agent conversation. It always exists.
func (s *SessionViewState) Main() *ConversationViewState { return s.main }

// AddMainEntry appends to the main conversation.
func (s *SessionViewState) AddMainEntry(e parser.ConversationEntry) {
	s.noteTime(&e)
	s.main.Append(e)
}

// AddSubagentEntry routes e to the sub-agent's conversation if it has been
// materialized, otherwise to the pending stash.
func (s *SessionViewState) AddSubagentEntry(id string, e parser.ConversationEntry) {
	s.noteTime(&e)
	if c, ok := s.subagents[id]; ok {
		c.Append(e)
		return
	}
	if _, ok := s.pending[id]; !ok {
		s.order = append(s.order, id)
	}
	s.pending[id] = append(s.pending[id], e)
}

// Subagent returns the sub-agent's conversation, materializing it from the
// pending stash on first access. An id never seen yields an empty
// conversation that later entries will extend.
func (s *SessionViewState) Subagent(id string) *ConversationViewState {
	if c, ok := s.subagents[id]; ok {
		return c
	}
	entries, seen := s.pending[id]
	delete(s.pending, id)
	if !seen {
		s.order = append(s.order, id)
	}
	c := NewConversation(id, entries)
	s.subagents[id] = c
	return c
}

// GetSubagent returns the sub-agent's conversation only if it has already
// been materialized.
func (s *SessionViewState) GetSubagent(id string) (*ConversationViewState, bool) {
	c, ok := s.subagents[id]
	return c, ok
}

// HasSubagent reports whether the sub-agent's conversation is materialized.
// It is false for a sub-agent whose entries are all still pending.
func (s *SessionViewState) HasSubagent(id string) bool {
	_, ok := s.subagents[id]
	return ok
}

// HasSubagents reports whether any sub-agent entries arrived.
func (s *SessionViewState) HasSubagents() bool { return len(s.order) > 0 }

// SubagentIDs returns every known sub-agent, pending or materialized, in
// the order their first entry arrived.
func (s *SessionViewState) SubagentIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SubagentEntryCount returns the number of entries routed to id so far.
func (s *SessionViewState) SubagentEntryCount(id string) int {
	if c, ok := s.subagents[id]; ok {
		return c.Len()
	}
	return len(s.pending[id])
}

// EntryCount returns the number of entries across all conversations.
func (s *SessionViewState) EntryCount() int {
	n := s.main.Len()
	for _, id := range s.order {
		n += s.SubagentEntryCount(id)
	}
	return n
}

// TotalHeight sums the main conversation, every materialized sub-agent and
// one line per pending sub-agent entry. The pending estimate is only used to
// place the next session; a materialized sub-agent's real height replaces it.
func (s *SessionViewState) TotalHeight() int {
	h := s.main.TotalHeight()
	for _, c := range s.subagents {
		h += c.TotalHeight()
	}
	for _, p := range s.pending {
		h += len(p)
	}
	return h
}

// EnsureLayout brings the main conversation and every materialized
// sub-agent up to date for params. Returns whether any height changed.
func (s *SessionViewState) EnsureLayout(params LayoutParams, calc HeightCalculator) bool {
	changed := s.main.EnsureLayout(params, calc)
	for _, id := range s.order {
		if c, ok := s.subagents[id]; ok && c.EnsureLayout(params, calc) {
			changed = true
		}
	}
	return changed
}

func (s *SessionViewState) noteTime(e *parser.ConversationEntry) {
	if e.IsMalformed() {
		return
	}
	ts := e.Entry.Timestamp
	if ts.IsZero() {
		return
	}
	if s.startTime.IsZero() || ts.Before(s.startTime) {
		s.startTime = ts
	}
}
