package viewstate

import "github.com/kylesnowschwartz/claude-logview/parser"

// LogViewState is the ordered sessions of one log. A log file may hold
// several concatenated sessions; a change of session id between consecutive
// entries starts a new one.
type LogViewState struct {
	sessions  []*SessionViewState
	currentID string
}

// NewLog returns an empty log.
func NewLog() *LogViewState {
	return &LogViewState{}
}

// AddEntry routes e to the right session and conversation. A session id
// different from the last one seen opens a new session that starts below
// all prior sessions. Entries without a session id join the current session.
// An empty agentID means the main conversation.
func (l *LogViewState) AddEntry(e parser.ConversationEntry, agentID string) {
	id := e.SessionID()
	cur := l.CurrentSession()
	switch {
	case cur == nil:
		cur = l.CreateEmptySession(id)
	case id == "" || id == l.currentID:
	case cur.id == "":
		// Leading entries without an id belong to the first identified session.
		cur.id = id
		l.currentID = id
	default:
		cur = l.CreateEmptySession(id)
	}

	if agentID == "" {
		cur.AddMainEntry(e)
	} else {
		cur.AddSubagentEntry(agentID, e)
	}
}

// CreateEmptySession opens a new session after all existing ones.
func (l *LogViewState) CreateEmptySession(id string) *SessionViewState {
	s := NewSession(id, LineOffset(l.TotalHeight()))
	l.sessions = append(l.sessions, s)
	l.currentID = id
	return s
}

// Sessions returns the sessions in log order. Callers must not modify the
// slice.
func (l *LogViewState) Sessions() []*SessionViewState { return l.sessions }

// SessionCount returns the number of sessions.
func (l *LogViewState) SessionCount() int { return len(l.sessions) }

// IsEmpty reports whether no entry has arrived.
func (l *LogViewState) IsEmpty() bool { return len(l.sessions) == 0 }

// Session returns the session at i.
func (l *LogViewState) Session(i int) (*SessionViewState, bool) {
	if i < 0 || i >= len(l.sessions) {
		return nil, false
	}
	return l.sessions[i], true
}

// FindSession returns the latest session with the given id.
func (l *LogViewState) FindSession(id string) (*SessionViewState, bool) {
	for i := len(l.sessions) - 1; i >= 0; i-- {
		if l.sessions[i].id == id {
			return l.sessions[i], true
		}
	}
	return nil, false
}

// CurrentSession returns the session receiving new entries, or nil.
func (l *LogViewState) CurrentSession() *SessionViewState {
	if len(l.sessions) == 0 {
		return nil
	}
	return l.sessions[len(l.sessions)-1]
}

// ActiveSession returns the last session whose start line is at or before
// scrollLine, or nil for an empty log.
func (l *LogViewState) ActiveSession(scrollLine LineOffset) *SessionViewState {
	if i, ok := l.ActiveSessionIndex(scrollLine); ok {
		return l.sessions[i]
	}
	return nil
}

// ActiveSessionIndex is ActiveSession returning the index. Sessions are few,
// so a backwards scan is enough.
func (l *LogViewState) ActiveSessionIndex(scrollLine LineOffset) (int, bool) {
	for i := len(l.sessions) - 1; i >= 0; i-- {
		if l.sessions[i].startLine <= scrollLine {
			return i, true
		}
	}
	return 0, false
}

// TotalHeight sums the height of every session.
func (l *LogViewState) TotalHeight() int {
	h := 0
	for _, s := range l.sessions {
		h += s.TotalHeight()
	}
	return h
}

// RecomputeStartLines re-derives every session's start line from the current
// heights. Start lines are fixed when a session opens, before later layout
// passes change the heights of the sessions above it.
func (l *LogViewState) RecomputeStartLines() {
	var y LineOffset
	for _, s := range l.sessions {
		s.startLine = y
		y += LineOffset(s.TotalHeight())
	}
}

// EnsureLayout brings every session's layout up to date for params and
// refreshes the start lines when any height changed.
func (l *LogViewState) EnsureLayout(params LayoutParams, calc HeightCalculator) bool {
	changed := false
	for _, s := range l.sessions {
		if s.EnsureLayout(params, calc) {
			changed = true
		}
	}
	if changed {
		l.RecomputeStartLines()
	}
	return changed
}
