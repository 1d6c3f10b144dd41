package viewstate

import (
	"testing"
	"time"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

func subagentEntry(id, agent string) parser.ConversationEntry {
	return testEntry(id, func(e *parser.LogEntry) {
		e.AgentID = agent
		e.IsSidechain = true
	})
}

func TestSubagentMaterializesLazily(t *testing.T) {
	s := NewSession("s1", 0)
	s.AddMainEntry(testEntry("m0"))
	for _, id := range []string{"a0", "a1", "a2"} {
		s.AddSubagentEntry("agent-a", subagentEntry(id, "agent-a"))
	}

	if s.HasSubagent("agent-a") {
		t.Fatal("HasSubagent() = true before first access")
	}
	if !s.HasSubagents() {
		t.Error("HasSubagents() = false with pending entries")
	}
	if n := s.SubagentEntryCount("agent-a"); n != 3 {
		t.Errorf("SubagentEntryCount() = %d, want 3", n)
	}
	if _, ok := s.GetSubagent("agent-a"); ok {
		t.Error("GetSubagent() ok = true before materialization")
	}

	c := s.Subagent("agent-a")
	if c.Len() != 3 {
		t.Fatalf("materialized Len() = %d, want 3", c.Len())
	}
	if c.AgentID() != "agent-a" {
		t.Errorf("AgentID() = %q, want agent-a", c.AgentID())
	}
	if !s.HasSubagent("agent-a") {
		t.Error("HasSubagent() = false after access")
	}
	if s.Subagent("agent-a") != c {
		t.Error("second Subagent() returned a different conversation")
	}

	// Later entries go straight to the materialized conversation.
	s.AddSubagentEntry("agent-a", subagentEntry("a3", "agent-a"))
	if c.Len() != 4 {
		t.Errorf("Len() after late entry = %d, want 4", c.Len())
	}
	if s.EntryCount() != 5 {
		t.Errorf("EntryCount() = %d, want 5", s.EntryCount())
	}
}

func TestSubagentIDsKeepArrivalOrder(t *testing.T) {
	s := NewSession("s1", 0)
	s.AddSubagentEntry("zeta", subagentEntry("z0", "zeta"))
	s.AddSubagentEntry("alpha", subagentEntry("a0", "alpha"))
	s.AddSubagentEntry("zeta", subagentEntry("z1", "zeta"))
	s.Subagent("alpha")
	s.Subagent("never-seen")

	want := []string{"zeta", "alpha", "never-seen"}
	got := s.SubagentIDs()
	if len(got) != len(want) {
		t.Fatalf("SubagentIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SubagentIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if c := s.Subagent("never-seen"); !c.IsEmpty() {
		t.Errorf("unknown sub-agent Len() = %d, want 0", c.Len())
	}
}

func TestSessionTotalHeight(t *testing.T) {
	heights := map[string]int{"m0": 3, "m1": 2, "a0": 4, "a1": 4}
	calc := heightsCalc(heights, nil)

	s := NewSession("s1", 0)
	s.AddMainEntry(testEntry("m0"))
	s.AddMainEntry(testEntry("m1"))
	s.AddSubagentEntry("agent-a", subagentEntry("a0", "agent-a"))
	s.AddSubagentEntry("agent-a", subagentEntry("a1", "agent-a"))
	s.EnsureLayout(testParams, calc)

	// Pending sub-agent entries count one line each.
	if got := s.TotalHeight(); got != 5+2 {
		t.Errorf("TotalHeight() with pending sub-agent = %d, want 7", got)
	}

	s.Subagent("agent-a")
	if !s.EnsureLayout(testParams, calc) {
		t.Error("EnsureLayout() = false after materializing, want true")
	}
	if got := s.TotalHeight(); got != 5+8 {
		t.Errorf("TotalHeight() after materializing = %d, want 13", got)
	}
	if s.EnsureLayout(testParams, calc) {
		t.Error("EnsureLayout() = true with nothing to do")
	}
}

func TestSessionStartTime(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	at := func(ts time.Time) func(*parser.LogEntry) {
		return func(e *parser.LogEntry) { e.Timestamp = ts }
	}

	s := NewSession("s1", 0)
	if !s.StartTime().IsZero() {
		t.Fatal("StartTime() non-zero on an empty session")
	}
	s.AddMainEntry(testEntry("a", at(t1)))
	s.AddSubagentEntry("x", testEntry("b", at(t0)))
	s.AddMainEntry(malformedEntry(3))
	if !s.StartTime().Equal(t0) {
		t.Errorf("StartTime() = %v, want %v", s.StartTime(), t0)
	}
}
