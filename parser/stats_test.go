package parser

import (
	"testing"
	"time"
)

func assistantWith(model string, u Usage, tools ...string) ConversationEntry {
	e := LogEntry{Type: "assistant", Role: "assistant", Model: model, Usage: u}
	for _, name := range tools {
		e.Blocks = append(e.Blocks, ContentBlock{Type: BlockToolUse, ToolName: name})
	}
	return NewValid(e)
}

func TestStatsRecord(t *testing.T) {
	s := NewStats()
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	entries := []ConversationEntry{
		NewValid(LogEntry{Type: "user", Role: "user", Timestamp: t0}),
		assistantWith("claude-opus-4-6", Usage{InputTokens: 10, OutputTokens: 5}, "Read", "Bash", "Read"),
		assistantWith("<synthetic>", Usage{}),
		assistantWith("claude-haiku-4-5", Usage{CacheReadTokens: 100}, "Grep"),
		NewMalformed(MalformedEntry{LineNumber: 9}),
		NewValid(LogEntry{Type: "user", Role: "user", Timestamp: t0.Add(90 * time.Second)}),
	}
	for i := range entries {
		s.Record(&entries[i])
	}

	if s.Entries != 6 || s.Malformed != 1 {
		t.Errorf("Entries, Malformed = %d, %d, want 6, 1", s.Entries, s.Malformed)
	}
	if s.ByRole["assistant"] != 3 || s.ByRole["user"] != 2 {
		t.Errorf("ByRole = %v", s.ByRole)
	}
	if s.TotalTokens() != 115 {
		t.Errorf("TotalTokens() = %d, want 115", s.TotalTokens())
	}
	if len(s.Models) != 2 || s.Models[0] != "claude-opus-4-6" {
		t.Errorf("Models = %v, want opus then haiku", s.Models)
	}
	if s.Duration() != 90*time.Second {
		t.Errorf("Duration() = %v, want 1m30s", s.Duration())
	}

	top := s.TopTools(2)
	if len(top) != 2 || top[0] != (ToolCount{"Read", 2}) || top[1] != (ToolCount{"Bash", 1}) {
		t.Errorf("TopTools(2) = %v", top)
	}
}

func TestStatsContextPercent(t *testing.T) {
	s := NewStats()
	if got := s.ContextPercent(200_000); got != -1 {
		t.Errorf("ContextPercent() with no usage = %d, want -1", got)
	}

	first := assistantWith("m", Usage{InputTokens: 100_000})
	s.Record(&first)
	last := assistantWith("m", Usage{InputTokens: 10_000, CacheReadTokens: 40_000, OutputTokens: 999})
	s.Record(&last)
	if got := s.ContextPercent(200_000); got != 25 {
		t.Errorf("ContextPercent() = %d, want 25 (latest response only)", got)
	}

	side := NewValid(LogEntry{Type: "assistant", IsSidechain: true, AgentID: "x", Usage: Usage{InputTokens: 190_000}})
	s.Record(&side)
	if got := s.ContextPercent(200_000); got != 25 {
		t.Errorf("ContextPercent() after sub-agent usage = %d, want 25", got)
	}

	over := assistantWith("m", Usage{InputTokens: 500_000})
	s.Record(&over)
	if got := s.ContextPercent(200_000); got != 100 {
		t.Errorf("ContextPercent() = %d, want capped at 100", got)
	}
}

func TestStatsEstimatedCost(t *testing.T) {
	s := NewStats()
	entries := []ConversationEntry{
		assistantWith("claude-opus-4-6", Usage{InputTokens: 1_000_000}),
		assistantWith("claude-haiku-4-5", Usage{OutputTokens: 1_000_000}),
		assistantWith("claude-opus-4-6", Usage{OutputTokens: 100_000}),
		assistantWith("", Usage{}),
	}
	for i := range entries {
		s.Record(&entries[i])
	}
	// opus: 15 + 7.5, haiku: 4
	if got := s.EstimatedCost(DefaultPricing()); !closeTo(got, 26.5) {
		t.Errorf("EstimatedCost() = %v, want 26.5", got)
	}
	if len(s.UsageByModel) != 2 {
		t.Errorf("UsageByModel = %v, want two models", s.UsageByModel)
	}
}

func TestStatsActualCost(t *testing.T) {
	cost := func(v float64) *float64 { return &v }
	tests := []struct {
		name    string
		entries []LogEntry
		want    float64
		wantHas bool
	}{
		{"no result record", []LogEntry{{Type: "assistant"}}, 0, false},
		{"single result", []LogEntry{{Type: "result", CostUSD: cost(1.3874568)}}, 1.3874568, true},
		{"latest result wins", []LogEntry{{Type: "result", CostUSD: cost(0.5)}, {Type: "result", CostUSD: cost(0.75)}}, 0.75, true},
		{"result without cost", []LogEntry{{Type: "result"}}, 0, false},
		{"cost on another type", []LogEntry{{Type: "assistant", CostUSD: cost(9)}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStats()
			for _, e := range tt.entries {
				ce := NewValid(e)
				s.Record(&ce)
			}
			if s.HasActualCost != tt.wantHas || !closeTo(s.ActualCost, tt.want) {
				t.Errorf("ActualCost = (%v, %v), want (%v, %v)", s.ActualCost, s.HasActualCost, tt.want, tt.wantHas)
			}
		})
	}
}

func agentEntry(agent string, u Usage, tools ...string) ConversationEntry {
	ce := assistantWith("claude-haiku-4-5", u, tools...)
	ce.Entry.AgentID = agent
	ce.Entry.IsSidechain = true
	return ce
}

func TestSessionStatsScopes(t *testing.T) {
	ss := NewSessionStats()
	entries := []ConversationEntry{
		assistantWith("claude-opus-4-6", Usage{InputTokens: 10_000}, "Task"),
		agentEntry("a1", Usage{InputTokens: 20_000}, "Read", "Read"),
		agentEntry("a2", Usage{InputTokens: 40_000}, "Grep"),
		NewMalformed(MalformedEntry{LineNumber: 4}),
	}
	for i := range entries {
		ss.Record(&entries[i])
	}

	tests := []struct {
		name       string
		scope      StatsScope
		agent      string
		entries    int
		tokens     int
		topTool    string
		contextPct int
	}{
		{"all", ScopeAll, "", 4, 70_000, "Read", 5},
		{"main", ScopeMain, "", 2, 10_000, "Task", 5},
		{"all sub-agents", ScopeSubagents, "", 2, 60_000, "Read", 20},
		{"one sub-agent", ScopeSubagents, "a1", 1, 20_000, "Read", 10},
		{"agent ignored outside sub-agent scope", ScopeMain, "a1", 2, 10_000, "Task", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ss.Scoped(tt.scope, tt.agent)
			if st.Entries != tt.entries {
				t.Errorf("Entries = %d, want %d", st.Entries, tt.entries)
			}
			if st.TotalTokens() != tt.tokens {
				t.Errorf("TotalTokens() = %d, want %d", st.TotalTokens(), tt.tokens)
			}
			if top := st.TopTools(1); len(top) != 1 || top[0].Name != tt.topTool {
				t.Errorf("TopTools(1) = %v, want %s", top, tt.topTool)
			}
			if got := st.ContextPercent(200_000); got != tt.contextPct {
				t.Errorf("ContextPercent() = %d, want %d", got, tt.contextPct)
			}
		})
	}

	if ss.AgentCount() != 2 {
		t.Errorf("AgentCount() = %d, want 2", ss.AgentCount())
	}
	if st := ss.Scoped(ScopeSubagents, "missing"); st.Entries != 0 {
		t.Errorf("unknown agent entries = %d, want 0", st.Entries)
	}
	if ss.Main.Malformed != 1 {
		t.Errorf("main malformed = %d, want 1", ss.Main.Malformed)
	}
}

func TestStatsScopeNext(t *testing.T) {
	got := []string{}
	sc := ScopeAll
	for range 4 {
		got = append(got, sc.String())
		sc = sc.Next()
	}
	want := []string{"all", "main", "sub-agents", "all"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", got, want)
		}
	}
}
