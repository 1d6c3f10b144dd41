package parser

import (
	"slices"
	"sort"
	"time"
)

// Stats accumulates counters for one conversation, or a group of them, as
// entries arrive.
type Stats struct {
	Entries      int
	Malformed    int
	ByRole       map[string]int
	Usage        Usage
	UsageByModel map[string]Usage
	ToolCalls    map[string]int
	Models       []string // first-seen order
	FirstSeen    time.Time
	LastSeen     time.Time

	// ActualCost is the latest session cost reported by a result record.
	ActualCost    float64
	HasActualCost bool

	lastUsage  Usage
	hasContext bool
	sidechain  bool // context is tracked from sidechain responses too
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{
		ByRole:       make(map[string]int),
		UsageByModel: make(map[string]Usage),
		ToolCalls:    make(map[string]int),
	}
}

// Record folds one entry into the counters.
func (s *Stats) Record(ce *ConversationEntry) {
	s.Entries++
	if ce.IsMalformed() {
		s.Malformed++
		return
	}
	e := &ce.Entry
	s.ByRole[e.Role]++
	s.Usage = s.Usage.Add(e.Usage)
	if e.Usage.TotalTokens() > 0 {
		s.UsageByModel[e.Model] = s.UsageByModel[e.Model].Add(e.Usage)
		if !e.IsSidechain || s.sidechain {
			s.lastUsage = e.Usage
			s.hasContext = true
		}
	}
	if e.Type == "result" && e.CostUSD != nil {
		s.ActualCost = *e.CostUSD
		s.HasActualCost = true
	}
	for _, b := range e.Blocks {
		if b.Type == BlockToolUse && b.ToolName != "" {
			s.ToolCalls[b.ToolName]++
		}
	}
	if e.Model != "" && e.Model != "<synthetic>" && !slices.Contains(s.Models, e.Model) {
		s.Models = append(s.Models, e.Model)
	}
	if !e.Timestamp.IsZero() {
		if s.FirstSeen.IsZero() || e.Timestamp.Before(s.FirstSeen) {
			s.FirstSeen = e.Timestamp
		}
		if e.Timestamp.After(s.LastSeen) {
			s.LastSeen = e.Timestamp
		}
	}
}

// TotalTokens returns the sum of all recorded token fields.
func (s *Stats) TotalTokens() int {
	return s.Usage.TotalTokens()
}

// EstimatedCost prices the recorded usage, each model at its own rates.
func (s *Stats) EstimatedCost(p Pricing) float64 {
	var total float64
	for model, u := range s.UsageByModel {
		total += p.Cost(model, u)
	}
	return total
}

// ContextPercent estimates context window usage (0-100) from the most recent
// response: input plus cache tokens are what the model saw. Sub-agent
// responses count only in agent-scoped stats.
// Returns -1 when no usage has been recorded.
func (s *Stats) ContextPercent(maxContext int) int {
	if !s.hasContext || maxContext <= 0 {
		return -1
	}
	u := s.lastUsage
	used := u.InputTokens + u.CacheReadTokens + u.CacheCreationTokens
	pct := used * 100 / maxContext
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ToolCount is a tool name with its call count.
type ToolCount struct {
	Name  string
	Count int
}

// TopTools returns the n most used tools, ties broken by name.
func (s *Stats) TopTools(n int) []ToolCount {
	out := make([]ToolCount, 0, len(s.ToolCalls))
	for name, c := range s.ToolCalls {
		out = append(out, ToolCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Duration returns the span between the first and last timestamps seen.
func (s *Stats) Duration() time.Duration {
	if s.FirstSeen.IsZero() || s.LastSeen.IsZero() {
		return 0
	}
	return s.LastSeen.Sub(s.FirstSeen)
}

// StatsScope selects which conversations of a session a Stats covers.
type StatsScope int

const (
	ScopeAll StatsScope = iota
	ScopeMain
	ScopeSubagents
)

// Next cycles all, main, sub-agents.
func (sc StatsScope) Next() StatsScope {
	return (sc + 1) % 3
}

func (sc StatsScope) String() string {
	switch sc {
	case ScopeMain:
		return "main"
	case ScopeSubagents:
		return "sub-agents"
	default:
		return "all"
	}
}

// SessionStats keeps a session's counters split by conversation.
type SessionStats struct {
	All       *Stats
	Main      *Stats
	Subagents *Stats
	agents    map[string]*Stats
}

// NewSessionStats returns an empty set of accumulators.
func NewSessionStats() *SessionStats {
	subs := NewStats()
	subs.sidechain = true
	return &SessionStats{
		All:       NewStats(),
		Main:      NewStats(),
		Subagents: subs,
		agents:    make(map[string]*Stats),
	}
}

// Record folds ce into the session total and into its own conversation.
// Malformed lines carry no agent and count toward the main conversation.
func (ss *SessionStats) Record(ce *ConversationEntry) {
	ss.All.Record(ce)
	id := ce.AgentID()
	if id == "" {
		ss.Main.Record(ce)
		return
	}
	ss.Subagents.Record(ce)
	a, ok := ss.agents[id]
	if !ok {
		a = NewStats()
		a.sidechain = true
		ss.agents[id] = a
	}
	a.Record(ce)
}

// Agent returns the counters of one sub-agent.
func (ss *SessionStats) Agent(id string) (*Stats, bool) {
	a, ok := ss.agents[id]
	return a, ok
}

// AgentCount returns how many sub-agents have recorded entries.
func (ss *SessionStats) AgentCount() int { return len(ss.agents) }

// Scoped returns the counters for scope. Under ScopeSubagents a non-empty
// agentID narrows the result to that sub-agent.
func (ss *SessionStats) Scoped(scope StatsScope, agentID string) *Stats {
	switch scope {
	case ScopeMain:
		return ss.Main
	case ScopeSubagents:
		if agentID != "" {
			if a, ok := ss.agents[agentID]; ok {
				return a
			}
			return NewStats()
		}
		return ss.Subagents
	default:
		return ss.All
	}
}
