package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxRawDisplay caps how much of a malformed line is kept for display.
const maxRawDisplay = 256

// errMissingType is reported for JSON objects that carry no "type" field.
var errMissingType = errors.New("missing type field")

// entryNamespace seeds the name-based identities of records without a uuid.
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("claude-logview/entry"))

var reSessionID = regexp.MustCompile(`"sessionId"\s*:\s*"([^"]+)"`)

// rawEntry maps directly to the on-disk format at
// ~/.claude/projects/{project}/{session}.jsonl.
type rawEntry struct {
	Type        string   `json:"type"`
	UUID        string   `json:"uuid"`
	ParentUUID  *string  `json:"parentUuid"`
	SessionID   string   `json:"sessionId"`
	AgentID     string   `json:"agentId"`
	Timestamp   string   `json:"timestamp"`
	IsSidechain bool     `json:"isSidechain"`
	IsMeta      bool     `json:"isMeta"`
	Summary     string   `json:"summary"`
	CostUSD     *float64 `json:"total_cost_usd"`
	Message     struct {
		Role       string          `json:"role"`
		Content    json.RawMessage `json:"content"`
		Model      string          `json:"model"`
		StopReason *string         `json:"stop_reason"`
		Usage      struct {
			InputTokens              int `json:"input_tokens"`
			OutputTokens             int `json:"output_tokens"`
			CacheReadInputTokens     int `json:"cache_read_input_tokens"`
			CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// LogEntry is one successfully parsed JSONL record.
type LogEntry struct {
	UUID        string
	ParentUUID  string
	SessionID   string
	AgentID     string
	Type        string // "user", "assistant", "system", "summary", ...
	Role        string
	Model       string
	Timestamp   time.Time
	IsSidechain bool
	IsMeta      bool
	Blocks      []ContentBlock
	Usage       Usage
	StopReason  string
	CostUSD     *float64 // result records only: the session cost the CLI reported
	LineNumber  int
}

// MalformedEntry is a line that could not be parsed. It still occupies a slot
// in its conversation so indices stay stable.
type MalformedEntry struct {
	LineNumber int
	Raw        string
	Err        error
	SessionID  string // best effort, empty when the line gave no hint
}

// Usage holds token counts for a single API response.
type Usage struct {
	InputTokens         int
	OutputTokens        int
	CacheReadTokens     int
	CacheCreationTokens int
}

// TotalTokens returns the sum of all token fields.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens + u.CacheReadTokens + u.CacheCreationTokens
}

// Add returns the field-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:         u.InputTokens + o.InputTokens,
		OutputTokens:        u.OutputTokens + o.OutputTokens,
		CacheReadTokens:     u.CacheReadTokens + o.CacheReadTokens,
		CacheCreationTokens: u.CacheCreationTokens + o.CacheCreationTokens,
	}
}

// ConversationEntry is either a valid LogEntry or a MalformedEntry.
// Malformed is non-nil exactly when the line failed to parse.
type ConversationEntry struct {
	Entry     LogEntry
	Malformed *MalformedEntry

	id string
}

// NewValid wraps a parsed record.
func NewValid(e LogEntry) ConversationEntry {
	ce := ConversationEntry{Entry: e}
	ce.id = ce.computeID()
	return ce
}

// NewMalformed wraps a line that failed to parse.
func NewMalformed(m MalformedEntry) ConversationEntry {
	ce := ConversationEntry{Malformed: &m}
	ce.id = ce.computeID()
	return ce
}

// IsMalformed reports whether the line failed to parse.
func (c *ConversationEntry) IsMalformed() bool { return c.Malformed != nil }

// SessionID returns the session identifier, or "" when unknown.
func (c *ConversationEntry) SessionID() string {
	if c.Malformed != nil {
		return c.Malformed.SessionID
	}
	return c.Entry.SessionID
}

// AgentID returns the sub-agent identifier, or "" for main-agent entries.
func (c *ConversationEntry) AgentID() string {
	if c.Malformed != nil || !c.Entry.IsSidechain {
		return ""
	}
	return c.Entry.AgentID
}

// LineNumber returns the 1-based source line.
func (c *ConversationEntry) LineNumber() int {
	if c.Malformed != nil {
		return c.Malformed.LineNumber
	}
	return c.Entry.LineNumber
}

// ID returns a stable identity: the record uuid when present, otherwise a
// name-based UUID derived from the line number and content.
func (c *ConversationEntry) ID() string {
	if c.id != "" {
		return c.id
	}
	return c.computeID()
}

func (c *ConversationEntry) computeID() string {
	if c.Malformed != nil {
		name := fmt.Sprintf("%d\x00%s", c.Malformed.LineNumber, c.Malformed.Raw)
		return uuid.NewSHA1(entryNamespace, []byte(name)).String()
	}
	if c.Entry.UUID != "" {
		return c.Entry.UUID
	}
	name := fmt.Sprintf("%d\x00%s\x00%s", c.Entry.LineNumber, c.Entry.Type, c.Entry.SessionID)
	return uuid.NewSHA1(entryNamespace, []byte(name)).String()
}

// Text joins the entry's text blocks, sanitized for display.
func (c *ConversationEntry) Text() string {
	if c.Malformed != nil {
		return c.Malformed.Raw
	}
	var parts []string
	for _, b := range c.Entry.Blocks {
		switch b.Type {
		case BlockText:
			if t := SanitizeContent(b.Text); t != "" {
				parts = append(parts, t)
			}
		case BlockToolResult:
			if b.Content != "" {
				parts = append(parts, b.Content)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// ParseLine parses a single JSONL line. It never fails: lines that are not
// a JSON object with a "type" field come back malformed.
func ParseLine(line []byte, lineNumber int) ConversationEntry {
	var raw rawEntry
	if err := json.Unmarshal(line, &raw); err != nil {
		return malformed(line, lineNumber, err)
	}
	if raw.Type == "" {
		return malformed(line, lineNumber, errMissingType)
	}

	e := LogEntry{
		UUID:        raw.UUID,
		SessionID:   raw.SessionID,
		AgentID:     raw.AgentID,
		Type:        raw.Type,
		Role:        raw.Message.Role,
		Model:       raw.Message.Model,
		Timestamp:   parseTimestamp(raw.Timestamp),
		IsSidechain: raw.IsSidechain,
		IsMeta:      raw.IsMeta,
		Blocks:      extractBlocks(raw.Message.Content),
		Usage: Usage{
			InputTokens:         raw.Message.Usage.InputTokens,
			OutputTokens:        raw.Message.Usage.OutputTokens,
			CacheReadTokens:     raw.Message.Usage.CacheReadInputTokens,
			CacheCreationTokens: raw.Message.Usage.CacheCreationInputTokens,
		},
		CostUSD:    raw.CostUSD,
		LineNumber: lineNumber,
	}
	if raw.ParentUUID != nil {
		e.ParentUUID = *raw.ParentUUID
	}
	if raw.Message.StopReason != nil {
		e.StopReason = *raw.Message.StopReason
	}
	if e.Role == "" {
		e.Role = raw.Type
	}
	if raw.Type == "summary" && raw.Summary != "" {
		e.Blocks = []ContentBlock{{Type: BlockText, Text: raw.Summary}}
	}
	return NewValid(e)
}

func malformed(line []byte, lineNumber int, err error) ConversationEntry {
	raw := string(line)
	if len(raw) > maxRawDisplay {
		raw = raw[:maxRawDisplay]
	}
	m := MalformedEntry{
		LineNumber: lineNumber,
		Raw:        raw,
		Err:        err,
	}
	if sm := reSessionID.FindSubmatch(line); sm != nil {
		m.SessionID = string(sm[1])
	}
	return NewMalformed(m)
}

// parseTimestamp parses an ISO 8601 timestamp. Returns zero time on failure.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// Claude sometimes emits timestamps without a zone.
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t
	}
	return time.Time{}
}
