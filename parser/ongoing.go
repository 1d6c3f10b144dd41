package parser

import (
	"encoding/json"
	"strings"
)

// interruptPrefix opens the user record Claude Code writes on Esc.
const interruptPrefix = "[Request interrupted by user"

// IsOngoing reports whether the agent in entries still looks busy: there is
// assistant work (thinking, a tool call, a tool result) after the last
// event that ends a turn. Ending events are non-empty assistant text, a
// user interruption, an ExitPlanMode call, and an approved shutdown
// response. Malformed and noise entries are ignored.
func IsOngoing(entries []ConversationEntry) bool {
	busy := false
	ending := make(map[string]bool) // tool_use ids whose results end a turn
	for i := range entries {
		ce := &entries[i]
		if ce.IsMalformed() || IsNoise(&ce.Entry) {
			continue
		}
		e := &ce.Entry
		for _, b := range e.Blocks {
			switch {
			case e.Type == "user" && b.Type == BlockText && strings.HasPrefix(strings.TrimSpace(b.Text), interruptPrefix):
				busy = false
			case e.Type != "assistant" && b.Type != BlockToolResult:
			case b.Type == BlockText:
				if strings.TrimSpace(b.Text) != "" {
					busy = false
				}
			case b.Type == BlockToolUse && isShutdownApproval(b):
				ending[b.ToolID] = true
				busy = false
			case b.Type == BlockToolUse:
				busy = b.ToolName != "ExitPlanMode"
			case b.Type == BlockToolResult:
				busy = !ending[b.ToolID]
			case b.Type == BlockThinking:
				busy = true
			}
		}
	}
	return busy
}

func isShutdownApproval(b ContentBlock) bool {
	if b.ToolName != "SendMessage" {
		return false
	}
	var in struct {
		Type    string `json:"type"`
		Approve bool   `json:"approve"`
	}
	if json.Unmarshal(b.ToolInput, &in) != nil {
		return false
	}
	return in.Type == "shutdown_response" && in.Approve
}
