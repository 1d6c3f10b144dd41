package parser

import (
	"encoding/json"
	"strings"
)

// Content block types.
const (
	BlockText       = "text"
	BlockThinking   = "thinking"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockImage      = "image"
)

// ContentBlock represents a single content block from a message.
type ContentBlock struct {
	Type      string          // one of the Block* constants, or the raw type for unknown blocks
	Text      string          // text and thinking content
	ToolID    string          // tool_use: call ID; tool_result: tool_use_id
	ToolName  string          // tool_use only
	ToolInput json.RawMessage // tool_use only
	Content   string          // tool_result content (stringified)
	IsError   bool            // tool_result only
}

// extractBlocks turns message content (a JSON string or an array of blocks)
// into ordered ContentBlocks. String content becomes a single text block.
func extractBlocks(raw json.RawMessage) []ContentBlock {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []ContentBlock{{Type: BlockText, Text: s}}
	}

	var blocks []contentBlockJSON
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}

	out := make([]ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case BlockText:
			out = append(out, ContentBlock{Type: BlockText, Text: b.Text})
		case BlockThinking:
			out = append(out, ContentBlock{Type: BlockThinking, Text: b.Thinking})
		case BlockToolUse:
			out = append(out, ContentBlock{
				Type:      BlockToolUse,
				ToolID:    b.ID,
				ToolName:  b.Name,
				ToolInput: b.Input,
			})
		case BlockToolResult:
			out = append(out, ContentBlock{
				Type:    BlockToolResult,
				ToolID:  b.ToolUseID,
				Content: stringifyContent(b.Content),
				IsError: b.IsError,
			})
		case BlockImage:
			out = append(out, ContentBlock{Type: BlockImage, Text: "[image]"})
		default:
			out = append(out, ContentBlock{Type: b.Type, Text: b.Text})
		}
	}
	return out
}

// stringifyContent converts tool_result content (string or array of text
// blocks) to a string.
func stringifyContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []textBlockJSON
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return string(raw)
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == BlockText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
