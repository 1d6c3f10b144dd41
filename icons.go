package main

import "github.com/kylesnowschwartz/claude-logview/parser"

// Glyphs used throughout the TUI. Standard Unicode symbols for maximum
// terminal compatibility.
const (
	IconClaude    = "◆" // assistant entry
	IconUser      = "●" // user entry
	IconSystem    = "○" // system and summary entries
	IconSubagent  = "◈" // sub-agent tab and entries
	IconExpanded  = "▾"
	IconCollapsed = "▸"
	IconThinking  = "◇"
	IconToolOk    = "◆"
	IconToolErr   = "✕"
	IconResult    = "↳"
	IconDot       = "·"
	IconFocus     = "│" // focused entry gutter
	IconFollow    = "⇣"

	GlyphEllipsis = "…"
	GlyphHRule    = "─"
)

// gutterWidth is the column reserved left of every entry for the focus bar.
const gutterWidth = 2

// toolIcons gives a few tool categories a distinct glyph; the rest use
// IconToolOk.
var toolIcons = map[parser.ToolCategory]string{
	parser.CategoryRead: "⊙",
	parser.CategoryEdit: "✎",
	parser.CategoryBash: "$",
	parser.CategoryTask: IconSubagent,
	parser.CategoryWeb:  "⊕",
}

// toolIcon returns the glyph for a tool call, or the error glyph when its
// result failed.
func toolIcon(name string, failed bool) string {
	if failed {
		return IconToolErr
	}
	if g, ok := toolIcons[parser.CategorizeToolName(name)]; ok {
		return g
	}
	return IconToolOk
}

// roleIcon returns the header glyph for an entry type.
func roleIcon(entryType string, sidechain bool) string {
	switch {
	case sidechain && entryType == "assistant":
		return IconSubagent
	case entryType == "assistant":
		return IconClaude
	case entryType == "user":
		return IconUser
	default:
		return IconSystem
	}
}
