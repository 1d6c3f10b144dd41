package parser

import "strings"

// ToolCategory classifies tool calls into broad functional groups.
// The TUI assigns per-category icons and colors.
type ToolCategory string

const (
	CategoryRead  ToolCategory = "Read"
	CategoryEdit  ToolCategory = "Edit"
	CategoryWrite ToolCategory = "Write"
	CategoryBash  ToolCategory = "Bash"
	CategoryGrep  ToolCategory = "Grep"
	CategoryGlob  ToolCategory = "Glob"
	CategoryTask  ToolCategory = "Task"
	CategoryTool  ToolCategory = "Tool" // Skill, MCP tools
	CategoryWeb   ToolCategory = "Web"  // WebFetch, WebSearch
	CategoryOther ToolCategory = "Other"
)

// CategorizeToolName maps a Claude Code tool name to a ToolCategory.
func CategorizeToolName(name string) ToolCategory {
	if strings.HasPrefix(name, "mcp__") {
		return CategoryTool
	}
	switch name {
	case "Read", "LS", "NotebookRead":
		return CategoryRead
	case "Edit", "MultiEdit":
		return CategoryEdit
	case "Write", "NotebookEdit":
		return CategoryWrite
	case "Bash", "BashOutput", "KillShell":
		return CategoryBash
	case "Grep":
		return CategoryGrep
	case "Glob":
		return CategoryGlob
	case "Task", "Agent":
		return CategoryTask
	case "Skill", "TodoWrite", "ExitPlanMode":
		return CategoryTool
	case "WebFetch", "WebSearch":
		return CategoryWeb
	default:
		return CategoryOther
	}
}
