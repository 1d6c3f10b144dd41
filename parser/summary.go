package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
)

const ellipsis = "…"

// toolFields is a decoded tool_use input.
type toolFields map[string]json.RawMessage

func (f toolFields) str(key string) string {
	var s string
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

func (f toolFields) num(key string) int {
	var n float64
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &n) == nil {
		return int(n)
	}
	return 0
}

// toolSummarizers produce the one-line label of a tool call. An empty
// result falls back to the tool name.
var toolSummarizers = map[string]func(toolFields) string{
	"Read": func(f toolFields) string {
		fp := f.str("file_path")
		if fp == "" {
			return ""
		}
		if limit := f.num("limit"); limit > 0 {
			from := max(f.num("offset"), 1)
			return fmt.Sprintf("%s - lines %d-%d", ShortPath(fp, 2), from, from+limit-1)
		}
		return ShortPath(fp, 2)
	},
	"Write": func(f toolFields) string {
		fp := f.str("file_path")
		if fp == "" {
			return ""
		}
		if c := f.str("content"); c != "" {
			return fmt.Sprintf("%s - %s", ShortPath(fp, 2), plural(strings.Count(c, "\n")+1, "line"))
		}
		return ShortPath(fp, 2)
	},
	"Edit": func(f toolFields) string {
		fp := f.str("file_path")
		if fp == "" {
			return ""
		}
		before, after := f.str("old_string"), f.str("new_string")
		if before == "" || after == "" {
			return ShortPath(fp, 2)
		}
		a, b := strings.Count(before, "\n")+1, strings.Count(after, "\n")+1
		if a == b {
			return fmt.Sprintf("%s - %s", ShortPath(fp, 2), plural(a, "line"))
		}
		return fmt.Sprintf("%s - %d -> %d lines", ShortPath(fp, 2), a, b)
	},
	"Bash": func(f toolFields) string {
		desc, cmd := f.str("description"), f.str("command")
		switch {
		case desc != "" && cmd != "":
			return Truncate(desc+": "+cmd, 60)
		case desc != "":
			return Truncate(desc, 60)
		}
		return Truncate(cmd, 60)
	},
	"Grep": patternSummary,
	"Glob": patternSummary,
	"Task": agentSummary,
	// Newer Claude Code versions renamed Task to Agent.
	"Agent": agentSummary,
	"WebFetch": func(f toolFields) string {
		raw := f.str("url")
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return Truncate(raw, 50)
		}
		return Truncate(u.Hostname()+u.Path, 50)
	},
	"WebSearch": func(f toolFields) string {
		if q := f.str("query"); q != "" {
			return `"` + Truncate(q, 40) + `"`
		}
		return ""
	},
	"TodoWrite": func(f toolFields) string {
		var todos []json.RawMessage
		if json.Unmarshal(f["todos"], &todos) != nil {
			return ""
		}
		return plural(len(todos), "item")
	},
	"NotebookEdit": func(f toolFields) string {
		nb := f.str("notebook_path")
		if nb == "" {
			return ""
		}
		if mode := f.str("edit_mode"); mode != "" {
			return mode + " - " + filepath.Base(nb)
		}
		return filepath.Base(nb)
	},
}

func patternSummary(f toolFields) string {
	p := f.str("pattern")
	if p == "" {
		return ""
	}
	s := `"` + Truncate(p, 30) + `"`
	if g := f.str("glob"); g != "" {
		return s + " in " + g
	}
	if dir := f.str("path"); dir != "" {
		return s + " in " + filepath.Base(dir)
	}
	return s
}

func agentSummary(f toolFields) string {
	desc := f.str("description")
	if desc == "" {
		desc = f.str("prompt")
	}
	kind := f.str("subagent_type")
	switch {
	case kind != "" && desc != "":
		return kind + " - " + Truncate(desc, 40)
	case desc != "":
		return Truncate(desc, 40)
	}
	return kind
}

// ToolSummary returns a one-line label for a tool_use block: the target
// file, command or query when the tool has one, else the tool name.
func ToolSummary(b ContentBlock) string {
	var f toolFields
	if len(b.ToolInput) == 0 || json.Unmarshal(b.ToolInput, &f) != nil {
		return b.ToolName
	}
	if fn, ok := toolSummarizers[b.ToolName]; ok {
		if s := fn(f); s != "" {
			return s
		}
		return b.ToolName
	}

	// Unknown and MCP tools: the first familiar key, then any string.
	for _, k := range []string{"file_path", "path", "command", "query", "url", "name"} {
		if v := f.str(k); v != "" {
			return Truncate(v, 50)
		}
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if v := f.str(k); v != "" {
			return Truncate(v, 40)
		}
	}
	return b.ToolName
}

// ShortPath returns the last n segments of a file path.
func ShortPath(path string, n int) string {
	segs := strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
	if len(segs) > n {
		segs = segs[len(segs)-n:]
	}
	return strings.Join(segs, "/")
}

// Truncate collapses newlines and shortens s to at most maxLen runes, the
// last being an ellipsis when anything was cut.
func Truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxLen || maxLen < 1 {
		return s
	}
	return string(r[:maxLen-1]) + ellipsis
}

// TruncateWord is Truncate that prefers to cut at a space within the last
// 20 runes.
func TruncateWord(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen || maxLen < 1 {
		return s
	}
	cut := maxLen - 1
	for i := cut; i >= max(cut-20, 0); i-- {
		if r[i] == ' ' {
			return string(r[:i]) + ellipsis
		}
	}
	return string(r[:cut]) + ellipsis
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
