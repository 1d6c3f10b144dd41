package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

// shortModel turns "claude-opus-4-6" into "opus4.6".
func shortModel(m string) string {
	m = strings.TrimPrefix(m, "claude-")
	parts := strings.SplitN(m, "-", 2)
	if len(parts) == 2 {
		modelFamily := parts[0]
		// Keep major-minor only, drop patch/build metadata (e.g. "4-6-20250101" -> "4-6").
		vParts := strings.SplitN(parts[1], "-", 3)
		modelVersion := vParts[0]
		if len(vParts) >= 2 {
			modelVersion = vParts[0] + "-" + vParts[1]
		}
		return modelFamily + strings.ReplaceAll(modelVersion, "-", ".")
	}
	return m
}

// formatTime renders a timestamp for the entry header.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("3:04:05 PM")
}

// formatTokens formats a token count for display: 1234 -> "1.2k", 123456 -> "123.5k", 1234567 -> "1.2M"
func formatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// formatCost renders a USD amount with cent precision: 0.0234 -> "$0.02".
func formatCost(usd float64) string {
	return fmt.Sprintf("$%.2f", usd)
}

// formatDuration renders a duration compactly: "1h 2m", "1m 11s", "3.5s".
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	case secs >= 60:
		mins := int(secs) / 60
		rem := int(secs) % 60
		return fmt.Sprintf("%dm %ds", mins, rem)
	case secs >= 10:
		return fmt.Sprintf("%.0fs", secs)
	default:
		return fmt.Sprintf("%.1fs", secs)
	}
}

// formatSessionName formats a session ID for compact display.
// Standard UUIDs (8-4-4-4-12 hex with dashes = 36 chars) show only the first
// group (8 chars), enough to distinguish sessions without burning line width.
// Other ids show up to 20 characters.
func formatSessionName(id string) string {
	if id == "" {
		return "(no id)"
	}
	if len(id) == 36 && id[8] == '-' && id[13] == '-' && id[18] == '-' && id[23] == '-' {
		return id[:8]
	}
	return parser.TruncateWord(id, 20)
}

// formatAgentName shortens a sub-agent id for a tab label.
func formatAgentName(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// scrollPercent renders the scroll position as "Top", "Bot", "All" or "NN%".
func scrollPercent(offset, total, height int) string {
	maxOff := total - height
	switch {
	case maxOff <= 0:
		return "All"
	case offset <= 0:
		return "Top"
	case offset >= maxOff:
		return "Bot"
	default:
		return fmt.Sprintf("%d%%", offset*100/maxOff)
	}
}
