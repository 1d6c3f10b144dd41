package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/kylesnowschwartz/claude-logview/parser"
)

// panelRule is the titled separator above a panel.
func (m model) panelRule(title string) string {
	label := " " + title + " "
	n := max(m.width-lipgloss.Width(label)-2, 0)
	return m.theme.Muted.Render(GlyphHRule+GlyphHRule) + m.theme.SecondaryBold.Render(label) +
		m.theme.Muted.Render(strings.Repeat(GlyphHRule, n))
}

// statsTitle names the panel after its scope. The sub-agent scope narrows
// to the open tab when that tab is a sub-agent.
func (m model) statsTitle() string {
	switch {
	case m.statsScope == parser.ScopeSubagents && m.tab != "":
		return "Stats " + IconDot + " " + IconSubagent + " " + m.tab
	case m.statsScope == parser.ScopeAll:
		return "Stats " + IconDot + " session"
	default:
		return "Stats " + IconDot + " " + m.statsScope.String()
	}
}

// viewStats renders the statistics panel for the session on screen:
// counts, cost, context usage, models, top tools and render cache
// efficiency.
func (m model) viewStats() []string {
	t := m.theme
	lines := []string{m.panelRule(m.statsTitle())}

	s := m.session()
	ss, ok := m.stats[s]
	if s == nil || !ok {
		lines = append(lines, " "+t.Dim.Render("No entries."))
	} else {
		st := ss.Scoped(m.statsScope, m.tab)
		first := fmt.Sprintf(" %s %d  %s %d  %s %s  %s %s",
			t.Dim.Render("entries"), st.Entries,
			t.Dim.Render("malformed"), st.Malformed,
			t.Dim.Render("tokens"), formatTokens(st.TotalTokens()),
			t.Dim.Render("cost"), m.costLabel(st))
		if pct := st.ContextPercent(m.cfg.MaxContextTokens); pct >= 0 {
			ctx := lipgloss.NewStyle().Foreground(t.contextColor(pct)).Render(fmt.Sprintf("%d%%", pct))
			first += fmt.Sprintf("  %s %s", t.Dim.Render("context"), ctx)
		}
		if d := st.Duration(); d > 0 {
			first += fmt.Sprintf("  %s %s", t.Dim.Render("duration"), formatDuration(d))
		}
		lines = append(lines, first)

		models := make([]string, 0, len(st.Models))
		for _, name := range st.Models {
			models = append(models, lipgloss.NewStyle().Foreground(t.modelColor(name)).Render(shortModel(name)))
		}
		if len(models) == 0 {
			models = append(models, t.Dim.Render("none"))
		}
		lines = append(lines, " "+t.Dim.Render("models ")+strings.Join(models, ", "))

		var tools []string
		for _, tc := range st.TopTools(5) {
			icon := lipgloss.NewStyle().Foreground(t.toolColor(tc.Name)).Render(toolIcon(tc.Name, false))
			tools = append(tools, fmt.Sprintf("%s %s %d", icon, tc.Name, tc.Count))
		}
		if len(tools) == 0 {
			tools = append(tools, t.Dim.Render("none"))
		}
		lines = append(lines, " "+t.Dim.Render("tools ")+strings.Join(tools, "  "))
	}

	hits, misses := m.renderer.cache.Stats()
	lines = append(lines, " "+t.Dim.Render(fmt.Sprintf("render cache %d/%d  hits %d  misses %d",
		m.renderer.cache.Len(), m.renderer.cache.Capacity(), hits, misses)))

	return fitPanel(lines, statsPanelHeight, m.width)
}

// costLabel prefers the cost a result record reported, which covers the
// whole session. Estimates from token counts carry a "~".
func (m model) costLabel(st *parser.Stats) string {
	if st.HasActualCost && m.statsScope == parser.ScopeAll {
		return formatCost(st.ActualCost)
	}
	return "~" + formatCost(st.EstimatedCost(m.renderer.pricing))
}

// viewLogPane renders the newest diagnostic log lines.
func (m model) viewLogPane() []string {
	lines := []string{m.panelRule("Log")}
	var recent []string
	if m.logs != nil {
		recent = m.logs.Lines()
	}
	if keep := logPaneHeight - 1; len(recent) > keep {
		recent = recent[len(recent)-keep:]
	}
	for _, l := range recent {
		lines = append(lines, " "+m.theme.Dim.Render(l))
	}
	return fitPanel(lines, logPaneHeight, m.width)
}

// fitPanel pads or trims lines to exactly height rows of width columns.
func fitPanel(lines []string, height, width int) []string {
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = fitWidth(l, width)
	}
	return lines
}
