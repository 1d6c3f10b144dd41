package main

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
)

func (m model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// render stacks the screen regions: tab bar, conversation (or a modal in
// its place), optional stats and log panels, status bar.
func (m model) render() string {
	vh := m.contentHeight()
	var content string
	switch m.overlay {
	case overlayHelp:
		content = lipgloss.Place(m.width, vh, lipgloss.Center, lipgloss.Center, m.viewHelp())
	case overlaySessions:
		content = lipgloss.Place(m.width, vh, lipgloss.Center, lipgloss.Center, m.viewSessions())
	default:
		content = strings.Join(m.viewContent(), "\n")
	}

	parts := []string{m.viewTabBar(), content}
	if m.showStats {
		parts = append(parts, m.viewStats()...)
	}
	if m.showLogs {
		parts = append(parts, m.viewLogPane()...)
	}
	parts = append(parts, m.viewStatusBar())
	return strings.Join(parts, "\n")
}

func ansiTruncate(s string, width int) string {
	return ansi.Truncate(s, width, GlyphEllipsis)
}

// fitWidth truncates s to width and pads it so regions line up.
func fitWidth(s string, width int) string {
	if lipgloss.Width(s) > width {
		s = ansiTruncate(s, width)
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// -- Conversation -------------------------------------------------------------

// viewContent returns exactly contentHeight lines: the slice of the visible
// entries that falls inside the viewport, each line behind a focus gutter.
func (m model) viewContent() []string {
	vh := m.contentHeight()
	out := make([]string, 0, vh)

	c := m.conv()
	if c == nil || c.TotalHeight() == 0 {
		msg := "No entries."
		if m.live {
			msg = "Waiting for entries" + GlyphEllipsis
		}
		out = append(out, "", bodyIndent+m.theme.Dim.Render(msg))
	} else {
		width := m.contentWidth()
		r := c.VisibleRange(viewstate.NewViewport(width, vh))
		focused, hasFocus := c.Focused()
		hOff := c.HorizontalOffset()

		for i := r.Start; i < r.End && len(out) < vh; i++ {
			ev, ok := c.Entry(i)
			if !ok {
				break
			}
			wrap := ev.EffectiveWrap(m.wrap)
			lines := m.renderer.lines(ev.Entry(), width, ev.IsExpanded(), wrap)
			skip := 0
			if top := ev.Layout().CumulativeY; top < r.ScrollOffset {
				skip = int(r.ScrollOffset - top)
			}
			isFocused := hasFocus && focused == i
			for j := skip; j < len(lines) && len(out) < vh; j++ {
				gutter := "  "
				if isFocused && j < len(lines)-1 {
					gutter = m.theme.AccentBold.Render(IconFocus) + " "
				}
				out = append(out, gutter+clipLine(lines[j], wrap, hOff, width))
			}
		}
	}

	for len(out) < vh {
		out = append(out, "")
	}
	return out
}

// clipLine fits a rendered line to the content width. Unwrapped entries
// scroll horizontally; wrapped lines that still overflow (code blocks) are
// cut at the edge.
func clipLine(line string, wrap viewstate.WrapMode, hOff, width int) string {
	if wrap == viewstate.NoWrap {
		if hOff > 0 || ansi.StringWidth(line) > width {
			return ansi.Cut(line, hOff, hOff+width)
		}
		return line
	}
	if ansi.StringWidth(line) > width {
		return ansi.Truncate(line, width, "")
	}
	return line
}

// -- Tab bar ------------------------------------------------------------------

// viewTabBar lists the main conversation and every sub-agent of the
// session, with entry counts. The session position sits on the right.
func (m model) viewTabBar() string {
	t := m.theme
	s := m.session()
	if s == nil {
		return fitWidth(" "+t.AccentBold.Render("Main"), m.width)
	}

	var labels []string
	for i, id := range m.tabs() {
		var label string
		if id == "" {
			label = fmt.Sprintf("Main (%d)", s.Main().Len())
		} else {
			label = fmt.Sprintf("%s %s (%d)", IconSubagent, formatAgentName(id), s.SubagentEntryCount(id))
		}
		if i < 9 {
			label = fmt.Sprintf("%d:%s", i+1, label)
		}
		if id == m.tab {
			labels = append(labels, t.AccentBold.Underline(true).Render(label))
		} else {
			labels = append(labels, t.Secondary.Render(label))
		}
	}
	left := " " + strings.Join(labels, t.Muted.Render(" │ "))

	right := t.Dim.Render(fmt.Sprintf("session %d/%d %s ", m.sessionIdx+1, m.log.SessionCount(), formatSessionName(s.ID())))
	return fitWidth(spaceBetween(left, right, m.width), m.width)
}

// -- Status bar ---------------------------------------------------------------

func (m model) viewStatusBar() string {
	t := m.theme
	var left []string
	switch {
	case m.live && m.ongoing:
		left = append(left, m.spinner.View()+" "+lipgloss.NewStyle().Foreground(t.Ongoing).Render("live"))
	case m.live:
		left = append(left, lipgloss.NewStyle().Foreground(t.Ongoing).Render(IconDot+" live"))
	}
	left = append(left, t.SecondaryBold.Render(m.sourceName))
	if c := m.conv(); c != nil {
		vh := m.contentHeight()
		left = append(left, t.Dim.Render(scrollPercent(int(c.ResolveScroll(vh)), c.TotalHeight(), vh)))
	}
	left = append(left, t.Dim.Render(m.wrap.String()))
	if m.follow {
		left = append(left, t.AccentBold.Render(IconFollow+" follow"))
	}
	if m.malformed > 0 {
		left = append(left, t.ErrorBold.Render(fmt.Sprintf("%d malformed", m.malformed)))
	}
	if m.flash != "" {
		left = append(left, t.PrimaryBold.Render(m.flash))
	}

	return fitWidth(spaceBetween(" "+strings.Join(left, "  "), m.renderShortHelp()+" ", m.width), m.width)
}

// renderShortHelp renders "key desc" pairs for the enabled hint bindings.
func (m model) renderShortHelp() string {
	var parts []string
	for _, b := range m.keys.shortHelp() {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, m.theme.SecondaryBold.Render(h.Key)+" "+m.theme.Muted.Render(h.Desc))
	}
	return strings.Join(parts, m.theme.Muted.Render(" "+IconDot+" "))
}

// -- Help overlay -------------------------------------------------------------

func (m model) viewHelp() string {
	t := m.theme
	var cols []string
	for _, group := range m.keys.helpGroups() {
		keyWidth := 0
		for _, b := range group {
			keyWidth = max(keyWidth, lipgloss.Width(b.Help().Key))
		}
		var lines []string
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			lines = append(lines, helpLine(t, b, keyWidth))
		}
		cols = append(cols, strings.Join(lines, "\n"))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, spaced(cols)...)
	extra := t.Dim.Render("1-9 jump to tab " + IconDot + " click focuses, click again toggles")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2).
		Render(t.AccentBold.Render("Keys") + "\n\n" + body + "\n\n" + extra)
}

func helpLine(t *theme, b key.Binding, keyWidth int) string {
	h := b.Help()
	k := h.Key + strings.Repeat(" ", max(keyWidth-lipgloss.Width(h.Key), 0))
	return t.SecondaryBold.Render(k) + "  " + t.Dim.Render(h.Desc)
}

// spaced puts a four-column gap between help columns.
func spaced(cols []string) []string {
	out := make([]string, 0, len(cols)*2)
	for i, c := range cols {
		if i > 0 {
			out = append(out, "    ")
		}
		out = append(out, c)
	}
	return out
}
