package main

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/kylesnowschwartz/claude-logview/parser"
)

// --- Flattened virtual list ---

// pickerItemType discriminates between session rows and group headers.
type pickerItemType int

const (
	pickerItemSession pickerItemType = iota
	pickerItemHeader
)

// pickerItem is an entry in the flattened session list.
type pickerItem struct {
	typ      pickerItemType
	index    int                 // session index in the log; unset for headers
	category parser.DateCategory // set for headers
}

// buildPickerItems flattens the log's sessions into date headers and
// session rows, newest session first.
func buildPickerItems(starts []time.Time, now time.Time) []pickerItem {
	n := len(starts)
	newestFirst := make([]time.Time, n)
	for i := range starts {
		newestFirst[i] = starts[n-1-i]
	}

	var items []pickerItem
	for _, g := range parser.GroupByDate(newestFirst, now) {
		items = append(items, pickerItem{typ: pickerItemHeader, category: g.Category})
		for _, j := range g.Indices {
			items = append(items, pickerItem{typ: pickerItemSession, index: n - 1 - j})
		}
	}
	return items
}

// openSessions shows the session list with the cursor on the session being
// viewed.
func (m *model) openSessions() {
	sessions := m.log.Sessions()
	starts := make([]time.Time, len(sessions))
	for i, s := range sessions {
		starts[i] = s.StartTime()
	}
	m.picker = buildPickerItems(starts, time.Now())
	m.pickerCursor = 0
	m.pickerScroll = 0
	for i, it := range m.picker {
		if it.typ == pickerItemSession && it.index == m.sessionIdx {
			m.pickerCursor = i
			break
		}
	}
	m.pickerCursorFirstIfHeader()
	m.overlay = overlaySessions
	m.ensurePickerVisible()
}

// --- Picker update ---

// updateSessions handles key events while the session list is open.
func (m model) updateSessions(msg tea.KeyPressMsg) (model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Close, k.Sessions), msg.String() == "q":
		m.overlay = overlayNone
	case key.Matches(msg, k.Quit):
		m.stopFeed()
		return m, tea.Quit
	case key.Matches(msg, k.Down):
		m.pickerCursorDown()
	case key.Matches(msg, k.Up):
		m.pickerCursorUp()
	case key.Matches(msg, k.Top):
		m.pickerCursorFirst()
	case key.Matches(msg, k.Bottom):
		m.pickerCursorLast()
	case key.Matches(msg, k.Toggle):
		if m.pickerCursor < len(m.picker) && m.picker[m.pickerCursor].typ == pickerItemSession {
			m.selectSession(m.picker[m.pickerCursor].index)
		}
		m.overlay = overlayNone
		return m, nil
	}
	m.ensurePickerVisible()
	return m, nil
}

// pickerCursorDown moves cursor to next session item (skipping headers).
func (m *model) pickerCursorDown() {
	for i := m.pickerCursor + 1; i < len(m.picker); i++ {
		if m.picker[i].typ == pickerItemSession {
			m.pickerCursor = i
			return
		}
	}
}

// pickerCursorUp moves cursor to previous session item (skipping headers).
func (m *model) pickerCursorUp() {
	for i := m.pickerCursor - 1; i >= 0; i-- {
		if m.picker[i].typ == pickerItemSession {
			m.pickerCursor = i
			return
		}
	}
}

// pickerCursorLast moves cursor to the last session item.
func (m *model) pickerCursorLast() {
	for i := len(m.picker) - 1; i >= 0; i-- {
		if m.picker[i].typ == pickerItemSession {
			m.pickerCursor = i
			return
		}
	}
}

// pickerCursorFirst moves cursor to the first session item.
func (m *model) pickerCursorFirst() {
	m.pickerScroll = 0
	for i := 0; i < len(m.picker); i++ {
		if m.picker[i].typ == pickerItemSession {
			m.pickerCursor = i
			return
		}
	}
}

func (m *model) pickerCursorFirstIfHeader() {
	if m.pickerCursor < len(m.picker) && m.picker[m.pickerCursor].typ == pickerItemHeader {
		m.pickerCursorDown()
	}
}

// pickerItemHeight is 1 for rows; headers after the first get a blank line
// above them.
func (m model) pickerItemHeight(index int) int {
	if m.picker[index].typ == pickerItemHeader && index > 0 {
		return 2
	}
	return 1
}

// pickerViewHeight is the number of list lines inside the modal.
func (m model) pickerViewHeight() int {
	return max(m.contentHeight()-4, 1) // border (2) + title (1) + gap (1)
}

// ensurePickerVisible adjusts pickerScroll so the cursor is visible.
func (m *model) ensurePickerVisible() {
	viewHeight := m.pickerViewHeight()

	cursorLineStart := 0
	for i := 0; i < m.pickerCursor && i < len(m.picker); i++ {
		cursorLineStart += m.pickerItemHeight(i)
	}
	cursorLineEnd := cursorLineStart
	if m.pickerCursor < len(m.picker) {
		cursorLineEnd += m.pickerItemHeight(m.pickerCursor) - 1
	}

	if cursorLineStart < m.pickerScroll {
		m.pickerScroll = cursorLineStart
	}
	if cursorLineEnd >= m.pickerScroll+viewHeight {
		m.pickerScroll = cursorLineEnd - viewHeight + 1
	}
}

// --- Picker view ---

// viewSessions renders the session list as a modal box.
func (m model) viewSessions() string {
	t := m.theme
	width := min(max(m.width-8, 20), 80)
	inner := width - 4 // border + padding

	header := t.AccentBold.Render("Sessions") + " " +
		t.Dim.Render(fmt.Sprintf("(%d)", m.log.SessionCount()))

	var allLines []string
	for i, item := range m.picker {
		switch item.typ {
		case pickerItemHeader:
			if i > 0 {
				allLines = append(allLines, "")
			}
			allLines = append(allLines, m.renderPickerHeader(item.category, inner))
		case pickerItemSession:
			allLines = append(allLines, m.renderPickerSession(item.index, i == m.pickerCursor, inner))
		}
	}
	if len(allLines) == 0 {
		allLines = []string{t.Dim.Render("No sessions yet.")}
	}

	start := min(m.pickerScroll, len(allLines))
	visible := allLines[start:]
	if vh := m.pickerViewHeight(); len(visible) > vh {
		visible = visible[:vh]
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(width).
		Render(header + "\n\n" + strings.Join(visible, "\n"))
}

// renderPickerHeader renders a date group header with underline rule.
func (m model) renderPickerHeader(category parser.DateCategory, width int) string {
	label := m.theme.SecondaryBold.Render(string(category))
	ruleLen := max(width-lipgloss.Width(label)-1, 0)
	return label + " " + m.theme.Muted.Render(strings.Repeat(GlyphHRule, ruleLen))
}

// renderPickerSession renders one session row. The cursor row gets a
// background band; the session on screen is marked.
func (m model) renderPickerSession(index int, isSelected bool, width int) string {
	t := m.theme
	s, ok := m.log.Session(index)
	if !ok {
		return ""
	}

	marker := "  "
	if index == m.sessionIdx {
		marker = t.AccentBold.Render(IconFocus) + " "
	}
	name := t.PrimaryBold.Render(formatSessionName(s.ID()))
	left := marker + name
	if ts := formatTime(s.StartTime()); ts != "" {
		left += t.Dim.Render(" " + IconDot + " " + ts)
	}

	right := fmt.Sprintf("%d entries", s.EntryCount())
	if n := len(s.SubagentIDs()); n > 0 {
		right += fmt.Sprintf(" %s %d agents", IconDot, n)
	}
	if st, ok := m.stats[s]; ok && len(st.All.Models) > 0 {
		right += " " + IconDot + " " + shortModel(st.All.Models[0])
	}
	row := spaceBetween(left, t.Secondary.Render(right), width)
	if lipgloss.Width(row) > width {
		row = ansiTruncate(row, width)
	}
	if isSelected {
		row = lipgloss.NewStyle().Background(t.SelectedBg).Width(width).Render(row)
	}
	return row
}
