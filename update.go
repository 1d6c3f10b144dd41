package main

import (
	"fmt"
	"strconv"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
)

// clipboardMsg reports the outcome of a copy.
type clipboardMsg struct {
	err error
}

// copyCmd writes text to the system clipboard off the UI goroutine.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(text)}
	}
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if c := m.conv(); c != nil {
			c.AnchorScroll(m.contentHeight())
		}
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		m.flash = ""
		switch m.overlay {
		case overlayHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Close, m.keys.Quit) {
				m.overlay = overlayNone
			}
			return m, nil
		case overlaySessions:
			return m.updateSessions(msg)
		}
		return m.updateKey(msg)

	case tea.MouseWheelMsg:
		return m.updateWheel(msg.Mouse())

	case tea.MouseClickMsg:
		return m.updateClick(msg.Mouse())

	case entriesMsg:
		if msg.src != m.feed {
			return m, nil
		}
		m.applyEntries(msg.entries)
		return m, waitForEntries(m.feed)

	case feedClosedMsg:
		if msg.src == m.feed {
			m.logger.Info("feed closed")
			m.feed = nil
			m.live = false
			m.ongoing = false
		}
		return m, nil

	case feedErrMsg:
		if msg.src != m.feed {
			return m, nil
		}
		m.flash = "error: " + msg.err.Error()
		return m, waitForFeedErr(m.feed)

	case reloadedMsg:
		return m.applyReload(msg)

	case clipboardMsg:
		if msg.err != nil {
			m.logger.WithError(msg.err).Warn("copy failed")
			m.flash = "copy failed: " + msg.err.Error()
		} else {
			m.flash = "copied entry"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.live {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyEntries ingests a live batch. In follow mode a viewer parked on the
// newest session moves to a session that just opened, and a viewer at the
// bottom stays there.
func (m *model) applyEntries(entries []parser.ConversationEntry) {
	vh := m.contentHeight()
	onLast := m.sessionIdx >= m.log.SessionCount()-1
	atBottom := true
	if c := m.conv(); c != nil {
		atBottom = c.IsAtBottom(vh)
	}

	m.ingest(entries)

	if !m.follow {
		return
	}
	if onLast && m.sessionIdx != m.lastSession() {
		m.selectSession(m.lastSession())
		atBottom = true
	}
	if c := m.conv(); c != nil && atBottom {
		c.SetScroll(viewstate.Bottom{})
	}
}

func (m model) applyReload(msg reloadedMsg) (model, tea.Cmd) {
	if msg.err != nil {
		m.logger.WithError(msg.err).Warn("reload")
		m.flash = "reload: " + msg.err.Error()
		if len(msg.entries) == 0 {
			return m, nil
		}
	}
	prevSession, prevTab := m.sessionIdx, m.tab
	m.reset()
	m.tail = msg.tail
	m.ingest(msg.entries)
	m.logger.WithField("entries", len(msg.entries)).Info("reloaded")

	if m.follow || prevSession >= m.log.SessionCount() {
		m.selectSession(m.lastSession())
	} else {
		m.selectSession(prevSession)
		if s := m.session(); s != nil && prevTab != "" && s.HasSubagent(prevTab) {
			m.tab = prevTab
		}
	}
	if m.flash == "" {
		m.flash = fmt.Sprintf("reloaded %d entries", len(msg.entries))
	}
	if !m.follow {
		return m, nil
	}
	if c := m.conv(); c != nil {
		c.SetScroll(viewstate.Bottom{})
	}
	cmd := m.startWatcher()
	return m, cmd
}

// -- Keys ---------------------------------------------------------------------

func (m model) updateKey(msg tea.KeyPressMsg) (model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.stopFeed()
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, k.Sessions):
		m.openSessions()
		return m, nil
	case key.Matches(msg, k.Stats):
		m.showStats = !m.showStats
		return m, nil
	case key.Matches(msg, k.StatsScope):
		m.statsScope = m.statsScope.Next()
		m.showStats = true
		return m, nil
	case key.Matches(msg, k.Logs):
		m.showLogs = !m.showLogs
		return m, nil
	case key.Matches(msg, k.Follow):
		cmd := m.setFollow(!m.follow)
		return m, cmd
	case key.Matches(msg, k.Refresh):
		return m.refresh()
	case key.Matches(msg, k.NextTab):
		m.cycleTab(1)
		return m, nil
	case key.Matches(msg, k.PrevTab):
		m.cycleTab(-1)
		return m, nil
	case key.Matches(msg, k.WrapAll):
		if c := m.conv(); c != nil {
			c.AnchorScroll(m.contentHeight())
		}
		m.wrap = m.wrap.Toggle()
		m.flash = "wrap: " + m.wrap.String()
		return m, nil
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		n, _ := strconv.Atoi(s)
		if tabs := m.tabs(); n <= len(tabs) {
			m.tab = tabs[n-1]
		}
		return m, nil
	}

	c := m.conv()
	if c == nil {
		return m, nil
	}
	vh := m.contentHeight()

	switch {
	case key.Matches(msg, k.Down):
		c.ScrollBy(1, vh)
	case key.Matches(msg, k.Up):
		c.ScrollBy(-1, vh)
	case key.Matches(msg, k.PageDown):
		c.PageDown(vh)
	case key.Matches(msg, k.PageUp):
		c.PageUp(vh)
	case key.Matches(msg, k.Top):
		c.SetScroll(viewstate.Top{})
	case key.Matches(msg, k.Bottom):
		m.scrollToBottom(c)
		return m, nil
	case key.Matches(msg, k.Left):
		c.ScrollLeft(horizontalStep)
		return m, nil
	case key.Matches(msg, k.Right):
		c.ScrollRight(horizontalStep)
		return m, nil
	case key.Matches(msg, k.NextEntry):
		c.FocusNext()
		c.EnsureFocusVisible(vh)
	case key.Matches(msg, k.PrevEntry):
		c.FocusPrev()
		c.EnsureFocusVisible(vh)
	case key.Matches(msg, k.Toggle):
		if i, ok := m.focusTarget(c); ok {
			m.toggleEntry(c, i)
		}
	case key.Matches(msg, k.ExpandAll):
		c.AnchorScroll(vh)
		c.SetAllExpanded(true, m.params(), m.calc())
		m.log.RecomputeStartLines()
	case key.Matches(msg, k.CollapseAll):
		c.AnchorScroll(vh)
		c.SetAllExpanded(false, m.params(), m.calc())
		m.log.RecomputeStartLines()
	case key.Matches(msg, k.WrapEntry):
		if i, ok := m.focusTarget(c); ok {
			m.toggleEntryWrap(c, i)
		}
	case key.Matches(msg, k.Copy):
		if i, ok := m.focusTarget(c); ok {
			if ev, ok := c.Entry(i); ok {
				return m, copyCmd(ev.Entry().Text())
			}
		}
		return m, nil
	case key.Matches(msg, k.Close):
		c.ClearFocus()
		return m, nil
	default:
		return m, nil
	}
	m.pinIfAtBottom(c)
	return m, nil
}

// scrollToBottom jumps to the last page. In follow mode the position stays
// pinned to the bottom as entries arrive.
func (m *model) scrollToBottom(c *viewstate.ConversationViewState) {
	if m.follow {
		c.SetScroll(viewstate.Bottom{})
		return
	}
	c.SetScroll(viewstate.AtLine{Offset: viewstate.MaxOffset(c.TotalHeight(), m.contentHeight())})
}

// pinIfAtBottom re-arms following after a manual scroll lands on the last
// page.
func (m *model) pinIfAtBottom(c *viewstate.ConversationViewState) {
	if m.follow && c.IsAtBottom(m.contentHeight()) {
		c.SetScroll(viewstate.Bottom{})
	}
}

// setFollow switches follow mode. Turning it on jumps to the bottom of the
// newest session and starts watching a file source.
func (m *model) setFollow(on bool) tea.Cmd {
	m.follow = on
	vh := m.contentHeight()
	if !on {
		m.flash = "follow off"
		if c := m.conv(); c != nil {
			// Freeze the resolved offset so new entries no longer move it.
			c.ScrollBy(0, vh)
		}
		return nil
	}
	m.flash = "follow on"
	if m.sessionIdx != m.lastSession() {
		m.selectSession(m.lastSession())
	}
	if c := m.conv(); c != nil {
		c.SetScroll(viewstate.Bottom{})
	}
	return m.startWatcher()
}

func (m model) refresh() (model, tea.Cmd) {
	if m.sourcePath == "" {
		m.flash = "piped input cannot be reloaded"
		return m, nil
	}
	m.stopFeed()
	m.flash = "reloading" + GlyphEllipsis
	return m, reloadCmd(m.sourcePath)
}

func (m *model) cycleTab(delta int) {
	tabs := m.tabs()
	cur := 0
	for i, id := range tabs {
		if id == m.tab {
			cur = i
			break
		}
	}
	next := (cur + delta + len(tabs)) % len(tabs)
	m.tab = tabs[next]
}

// focusTarget returns the focused entry, or focuses the first visible entry
// that renders anything.
func (m *model) focusTarget(c *viewstate.ConversationViewState) (viewstate.EntryIndex, bool) {
	if i, ok := c.Focused(); ok {
		return i, true
	}
	r := c.VisibleRange(viewstate.NewViewport(m.contentWidth(), m.contentHeight()))
	for i := r.Start; i < r.End; i++ {
		if h, ok := c.EntryHeight(i); ok && !h.IsZero() {
			c.SetFocus(i)
			return i, true
		}
	}
	return 0, false
}

// toggleEntry expands or collapses entry i, keeping the line at the top of
// the viewport in place.
func (m *model) toggleEntry(c *viewstate.ConversationViewState, i viewstate.EntryIndex) {
	c.AnchorScroll(m.contentHeight())
	c.ToggleExpand(i, m.params(), m.calc())
	m.log.RecomputeStartLines()
}

// toggleEntryWrap gives entry i the opposite of the global wrap mode, or
// drops an existing override.
func (m *model) toggleEntryWrap(c *viewstate.ConversationViewState, i viewstate.EntryIndex) {
	ev, ok := c.Entry(i)
	if !ok {
		return
	}
	c.AnchorScroll(m.contentHeight())
	if _, has := ev.WrapOverride(); has {
		c.SetWrapOverride(i, nil, m.params(), m.calc())
	} else {
		mode := m.wrap.Toggle()
		c.SetWrapOverride(i, &mode, m.params(), m.calc())
	}
	m.log.RecomputeStartLines()
}

// -- Mouse --------------------------------------------------------------------

func (m model) updateWheel(mouse tea.Mouse) (model, tea.Cmd) {
	c := m.conv()
	if c == nil || m.overlay != overlayNone {
		return m, nil
	}
	switch mouse.Button {
	case tea.MouseWheelUp:
		c.ScrollBy(-wheelStep, m.contentHeight())
	case tea.MouseWheelDown:
		c.ScrollBy(wheelStep, m.contentHeight())
		m.pinIfAtBottom(c)
	}
	return m, nil
}

// updateClick focuses the clicked entry; a second click on the focused
// entry toggles it.
func (m model) updateClick(mouse tea.Mouse) (model, tea.Cmd) {
	c := m.conv()
	if c == nil || m.overlay != overlayNone || mouse.Button != tea.MouseLeft {
		return m, nil
	}
	vh := m.contentHeight()
	row := mouse.Y - tabBarHeight
	if row < 0 || row >= vh {
		return m, nil
	}
	hit, ok := c.HitTest(row, max(mouse.X-gutterWidth, 0), c.ResolveScroll(vh))
	if !ok {
		return m, nil
	}
	if cur, focused := c.Focused(); focused && cur == hit.Index {
		m.toggleEntry(c, hit.Index)
		return m, nil
	}
	c.SetFocus(hit.Index)
	return m, nil
}
