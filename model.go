package main

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/kylesnowschwartz/claude-logview/config"
	"github.com/kylesnowschwartz/claude-logview/logging"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
	"github.com/sirupsen/logrus"
)

// Screen regions, in lines.
const (
	tabBarHeight     = 1
	statusBarHeight  = 1
	statsPanelHeight = 5
	logPaneHeight    = 7
)

const (
	wheelStep      = 3 // lines per mouse wheel notch
	horizontalStep = 8 // columns per left/right press
)

// overlay is the modal drawn over the conversation, if any.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlaySessions
)

type model struct {
	cfg      config.Config
	keys     keyMap
	theme    *theme
	renderer *entryRenderer
	logs     *logging.Buffer
	log      *viewstate.LogViewState
	stats    map[*viewstate.SessionViewState]*parser.SessionStats
	spinner  spinner.Model
	logger   *logrus.Entry

	// Source. sourcePath is empty for piped input. tail is the read
	// position of a file source until a watcher takes ownership of it.
	sourceName string
	sourcePath string
	tail       *fileTail
	feed       feed
	live       bool
	ongoing    bool
	malformed  int

	// View selection: one session, and within it the main conversation
	// (tab == "") or a sub-agent.
	sessionIdx int
	tab        string

	wrap       viewstate.WrapMode
	follow     bool
	showStats  bool
	statsScope parser.StatsScope
	showLogs   bool
	overlay    overlay

	picker       []pickerItem
	pickerCursor int
	pickerScroll int

	width  int
	height int
	flash  string
}

// newModel returns an empty viewer. Callers ingest the initial entries and
// attach a feed before starting the program.
func newModel(cfg config.Config, keys keyMap, th *theme, r *entryRenderer, logs *logging.Buffer) model {
	wrap := viewstate.Wrap
	if !cfg.LineWrap {
		wrap = viewstate.NoWrap
	}
	return model{
		cfg:       cfg,
		keys:      keys,
		theme:     th,
		renderer:  r,
		logs:      logs,
		log:       viewstate.NewLog(),
		stats:     make(map[*viewstate.SessionViewState]*parser.SessionStats),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(lipgloss.NewStyle().Foreground(th.Ongoing))),
		logger:    logging.Named("tui"),
		wrap:      wrap,
		follow:    cfg.Follow,
		showStats: cfg.ShowStats,
		width:     80,
		height:    24,
	}
}

func (m model) Init() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, waitForEntries(m.feed), waitForFeedErr(m.feed))
}

// Update dispatches msg, then lays out whatever the message changed, so
// every query in View and the next Update sees current heights.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.conv() // materializes a sub-agent tab before layout
	next.ensureLayout()
	return next, cmd
}

// -- Ingest -------------------------------------------------------------------

// ingest routes entries into the log and the per-session stats.
func (m *model) ingest(entries []parser.ConversationEntry) {
	for i := range entries {
		e := entries[i]
		if e.IsMalformed() {
			m.malformed++
			m.logger.WithFields(logrus.Fields{
				"line":  e.Malformed.LineNumber,
				"error": e.Malformed.Err,
			}).Warn("malformed line")
		}

		sess := routeEntry(m.log, e)
		m.statsFor(sess).Record(&e)
	}
	m.log.RecomputeStartLines()
	m.refreshOngoing()
}

// routeEntry adds e to l and returns the session that took it. Sub-agent
// transcripts are read from their own files, after the session log has
// moved on, so their entries go straight to the session that owns them
// instead of opening a new one.
func routeEntry(l *viewstate.LogViewState, e parser.ConversationEntry) *viewstate.SessionViewState {
	agent := e.AgentID()
	if agent != "" && e.SessionID() != "" {
		if s, ok := l.FindSession(e.SessionID()); ok {
			s.AddSubagentEntry(agent, e)
			return s
		}
	}
	l.AddEntry(e, agent)
	return l.CurrentSession()
}

// reset drops every entry and cached rendering before a reload.
func (m *model) reset() {
	m.log = viewstate.NewLog()
	m.stats = make(map[*viewstate.SessionViewState]*parser.SessionStats)
	m.renderer.cache.Purge()
	m.malformed = 0
	m.sessionIdx = 0
	m.tab = ""
}

func (m *model) statsFor(s *viewstate.SessionViewState) *parser.SessionStats {
	st, ok := m.stats[s]
	if !ok {
		st = parser.NewSessionStats()
		m.stats[s] = st
	}
	return st
}

// refreshOngoing recomputes the activity indicator from the newest session.
func (m *model) refreshOngoing() {
	m.ongoing = false
	if !m.live {
		return
	}
	if s := m.log.CurrentSession(); s != nil {
		views := s.Main().Entries()
		entries := make([]parser.ConversationEntry, len(views))
		for i := range views {
			entries[i] = *views[i].Entry()
		}
		m.ongoing = parser.IsOngoing(entries)
	}
}

// -- Feeds --------------------------------------------------------------------

// attachFeed makes f the live source and returns the commands that listen
// to it.
func (m *model) attachFeed(f feed) tea.Cmd {
	m.feed = f
	m.live = true
	return tea.Batch(m.spinner.Tick, waitForEntries(f), waitForFeedErr(f))
}

// startWatcher hands the file tail to a new watcher goroutine.
func (m *model) startWatcher() tea.Cmd {
	if m.tail == nil || m.feed != nil {
		return nil
	}
	w := newSessionWatcher(m.tail)
	m.tail = nil
	go w.run()
	return m.attachFeed(w)
}

func (m *model) stopFeed() {
	if m.feed != nil {
		m.feed.Stop()
	}
	m.feed = nil
	m.live = false
	m.ongoing = false
}

// -- Selection and geometry ---------------------------------------------------

func (m *model) session() *viewstate.SessionViewState {
	s, _ := m.log.Session(m.sessionIdx)
	return s
}

// conv returns the conversation on screen, materializing a sub-agent on
// first view. Nil before any entry arrives.
func (m *model) conv() *viewstate.ConversationViewState {
	s := m.session()
	if s == nil {
		return nil
	}
	if m.tab == "" {
		return s.Main()
	}
	return s.Subagent(m.tab)
}

// tabs lists the conversations of the current session: "" for main, then
// sub-agents in arrival order.
func (m *model) tabs() []string {
	out := []string{""}
	if s := m.session(); s != nil {
		out = append(out, s.SubagentIDs()...)
	}
	return out
}

func (m *model) selectSession(i int) {
	if i < 0 || i >= m.log.SessionCount() {
		return
	}
	m.sessionIdx = i
	m.tab = ""
}

func (m *model) lastSession() int {
	return max(m.log.SessionCount()-1, 0)
}

func (m model) contentWidth() int {
	return max(m.width-gutterWidth, 1)
}

func (m model) contentHeight() int {
	h := m.height - tabBarHeight - statusBarHeight
	if m.showStats {
		h -= statsPanelHeight
	}
	if m.showLogs {
		h -= logPaneHeight
	}
	return max(h, 1)
}

func (m model) params() viewstate.LayoutParams {
	return viewstate.LayoutParams{Width: m.contentWidth(), GlobalWrap: m.wrap}
}

func (m model) calc() viewstate.HeightCalculator {
	return m.renderer.heightFunc(m.contentWidth())
}

// ensureLayout measures new entries and redoes every height after a width
// or wrap change. Pending sub-agents are left alone.
func (m *model) ensureLayout() {
	m.log.EnsureLayout(m.params(), m.calc())
}
