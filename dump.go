package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/kylesnowschwartz/claude-logview/config"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
	"golang.org/x/term"
)

// runDump renders entries without the TUI. Colors are downsampled to what
// out supports; a pipe gets plain text.
func runDump(out io.Writer, cfg config.Config, entries []parser.ConversationEntry, width int, expand bool) error {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	dark := true
	if tty {
		dark = resolveDark(cfg.Theme)
	}

	w := colorprofile.NewWriter(out, os.Environ())
	r := newEntryRenderer(newTheme(dark), newMDRenderer(dark, !tty), newJSONHL(dark, w.Profile),
		viewstate.NewRenderCache(cfg.RenderCacheCapacity), cfg.CollapseThreshold, cfg.SummaryLines)
	r.setUsageRates(cfg.PricingTable(), cfg.MaxContextTokens)

	wrap := viewstate.Wrap
	if !cfg.LineWrap {
		wrap = viewstate.NoWrap
	}
	return dumpLog(w, buildLog(entries), r, viewstate.LayoutParams{Width: width, GlobalWrap: wrap}, expand)
}

// buildLog routes entries the same way the viewer does.
func buildLog(entries []parser.ConversationEntry) *viewstate.LogViewState {
	l := viewstate.NewLog()
	for _, e := range entries {
		routeEntry(l, e)
	}
	return l
}

// dumpLog writes each session with a summary header: its main conversation
// followed by every sub-agent. Every sub-agent is materialized, so the
// header line counts are exact.
func dumpLog(out io.Writer, l *viewstate.LogViewState, r *entryRenderer, params viewstate.LayoutParams, expand bool) error {
	calc := r.heightFunc(params.Width)
	for _, s := range l.Sessions() {
		for _, id := range s.SubagentIDs() {
			s.Subagent(id)
		}
	}
	l.EnsureLayout(params, calc)
	if expand {
		for _, s := range l.Sessions() {
			s.Main().SetAllExpanded(true, params, calc)
			for _, id := range s.SubagentIDs() {
				s.Subagent(id).SetAllExpanded(true, params, calc)
			}
		}
	}
	l.RecomputeStartLines()

	bw := bufio.NewWriter(out)
	th := r.theme
	for i, s := range l.Sessions() {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		head := fmt.Sprintf("%s session %s %s %d entries %s lines %d-%d",
			GlyphHRule+GlyphHRule, formatSessionName(s.ID()), IconDot, s.EntryCount(), IconDot,
			s.StartLine()+1, int(s.StartLine())+s.TotalHeight())
		fmt.Fprintln(bw, th.AccentBold.Render(head))
		fmt.Fprintln(bw)
		writeConversation(bw, s.Main(), r, params)

		for _, id := range s.SubagentIDs() {
			c := s.Subagent(id)
			fmt.Fprintln(bw, th.SecondaryBold.Render(fmt.Sprintf("%s agent %s (%d entries)", IconSubagent, formatAgentName(id), c.Len())))
			fmt.Fprintln(bw)
			writeConversation(bw, c, r, params)
		}
	}
	return bw.Flush()
}

func writeConversation(w io.Writer, c *viewstate.ConversationViewState, r *entryRenderer, params viewstate.LayoutParams) {
	for _, ev := range c.Entries() {
		for _, line := range r.lines(ev.Entry(), params.Width, ev.IsExpanded(), ev.EffectiveWrap(params.GlobalWrap)) {
			fmt.Fprintln(w, line)
		}
	}
}
