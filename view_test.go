package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
)

func screen(m model) []string {
	return strings.Split(ansi.Strip(m.render()), "\n")
}

func TestRender_FillsTerminal(t *testing.T) {
	m := testModel(shortEntries(3)...)
	lines := screen(m)
	if len(lines) != m.height {
		t.Fatalf("screen = %d lines, want %d", len(lines), m.height)
	}
	out := strings.Join(lines, "\n")
	for _, want := range []string{"1:Main (3)", "message 1", "message 3", "test.jsonl", "session 1/1"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen missing %q:\n%s", want, out)
		}
	}
}

func TestRender_WithPanels(t *testing.T) {
	m := testModel(shortEntries(3)...)
	m.height = 30
	m.showStats = true
	m.showLogs = true
	lines := screen(m)
	if len(lines) != 30 {
		t.Fatalf("screen = %d lines, want 30", len(lines))
	}
	out := strings.Join(lines, "\n")
	for _, want := range []string{"Stats", "render cache", "Log"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen missing %q:\n%s", want, out)
		}
	}
}

func TestViewContent_ExactHeight(t *testing.T) {
	tests := []struct {
		name    string
		entries int
	}{
		{"empty", 0},
		{"short", 1},
		{"overflowing", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(shortEntries(tt.entries)...)
			if got := len(m.viewContent()); got != m.contentHeight() {
				t.Errorf("viewContent() = %d lines, want %d", got, m.contentHeight())
			}
		})
	}
}

func TestViewContent_Placeholder(t *testing.T) {
	m := testModel()
	if got := ansi.Strip(strings.Join(m.viewContent(), "\n")); !strings.Contains(got, "No entries.") {
		t.Errorf("empty view = %q, want placeholder", got)
	}
	m.live = true
	if got := ansi.Strip(strings.Join(m.viewContent(), "\n")); !strings.Contains(got, "Waiting for entries") {
		t.Errorf("live empty view = %q, want waiting placeholder", got)
	}
}

func TestViewContent_StartsMidEntry(t *testing.T) {
	m := testModel(shortEntries(10)...)
	m.conv().SetScroll(viewstate.AtLine{Offset: 4})
	first := strings.TrimSpace(ansi.Strip(m.viewContent()[0]))
	if first != "message 2" {
		t.Errorf("first line = %q, want the body of entry 2", first)
	}
}

func TestViewContent_FocusGutter(t *testing.T) {
	m := testModel(shortEntries(3)...)
	m.conv().SetFocus(1)
	lines := m.viewContent()
	for i, l := range lines[:9] {
		plain := ansi.Strip(l)
		marked := strings.HasPrefix(plain, IconFocus)
		// Entry 1 occupies lines 3-5; its separator line stays unmarked.
		want := i == 3 || i == 4
		if marked != want {
			t.Errorf("line %d marked = %v, want %v (%q)", i, marked, want, plain)
		}
	}
}

func TestTabBar_Subagents(t *testing.T) {
	m := testModel(
		textEntry(1, "main"),
		textEntry(2, "agent", asAssistant, fromAgent("ag1")),
		textEntry(3, "agent", asAssistant, fromAgent("ag1")),
	)
	got := ansi.Strip(m.viewTabBar())
	if !strings.Contains(got, "1:Main (1)") {
		t.Errorf("tab bar = %q, want main tab", got)
	}
	if !strings.Contains(got, "2:"+IconSubagent+" ag1 (2)") {
		t.Errorf("tab bar = %q, want sub-agent tab", got)
	}
}

func TestStatusBar(t *testing.T) {
	m := testModel(shortEntries(10)...)
	m.follow = true
	m.malformed = 2
	m.flash = "copied entry"
	got := ansi.Strip(m.viewStatusBar())
	for _, want := range []string{"test.jsonl", "Top", "follow", "2 malformed", "copied entry"} {
		if !strings.Contains(got, want) {
			t.Errorf("status bar = %q, missing %q", got, want)
		}
	}
}

func TestHelpOverlayRender(t *testing.T) {
	m := press(testModel(shortEntries(3)...), "?")
	out := ansi.Strip(m.render())
	for _, want := range []string{"Keys", "expand/collapse", "jump to tab"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestClipLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		wrap  viewstate.WrapMode
		hOff  int
		width int
		want  string
	}{
		{"fits", "abc", viewstate.NoWrap, 0, 10, "abc"},
		{"horizontal offset", "abcdefghij", viewstate.NoWrap, 2, 4, "cdef"},
		{"overflow unwrapped", "abcdefghij", viewstate.NoWrap, 0, 4, "abcd"},
		{"overflow wrapped", "abcdefghij", viewstate.Wrap, 0, 4, "abcd"},
		{"offset past end", "abc", viewstate.NoWrap, 5, 4, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clipLine(tt.line, tt.wrap, tt.hOff, tt.width); got != tt.want {
				t.Errorf("clipLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFitWidth(t *testing.T) {
	if got := fitWidth("ab", 5); got != "ab   " {
		t.Errorf("fitWidth(pad) = %q", got)
	}
	if got := ansi.Strip(fitWidth("abcdefgh", 5)); got != "abcd"+GlyphEllipsis {
		t.Errorf("fitWidth(truncate) = %q", got)
	}
}
