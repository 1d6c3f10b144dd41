package main

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/kylesnowschwartz/claude-logview/config"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/muesli/termenv"
)

// -- Colors ---------------------------------------------------------------
// Every color is a light/dark pair picked once at startup.
// Light values: ANSI 0-15 for accents (palette-adaptive), 256-color for grays
// (predictable). ANSI 7/15 (white) are invisible on light backgrounds, never
// use them for light values.
//
// | Name          | Light | Dark  |
// |---------------|-------|-------|
// | TextPrimary   |   "0" | "252" |
// | TextSecondary |   "8" | "245" |
// | TextDim       | "242" | "243" |
// | TextMuted     | "245" | "240" |
// | Accent        |   "4" |  "75" |
// | Error         |   "1" | "196" |
// | Border        | "250" |  "60" |
// | ModelOpus     |   "1" | "204" |
// | ModelSonnet   |   "4" |  "75" |
// | ModelHaiku    |   "2" | "114" |
// | Ongoing       |   "2" |  "76" |
// | SelectedBg    | "254" | "237" |

// theme holds the resolved palette and the styles built from it.
type theme struct {
	dark bool

	TextPrimary   color.Color
	TextSecondary color.Color
	TextDim       color.Color
	TextMuted     color.Color
	Accent        color.Color
	Error         color.Color
	Border        color.Color
	ModelOpus     color.Color
	ModelSonnet   color.Color
	ModelHaiku    color.Color
	Ongoing       color.Color
	SelectedBg    color.Color
	ContextOk     color.Color
	ContextWarn   color.Color
	ContextCrit   color.Color

	tools map[parser.ToolCategory]color.Color

	PrimaryBold   lipgloss.Style
	Secondary     lipgloss.Style
	SecondaryBold lipgloss.Style
	Dim           lipgloss.Style
	Muted         lipgloss.Style
	AccentBold    lipgloss.Style
	ErrorBold     lipgloss.Style
	Thinking      lipgloss.Style
}

// newTheme builds the palette for a dark or light terminal.
func newTheme(dark bool) *theme {
	ld := lipgloss.LightDark(dark)
	c := func(light, darkValue string) color.Color {
		return ld(lipgloss.Color(light), lipgloss.Color(darkValue))
	}

	t := &theme{
		dark:          dark,
		TextPrimary:   c("0", "252"),
		TextSecondary: c("8", "245"),
		TextDim:       c("242", "243"),
		TextMuted:     c("245", "240"),
		Accent:        c("4", "75"),
		Error:         c("1", "196"),
		Border:        c("250", "60"),
		ModelOpus:     c("1", "204"),
		ModelSonnet:   c("4", "75"),
		ModelHaiku:    c("2", "114"),
		Ongoing:       c("2", "76"),
		SelectedBg:    c("254", "237"),
		ContextOk:     c("2", "114"),
		ContextWarn:   c("3", "208"),
		ContextCrit:   c("1", "196"),
		tools: map[parser.ToolCategory]color.Color{
			parser.CategoryRead:  lipgloss.Color("33"),
			parser.CategoryEdit:  lipgloss.Color("214"),
			parser.CategoryWrite: lipgloss.Color("35"),
			parser.CategoryBash:  lipgloss.Color("196"),
			parser.CategoryGrep:  lipgloss.Color("99"),
			parser.CategoryGlob:  lipgloss.Color("37"),
			parser.CategoryTask:  lipgloss.Color("205"),
			parser.CategoryWeb:   lipgloss.Color("33"),
		},
	}

	t.PrimaryBold = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Secondary = lipgloss.NewStyle().Foreground(t.TextSecondary)
	t.SecondaryBold = lipgloss.NewStyle().Bold(true).Foreground(t.TextSecondary)
	t.Dim = lipgloss.NewStyle().Foreground(t.TextDim)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.AccentBold = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.ErrorBold = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	t.Thinking = lipgloss.NewStyle().Italic(true).Foreground(t.TextDim)
	return t
}

// resolveDark maps the configured theme to a background choice. "auto"
// queries the terminal.
func resolveDark(setting string) bool {
	switch setting {
	case config.ThemeDark:
		return true
	case config.ThemeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// modelColor returns a color based on the Claude model family.
func (t *theme) modelColor(model string) color.Color {
	switch {
	case strings.Contains(model, "opus"):
		return t.ModelOpus
	case strings.Contains(model, "sonnet"):
		return t.ModelSonnet
	case strings.Contains(model, "haiku"):
		return t.ModelHaiku
	default:
		return t.TextSecondary
	}
}

// toolColor returns the icon color for a tool's category.
func (t *theme) toolColor(name string) color.Color {
	if c, ok := t.tools[parser.CategorizeToolName(name)]; ok {
		return c
	}
	return t.TextSecondary
}

// contextColor grades a context usage percentage.
func (t *theme) contextColor(pct int) color.Color {
	switch {
	case pct >= 80:
		return t.ContextCrit
	case pct >= 50:
		return t.ContextWarn
	default:
		return t.ContextOk
	}
}
