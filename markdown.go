package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// mdRenderer caches a glamour terminal renderer at a specific width.
// Recreates the renderer when the width changes.
type mdRenderer struct {
	style    ansi.StyleConfig
	renderer *glamour.TermRenderer
	width    int
}

// newMDRenderer picks the glamour style for the background. plain selects
// the escape-free style used when stdout is not a terminal.
func newMDRenderer(dark, plain bool) *mdRenderer {
	return &mdRenderer{style: markdownStyle(dark, plain)}
}

// markdownStyle returns the glamour style config with Document.Margin
// zeroed out so the entry gutter handles indentation.
func markdownStyle(dark, plain bool) ansi.StyleConfig {
	var style ansi.StyleConfig
	switch {
	case plain:
		style = styles.NoTTYStyleConfig
	case dark:
		style = styles.DarkStyleConfig
	default:
		style = styles.LightStyleConfig
	}
	style.Document.Margin = uintPtr(0)
	return style
}

func uintPtr(v uint) *uint { return &v }

// render renders markdown content for terminal display, trimmed of the
// blank lines glamour puts around a document. Returns the original content
// on error.
func (r *mdRenderer) render(content string, width int) string {
	if width <= 0 {
		return content
	}
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStyles(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		r.renderer = renderer
		r.width = width
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
