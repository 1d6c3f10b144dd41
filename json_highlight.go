package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
)

// jsonHL syntax-highlights JSON for tool inputs and results.
// Constructed once per theme, caches chroma objects, exposes a single method.
type jsonHL struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// newJSONHL creates a highlighter for the background and color profile.
// A nil formatter (NoTTY profile) disables highlighting.
func newJSONHL(dark bool, profile colorprofile.Profile) *jsonHL {
	styleName := "github"
	if dark {
		styleName = "dracula"
	}
	h := &jsonHL{
		lexer: chroma.Coalesce(lexers.Get("json")),
		style: styles.Get(styleName),
	}
	if name := chromaFormatter(profile); name != "" {
		h.formatter = formatters.Get(name)
	}
	return h
}

// detectProfile reads the color profile of stderr, which stays attached to
// the terminal even when stdout is piped.
func detectProfile() colorprofile.Profile {
	return colorprofile.Detect(os.Stderr, os.Environ())
}

// highlight pretty-prints s and returns it syntax-highlighted. Returns
// ("", false) for non-JSON input so the caller can fall back to plain
// rendering. Without a formatter the indented JSON comes back uncolored.
func (h *jsonHL) highlight(s string) (string, bool) {
	raw := []byte(s)
	if !json.Valid(raw) {
		return "", false
	}

	// Normalize formatting (idempotent on already-indented input).
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", false
	}
	indented := buf.String()
	if h.formatter == nil {
		return indented, true
	}

	iterator, err := h.lexer.Tokenise(nil, indented)
	if err != nil {
		return indented, true
	}

	var out bytes.Buffer
	if err := h.formatter.Format(&out, h.style, iterator); err != nil {
		return indented, true
	}
	return out.String(), true
}

// chromaFormatter maps colorprofile profiles to chroma terminal formatter
// names. Empty means no color.
func chromaFormatter(profile colorprofile.Profile) string {
	switch profile {
	case colorprofile.TrueColor:
		return "terminal16m"
	case colorprofile.ANSI256:
		return "terminal256"
	case colorprofile.ANSI:
		return "terminal16"
	case colorprofile.Ascii, colorprofile.NoTTY:
		return ""
	default:
		return "terminal"
	}
}
