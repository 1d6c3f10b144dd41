package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/kylesnowschwartz/claude-logview/config"
	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/kylesnowschwartz/claude-logview/viewstate"
)

// bodyIndent shifts entry bodies under their header.
const bodyIndent = "  "

// -- Helpers ------------------------------------------------------------------

// spaceBetween lays out left and right strings with gap-fill spacing to span width.
func spaceBetween(left, right string, width int) string {
	if right == "" {
		return left
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

// collapseLines caps lines at keep when there are more than threshold and
// returns the number of lines dropped. Returns (lines, 0) within the limit.
func collapseLines(lines []string, threshold, keep int) ([]string, int) {
	if len(lines) <= threshold {
		return lines, 0
	}
	keep = min(max(keep, 0), len(lines))
	return lines[:keep:keep], len(lines) - keep
}

// wrapText splits s into lines, soft-wrapping at width in Wrap mode. ANSI
// sequences are preserved and not counted.
func wrapText(s string, width int, wrap viewstate.WrapMode) []string {
	if wrap == viewstate.Wrap && width > 0 {
		s = ansi.Wrap(s, width, "")
	}
	return strings.Split(s, "\n")
}

// styleLines renders each line separately so a horizontal cut never splits
// an escape sequence across lines.
func styleLines(lines []string, style lipgloss.Style) []string {
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return lines
}

// isHidden reports whether an entry keeps its slot but renders nothing.
func isHidden(e *parser.ConversationEntry) bool {
	return e.IsMalformed() || parser.IsNoise(&e.Entry)
}

// roleLabel names the author of an entry for its header.
func roleLabel(e *parser.LogEntry) string {
	switch e.Type {
	case "assistant":
		if e.IsSidechain {
			return "Agent"
		}
		return "Claude"
	case "user":
		for _, b := range e.Blocks {
			if b.Type != parser.BlockToolResult {
				return "You"
			}
		}
		return "Tool result"
	case "system":
		return "System"
	case "summary":
		return "Summary"
	default:
		return e.Type
	}
}

// -- Entry rendering ----------------------------------------------------------

// entryRenderer turns entries into styled terminal lines. Every rendering
// goes through the cache, so the height calculator and the view share work.
type entryRenderer struct {
	theme             *theme
	md                *mdRenderer
	json              *jsonHL
	cache             *viewstate.RenderCache
	collapseThreshold int
	summaryLines      int
	pricing           parser.Pricing
	maxContext        int
}

func newEntryRenderer(th *theme, md *mdRenderer, hl *jsonHL, cache *viewstate.RenderCache, collapseThreshold, summaryLines int) *entryRenderer {
	return &entryRenderer{
		theme:             th,
		md:                md,
		json:              hl,
		cache:             cache,
		collapseThreshold: collapseThreshold,
		summaryLines:      summaryLines,
		pricing:           parser.DefaultPricing(),
		maxContext:        config.Default().MaxContextTokens,
	}
}

// setUsageRates sets what token dividers are priced and measured against.
// Renderings are cached without the rates, so this purges the cache.
func (r *entryRenderer) setUsageRates(p parser.Pricing, maxContext int) {
	r.pricing = p
	r.maxContext = maxContext
	r.cache.Purge()
}

// lines returns the rendering of e at width: a header, the body, a token
// divider for responses that report usage, and one blank separator. Hidden
// entries render no lines at all.
func (r *entryRenderer) lines(e *parser.ConversationEntry, width int, expanded bool, wrap viewstate.WrapMode) []string {
	if isHidden(e) {
		return nil
	}
	key := viewstate.RenderKey{EntryID: e.ID(), Width: width, Expanded: expanded, Wrap: wrap}
	return r.cache.GetOrRender(key, func() []string {
		return r.render(&e.Entry, width, expanded, wrap)
	})
}

// heightFunc returns the layout's height calculator for a content width.
// Heights are rendered line counts, so measuring warms the cache the view
// reads from.
func (r *entryRenderer) heightFunc(width int) viewstate.HeightCalculator {
	return func(e *parser.ConversationEntry, expanded bool, wrap viewstate.WrapMode) viewstate.LineHeight {
		return viewstate.HeightOf(len(r.lines(e, width, expanded, wrap)))
	}
}

func (r *entryRenderer) render(e *parser.LogEntry, width int, expanded bool, wrap viewstate.WrapMode) []string {
	body := r.body(e, width, expanded, wrap)
	collapsible := len(body) > r.collapseThreshold
	if !expanded {
		var hidden int
		body, hidden = collapseLines(body, r.collapseThreshold, r.summaryLines)
		if hidden > 0 {
			body = append(body, bodyIndent+r.theme.Dim.Render(fmt.Sprintf("%s %d more lines", GlyphEllipsis, hidden)))
		}
	}

	out := make([]string, 0, len(body)+3)
	out = append(out, r.header(e, width, collapsible, expanded))
	out = append(out, body...)
	if e.Usage.TotalTokens() > 0 {
		out = append(out, r.tokenDivider(e, width))
	}
	return append(out, "")
}

// charsPerToken approximates tokens for content the API does not count in
// output_tokens.
const charsPerToken = 4

// tokenDivider renders one response's usage:
//
//	── ↓600/800 ↑50/52 · $0.01 · context 850 (0%) ──
//
// Reads are non-cached (input + cache writes) over the total including cache
// reads. Writes are billed output over output plus an estimate for thinking
// and tool input. Context is everything this response saw and produced.
func (r *entryRenderer) tokenDivider(e *parser.LogEntry, width int) string {
	u := e.Usage
	readNew := u.InputTokens + u.CacheCreationTokens
	readAll := readNew + u.CacheReadTokens
	var estimated int
	for _, b := range e.Blocks {
		switch b.Type {
		case parser.BlockThinking:
			estimated += len(b.Text) / charsPerToken
		case parser.BlockToolUse:
			estimated += len(b.ToolInput) / charsPerToken
		}
	}
	ctx := readAll + u.OutputTokens

	text := fmt.Sprintf("%s%s ↓%s/%s ↑%s/%s %s %s %s context %s",
		GlyphHRule, GlyphHRule,
		formatTokens(readNew), formatTokens(readAll),
		formatTokens(u.OutputTokens), formatTokens(u.OutputTokens+estimated),
		IconDot, formatCost(r.pricing.Cost(e.Model, u)), IconDot, formatTokens(ctx))
	if r.maxContext > 0 {
		text += fmt.Sprintf(" (%d%%)", min(ctx*100/r.maxContext, 100))
	}
	text += " " + GlyphHRule + GlyphHRule

	line := bodyIndent + r.theme.Dim.Render(text)
	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, GlyphEllipsis)
	}
	return line
}

// header renders: icon, role, short model, local time, chevron, and the
// token count right-aligned.
func (r *entryRenderer) header(e *parser.LogEntry, width int, collapsible, expanded bool) string {
	t := r.theme
	iconColor := t.TextSecondary
	if e.Type == "assistant" {
		iconColor = t.Accent
	}
	left := lipgloss.NewStyle().Bold(true).Foreground(iconColor).Render(roleIcon(e.Type, e.IsSidechain)) +
		" " + t.PrimaryBold.Render(roleLabel(e))
	if e.Model != "" && e.Model != "<synthetic>" {
		left += " " + lipgloss.NewStyle().Foreground(t.modelColor(e.Model)).Render(shortModel(e.Model))
	}
	if ts := formatTime(e.Timestamp); ts != "" {
		left += t.Dim.Render(" " + IconDot + " " + ts)
	}
	if collapsible {
		chev := IconCollapsed
		if expanded {
			chev = IconExpanded
		}
		left += " " + t.Muted.Render(chev)
	}

	var right string
	if n := e.Usage.TotalTokens(); n > 0 {
		right = t.Secondary.Render(formatTokens(n) + " tok")
	}
	line := spaceBetween(left, right, width)
	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, GlyphEllipsis)
	}
	return line
}

// body renders every content block, indented under the header.
func (r *entryRenderer) body(e *parser.LogEntry, width int, expanded bool, wrap viewstate.WrapMode) []string {
	inner := max(width-len(bodyIndent), 1)
	var out []string
	for _, b := range e.Blocks {
		var block []string
		switch b.Type {
		case parser.BlockText:
			block = r.textBlock(e, b.Text, inner, wrap)
		case parser.BlockThinking:
			block = r.thinkingBlock(b.Text, inner, wrap)
		case parser.BlockToolUse:
			block = r.toolUseBlock(b, inner, expanded, wrap)
		case parser.BlockToolResult:
			block = r.toolResultBlock(b, inner, wrap)
		case parser.BlockImage:
			block = []string{r.theme.Dim.Render("[image]")}
		default:
			block = []string{r.theme.Dim.Render("[" + b.Type + "]")}
		}
		for _, l := range block {
			out = append(out, bodyIndent+l)
		}
	}
	return out
}

func (r *entryRenderer) textBlock(e *parser.LogEntry, s string, width int, wrap viewstate.WrapMode) []string {
	text := parser.SanitizeContent(s)
	if text == "" {
		return nil
	}
	switch {
	case e.Type == "summary" || e.Type == "system":
		return styleLines(wrapText(text, width, wrap), r.theme.Dim)
	case wrap == viewstate.Wrap:
		return strings.Split(r.md.render(text, width), "\n")
	default:
		return strings.Split(text, "\n")
	}
}

func (r *entryRenderer) thinkingBlock(s string, width int, wrap viewstate.WrapMode) []string {
	out := []string{r.theme.Dim.Render(IconThinking + " Thinking")}
	text := strings.TrimSpace(s)
	if text == "" {
		return out
	}
	return append(out, styleLines(wrapText(text, width, wrap), r.theme.Thinking)...)
}

// toolUseBlock renders "icon Name summary", plus the highlighted input when
// the entry is expanded.
func (r *entryRenderer) toolUseBlock(b parser.ContentBlock, width int, expanded bool, wrap viewstate.WrapMode) []string {
	t := r.theme
	icon := lipgloss.NewStyle().Foreground(t.toolColor(b.ToolName)).Render(toolIcon(b.ToolName, false))
	line := icon + " " + t.PrimaryBold.Render(b.ToolName)
	if s := parser.ToolSummary(b); s != "" && s != b.ToolName {
		line += " " + t.Secondary.Render(s)
	}
	if wrap == viewstate.Wrap && lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, GlyphEllipsis)
	}
	out := []string{line}
	if expanded && len(b.ToolInput) > 0 {
		out = append(out, r.jsonLines(string(b.ToolInput), width, wrap)...)
	}
	return out
}

func (r *entryRenderer) toolResultBlock(b parser.ContentBlock, width int, wrap viewstate.WrapMode) []string {
	t := r.theme
	head := t.Dim.Render(IconResult + " result")
	style := t.Dim
	if b.IsError {
		head = t.ErrorBold.Render(IconToolErr + " error")
		style = lipgloss.NewStyle().Foreground(t.Error)
	}
	out := []string{head}

	content := strings.TrimRight(b.Content, "\n")
	if strings.TrimSpace(content) == "" {
		return out
	}
	if lines := r.jsonLines(content, width, wrap); lines != nil {
		return append(out, lines...)
	}
	return append(out, styleLines(wrapText(content, width, wrap), style)...)
}

// jsonLines pretty-prints and highlights s, indented by two columns.
// Returns nil when s is not JSON.
func (r *entryRenderer) jsonLines(s string, width int, wrap viewstate.WrapMode) []string {
	hl, ok := r.json.highlight(s)
	if !ok {
		return nil
	}
	lines := wrapText(strings.TrimRight(hl, "\n"), max(width-2, 1), wrap)
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return lines
}
