package viewstate

import (
	"sort"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

// ConversationViewState is the ordered entries of one agent (the main agent
// or a single sub-agent) within a session, with their layout and the
// current scroll target.
//
// Layout is a prefix sum: entry i starts at the sum of the heights before
// it. That keeps CumulativeY non-decreasing, which is what the binary
// searches in VisibleRange and HitTest rely on.
type ConversationViewState struct {
	agentID string
	model   string
	entries []EntryView
	scroll  ScrollPosition

	totalHeight int
	focused     EntryIndex
	hasFocus    bool
	hOffset     int

	params    LayoutParams
	hasLayout bool
	laidOut   int // entries covered by the last layout pass
}

// NewConversation returns a conversation holding entries, not yet laid out.
// agentID is empty for the main agent.
func NewConversation(agentID string, entries []parser.ConversationEntry) *ConversationViewState {
	c := &ConversationViewState{agentID: agentID, scroll: Top{}}
	c.Append(entries...)
	return c
}

// AgentID returns the sub-agent identifier, or "" for the main agent.
func (c *ConversationViewState) AgentID() string { return c.agentID }

// IsMain reports whether this is the main-agent conversation.
func (c *ConversationViewState) IsMain() bool { return c.agentID == "" }

// Model returns the first model name seen in this conversation.
func (c *ConversationViewState) Model() string { return c.model }

// Len returns the number of entries.
func (c *ConversationViewState) Len() int { return len(c.entries) }

// IsEmpty reports whether the conversation has no entries.
func (c *ConversationViewState) IsEmpty() bool { return len(c.entries) == 0 }

// Entry returns the entry at i.
func (c *ConversationViewState) Entry(i EntryIndex) (*EntryView, bool) {
	if i < 0 || int(i) >= len(c.entries) {
		return nil, false
	}
	return &c.entries[i], true
}

// Entries exposes the entry slice for iteration. Callers must not modify it.
func (c *ConversationViewState) Entries() []EntryView { return c.entries }

// TotalHeight returns the height of the last layout pass.
func (c *ConversationViewState) TotalHeight() int { return c.totalHeight }

// Append adds entries at the tail. They get zero height at the current
// bottom edge until the next layout pass, so the offsets stay monotonic.
func (c *ConversationViewState) Append(entries ...parser.ConversationEntry) {
	for i := range entries {
		e := &entries[i]
		if c.model == "" && !e.IsMalformed() && e.Entry.Model != "" && e.Entry.Model != "<synthetic>" {
			c.model = e.Entry.Model
		}
		v := NewEntryView(*e, EntryIndex(len(c.entries)))
		v.setLayout(EntryLayout{CumulativeY: LineOffset(c.totalHeight)})
		c.entries = append(c.entries, v)
	}
}

// RecomputeLayout measures every entry with calc at params.
func (c *ConversationViewState) RecomputeLayout(params LayoutParams, calc HeightCalculator) {
	c.layoutFrom(0, 0, params, calc)
	c.params = params
	c.hasLayout = true
}

// RelayoutFrom re-measures entries from index to the end, seeding the running
// offset from the predecessor's bottom edge. Use it after a single entry's
// expand or wrap state changed. Without a prior layout at the same params it
// falls back to a full recompute.
func (c *ConversationViewState) RelayoutFrom(index EntryIndex, params LayoutParams, calc HeightCalculator) {
	if !c.hasLayout || params != c.params {
		c.RecomputeLayout(params, calc)
		return
	}
	start := int(max(index, 0))
	// Entries appended since the last pass have placeholder layouts.
	start = min(start, c.laidOut, len(c.entries))

	var y LineOffset
	if start > 0 {
		y = c.entries[start-1].layout.Bottom()
	}
	c.layoutFrom(start, y, params, calc)
}

func (c *ConversationViewState) layoutFrom(start int, y LineOffset, params LayoutParams, calc HeightCalculator) {
	for i := start; i < len(c.entries); i++ {
		v := &c.entries[i]
		h := calc(&v.entry, v.expanded, v.EffectiveWrap(params.GlobalWrap))
		if h < 0 {
			h = ZeroHeight
		}
		v.setLayout(EntryLayout{Height: h, CumulativeY: y})
		y += LineOffset(h)
	}
	c.totalHeight = int(y)
	c.laidOut = len(c.entries)
}

// NeedsRelayout reports whether the layout is stale for params: the global
// parameters changed, or entries were appended since the last pass.
// Per-entry state changes go through RelayoutFrom instead.
func (c *ConversationViewState) NeedsRelayout(params LayoutParams) bool {
	return !c.hasLayout || params != c.params || c.laidOut < len(c.entries)
}

// EnsureLayout brings the layout up to date for params, doing the least
// work possible: a full pass when params changed, otherwise only the tail
// appended since the last pass. Returns whether anything was recomputed.
func (c *ConversationViewState) EnsureLayout(params LayoutParams, calc HeightCalculator) bool {
	switch {
	case !c.hasLayout || params != c.params:
		c.RecomputeLayout(params, calc)
	case c.laidOut < len(c.entries):
		c.RelayoutFrom(EntryIndex(c.laidOut), params, calc)
	default:
		return false
	}
	return true
}

// LayoutParams returns the parameters of the last layout pass.
func (c *ConversationViewState) LayoutParams() (LayoutParams, bool) {
	return c.params, c.hasLayout
}

// ToggleExpand flips one entry's expand state and re-measures from it.
// Returns the previous state, or ok=false when index is out of range.
func (c *ConversationViewState) ToggleExpand(index EntryIndex, params LayoutParams, calc HeightCalculator) (wasExpanded, ok bool) {
	v, ok := c.Entry(index)
	if !ok {
		return false, false
	}
	wasExpanded = v.IsExpanded()
	v.ToggleExpanded()
	c.RelayoutFrom(index, params, calc)
	return wasExpanded, true
}

// SetExpanded sets one entry's expand state. Returns the previous state.
func (c *ConversationViewState) SetExpanded(index EntryIndex, expanded bool, params LayoutParams, calc HeightCalculator) (wasExpanded, ok bool) {
	v, ok := c.Entry(index)
	if !ok {
		return false, false
	}
	wasExpanded = v.IsExpanded()
	if wasExpanded != expanded {
		v.SetExpanded(expanded)
		c.RelayoutFrom(index, params, calc)
	}
	return wasExpanded, true
}

// SetAllExpanded sets every entry's expand state and recomputes the layout.
func (c *ConversationViewState) SetAllExpanded(expanded bool, params LayoutParams, calc HeightCalculator) {
	for i := range c.entries {
		c.entries[i].SetExpanded(expanded)
	}
	c.RecomputeLayout(params, calc)
}

// SetWrapOverride sets (mode non-nil) or clears (mode nil) one entry's wrap
// override and re-measures from it. Returns the previous override, nil when
// there was none, or ok=false when index is out of range.
func (c *ConversationViewState) SetWrapOverride(index EntryIndex, mode *WrapMode, params LayoutParams, calc HeightCalculator) (prev *WrapMode, ok bool) {
	v, ok := c.Entry(index)
	if !ok {
		return nil, false
	}
	if m, had := v.WrapOverride(); had {
		prev = &m
	}
	if mode != nil {
		v.SetWrapOverride(*mode)
	} else {
		v.ClearWrapOverride()
	}
	c.RelayoutFrom(index, params, calc)
	return prev, true
}

// -- Scrolling ---------------------------------------------------------------

// Scroll returns the stored scroll target.
func (c *ConversationViewState) Scroll() ScrollPosition {
	if c.scroll == nil {
		return Top{}
	}
	return c.scroll
}

// SetScroll stores a new scroll target. It is resolved lazily.
func (c *ConversationViewState) SetScroll(pos ScrollPosition) {
	c.scroll = pos
}

// ResolveScroll returns the clamped line offset of the scroll target for a
// viewport of the given height.
func (c *ConversationViewState) ResolveScroll(viewportHeight int) LineOffset {
	return ResolveScroll(c.scroll, c.totalHeight, viewportHeight, c.EntryCumulativeY)
}

// ScrollBy moves the viewport by delta lines and stores the result as an
// absolute line.
func (c *ConversationViewState) ScrollBy(delta, viewportHeight int) {
	off := c.ResolveScroll(viewportHeight) + LineOffset(delta)
	maxOff := MaxOffset(c.totalHeight, viewportHeight)
	c.scroll = AtLine{Offset: min(max(off, 0), maxOff)}
}

// PageDown scrolls down by one viewport.
func (c *ConversationViewState) PageDown(viewportHeight int) {
	c.ScrollBy(max(viewportHeight, 1), viewportHeight)
}

// PageUp scrolls up by one viewport.
func (c *ConversationViewState) PageUp(viewportHeight int) {
	c.ScrollBy(-max(viewportHeight, 1), viewportHeight)
}

// IsAtBottom reports whether the last page is showing.
func (c *ConversationViewState) IsAtBottom(viewportHeight int) bool {
	if _, ok := c.scroll.(Bottom); ok {
		return true
	}
	return c.ResolveScroll(viewportHeight) >= MaxOffset(c.totalHeight, viewportHeight)
}

// AnchorScroll converts a line-based scroll target into an AtEntry anchor on
// the entry at the top of the viewport. Call it before changing the height
// of an entry above the viewport so the visible content does not move.
// Top and Bottom targets are kept as they are.
func (c *ConversationViewState) AnchorScroll(viewportHeight int) {
	switch c.scroll.(type) {
	case nil, Top, Bottom, AtEntry:
		return
	}
	off := c.ResolveScroll(viewportHeight)
	i, ok := c.entryAt(off)
	if !ok {
		return
	}
	top := c.entries[i].layout.CumulativeY
	c.scroll = AtEntry{Index: i, Line: int(off - top)}
}

// VisibleRange resolves the scroll target and returns the entries that
// overlap the viewport. Both ends are found by binary search over the
// cumulative offsets. An entry whose top edge sits exactly on the viewport's
// bottom edge starts below it and is excluded.
func (c *ConversationViewState) VisibleRange(viewport ViewportDimensions) VisibleRange {
	off := c.ResolveScroll(viewport.Height)
	bottom := off + LineOffset(viewport.Height)
	n := len(c.entries)

	start := sort.Search(n, func(i int) bool {
		return c.entries[i].layout.Bottom() > off
	})
	end := sort.Search(n, func(i int) bool {
		return c.entries[i].layout.CumulativeY >= bottom
	})
	if end < start {
		end = start
	}
	return VisibleRange{
		Start:          EntryIndex(start),
		End:            EntryIndex(end),
		ScrollOffset:   off,
		ViewportHeight: viewport.Height,
	}
}

// HitTest maps a screen cell, given the scroll offset the screen was drawn
// with, to the entry under it. Returns false for cells outside every entry.
func (c *ConversationViewState) HitTest(screenY, screenX int, scrollOffset LineOffset) (HitTestResult, bool) {
	if screenY < 0 || screenX < 0 {
		return HitTestResult{}, false
	}
	line := scrollOffset + LineOffset(screenY)
	i, ok := c.entryAt(line)
	if !ok {
		return HitTestResult{}, false
	}
	top := c.entries[i].layout.CumulativeY
	return HitTestResult{
		Index:       i,
		Line:        line,
		LineInEntry: int(line - top),
		Column:      screenX,
	}, true
}

// entryAt returns the entry whose span contains line.
func (c *ConversationViewState) entryAt(line LineOffset) (EntryIndex, bool) {
	if line < 0 || int(line) >= c.totalHeight {
		return 0, false
	}
	n := len(c.entries)
	i := sort.Search(n, func(i int) bool {
		return c.entries[i].layout.Bottom() > line
	})
	if i == n || !c.entries[i].layout.Contains(line) {
		return 0, false
	}
	return EntryIndex(i), true
}

// EntryCumulativeY returns the top edge of entry i.
func (c *ConversationViewState) EntryCumulativeY(i EntryIndex) (LineOffset, bool) {
	v, ok := c.Entry(i)
	if !ok {
		return 0, false
	}
	return v.layout.CumulativeY, true
}

// EntryHeight returns the height of entry i.
func (c *ConversationViewState) EntryHeight(i EntryIndex) (LineHeight, bool) {
	v, ok := c.Entry(i)
	if !ok {
		return 0, false
	}
	return v.layout.Height, true
}

// -- Focus -------------------------------------------------------------------

// Focused returns the focused entry, if any.
func (c *ConversationViewState) Focused() (EntryIndex, bool) {
	if !c.hasFocus || int(c.focused) >= len(c.entries) {
		return 0, false
	}
	return c.focused, true
}

// SetFocus focuses entry i, clamped to the valid range. It is a no-op on an
// empty conversation.
func (c *ConversationViewState) SetFocus(i EntryIndex) {
	if len(c.entries) == 0 {
		c.ClearFocus()
		return
	}
	c.focused = min(max(i, 0), EntryIndex(len(c.entries)-1))
	c.hasFocus = true
}

// ClearFocus removes the focus.
func (c *ConversationViewState) ClearFocus() {
	c.focused = 0
	c.hasFocus = false
}

// FocusNext moves focus to the next entry that renders. Without a current
// focus it focuses the first one. Returns whether focus moved.
func (c *ConversationViewState) FocusNext() bool {
	from := EntryIndex(-1)
	if f, ok := c.Focused(); ok {
		from = f
	}
	for i := from + 1; int(i) < len(c.entries); i++ {
		if !c.entries[i].layout.Height.IsZero() || !c.hasLayout {
			c.SetFocus(i)
			return true
		}
	}
	return false
}

// FocusPrev moves focus to the previous entry that renders. Without a
// current focus it focuses the last one. Returns whether focus moved.
func (c *ConversationViewState) FocusPrev() bool {
	from := EntryIndex(len(c.entries))
	if f, ok := c.Focused(); ok {
		from = f
	}
	for i := from - 1; i >= 0; i-- {
		if !c.entries[i].layout.Height.IsZero() || !c.hasLayout {
			c.SetFocus(i)
			return true
		}
	}
	return false
}

// EnsureFocusVisible scrolls the minimum amount needed to bring the focused
// entry into view. Entries taller than the viewport are aligned to the top.
func (c *ConversationViewState) EnsureFocusVisible(viewportHeight int) {
	f, ok := c.Focused()
	if !ok || viewportHeight <= 0 {
		return
	}
	l := c.entries[f].layout
	off := c.ResolveScroll(viewportHeight)
	top := l.CumulativeY
	last := l.Bottom() - 1

	switch {
	case top < off || int(l.Height) > viewportHeight:
		off = top
	case last >= off+LineOffset(viewportHeight):
		off = last - LineOffset(viewportHeight) + 1
	default:
		return
	}
	c.scroll = AtLine{Offset: min(max(off, 0), MaxOffset(c.totalHeight, viewportHeight))}
}

// -- Horizontal scrolling ----------------------------------------------------

// HorizontalOffset returns the first visible column for unwrapped lines.
func (c *ConversationViewState) HorizontalOffset() int { return c.hOffset }

// ScrollRight shifts unwrapped content left by n columns.
func (c *ConversationViewState) ScrollRight(n int) { c.hOffset += max(n, 0) }

// ScrollLeft shifts unwrapped content right by n columns, stopping at 0.
func (c *ConversationViewState) ScrollLeft(n int) { c.hOffset = max(c.hOffset-max(n, 0), 0) }

// ResetHorizontal returns to column 0.
func (c *ConversationViewState) ResetHorizontal() { c.hOffset = 0 }
