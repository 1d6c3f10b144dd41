package viewstate

import (
	"testing"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

// --- layout ------------------------------------------------------------------

func TestRecomputeLayout(t *testing.T) {
	c, _ := conversationWithHeights(1, 3, 1, 2, 1)

	want := []LineOffset{0, 1, 4, 5, 7}
	got := cumulative(c)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cumulative_y[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if c.TotalHeight() != 8 {
		t.Errorf("TotalHeight() = %d, want 8", c.TotalHeight())
	}
}

func TestLayoutIsMonotonic(t *testing.T) {
	// Zero heights sit between rendering entries without moving offsets.
	c, _ := conversationWithHeights(2, 0, 0, 5, 0, 1, 3, 0)
	c.Append(malformedEntry(99))
	c.EnsureLayout(testParams, heightsCalc(map[string]int{
		"e0": 2, "e3": 5, "e5": 1, "e6": 3,
	}, nil))

	sum := 0
	entries := c.Entries()
	for i := range entries {
		l := entries[i].Layout()
		sum += int(l.Height)
		if i+1 < len(entries) {
			next := entries[i+1].Layout()
			if l.CumulativeY > next.CumulativeY {
				t.Errorf("cumulative_y[%d]=%d > cumulative_y[%d]=%d", i, l.CumulativeY, i+1, next.CumulativeY)
			}
			if l.Bottom() != next.CumulativeY {
				t.Errorf("entry %d bottom %d != entry %d top %d", i, l.Bottom(), i+1, next.CumulativeY)
			}
		}
	}
	if sum != c.TotalHeight() {
		t.Errorf("sum of heights = %d, TotalHeight() = %d", sum, c.TotalHeight())
	}
	if h, _ := c.EntryHeight(EntryIndex(c.Len() - 1)); !h.IsZero() {
		t.Errorf("malformed entry height = %d, want zero sentinel", h)
	}
}

func TestRelayoutFrom_AppendKeepsPrefix(t *testing.T) {
	c, heights := conversationWithHeights(1, 3, 1, 2, 1)
	before := cumulative(c)

	heights["e5"] = 2
	c.Append(testEntry("e5"))
	if !c.NeedsRelayout(testParams) {
		t.Fatal("NeedsRelayout() = false after Append, want true")
	}
	c.RelayoutFrom(5, testParams, heightsCalc(heights, nil))

	after := cumulative(c)
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("cumulative_y[%d] = %d after append, want %d", i, after[i], before[i])
		}
	}
	if after[5] != 8 {
		t.Errorf("new entry cumulative_y = %d, want 8", after[5])
	}
	if c.TotalHeight() != 10 {
		t.Errorf("TotalHeight() = %d, want 10", c.TotalHeight())
	}
	if c.NeedsRelayout(testParams) {
		t.Error("NeedsRelayout() = true after RelayoutFrom, want false")
	}
}

func TestAppendBeforeLayoutStaysMonotonic(t *testing.T) {
	c, _ := conversationWithHeights(4, 4)
	c.Append(testEntry("x"), testEntry("y"))

	got := cumulative(c)
	want := []LineOffset{0, 4, 8, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cumulative_y[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNeedsRelayout(t *testing.T) {
	c, _ := conversationWithHeights(1, 2)

	tests := []struct {
		name   string
		params LayoutParams
		want   bool
	}{
		{"same params", testParams, false},
		{"width changed", LayoutParams{Width: 100, GlobalWrap: Wrap}, true},
		{"wrap changed", LayoutParams{Width: 80, GlobalWrap: NoWrap}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.NeedsRelayout(tt.params); got != tt.want {
				t.Errorf("NeedsRelayout() = %v, want %v", got, tt.want)
			}
		})
	}

	fresh := NewConversation("", []parser.ConversationEntry{testEntry("a")})
	if !fresh.NeedsRelayout(testParams) {
		t.Error("NeedsRelayout() = false before any layout, want true")
	}
}

func TestEnsureLayout_OnlyMeasuresTail(t *testing.T) {
	c, heights := conversationWithHeights(1, 1, 1)
	heights["t0"], heights["t1"] = 2, 3
	c.Append(testEntry("t0"), testEntry("t1"))

	calls := 0
	if !c.EnsureLayout(testParams, heightsCalc(heights, &calls)) {
		t.Fatal("EnsureLayout() = false with appended entries, want true")
	}
	if calls != 2 {
		t.Errorf("height calculator called %d times, want 2", calls)
	}
	if c.TotalHeight() != 8 {
		t.Errorf("TotalHeight() = %d, want 8", c.TotalHeight())
	}

	calls = 0
	if c.EnsureLayout(testParams, heightsCalc(heights, &calls)) {
		t.Error("EnsureLayout() = true with nothing to do, want false")
	}
	if calls != 0 {
		t.Errorf("height calculator called %d times, want 0", calls)
	}

	wide := LayoutParams{Width: 120, GlobalWrap: Wrap}
	c.EnsureLayout(wide, heightsCalc(heights, &calls))
	if calls != 5 {
		t.Errorf("height calculator called %d times after width change, want 5", calls)
	}
}

// --- expand / wrap -----------------------------------------------------------

func TestToggleExpand(t *testing.T) {
	c, heights := conversationWithHeights(1, 3, 1, 2, 1)
	calc := heightsCalc(heights, nil)
	before := cumulative(c)

	was, ok := c.ToggleExpand(1, testParams, calc)
	if !ok || was {
		t.Fatalf("ToggleExpand(1) = (%v, %v), want (false, true)", was, ok)
	}
	if h, _ := c.EntryHeight(1); int(h) != 3+expandedExtra {
		t.Errorf("expanded height = %d, want %d", h, 3+expandedExtra)
	}
	if y, _ := c.EntryCumulativeY(2); y != 4+expandedExtra {
		t.Errorf("entry 2 cumulative_y = %d, want %d", y, 4+expandedExtra)
	}

	was, ok = c.ToggleExpand(1, testParams, calc)
	if !ok || !was {
		t.Fatalf("second ToggleExpand(1) = (%v, %v), want (true, true)", was, ok)
	}
	v, _ := c.Entry(1)
	if v.IsExpanded() {
		t.Error("IsExpanded() = true after two toggles, want false")
	}
	after := cumulative(c)
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("cumulative_y[%d] = %d after two toggles, want %d", i, after[i], before[i])
		}
	}
	if c.TotalHeight() != 8 {
		t.Errorf("TotalHeight() = %d after two toggles, want 8", c.TotalHeight())
	}
}

func TestToggleExpand_OutOfRange(t *testing.T) {
	c, heights := conversationWithHeights(1, 1)
	for _, i := range []EntryIndex{-1, 2, 100} {
		if _, ok := c.ToggleExpand(i, testParams, heightsCalc(heights, nil)); ok {
			t.Errorf("ToggleExpand(%d) ok = true, want false", i)
		}
	}
}

func TestSetWrapOverride(t *testing.T) {
	c, heights := conversationWithHeights(1, 4, 1)
	calc := heightsCalc(heights, nil)
	noWrap := NoWrap

	prev, ok := c.SetWrapOverride(1, &noWrap, testParams, calc)
	if !ok || prev != nil {
		t.Fatalf("SetWrapOverride() = (%v, %v), want (nil, true)", prev, ok)
	}
	v, _ := c.Entry(1)
	if got := v.EffectiveWrap(Wrap); got != NoWrap {
		t.Errorf("EffectiveWrap() = %v, want nowrap", got)
	}
	if c.TotalHeight() != 3 {
		t.Errorf("TotalHeight() = %d, want 3", c.TotalHeight())
	}

	prev, ok = c.SetWrapOverride(1, nil, testParams, calc)
	if !ok || prev == nil || *prev != NoWrap {
		t.Fatalf("clearing override returned (%v, %v), want (nowrap, true)", prev, ok)
	}
	if _, has := v.WrapOverride(); has {
		t.Error("WrapOverride() still set after clearing")
	}
	if c.TotalHeight() != 6 {
		t.Errorf("TotalHeight() = %d, want 6", c.TotalHeight())
	}

	if _, ok := c.SetWrapOverride(9, &noWrap, testParams, calc); ok {
		t.Error("SetWrapOverride(9) ok = true, want false")
	}
}

func TestSetAllExpanded(t *testing.T) {
	c, heights := conversationWithHeights(1, 2, 3)
	c.SetAllExpanded(true, testParams, heightsCalc(heights, nil))
	if c.TotalHeight() != 6+3*expandedExtra {
		t.Errorf("TotalHeight() = %d, want %d", c.TotalHeight(), 6+3*expandedExtra)
	}
	c.SetAllExpanded(false, testParams, heightsCalc(heights, nil))
	if c.TotalHeight() != 6 {
		t.Errorf("TotalHeight() = %d, want 6", c.TotalHeight())
	}
}

// --- visible range -----------------------------------------------------------

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		name       string
		scroll     ScrollPosition
		height     int
		wantOffset LineOffset
		wantStart  EntryIndex
		wantEnd    EntryIndex
	}{
		{"top", Top{}, 4, 0, 0, 2},
		{"bottom", Bottom{}, 4, 4, 2, 5},
		{"middle line", AtLine{Offset: 2}, 3, 2, 1, 3},
		{"anchored entry", AtEntry{Index: 3, Line: 1}, 2, 6, 3, 5},
		{"viewport taller than document", Bottom{}, 20, 0, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := conversationWithHeights(1, 3, 1, 2, 1)
			c.SetScroll(tt.scroll)
			r := c.VisibleRange(NewViewport(80, tt.height))
			if r.ScrollOffset != tt.wantOffset {
				t.Errorf("ScrollOffset = %d, want %d", r.ScrollOffset, tt.wantOffset)
			}
			if r.Start != tt.wantStart || r.End != tt.wantEnd {
				t.Errorf("range = [%d, %d), want [%d, %d)", r.Start, r.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestVisibleRange_BottomEdge(t *testing.T) {
	tests := []struct {
		name      string
		heights   []int
		offset    LineOffset
		height    int
		wantStart EntryIndex
		wantEnd   EntryIndex
	}{
		{"entry starting on the bottom edge", []int{1, 3, 1, 2, 1}, 0, 4, 0, 2},
		{"zero-height entries on the bottom edge", []int{4, 0, 2}, 0, 4, 0, 1},
		{"zero-height entry on the top edge", []int{2, 0, 3}, 2, 3, 2, 3},
		{"entry ending on the bottom edge", []int{2, 2, 2}, 0, 4, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := conversationWithHeights(tt.heights...)
			c.SetScroll(AtLine{Offset: tt.offset})
			r := c.VisibleRange(NewViewport(80, tt.height))
			if r.Start != tt.wantStart || r.End != tt.wantEnd {
				t.Errorf("range = [%d, %d), want [%d, %d)", r.Start, r.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestVisibleRange_Bounds(t *testing.T) {
	c, _ := conversationWithHeights(2, 0, 1, 5, 0, 0, 3, 1, 4, 0)
	total := c.TotalHeight()
	entries := c.Entries()

	for h := 1; h <= total+2; h++ {
		for off := 0; off <= total+2; off++ {
			c.SetScroll(AtLine{Offset: LineOffset(off)})
			r := c.VisibleRange(NewViewport(80, h))
			if r.Start < 0 || r.Start > r.End || int(r.End) > c.Len() {
				t.Fatalf("h=%d off=%d: range [%d, %d) out of bounds", h, off, r.Start, r.End)
			}
			if r.ScrollOffset > MaxOffset(total, h) {
				t.Fatalf("h=%d off=%d: ScrollOffset %d beyond max", h, off, r.ScrollOffset)
			}
			for i := range entries {
				l := entries[i].Layout()
				overlaps := l.Bottom() > r.ScrollOffset && l.CumulativeY < r.Bottom()
				if r.Contains(EntryIndex(i)) && !overlaps {
					t.Errorf("h=%d off=%d: entry %d in range but outside viewport", h, off, i)
				}
				if !r.Contains(EntryIndex(i)) && overlaps && !l.Height.IsZero() {
					t.Errorf("h=%d off=%d: entry %d overlaps viewport but not in range", h, off, i)
				}
			}
		}
	}
}

func TestVisibleRange_Empty(t *testing.T) {
	c := NewConversation("", nil)
	r := c.VisibleRange(NewViewport(80, 10))
	if !r.IsEmpty() || r.Start != 0 || r.End != 0 {
		t.Errorf("range = [%d, %d), want empty at 0", r.Start, r.End)
	}
}

// --- hit test ----------------------------------------------------------------

func TestHitTest(t *testing.T) {
	// Heights 1, 3, 0, 2 -> spans [0,1) [1,4) [4,4) [4,6).
	c, _ := conversationWithHeights(1, 3, 0, 2)

	tests := []struct {
		name      string
		screenY   int
		scroll    LineOffset
		wantHit   bool
		wantIndex EntryIndex
		wantLine  int
	}{
		{"first line", 0, 0, true, 0, 0},
		{"inside tall entry", 2, 0, true, 1, 1},
		{"scrolled", 1, 3, true, 3, 0},
		{"zero height entry skipped", 4, 0, true, 3, 0},
		{"last line", 5, 0, true, 3, 1},
		{"beyond last entry", 6, 0, false, 0, 0},
		{"beyond after scroll", 3, 3, false, 0, 0},
		{"negative row", -1, 0, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := c.HitTest(tt.screenY, 7, tt.scroll)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if !ok {
				return
			}
			if res.Index != tt.wantIndex || res.LineInEntry != tt.wantLine {
				t.Errorf("hit = entry %d line %d, want entry %d line %d", res.Index, res.LineInEntry, tt.wantIndex, tt.wantLine)
			}
			if res.Column != 7 {
				t.Errorf("Column = %d, want 7", res.Column)
			}
			l := c.Entries()[res.Index].Layout()
			if !l.Contains(res.Line) {
				t.Errorf("line %d outside entry span [%d, %d)", res.Line, l.CumulativeY, l.Bottom())
			}
		})
	}
}

// --- scrolling ---------------------------------------------------------------

func TestScrollBy(t *testing.T) {
	c, _ := conversationWithHeights(1, 3, 1, 2, 1) // total 8

	c.ScrollBy(3, 4)
	if got := c.ResolveScroll(4); got != 3 {
		t.Errorf("after ScrollBy(3) offset = %d, want 3", got)
	}
	c.ScrollBy(100, 4)
	if got := c.ResolveScroll(4); got != 4 {
		t.Errorf("after ScrollBy(100) offset = %d, want 4 (max)", got)
	}
	if !c.IsAtBottom(4) {
		t.Error("IsAtBottom() = false at max offset")
	}
	c.ScrollBy(-100, 4)
	if got := c.ResolveScroll(4); got != 0 {
		t.Errorf("after ScrollBy(-100) offset = %d, want 0", got)
	}
	if c.IsAtBottom(4) {
		t.Error("IsAtBottom() = true at top")
	}

	c.PageDown(3)
	if got := c.ResolveScroll(3); got != 3 {
		t.Errorf("after PageDown offset = %d, want 3", got)
	}
	c.PageUp(3)
	if got := c.ResolveScroll(3); got != 0 {
		t.Errorf("after PageUp offset = %d, want 0", got)
	}
}

func TestBottomFollowsAppend(t *testing.T) {
	c, heights := conversationWithHeights(1, 3, 1, 2, 1)
	c.SetScroll(Bottom{})
	if got := c.ResolveScroll(4); got != 4 {
		t.Fatalf("offset = %d, want 4", got)
	}

	heights["n"] = 5
	c.Append(testEntry("n"))
	c.EnsureLayout(testParams, heightsCalc(heights, nil))
	if got := c.ResolveScroll(4); got != 9 {
		t.Errorf("offset after append = %d, want 9", got)
	}
}

func TestAnchorScroll(t *testing.T) {
	c, heights := conversationWithHeights(1, 3, 1, 2, 1, 4, 4)
	calc := heightsCalc(heights, nil)
	c.SetScroll(AtLine{Offset: 6}) // line 1 of entry 3

	c.AnchorScroll(4)
	anchor, ok := c.Scroll().(AtEntry)
	if !ok || anchor.Index != 3 || anchor.Line != 1 {
		t.Fatalf("Scroll() = %#v, want AtEntry{3, 1}", c.Scroll())
	}

	// Expanding an entry above the viewport keeps the same content on top.
	c.ToggleExpand(0, testParams, calc)
	if got := c.ResolveScroll(4); got != 6+expandedExtra {
		t.Errorf("offset after expanding entry above = %d, want %d", got, 6+expandedExtra)
	}

	c.SetScroll(Bottom{})
	c.AnchorScroll(4)
	if _, ok := c.Scroll().(Bottom); !ok {
		t.Errorf("AnchorScroll changed Bottom to %#v", c.Scroll())
	}
}

// --- focus -------------------------------------------------------------------

func TestFocus(t *testing.T) {
	c, _ := conversationWithHeights(1, 0, 2, 0)

	if _, ok := c.Focused(); ok {
		t.Fatal("Focused() ok = true on a fresh conversation")
	}
	if !c.FocusNext() {
		t.Fatal("FocusNext() = false, want true")
	}
	if f, _ := c.Focused(); f != 0 {
		t.Errorf("focus = %d, want 0", f)
	}
	c.FocusNext()
	if f, _ := c.Focused(); f != 2 {
		t.Errorf("focus = %d, want 2 (zero-height entry skipped)", f)
	}
	if c.FocusNext() {
		t.Error("FocusNext() past last renderable entry = true, want false")
	}
	c.FocusPrev()
	if f, _ := c.Focused(); f != 0 {
		t.Errorf("focus = %d, want 0", f)
	}

	c.SetFocus(99)
	if f, _ := c.Focused(); f != 3 {
		t.Errorf("SetFocus(99) focus = %d, want 3 (clamped)", f)
	}
	c.SetFocus(-4)
	if f, _ := c.Focused(); f != 0 {
		t.Errorf("SetFocus(-4) focus = %d, want 0 (clamped)", f)
	}
	c.ClearFocus()
	if _, ok := c.Focused(); ok {
		t.Error("Focused() ok = true after ClearFocus")
	}
}

func TestEnsureFocusVisible(t *testing.T) {
	c, _ := conversationWithHeights(2, 2, 2, 2, 2, 2) // total 12

	c.SetFocus(4) // lines 8-9
	c.EnsureFocusVisible(4)
	if got := c.ResolveScroll(4); got != 6 {
		t.Errorf("offset = %d, want 6 (entry bottom on last row)", got)
	}

	c.SetFocus(1) // lines 2-3
	c.EnsureFocusVisible(4)
	if got := c.ResolveScroll(4); got != 2 {
		t.Errorf("offset = %d, want 2 (entry top on first row)", got)
	}

	c.SetFocus(2) // already visible
	c.EnsureFocusVisible(4)
	if got := c.ResolveScroll(4); got != 2 {
		t.Errorf("offset = %d, want 2 (unchanged)", got)
	}
}

func TestHorizontalOffset(t *testing.T) {
	c := NewConversation("", nil)
	c.ScrollRight(10)
	c.ScrollLeft(4)
	if c.HorizontalOffset() != 6 {
		t.Errorf("HorizontalOffset() = %d, want 6", c.HorizontalOffset())
	}
	c.ScrollLeft(100)
	if c.HorizontalOffset() != 0 {
		t.Errorf("HorizontalOffset() = %d, want 0", c.HorizontalOffset())
	}
}

func TestModelCapturedFromFirstEntry(t *testing.T) {
	c := NewConversation("agent-1", []parser.ConversationEntry{
		testEntry("a"),
		testEntry("b", withModel("<synthetic>")),
		testEntry("c", withModel("claude-opus-4-6")),
		testEntry("d", withModel("claude-haiku-4-5")),
	})
	if c.Model() != "claude-opus-4-6" {
		t.Errorf("Model() = %q, want claude-opus-4-6", c.Model())
	}
	if c.IsMain() {
		t.Error("IsMain() = true for a sub-agent conversation")
	}
}
