package viewstate

import "math"

// ScrollPosition is a semantic scroll target. Resolution to a line offset
// happens against the current layout, so intent such as "keep entry 42 at
// the top" survives height changes earlier in the document.
//
// The concrete types are Top, Bottom, AtLine, AtEntry and AtFraction.
// A nil ScrollPosition behaves like Top.
type ScrollPosition interface {
	scrollPosition()
}

// Top pins the viewport to the first line.
type Top struct{}

// Bottom pins the viewport to the last page. New entries keep it there.
type Bottom struct{}

// AtLine scrolls to an absolute line.
type AtLine struct {
	Offset LineOffset
}

// AtEntry anchors a line within an entry to the top of the viewport.
type AtEntry struct {
	Index EntryIndex
	Line  int // line within the entry
}

// AtFraction scrolls to a proportion of the scrollable range, 0 to 1.
type AtFraction struct {
	Fraction float64
}

func (Top) scrollPosition()        {}
func (Bottom) scrollPosition()     {}
func (AtLine) scrollPosition()     {}
func (AtEntry) scrollPosition()    {}
func (AtFraction) scrollPosition() {}

// MaxOffset is the largest scroll offset that still fills the viewport.
func MaxOffset(totalHeight, viewportHeight int) LineOffset {
	return LineOffset(max(0, totalHeight-viewportHeight))
}

// ResolveScroll turns pos into a line offset clamped to
// [0, MaxOffset(totalHeight, viewportHeight)]. entryTop looks up an entry's
// cumulative offset; a missing entry resolves to 0.
func ResolveScroll(pos ScrollPosition, totalHeight, viewportHeight int, entryTop func(EntryIndex) (LineOffset, bool)) LineOffset {
	maxOff := MaxOffset(totalHeight, viewportHeight)

	var raw LineOffset
	switch p := pos.(type) {
	case nil, Top:
		raw = 0
	case Bottom:
		raw = maxOff
	case AtLine:
		raw = p.Offset
	case AtEntry:
		if top, ok := entryTop(p.Index); ok {
			raw = top + LineOffset(p.Line)
		}
	case AtFraction:
		f := p.Fraction
		if math.IsNaN(f) {
			f = 0
		}
		f = math.Min(math.Max(f, 0), 1)
		raw = LineOffset(math.Round(f * float64(maxOff)))
	}

	if raw < 0 {
		return 0
	}
	if raw > maxOff {
		return maxOff
	}
	return raw
}
