// Package viewstate turns an append-only sequence of variable-height log
// entries into scroll, visible-range and hit-test queries.
//
// The hierarchy is LogViewState -> SessionViewState -> ConversationViewState
// -> EntryView. Every level owns the next by value or exclusive pointer and
// nothing here is safe for concurrent mutation; the TUI loop drives it from
// a single goroutine. Operations are total: absence is reported with
// (value, ok) pairs, out-of-range scroll targets are clamped.
package viewstate

// LineHeight is the height of one entry in terminal lines. Zero is a
// sentinel for entries that keep their index slot but render nothing.
type LineHeight int

// ZeroHeight marks an entry that occupies an index but no lines.
const ZeroHeight LineHeight = 0

// HeightOf converts a line count into a LineHeight, mapping negative counts
// to the zero sentinel.
func HeightOf(lines int) LineHeight {
	if lines < 0 {
		return ZeroHeight
	}
	return LineHeight(lines)
}

// IsZero reports whether h is the zero sentinel.
func (h LineHeight) IsZero() bool { return h <= 0 }

// LineOffset is an absolute 0-based line position within a conversation.
type LineOffset int

// EntryIndex is the 0-based position of an entry within its conversation.
type EntryIndex int

// ViewportDimensions is the visible terminal area in cells.
type ViewportDimensions struct {
	Width  int
	Height int
}

// NewViewport returns dimensions with negative values floored at zero.
func NewViewport(width, height int) ViewportDimensions {
	return ViewportDimensions{Width: max(width, 0), Height: max(height, 0)}
}

// WrapMode controls how lines wider than the viewport are shown.
type WrapMode uint8

const (
	Wrap   WrapMode = iota // soft-wrap at the viewport width
	NoWrap                 // keep lines whole, scroll horizontally
)

func (w WrapMode) String() string {
	if w == NoWrap {
		return "nowrap"
	}
	return "wrap"
}

// Toggle returns the other mode.
func (w WrapMode) Toggle() WrapMode {
	if w == NoWrap {
		return Wrap
	}
	return NoWrap
}

// LayoutParams are the global inputs of a layout pass. A change in either
// field invalidates every height in a conversation.
type LayoutParams struct {
	Width      int
	GlobalWrap WrapMode
}

// EntryLayout is the height and top edge of one entry.
type EntryLayout struct {
	Height      LineHeight
	CumulativeY LineOffset
}

// Bottom returns the first line below the entry.
func (l EntryLayout) Bottom() LineOffset {
	return l.CumulativeY + LineOffset(l.Height)
}

// Contains reports whether line falls inside the entry. Zero-height entries
// contain no lines.
func (l EntryLayout) Contains(line LineOffset) bool {
	return line >= l.CumulativeY && line < l.Bottom()
}
