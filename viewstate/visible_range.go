package viewstate

// VisibleRange is the half-open span [Start, End) of entries that overlap
// the viewport, together with the offset and height it was resolved for.
type VisibleRange struct {
	Start          EntryIndex
	End            EntryIndex
	ScrollOffset   LineOffset
	ViewportHeight int
}

// Len returns the number of entries in the range.
func (r VisibleRange) Len() int { return int(r.End - r.Start) }

// IsEmpty reports whether no entry is visible.
func (r VisibleRange) IsEmpty() bool { return r.End <= r.Start }

// Contains reports whether i is inside the range.
func (r VisibleRange) Contains(i EntryIndex) bool { return i >= r.Start && i < r.End }

// Bottom returns the first line below the viewport.
func (r VisibleRange) Bottom() LineOffset {
	return r.ScrollOffset + LineOffset(r.ViewportHeight)
}
