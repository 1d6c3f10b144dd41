package viewstate

import "github.com/kylesnowschwartz/claude-logview/parser"

// HeightCalculator returns the rendered height of an entry. It must return
// ZeroHeight for entries that do not render and otherwise a height >= 1 that
// already accounts for the layout width, markdown structure and the
// collapsed or expanded form. It must be deterministic.
type HeightCalculator func(entry *parser.ConversationEntry, expanded bool, wrap WrapMode) LineHeight

// EntryView owns one entry plus its layout and presentation state.
type EntryView struct {
	entry    parser.ConversationEntry
	index    EntryIndex
	layout   EntryLayout
	expanded bool

	wrap        WrapMode
	hasOverride bool
}

// NewEntryView wraps entry at index with an empty layout.
func NewEntryView(entry parser.ConversationEntry, index EntryIndex) EntryView {
	return EntryView{entry: entry, index: index}
}

// Entry returns the owned entry.
func (v *EntryView) Entry() *parser.ConversationEntry { return &v.entry }

// Index returns the entry's position in its conversation.
func (v *EntryView) Index() EntryIndex { return v.index }

// Layout returns the most recently computed layout.
func (v *EntryView) Layout() EntryLayout { return v.layout }

// IsExpanded reports whether the entry shows its full content.
func (v *EntryView) IsExpanded() bool { return v.expanded }

// SetExpanded sets the expand state.
func (v *EntryView) SetExpanded(expanded bool) { v.expanded = expanded }

// ToggleExpanded flips the expand state and returns the new one.
func (v *EntryView) ToggleExpanded() bool {
	v.expanded = !v.expanded
	return v.expanded
}

// WrapOverride returns the per-entry wrap mode, if one is set.
func (v *EntryView) WrapOverride() (WrapMode, bool) {
	return v.wrap, v.hasOverride
}

// SetWrapOverride pins the entry to mode regardless of the global setting.
func (v *EntryView) SetWrapOverride(mode WrapMode) {
	v.wrap = mode
	v.hasOverride = true
}

// ClearWrapOverride makes the entry follow the global setting again.
func (v *EntryView) ClearWrapOverride() {
	v.wrap = Wrap
	v.hasOverride = false
}

// EffectiveWrap returns the override if set, else global.
func (v *EntryView) EffectiveWrap(global WrapMode) WrapMode {
	if v.hasOverride {
		return v.wrap
	}
	return global
}

func (v *EntryView) setLayout(l EntryLayout) { v.layout = l }
