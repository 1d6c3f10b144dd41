package main

import (
	"sort"

	"charm.land/bubbles/v2/key"
)

// keyMap holds every rebindable action. Tab numbers 1-9 are fixed.
type keyMap struct {
	Down        key.Binding
	Up          key.Binding
	Left        key.Binding
	Right       key.Binding
	PageDown    key.Binding
	PageUp      key.Binding
	Top         key.Binding
	Bottom      key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	NextEntry   key.Binding
	PrevEntry   key.Binding
	WrapEntry   key.Binding
	WrapAll     key.Binding
	Follow      key.Binding
	Stats       key.Binding
	StatsScope  key.Binding
	Sessions    key.Binding
	Logs        key.Binding
	Copy        key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
	Close       key.Binding
}

// defaultKeyMap returns the built-in bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll down")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll up")),
		Left:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "scroll left")),
		Right:       key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "scroll right")),
		PageDown:    key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "page down")),
		PageUp:      key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "page up")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		NextTab:     key.NewBinding(key.WithKeys("]", "tab"), key.WithHelp("]/tab", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("[", "shift+tab"), key.WithHelp("[", "previous tab")),
		Toggle:      key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "expand/collapse")),
		ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
		NextEntry:   key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "next entry")),
		PrevEntry:   key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "previous entry")),
		WrapEntry:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wrap entry")),
		WrapAll:     key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "wrap all")),
		Follow:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
		Stats:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stats")),
		StatsScope:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "stats scope")),
		Sessions:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sessions")),
		Logs:        key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log pane")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy entry")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// bindings maps config action names to the fields they rebind.
func (k *keyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"down":         &k.Down,
		"up":           &k.Up,
		"left":         &k.Left,
		"right":        &k.Right,
		"page_down":    &k.PageDown,
		"page_up":      &k.PageUp,
		"top":          &k.Top,
		"bottom":       &k.Bottom,
		"next_tab":     &k.NextTab,
		"prev_tab":     &k.PrevTab,
		"toggle":       &k.Toggle,
		"expand_all":   &k.ExpandAll,
		"collapse_all": &k.CollapseAll,
		"next_entry":   &k.NextEntry,
		"prev_entry":   &k.PrevEntry,
		"wrap_entry":   &k.WrapEntry,
		"wrap_all":     &k.WrapAll,
		"follow":       &k.Follow,
		"stats":        &k.Stats,
		"stats_scope":  &k.StatsScope,
		"sessions":     &k.Sessions,
		"logs":         &k.Logs,
		"copy":         &k.Copy,
		"refresh":      &k.Refresh,
		"help":         &k.Help,
		"quit":         &k.Quit,
		"close":        &k.Close,
	}
}

// newKeyMap applies config overrides to the defaults. The help label of a
// rebound action shows its first new key. Unknown action names are
// returned sorted so the caller can log them.
func newKeyMap(overrides map[string][]string) (keyMap, []string) {
	k := defaultKeyMap()
	table := k.bindings()
	var unknown []string
	for action, keys := range overrides {
		b, ok := table[action]
		if !ok {
			unknown = append(unknown, action)
			continue
		}
		if len(keys) == 0 {
			b.SetEnabled(false)
			continue
		}
		b.SetKeys(keys...)
		b.SetHelp(keys[0], b.Help().Desc)
	}
	sort.Strings(unknown)
	return k, unknown
}

// helpGroups returns the bindings shown in the help overlay, by column.
func (k keyMap) helpGroups() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Left, k.Right, k.PageDown, k.PageUp, k.Top, k.Bottom},
		{k.NextTab, k.PrevTab, k.Toggle, k.ExpandAll, k.CollapseAll, k.NextEntry, k.PrevEntry},
		{k.WrapEntry, k.WrapAll, k.Follow, k.Stats, k.StatsScope, k.Sessions, k.Logs, k.Copy, k.Refresh, k.Help, k.Quit},
	}
}

// shortHelp returns the bindings listed in the status bar hint.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Sessions, k.Help, k.Quit}
}
