package statsui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	PrevTab   key.Binding
	NextTab   key.Binding
	Scroll    key.Binding
	Narrower  key.Binding
	Wider     key.Binding
	Filter    key.Binding
	Edit      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Apply     key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		PrevTab:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		NextTab:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Scroll:    key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
		Narrower:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "")),
		Wider:     key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("=", "window")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Edit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick words")),
		Top:       key.NewBinding(key.WithKeys("g", "home")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end")),
		Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up")),
	}
}

// helpLine renders "key desc" pairs. A binding with an empty description
// joins the next one, so "-" and "=" read as "-/= window".
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	prefix := ""
	for _, binding := range bindings {
		h := binding.Help()
		if h.Desc == "" {
			prefix += h.Key + "/"
			continue
		}
		parts = append(parts, prefix+h.Key+" "+h.Desc)
		prefix = ""
	}
	return strings.Join(parts, "  ")
}
