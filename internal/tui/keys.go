package tui

import "github.com/charmbracelet/bubbles/key"

// Pane is the focused area of the explorer screen.
type Pane int

const (
	PaneURL Pane = iota
	PaneFiles
	PaneSource
	PaneConverted
	numPanes
)

func (p Pane) String() string {
	switch p {
	case PaneURL:
		return "Repository"
	case PaneFiles:
		return "Files"
	case PaneSource:
		return "Source"
	case PaneConverted:
		return "Converted"
	default:
		return "Unknown"
	}
}

type keyMap struct {
	NextPane key.Binding
	PrevPane key.Binding
	Submit   key.Binding
	Up       key.Binding
	Down     key.Binding
	Convert  key.Binding
	NextLang key.Binding
	PrevLang key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
}

var keys = keyMap{
	NextPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	PrevPane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "explore/open")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Convert:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "convert")),
	NextLang: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next language")),
	PrevLang: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev language")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQ:   key.NewBinding(key.WithKeys("ctrl+c")),
}
