package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	label  string
	action func()
}

// menu is a small selectable list drawn over the editor.
type menu struct {
	title    string
	items    []menuItem
	selected int
}

func (m *menu) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.selected = (m.selected + delta + len(m.items)) % len(m.items)
}

// handle applies a key and reports whether the menu should close. The
// chosen action is returned rather than run so the caller can close the
// menu first.
func (m *menu) handle(msg tea.KeyMsg) (closed bool, action func()) {
	switch msg.String() {
	case "up", "k", "shift+tab":
		m.move(-1)
	case "down", "j", "tab":
		m.move(1)
	case "esc", "q", "ctrl+c":
		return true, nil
	case "enter":
		if len(m.items) == 0 {
			return true, nil
		}
		return true, m.items[m.selected].action
	}
	return false, nil
}

func (m *menu) view(theme Theme) string {
	lines := []string{theme.Prompt.Render(m.title)}
	if len(m.items) == 0 {
		lines = append(lines, theme.Meta.Render("(empty)"))
	}
	for i, item := range m.items {
		line := "  " + item.label
		if i == m.selected {
			line = theme.Selected.Render("› " + item.label)
		}
		lines = append(lines, line)
	}
	return theme.Overlay.Render(strings.Join(lines, "\n"))
}
