package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

// helpMarkdown lists every binding in keys as a markdown table.
func helpMarkdown(keys KeyMap) string {
	var b strings.Builder
	b.WriteString("# tabula\n\n")
	b.WriteString("Open documents, unsaved edits and recent files survive restarts.\n\n")
	b.WriteString("| key | action |\n|---|---|\n")
	for _, group := range keys.FullHelp() {
		for _, binding := range group {
			writeHelpRow(&b, binding)
		}
	}
	b.WriteString("\nIn the open prompt `tab` completes paths, `ctrl+f` cycles file filters and glob patterns such as `src/**/*.r` open every match.\n")
	b.WriteString("Right click a tab for its menu, middle click closes it.\n")
	return b.String()
}

func writeHelpRow(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	b.WriteString("| `" + h.Key + "` | " + h.Desc + " |\n")
}

// renderHelp renders the help text with glamour, falling back to the raw
// markdown when rendering fails.
func renderHelp(keys KeyMap, theme Theme, width int) string {
	content := helpMarkdown(keys)
	if width <= 0 {
		width = 80
	}
	style := "dark"
	if theme.Light {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
