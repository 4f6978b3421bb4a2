package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pkt.systems/tabula/schema"
)

// tabSpan records the columns a rendered tab occupies on the tab strip.
type tabSpan struct {
	start int
	end   int
	index int
}

const dirtyMark = "●"

func tabTitle(tab schema.TabSnapshot) string {
	if tab.Dirty {
		return tab.Label + " " + dirtyMark
	}
	return tab.Label
}

// renderTabs draws the tab strip and returns the clickable span of every
// tab that fit within width.
func renderTabs(tabs []schema.TabSnapshot, theme Theme, width int) (string, []tabSpan) {
	if len(tabs) == 0 {
		return theme.TabBar.Width(width).Render(theme.Meta.Render(" no open documents")), nil
	}
	var parts []string
	var spans []tabSpan
	x := 0
	for i, tab := range tabs {
		style := theme.TabInactive
		if tab.Active {
			style = theme.TabActive
		}
		cell := style.Render(tabTitle(tab))
		w := lipgloss.Width(cell)
		if width > 0 && x+w > width-1 && i > 0 {
			parts = append(parts, theme.TabInactive.Render("…"))
			break
		}
		parts = append(parts, cell)
		spans = append(spans, tabSpan{start: x, end: x + w, index: i})
		x += w
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return theme.TabBar.Width(width).Render(line), spans
}

func spanAt(spans []tabSpan, x int) (int, bool) {
	for _, span := range spans {
		if x >= span.start && x < span.end {
			return span.index, true
		}
	}
	return 0, false
}

// renderStatus draws the status line: document and language on the left,
// the notice in the middle and the cursor position on the right.
func renderStatus(status schema.Status, notice schema.Notice, theme Theme, width int) string {
	left := " " + status.Label
	if status.Language != "" {
		left += " · " + status.Language
	}
	right := ""
	if status.Line != nil && status.Column != nil {
		right = fmt.Sprintf("Ln %d, Col %d ", *status.Line, *status.Column)
	}
	middle := ""
	if notice.Message != "" {
		style := theme.Meta
		if notice.Level == schema.NoticeError {
			style = theme.Error
		}
		middle = "  " + style.Render(notice.Message)
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + middle + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(width).MaxWidth(width).Render(bar)
}
