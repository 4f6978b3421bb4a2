package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/tabula/core"
	"pkt.systems/tabula/schema"
)

type promptKind int

const (
	promptOpen promptKind = iota
	promptSave
	promptConfirmClose
)

// prompt is the single modal input line. Exactly one of the callbacks is
// set, matching kind, and it is invoked exactly once.
type prompt struct {
	kind       promptKind
	title      string
	input      textinput.Model
	filters    []schema.FileFilter
	filter     int
	candidates []string

	onOpen   func([]string)
	onSave   func(string)
	onDecide func(core.CloseDecision)
}

func newPromptInput(value string) textinput.Model {
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 4096
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return in
}

// ShowOpenDialog implements core.Dialogs.
func (m *Model) ShowOpenDialog(filters []schema.FileFilter, done func([]string)) {
	if m.prompt != nil {
		done(nil)
		return
	}
	if len(filters) == 0 {
		filters = schema.DefaultOpenFilters()
	}
	m.prompt = &prompt{
		kind:    promptOpen,
		title:   "Open",
		input:   newPromptInput(m.promptDir()),
		filters: filters,
		onOpen:  done,
	}
}

// ShowSaveDialog implements core.Dialogs.
func (m *Model) ShowSaveDialog(suggested string, done func(string)) {
	if m.prompt != nil {
		done("")
		return
	}
	m.prompt = &prompt{
		kind:   promptSave,
		title:  "Save as",
		input:  newPromptInput(suggested),
		onSave: done,
	}
}

// ConfirmClose implements core.ClosePolicy.
func (m *Model) ConfirmClose(doc *core.Document, decide func(core.CloseDecision)) {
	if m.prompt != nil {
		decide(core.CloseCancel)
		return
	}
	in := textinput.New()
	in.Prompt = ""
	m.prompt = &prompt{
		kind:     promptConfirmClose,
		title:    fmt.Sprintf("Save changes to %s? [y]es [n]o [c]ancel", doc.Label()),
		input:    in,
		onDecide: decide,
	}
}

func (m *Model) promptDir() string {
	if doc := m.session.ActiveDocument(); doc != nil && doc.FilePath() != "" {
		dir := doc.FilePath()
		if i := strings.LastIndexAny(dir, `/\`); i >= 0 {
			return dir[:i+1]
		}
	}
	return ""
}

// updatePrompt feeds a key to the open prompt. The prompt is cleared before
// its callback runs so the callback may open another one.
func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	p := m.prompt
	if p.kind == promptConfirmClose {
		var decision core.CloseDecision
		switch strings.ToLower(msg.String()) {
		case "y":
			decision = core.CloseSave
		case "n":
			decision = core.CloseDiscard
		case "c", "esc", "ctrl+c":
			decision = core.CloseCancel
		default:
			return nil
		}
		m.prompt = nil
		p.onDecide(decision)
		return nil
	}

	switch msg.String() {
	case "esc", "ctrl+c":
		m.prompt = nil
		if p.onOpen != nil {
			p.onOpen(nil)
		} else {
			p.onSave("")
		}
		return nil
	case "enter":
		m.submitPrompt(p)
		return nil
	case "tab":
		if p.kind == promptOpen {
			value, candidates := completePath(m.fs, p.input.Value(), p.filters[p.filter])
			p.input.SetValue(value)
			p.input.CursorEnd()
			p.candidates = candidates
		}
		return nil
	case "ctrl+f":
		if p.kind == promptOpen {
			p.filter = (p.filter + 1) % len(p.filters)
			p.candidates = nil
		}
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (m *Model) submitPrompt(p *prompt) {
	value := strings.TrimSpace(p.input.Value())
	if p.kind == promptSave {
		m.prompt = nil
		p.onSave(value)
		return
	}
	paths, err := expandOpen(m.fs, value, p.filters[p.filter])
	if err != nil {
		m.setNotice(schema.Notice{Level: schema.NoticeError, Message: err.Error(), Err: err})
		return
	}
	if value != "" && len(paths) == 0 {
		m.setNotice(schema.Notice{Level: schema.NoticeInfo, Message: "no files match " + value})
		return
	}
	m.prompt = nil
	p.onOpen(paths)
}

func (p *prompt) view(theme Theme, width int) string {
	var b strings.Builder
	b.WriteString(theme.Prompt.Render(p.title))
	if p.kind == promptOpen {
		b.WriteString(theme.Meta.Render("  " + p.filters[p.filter].Label() + "  (tab complete, ctrl+f filter, esc cancel)"))
	}
	if p.kind == promptConfirmClose {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(p.input.View())
	if len(p.candidates) > 1 {
		b.WriteString("\n")
		b.WriteString(theme.Meta.Width(width).Render(strings.Join(p.candidates, "  ")))
	}
	return b.String()
}
