// Package tui is the terminal front end: a tab strip, a text area bound to
// the active document's buffer and a status line, driven by a core.Session.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"pkt.systems/pslog"

	"pkt.systems/tabula/core"
	"pkt.systems/tabula/internal/eventbus"
	"pkt.systems/tabula/schema"
)

// Buffers is the slice of the buffer engine the editor widget needs.
type Buffers interface {
	Content(id schema.BufferID) (string, error)
	SetContent(id schema.BufferID, content string) error
	Version(id schema.BufferID) (int64, error)
	Cursor(id schema.BufferID) (line, col int, err error)
	SetCursor(id schema.BufferID, line, col int) error
}

// Options configures a Model.
type Options struct {
	Buffers     Buffers
	Bus         *eventbus.Bus
	Fs          afero.Fs
	Theme       schema.ThemeName
	LineNumbers bool
	// Paths are opened once the session has restored.
	Paths  []string
	Logger pslog.Logger
}

type engineReadyMsg struct{ err error }

type busMsg eventbus.Event

// synced tracks which buffer version the text area currently shows.
// readOnly is set when the text area cannot hold the content verbatim; it
// expands tabs, splits carriage returns and caps the line count.
type synced struct {
	ok       bool
	readOnly bool
	buffer   schema.BufferID
	version  int64
	value    string
}

// Model is the bubbletea model. It is used by pointer because the session
// calls back into it as its Dialogs and ClosePolicy.
type Model struct {
	ctx     context.Context
	session core.Session
	buffers Buffers
	exec    *ProgramExecutor
	events  <-chan eventbus.Event
	unsub   func()
	fs      afero.Fs
	log     pslog.Logger
	paths   []string

	theme  Theme
	keys   KeyMap
	help   help.Model
	editor textarea.Model
	shown  synced

	prompt   *prompt
	menu     *menu
	showHelp bool
	helpView string

	status schema.Status
	recent []string
	notice schema.Notice
	spans  []tabSpan

	width    int
	height   int
	started  bool
	quitting bool
	err      error
}

// New constructs a Model. Attach must be called before the program runs.
func New(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	editor := textarea.New()
	editor.Prompt = ""
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = opts.LineNumbers
	editor.Placeholder = "ctrl+n new file, ctrl+o open, f1 help"
	m := &Model{
		ctx:     ctx,
		buffers: opts.Buffers,
		exec:    NewProgramExecutor(),
		fs:      fs,
		log:     logger,
		paths:   append([]string(nil), opts.Paths...),
		theme:   ThemeFor(opts.Theme),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		editor:  editor,
	}
	if opts.Bus != nil {
		m.events, m.unsub = opts.Bus.Subscribe()
	}
	return m
}

// Executor returns the executor the session must use so completions land
// in Update.
func (m *Model) Executor() *ProgramExecutor { return m.exec }

// Attach binds the session and listens to its tab registry.
func (m *Model) Attach(session core.Session) {
	m.session = session
	session.Tabs().Subscribe(m.onTabEvent)
}

// Err returns the error that ended the program, if any.
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitEngine(), m.waitEvent())
}

func (m *Model) waitEngine() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return engineReadyMsg{err: session.WaitEngine(ctx)}
	}
}

func (m *Model) waitEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return busMsg(event)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.relayout()
		m.helpView = ""
	case engineReadyMsg:
		if cmd := m.start(msg.err); cmd != nil {
			return m, cmd
		}
	case completedMsg:
		msg.done(msg.err)
	case busMsg:
		m.applyEvent(eventbus.Event(msg))
		cmds = append(cmds, m.waitEvent())
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			m.syncEditor()
			return m, cmd
		}
		if m.shown.ok {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
			m.pushEdits()
		}
	}
	m.syncEditor()
	return m, tea.Batch(cmds...)
}

func (m *Model) start(err error) tea.Cmd {
	if err == nil {
		err = m.session.Start(m.ctx)
	}
	if err != nil {
		m.log.Error("tui session start failed", "err", err)
		m.err = err
		return tea.Quit
	}
	m.started = true
	for _, path := range m.paths {
		m.session.Dispatch(schema.Command{ID: schema.CommandOpenFile, Path: path})
	}
	m.paths = nil
	return nil
}

// handleKey runs global bindings and modal input. It reports false when the
// key belongs to the text area.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.prompt != nil {
		return m.updatePrompt(msg), true
	}
	if m.menu != nil {
		closed, action := m.menu.handle(msg)
		if closed {
			m.menu = nil
			if action != nil {
				action()
			}
		}
		return nil, true
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m.quit(), true
		}
		m.showHelp = false
		return nil, true
	}
	if msg.String() == "ctrl+c" || key.Matches(msg, m.keys.Quit) {
		return m.quit(), true
	}
	if !m.started {
		return nil, true
	}
	m.notice = schema.Notice{}
	switch {
	case key.Matches(msg, m.keys.New):
		m.dispatch(schema.CommandNewFile, "")
	case key.Matches(msg, m.keys.Open):
		m.dispatch(schema.CommandOpenFile, "")
	case key.Matches(msg, m.keys.Recent):
		m.openRecentMenu()
	case key.Matches(msg, m.keys.Save):
		m.dispatch(schema.CommandSaveFile, "")
	case key.Matches(msg, m.keys.SaveAs):
		m.dispatch(schema.CommandSaveFileAs, "")
	case key.Matches(msg, m.keys.Close):
		m.dispatch(schema.CommandCloseFile, "")
	case key.Matches(msg, m.keys.Revert):
		m.dispatch(schema.CommandRevertFile, "")
	case key.Matches(msg, m.keys.NextTab):
		m.dispatch(schema.CommandNextTab, "")
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) dispatch(id schema.CommandID, path string) {
	m.session.Dispatch(schema.Command{ID: id, Path: path})
}

func (m *Model) quit() tea.Cmd {
	m.shutdown(m.ctx)
	return tea.Quit
}

// shutdown flushes the session once. Run also calls it when the program
// ends without a quit key, e.g. on a signal.
func (m *Model) shutdown(ctx context.Context) {
	if m.quitting {
		return
	}
	m.quitting = true
	m.pushEdits()
	if m.session != nil && m.started {
		if err := m.session.Shutdown(ctx); err != nil {
			m.log.Warn("tui session shutdown failed", "err", err)
			m.err = err
		}
	}
	if m.unsub != nil {
		m.unsub()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.started || m.prompt != nil || m.menu != nil || msg.Y != 0 {
		return
	}
	if msg.Action != tea.MouseActionPress {
		return
	}
	index, ok := spanAt(m.spans, msg.X)
	if !ok {
		return
	}
	tabs := m.session.Tabs().Tabs()
	if index >= len(tabs) {
		return
	}
	tab := tabs[index]
	switch msg.Button {
	case tea.MouseButtonLeft:
		_ = m.session.Tabs().Activate(tab)
	case tea.MouseButtonMiddle:
		m.session.Tabs().RequestClose(tab)
	case tea.MouseButtonRight:
		m.session.Tabs().RightClick(tab)
	}
}

// onTabEvent runs after the session has handled the same event.
func (m *Model) onTabEvent(event core.TabEvent) {
	switch event.Type {
	case schema.TabEventActivated:
		m.syncEditor()
	case schema.TabEventRightClicked:
		m.openTabMenu(event.Tab)
	}
}

func (m *Model) openTabMenu(tab *core.Tab) {
	if m.prompt != nil || tab == nil {
		return
	}
	registry := m.session.Tabs()
	onTab := func(id schema.CommandID) func() {
		return func() {
			if registry.Index(tab) < 0 {
				return
			}
			if registry.Active() != tab {
				_ = registry.Activate(tab)
			}
			m.dispatch(id, "")
		}
	}
	m.menu = &menu{
		title: tab.Label,
		items: []menuItem{
			{label: "Save", action: onTab(schema.CommandSaveFile)},
			{label: "Save as…", action: onTab(schema.CommandSaveFileAs)},
			{label: "Revert", action: onTab(schema.CommandRevertFile)},
			{label: "Close", action: onTab(schema.CommandCloseFile)},
		},
	}
}

func (m *Model) openRecentMenu() {
	items := make([]menuItem, 0, len(m.recent))
	for _, path := range m.recent {
		items = append(items, menuItem{
			label:  path,
			action: func() { m.dispatch(schema.CommandOpenRecent, path) },
		})
	}
	m.menu = &menu{title: "Recent files", items: items}
}

func (m *Model) applyEvent(event eventbus.Event) {
	switch event.Type {
	case eventbus.EventStatus:
		m.status = event.Status
	case eventbus.EventRecentFiles:
		m.recent = append([]string(nil), event.Recent.Paths...)
	case eventbus.EventNotice:
		m.setNotice(event.Notice)
	}
}

func (m *Model) setNotice(notice schema.Notice) {
	m.notice = notice
}

// syncEditor reloads the text area when the active buffer or its version
// moved without going through the text area, e.g. after a tab switch or a
// revert.
func (m *Model) syncEditor() {
	if m.session == nil || m.buffers == nil {
		return
	}
	doc := m.session.ActiveDocument()
	if doc == nil || doc.Disposed() {
		if m.shown.ok {
			m.editor.Reset()
			m.editor.Blur()
			m.shown = synced{}
		}
		return
	}
	buf := doc.Buffer()
	version, err := m.buffers.Version(buf)
	if err != nil {
		return
	}
	if m.shown.ok && m.shown.buffer == buf && m.shown.version == version {
		return
	}
	content, err := m.buffers.Content(buf)
	if err != nil {
		return
	}
	line, col, err := m.buffers.Cursor(buf)
	if err != nil {
		line, col = 0, 0
	}
	m.editor.SetValue(content)
	placeCursor(&m.editor, line, col)
	value := m.editor.Value()
	readOnly := value != content
	if readOnly {
		m.editor.Blur()
		m.setNotice(schema.Notice{Level: schema.NoticeInfo, Message: doc.Label() + " is read-only here: tabs, carriage returns or too many lines"})
	} else {
		m.editor.Focus()
	}
	m.shown = synced{ok: true, readOnly: readOnly, buffer: buf, version: version, value: value}
}

// pushEdits writes text area changes and the cursor back into the buffer.
// The buffer's change notification drives the session's dirty tracking.
func (m *Model) pushEdits() {
	if !m.shown.ok || m.shown.readOnly || m.buffers == nil {
		return
	}
	buf := m.shown.buffer
	if value := m.editor.Value(); value != m.shown.value {
		if err := m.buffers.SetContent(buf, value); err != nil {
			m.log.Warn("tui buffer update failed", "err", err)
			m.shown = synced{}
			return
		}
		version, err := m.buffers.Version(buf)
		if err != nil {
			m.shown = synced{}
			return
		}
		m.shown.version = version
		m.shown.value = value
	}
	info := m.editor.LineInfo()
	_ = m.buffers.SetCursor(buf, m.editor.Line(), info.StartColumn+info.ColumnOffset)
}

// placeCursor moves the cursor of a freshly filled text area, which starts
// at the end of its content, to line and col.
func placeCursor(editor *textarea.Model, line, col int) {
	for guard := editor.LineCount() * 4; editor.Line() > line && guard > 0; guard-- {
		editor.CursorUp()
	}
	editor.SetCursor(col)
}

func (m *Model) relayout() {
	m.help.Width = m.width
	m.editor.SetWidth(m.width)
	height := m.height - 3
	if height < 1 {
		height = 1
	}
	m.editor.SetHeight(height)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	var tabs []schema.TabSnapshot
	if m.session != nil && m.started {
		tabs = m.session.Tabs().Snapshot()
	}
	strip, spans := renderTabs(tabs, m.theme, m.width)
	m.spans = spans

	body := m.editor.View()
	switch {
	case !m.started:
		body = m.theme.Meta.Render(" restoring session…")
	case m.showHelp:
		if m.helpView == "" {
			m.helpView = renderHelp(m.keys, m.theme, m.width)
		}
		body = m.helpView
	case m.menu != nil:
		body = m.menu.view(m.theme)
	}
	body = lipgloss.NewStyle().Height(m.height - 3).MaxHeight(m.height - 3).Render(body)

	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.prompt != nil {
		footer = m.prompt.view(m.theme, m.width)
	}
	status := renderStatus(m.status, m.notice, m.theme, m.width)
	return strings.Join([]string{strip, body, status, footer}, "\n")
}

// Run starts the program on the terminal and blocks until it exits.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	m.exec.Bind(p.Send)
	_, err := p.Run()
	m.shutdown(context.WithoutCancel(m.ctx))
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return m.err
}
