package core

import (
	"testing"

	"github.com/spf13/afero"

	"pkt.systems/tabula/internal/engine"
	"pkt.systems/tabula/internal/persist"
	"pkt.systems/tabula/schema"
)

type memProps struct {
	state schema.SessionState
	ok    bool
	saves int
}

func (p *memProps) Load() (schema.SessionState, bool, error) {
	return p.state, p.ok, nil
}

func (p *memProps) Save(state schema.SessionState) error {
	p.state = state
	p.ok = true
	p.saves++
	return nil
}

type recordingSink struct {
	statuses []schema.Status
	recent   [][]string
	notices  []schema.Notice
}

func (r *recordingSink) OnStatus(status schema.Status) { r.statuses = append(r.statuses, status) }

func (r *recordingSink) OnRecentFiles(event schema.RecentFilesEvent) {
	r.recent = append(r.recent, event.Paths)
}

func (r *recordingSink) OnNotice(notice schema.Notice) { r.notices = append(r.notices, notice) }

// manualExecutor holds submitted jobs until the test completes them.
type manualExecutor struct {
	jobs []manualJob
}

type manualJob struct {
	work func() error
	done func(error)
}

func (m *manualExecutor) Submit(work func() error, done func(error)) {
	m.jobs = append(m.jobs, manualJob{work: work, done: done})
}

func (m *manualExecutor) complete(t *testing.T, i int) {
	t.Helper()
	if i >= len(m.jobs) || m.jobs[i].work == nil {
		t.Fatalf("no pending job %d", i)
	}
	job := m.jobs[i]
	m.jobs[i] = manualJob{}
	job.done(job.work())
}

type harness struct {
	s      *session
	engine *engine.Engine
	fs     afero.Fs
	kv     *persist.MemoryKV
	props  *memProps
	sink   *recordingSink
}

type harnessOption func(*schema.SessionConfig, *SessionDeps)

func withExecutor(exec Executor) harnessOption {
	return func(_ *schema.SessionConfig, deps *SessionDeps) { deps.Executor = exec }
}

func withDialogs(d Dialogs) harnessOption {
	return func(_ *schema.SessionConfig, deps *SessionDeps) { deps.Dialogs = d }
}

func withClosePolicy(p ClosePolicy) harnessOption {
	return func(cfg *schema.SessionConfig, deps *SessionDeps) {
		cfg.ConfirmCloseDirty = true
		deps.ClosePolicy = p
	}
}

func withConfig(fn func(*schema.SessionConfig)) harnessOption {
	return func(cfg *schema.SessionConfig, _ *SessionDeps) { fn(cfg) }
}

// newHarness builds an unstarted session over in-memory collaborators.
// Pass a previous harness to share its store, properties and filesystem.
func newHarness(t *testing.T, prev *harness, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		engine: engine.New(nil),
		fs:     afero.NewMemMapFs(),
		kv:     persist.NewMemoryKV(),
		props:  &memProps{},
		sink:   &recordingSink{},
	}
	if prev != nil {
		h.fs, h.kv, h.props = prev.fs, prev.kv, prev.props
	}
	cfg := schema.SessionConfig{StateDir: t.TempDir()}
	deps := SessionDeps{
		Engine:     h.engine,
		Files:      AferoFS{Fs: h.fs},
		Store:      h.kv,
		Properties: h.props,
		EventSink:  h.sink,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}
	sess, err := NewSession(cfg, deps)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	h.s = sess.(*session)
	return h
}

func startHarness(t *testing.T, prev *harness, opts ...harnessOption) *harness {
	t.Helper()
	h := newHarness(t, prev, opts...)
	if err := h.s.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return h
}

func (h *harness) writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := afero.WriteFile(h.fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func (h *harness) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func (h *harness) open(t *testing.T, path string) *Tab {
	t.Helper()
	var (
		got    *Tab
		gotErr error
		called bool
	)
	h.s.OpenFile(path, func(tab *Tab, err error) {
		got, gotErr, called = tab, err, true
	})
	if !called {
		t.Fatalf("open %s did not complete", path)
	}
	if gotErr != nil {
		t.Fatalf("open %s: %v", path, gotErr)
	}
	return got
}

func (h *harness) edit(t *testing.T, doc *Document, content string) {
	t.Helper()
	if err := h.engine.SetContent(doc.Buffer(), content); err != nil {
		t.Fatalf("edit: %v", err)
	}
}

func (h *harness) save(t *testing.T, tab *Tab, force bool) {
	t.Helper()
	var gotErr error
	called := false
	h.s.SaveTab(tab, force, func(err error) { gotErr, called = err, true })
	if !called {
		t.Fatalf("save did not complete")
	}
	if gotErr != nil {
		t.Fatalf("save: %v", gotErr)
	}
}

func (h *harness) close(t *testing.T, tab *Tab) {
	t.Helper()
	var gotErr error
	called := false
	h.s.CloseTab(tab, func(err error) { gotErr, called = err, true })
	if !called {
		t.Fatalf("close did not complete")
	}
	if gotErr != nil {
		t.Fatalf("close: %v", gotErr)
	}
}

func assertDirtyInvariant(t *testing.T, doc *Document) {
	t.Helper()
	version, err := doc.Version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	want := version != doc.SavedVersion()
	if doc.Dirty() != want {
		t.Fatalf("document dirty=%v but version %d vs saved %d", doc.Dirty(), version, doc.SavedVersion())
	}
	if doc.Tab() != nil && doc.Tab().Dirty != want {
		t.Fatalf("tab dirty=%v diverged from document dirty=%v", doc.Tab().Dirty, want)
	}
}
