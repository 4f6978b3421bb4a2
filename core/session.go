package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"pkt.systems/pslog"
	"pkt.systems/tabula/internal/logx"
	"pkt.systems/tabula/internal/persist"
	"pkt.systems/tabula/schema"
)

// session implements Session.
type session struct {
	cfg     schema.SessionConfig
	engine  BufferEngine
	gate    *loadGate
	files   FileSystem
	dialogs Dialogs
	exec    Executor
	policy  ClosePolicy
	sink    EventSink
	cache   *persist.Cache
	props   PropertiesStore
	logger  pslog.Logger
	ctx     context.Context

	tabs      *TabRegistry
	active    *Document
	ids       *idGenerator
	recent    *recentFiles
	ready     bool
	restoring bool
	pending   []schema.Command
}

type noDialogs struct{}

func (noDialogs) ShowOpenDialog(_ []schema.FileFilter, done func([]string)) { done(nil) }
func (noDialogs) ShowSaveDialog(_ string, done func(string))                { done("") }

// NewSession constructs a session. It does not touch persisted state until
// Start.
func NewSession(cfg schema.SessionConfig, deps SessionDeps) (Session, error) {
	normalized, err := schema.NormalizeSessionConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Engine == nil {
		return nil, errors.New("buffer engine is required")
	}
	if deps.Store == nil {
		return nil, errors.New("document store is required")
	}
	if deps.Properties == nil {
		return nil, errors.New("properties store is required")
	}
	if deps.Files == nil {
		deps.Files = NewOSFileSystem()
	}
	if deps.Dialogs == nil {
		deps.Dialogs = noDialogs{}
	}
	if deps.Executor == nil {
		deps.Executor = InlineExecutor{}
	}
	if !cfg.ConfirmCloseDirty {
		deps.ClosePolicy = AlwaysDiscard
	} else if deps.ClosePolicy == nil {
		return nil, errors.New("confirm close dirty requires a close policy")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	var load func(context.Context) error
	if loader, ok := deps.Engine.(EngineLoader); ok {
		load = loader.Load
	}
	s := &session{
		cfg:     cfg,
		engine:  deps.Engine,
		gate:    newLoadGate(load),
		files:   deps.Files,
		dialogs: deps.Dialogs,
		exec:    deps.Executor,
		policy:  deps.ClosePolicy,
		sink:    deps.EventSink,
		cache:   persist.NewCache(deps.Store, logger),
		props:   deps.Properties,
		logger:  logger,
		ctx:     pslog.ContextWithLogger(context.Background(), logger),
		tabs:    NewTabRegistry(),
		ids:     newIDGenerator(),
		recent:  newRecentFiles(cfg.RecentMax),
	}
	s.tabs.Subscribe(s.onTabEvent)
	return s, nil
}

func (s *session) WaitEngine(ctx context.Context) error {
	return s.gate.wait(ctx)
}

func (s *session) Start(ctx context.Context) error {
	if s.ready {
		return nil
	}
	if err := s.WaitEngine(ctx); err != nil {
		s.logger.Error("session engine load failed", "err", err)
		return fmt.Errorf("load engine: %w", err)
	}
	s.restore()
	s.ready = true
	s.emitRecent()
	s.emitStatus()
	pending := s.pending
	s.pending = nil
	if len(pending) > 0 {
		s.logger.Debug("session replaying queued commands", "count", len(pending))
	}
	for _, cmd := range pending {
		s.Dispatch(cmd)
	}
	return nil
}

func (s *session) Ready() bool { return s.ready }

func (s *session) Tabs() *TabRegistry { return s.tabs }

func (s *session) ActiveDocument() *Document { return s.active }

func (s *session) RecentFiles() []string { return s.recent.Entries() }

func (s *session) State() schema.SessionState {
	state := schema.SessionState{
		OpenFiles:   s.openIDs(),
		RecentFiles: s.recent.Entries(),
	}
	if s.active != nil {
		id := s.active.id
		state.ActiveTab = &id
	}
	return state
}

func (s *session) Status() schema.Status {
	doc := s.active
	if doc == nil || doc.Disposed() {
		return schema.Status{}
	}
	status := schema.Status{Label: doc.label}
	if line, col, err := s.engine.Cursor(doc.buffer); err == nil {
		line++
		col++
		status.Line = &line
		status.Column = &col
	}
	if lang, err := s.engine.Language(doc.buffer); err == nil {
		status.Language = schema.DisplayLanguage(lang)
	}
	return status
}

func (s *session) NewFile() (*Tab, error) {
	n := s.ids.untitledNumber()
	doc, err := newDocument(s.engine, s.ids.document(), schema.UntitledLabel(s.cfg.UntitledPrefix, n), "", "", schema.LanguagePlainText)
	if err != nil {
		s.logger.Warn("session new file failed", "err", err)
		return nil, err
	}
	logx.WithDocument(s.ctx, doc.id).Info("session new file", "label", doc.label)
	return s.addDocument(doc), nil
}

func (s *session) OpenFile(path string, done func(*Tab, error)) {
	finish := func(tab *Tab, err error) {
		if done != nil {
			done(tab, err)
		}
	}
	if path != "" {
		s.openPath(path, finish)
		return
	}
	s.dialogs.ShowOpenDialog(s.cfg.OpenFilters, func(paths []string) {
		if len(paths) == 0 {
			s.logger.Debug("session open dialog dismissed")
			finish(nil, schema.ErrNoSelection)
			return
		}
		s.openPaths(paths, finish)
	})
}

// openPaths opens each path in order and reports the last result.
func (s *session) openPaths(paths []string, done func(*Tab, error)) {
	s.openPath(paths[0], func(tab *Tab, err error) {
		if len(paths) == 1 {
			done(tab, err)
			return
		}
		s.openPaths(paths[1:], done)
	})
}

func (s *session) openPath(path string, done func(*Tab, error)) {
	norm, err := schema.NormalizeFilePath(path)
	if err != nil {
		done(nil, fmt.Errorf("open %q: %w: %w", path, schema.ErrRead, err))
		return
	}
	log := logx.WithPath(s.logger, norm)
	if tab := s.findByPath(norm); tab != nil {
		log.Debug("session open focused existing tab")
		_ = s.tabs.Activate(tab)
		done(tab, nil)
		return
	}
	var content string
	s.exec.Submit(func() error {
		text, err := s.files.ReadFile(norm)
		content = text
		return err
	}, func(err error) {
		if err != nil {
			err = fmt.Errorf("open %s: %w: %w", norm, schema.ErrRead, err)
			log.Warn("session open failed", "err", err)
			s.notify(err)
			done(nil, err)
			return
		}
		if tab := s.findByPath(norm); tab != nil {
			_ = s.tabs.Activate(tab)
			done(tab, nil)
			return
		}
		s.recent.Touch(norm)
		s.emitRecent()
		doc, err := newDocument(s.engine, s.ids.document(), filepath.Base(norm), norm, content, "")
		if err != nil {
			log.Warn("session open failed", "err", err)
			s.notify(err)
			done(nil, err)
			return
		}
		log.Info("session file opened", "document", int64(doc.id), "bytes", len(content))
		done(s.addDocument(doc), nil)
	})
}

func (s *session) SaveTab(tab *Tab, forceDialog bool, done func(error)) {
	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}
	if s.tabs.Index(tab) < 0 {
		finish(fmt.Errorf("save: %w", schema.ErrTabNotFound))
		return
	}
	doc := tab.Document()
	if doc == nil {
		finish(fmt.Errorf("save: %w", schema.ErrNoDocument))
		return
	}
	if !forceDialog && doc.filePath != "" {
		s.writeDocument(doc, doc.filePath, finish)
		return
	}
	suggested := doc.filePath
	if suggested == "" {
		suggested = doc.label
	}
	s.dialogs.ShowSaveDialog(suggested, func(path string) {
		if path == "" {
			s.logger.Debug("session save dialog dismissed")
			finish(schema.ErrNoSelection)
			return
		}
		if doc.Disposed() {
			finish(fmt.Errorf("save: %w", schema.ErrDisposed))
			return
		}
		norm, err := schema.NormalizeFilePath(path)
		if err != nil {
			finish(fmt.Errorf("save %q: %w: %w", path, schema.ErrWrite, err))
			return
		}
		if other := s.findByPath(norm); other != nil && other != tab {
			err := fmt.Errorf("save %s: %w", norm, schema.ErrAlreadyOpen)
			logx.WithDocument(s.ctx, doc.id).Warn("session save as rejected", "path", norm, "err", err)
			s.notify(err)
			finish(err)
			return
		}
		s.writeDocument(doc, norm, finish)
	})
}

// writeDocument writes the buffer to path. The saved version is the one
// captured here, so completions that arrive out of order or after further
// edits never clear dirty for content that was not written.
func (s *session) writeDocument(doc *Document, path string, done func(error)) {
	log := logx.WithPath(logx.WithDocument(s.ctx, doc.id), path)
	content, err := doc.Content()
	if err != nil {
		done(err)
		return
	}
	version, err := doc.Version()
	if err != nil {
		done(err)
		return
	}
	s.exec.Submit(func() error {
		return s.files.WriteFile(path, content)
	}, func(err error) {
		if err != nil {
			err = fmt.Errorf("save %s: %w: %w", path, schema.ErrWrite, err)
			log.Warn("session save failed", "err", err)
			s.notify(err)
			done(err)
			return
		}
		if doc.Disposed() {
			log.Debug("session save completed after close")
			done(nil)
			return
		}
		if path != doc.filePath {
			doc.setFilePath(path)
			s.recent.Touch(path)
			s.emitRecent()
			s.persistState()
		}
		if _, err := doc.markSavedAt(version); err != nil {
			done(err)
			return
		}
		s.cacheDocument(doc)
		s.tabs.Update(doc.tab)
		if doc == s.active {
			s.emitStatus()
		}
		log.Info("session file saved", "version", version, "dirty", doc.dirty)
		done(nil)
	})
}

func (s *session) CloseTab(tab *Tab, done func(error)) {
	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}
	if s.tabs.Index(tab) < 0 {
		finish(fmt.Errorf("close: %w", schema.ErrTabNotFound))
		return
	}
	doc := tab.Document()
	if doc == nil || !doc.Dirty() {
		finish(s.closeNow(tab))
		return
	}
	s.policy.ConfirmClose(doc, func(decision CloseDecision) {
		logx.WithDocument(s.ctx, doc.id).Debug("session close decision", "decision", decision.String())
		switch decision {
		case CloseDiscard:
			finish(s.closeNow(tab))
		case CloseSave:
			s.SaveTab(tab, false, func(err error) {
				if err != nil {
					finish(err)
					return
				}
				finish(s.closeNow(tab))
			})
		default:
			finish(schema.ErrCloseCancelled)
		}
	})
}

// closeNow moves focus off tab when needed, removes it, scrubs its snapshot
// and then disposes the buffer.
func (s *session) closeNow(tab *Tab) error {
	if s.tabs.Index(tab) < 0 {
		return fmt.Errorf("close: %w", schema.ErrTabNotFound)
	}
	if tab == s.tabs.Active() && s.tabs.Len() > 1 {
		s.tabs.Next()
	}
	if err := s.tabs.Remove(tab); err != nil {
		return err
	}
	s.persistState()
	doc := tab.Document()
	if doc == nil {
		return nil
	}
	log := logx.WithDocument(s.ctx, doc.id)
	if err := doc.dispose(); err != nil {
		log.Warn("session buffer dispose failed", "err", err)
	}
	log.Info("session file closed", "label", doc.label, "dirty", doc.dirty)
	return nil
}

func (s *session) RevertFile(tab *Tab, done func(error)) {
	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}
	if s.tabs.Index(tab) < 0 {
		finish(fmt.Errorf("revert: %w", schema.ErrTabNotFound))
		return
	}
	doc := tab.Document()
	if doc == nil {
		finish(fmt.Errorf("revert: %w", schema.ErrNoDocument))
		return
	}
	if doc.filePath == "" {
		finish(fmt.Errorf("revert %s: %w", doc.label, schema.ErrNoFilePath))
		return
	}
	path := doc.filePath
	log := logx.WithPath(logx.WithDocument(s.ctx, doc.id), path)
	var content string
	s.exec.Submit(func() error {
		text, err := s.files.ReadFile(path)
		content = text
		return err
	}, func(err error) {
		if doc.Disposed() {
			finish(fmt.Errorf("revert: %w", schema.ErrDisposed))
			return
		}
		if err != nil {
			err = fmt.Errorf("revert %s: %w: %w", path, schema.ErrRead, err)
			log.Warn("session revert failed", "err", err)
			s.notify(err)
			finish(err)
			return
		}
		if err := s.engine.SetContent(doc.buffer, content); err != nil {
			finish(err)
			return
		}
		version, err := doc.Version()
		if err != nil {
			finish(err)
			return
		}
		flipped, err := doc.markSavedAt(version)
		if err != nil {
			finish(err)
			return
		}
		if flipped {
			s.tabs.Update(tab)
		}
		s.cacheDocument(doc)
		log.Info("session file reverted")
		finish(nil)
	})
}

func (s *session) Dispatch(cmd schema.Command) {
	if !s.ready {
		s.pending = append(s.pending, cmd)
		return
	}
	report := func(err error) { s.report(cmd, err) }
	reportOpen := func(_ *Tab, err error) { s.report(cmd, err) }
	switch cmd.ID {
	case schema.CommandNewFile:
		_, err := s.NewFile()
		report(err)
	case schema.CommandOpenFile:
		s.OpenFile(cmd.Path, reportOpen)
	case schema.CommandOpenRecent:
		if cmd.Path == "" {
			report(schema.ErrNoSelection)
			return
		}
		s.OpenFile(cmd.Path, func(tab *Tab, err error) {
			if errors.Is(err, fs.ErrNotExist) && s.recent.Forget(cmd.Path) {
				s.emitRecent()
				s.persistState()
			}
			reportOpen(tab, err)
		})
	case schema.CommandCloseFile:
		s.withActive(report, func(tab *Tab) { s.CloseTab(tab, report) })
	case schema.CommandSaveFile:
		s.withActive(report, func(tab *Tab) { s.SaveTab(tab, false, report) })
	case schema.CommandSaveFileAs:
		s.withActive(report, func(tab *Tab) { s.SaveTab(tab, true, report) })
	case schema.CommandRevertFile:
		s.withActive(report, func(tab *Tab) { s.RevertFile(tab, report) })
	case schema.CommandNextTab:
		s.tabs.Next()
	default:
		report(fmt.Errorf("%w: %q", schema.ErrUnknownCommand, cmd.ID))
	}
}

func (s *session) withActive(report func(error), fn func(*Tab)) {
	tab := s.tabs.Active()
	if tab == nil || tab.Document() == nil {
		report(schema.ErrNoDocument)
		return
	}
	fn(tab)
}

// report surfaces command failures that were not already shown. Cancelled
// dialogs and close prompts are not failures.
func (s *session) report(cmd schema.Command, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, schema.ErrNoSelection), errors.Is(err, schema.ErrCloseCancelled):
		s.logger.Trace("session command cancelled", "command", cmd.ID)
		return
	case errors.Is(err, schema.ErrRead), errors.Is(err, schema.ErrWrite):
		return
	}
	s.logger.Warn("session command failed", "command", cmd.ID, "err", err)
	s.notify(err)
}

func (s *session) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var errs []error
	if s.active != nil && !s.active.Disposed() {
		if err := s.active.captureViewState(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, tab := range s.tabs.Tabs() {
		if doc := tab.Document(); doc != nil && !doc.Disposed() {
			if err := s.putSnapshot(doc); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := s.persistState(); err != nil {
		errs = append(errs, err)
	}
	s.logger.Info("session shutdown", "open_files", s.tabs.Len())
	return errors.Join(errs...)
}

// addDocument wires doc's buffer notifications, adds its tab, activates it
// and persists the open set.
func (s *session) addDocument(doc *Document) *Tab {
	s.track(doc)
	tab := newTab(doc)
	s.tabs.Add(tab)
	if !s.restoring {
		_ = s.tabs.Activate(tab)
		s.persistState()
	}
	return tab
}

func (s *session) track(doc *Document) {
	doc.cancels = append(doc.cancels,
		s.engine.OnContentChanged(doc.buffer, func() { s.onContentChanged(doc) }),
		s.engine.OnCursorChanged(doc.buffer, func(int, int) {
			if doc == s.active {
				s.emitStatus()
			}
		}),
	)
}

// onContentChanged keeps the dirty flag in lockstep with the buffer version
// and caches the document after every edit.
func (s *session) onContentChanged(doc *Document) {
	if doc.Disposed() {
		return
	}
	flipped, err := doc.contentChanged()
	if err != nil {
		logx.WithDocument(s.ctx, doc.id).Warn("session dirty check failed", "err", err)
		return
	}
	if flipped {
		s.tabs.Update(doc.tab)
	}
	s.cacheDocument(doc)
}

func (s *session) onTabEvent(event TabEvent) {
	switch event.Type {
	case schema.TabEventDeactivated:
		doc := event.Tab.Document()
		if doc == nil || doc.Disposed() {
			return
		}
		if err := doc.captureViewState(); err != nil {
			logx.WithDocument(s.ctx, doc.id).Warn("session view state capture failed", "err", err)
		}
		if s.tabs.Index(event.Tab) >= 0 {
			s.cacheDocument(doc)
		}
	case schema.TabEventActivated:
		s.activate(event.Tab)
	case schema.TabEventCloseRequested:
		s.CloseTab(event.Tab, func(err error) { s.report(schema.Command{ID: schema.CommandCloseFile}, err) })
	case schema.TabEventRightClicked:
		s.logger.Trace("session tab context menu", "label", event.Tab.Label)
	}
}

// activate points the editing surface at tab's document; a nil tab clears it.
func (s *session) activate(tab *Tab) {
	doc := tab.Document()
	if doc != nil && doc.Disposed() {
		doc = nil
	}
	s.active = doc
	if doc != nil {
		if err := doc.restoreViewState(); err != nil {
			logx.WithDocument(s.ctx, doc.id).Warn("session view state restore failed", "err", err)
		}
	}
	s.emitStatus()
	if !s.restoring {
		s.persistState()
	}
}

// persistState flushes the session state object and reconciles the
// snapshot cache against the open tabs.
func (s *session) persistState() error {
	state := s.State()
	var errs []error
	if err := s.props.Save(state); err != nil {
		s.logger.Warn("session state save failed", "err", err)
		errs = append(errs, err)
	}
	if err := s.cache.Reconcile(state.OpenFiles, s.ensureSnapshot); err != nil {
		s.logger.Warn("session cache reconcile failed", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *session) ensureSnapshot(id schema.DocumentID) error {
	doc := s.documentByID(id)
	if doc == nil {
		return nil
	}
	return s.putSnapshot(doc)
}

func (s *session) cacheDocument(doc *Document) {
	if err := s.putSnapshot(doc); err != nil {
		logx.WithDocument(s.ctx, doc.id).Warn("session cache write failed", "err", err)
	}
}

func (s *session) putSnapshot(doc *Document) error {
	if doc.Disposed() {
		return nil
	}
	snapshot, err := doc.Snapshot()
	if err != nil {
		return err
	}
	return s.cache.Put(doc.id, snapshot)
}

func (s *session) openIDs() []schema.DocumentID {
	tabs := s.tabs.Tabs()
	ids := make([]schema.DocumentID, 0, len(tabs))
	for _, tab := range tabs {
		if doc := tab.Document(); doc != nil {
			ids = append(ids, doc.id)
		}
	}
	return ids
}

func (s *session) documentByID(id schema.DocumentID) *Document {
	tab := s.tabs.Find(func(t *Tab) bool {
		doc := t.Document()
		return doc != nil && doc.id == id
	})
	return tab.Document()
}

func (s *session) findByPath(path string) *Tab {
	return s.tabs.Find(func(t *Tab) bool {
		doc := t.Document()
		return doc != nil && doc.filePath == path
	})
}

func (s *session) emitStatus() {
	if s.sink != nil {
		s.sink.OnStatus(s.Status())
	}
}

func (s *session) emitRecent() {
	if s.sink != nil {
		s.sink.OnRecentFiles(schema.RecentFilesEvent{Paths: s.recent.Entries()})
	}
}

func (s *session) notify(err error) {
	if s.sink != nil {
		s.sink.OnNotice(schema.Notice{Level: schema.NoticeError, Message: err.Error(), Err: err})
	}
}
