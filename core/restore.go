package core

import (
	"pkt.systems/tabula/internal/logx"
	"pkt.systems/tabula/schema"
)

// restore rebuilds documents and tabs from the persisted session. Entries
// that are missing or unreadable are skipped; the final persist scrubs them.
func (s *session) restore() {
	s.restoring = true
	defer func() { s.restoring = false }()

	state, ok, err := s.props.Load()
	if err != nil {
		s.logger.Warn("session state unreadable, starting empty", "err", err)
	}
	if !ok {
		state = schema.SessionState{}
	}
	s.recent = newRecentFilesFromPersisted(state.RecentFiles, s.cfg.RecentMax)
	s.cache.Seed(state.OpenFiles)

	var activate *Tab
	restored := 0
	seen := make(map[schema.DocumentID]struct{}, len(state.OpenFiles))
	for _, id := range state.OpenFiles {
		s.ids.observe(id)
		if _, dup := seen[id]; dup {
			s.logger.Warn("session restore skipped duplicate id", "document_id", id)
			continue
		}
		seen[id] = struct{}{}
		log := logx.WithDocument(s.ctx, id)
		snapshot, err := s.cache.Get(id)
		if err != nil {
			log.Warn("session restore skipped document", "err", err)
			continue
		}
		doc, err := s.restoreDocument(id, snapshot)
		if err != nil {
			log.Warn("session restore skipped document", "err", err)
			continue
		}
		s.ids.observeLabel(s.cfg.UntitledPrefix, doc.label)
		tab := s.addDocument(doc)
		if state.ActiveTab != nil && *state.ActiveTab == id {
			activate = tab
		}
		restored++
	}
	if activate != nil {
		_ = s.tabs.Activate(activate)
	}
	s.restoring = false
	if s.cfg.SweepOrphans {
		if removed, err := s.cache.Sweep(state.OpenFiles); err != nil {
			s.logger.Warn("session orphan sweep failed", "err", err, "removed", removed)
		}
	}
	s.persistState()
	s.logger.Info("session restored", "documents", restored, "listed", len(state.OpenFiles))
}

// restoreDocument rebuilds one document. Buffers always start at a fresh
// version, so a snapshot that was dirty gets a saved version one behind the
// current one to keep the dirty comparison true.
func (s *session) restoreDocument(id schema.DocumentID, snapshot schema.DocumentSnapshot) (*Document, error) {
	language := ""
	if snapshot.FilePath == "" {
		language = schema.LanguagePlainText
	}
	label := snapshot.Label
	if label == "" {
		label = schema.UntitledLabel(s.cfg.UntitledPrefix, s.ids.untitledNumber())
	}
	doc, err := newDocument(s.engine, id, label, snapshot.FilePath, snapshot.Text, language)
	if err != nil {
		return nil, err
	}
	if snapshot.Dirty {
		if _, err := doc.markSavedAt(doc.savedVersion - 1); err != nil {
			_ = doc.dispose()
			return nil, err
		}
	}
	doc.viewState = snapshot.ViewState
	return doc, nil
}
