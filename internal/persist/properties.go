package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/tabula/schema"
)

// Properties persists the session state object as one JSON file.
type Properties struct {
	path string
	log  pslog.Logger
}

// NewProperties stores session state at dir/session.json.
func NewProperties(dir string, logger pslog.Logger) (*Properties, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "session.json")
	if logger != nil {
		logger = logger.With("properties", path)
	}
	return &Properties{path: path, log: logger}, nil
}

// Path returns the backing file path.
func (p *Properties) Path() string { return p.path }

// Load reads the session state. A missing file reports ok=false.
func (p *Properties) Load() (schema.SessionState, bool, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if p.log != nil {
				p.log.Debug("state load miss")
			}
			return schema.SessionState{}, false, nil
		}
		if p.log != nil {
			p.log.Warn("state load failed", "err", err)
		}
		return schema.SessionState{}, false, err
	}
	var state schema.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		if p.log != nil {
			p.log.Warn("state load failed", "err", err)
		}
		return schema.SessionState{}, false, errors.Join(schema.ErrParse, err)
	}
	if p.log != nil {
		p.log.Debug("state load ok", "open_files", len(state.OpenFiles), "recent_files", len(state.RecentFiles))
	}
	return state, true, nil
}

// Save writes the session state atomically.
func (p *Properties) Save(state schema.SessionState) error {
	if state.OpenFiles == nil {
		state.OpenFiles = []schema.DocumentID{}
	}
	if state.RecentFiles == nil {
		state.RecentFiles = []string{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(p.path, data); err != nil {
		if p.log != nil {
			p.log.Warn("state save failed", "err", err)
		}
		return err
	}
	if p.log != nil {
		p.log.Trace("state save ok", "open_files", len(state.OpenFiles))
	}
	return nil
}
