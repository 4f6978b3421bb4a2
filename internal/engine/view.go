package engine

import "encoding/json"

// ViewState is the engine's view snapshot. Sessions treat it as opaque JSON.
type ViewState struct {
	Cursor    Position `json:"cursor"`
	ScrollTop int      `json:"scroll_top"`
}

// Position is a zero-based cursor location.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func encodeViewState(v ViewState) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// maxScroll returns the largest top line that still fills a viewport.
func maxScroll(total, limit int) int {
	if limit <= 0 || total <= limit {
		return 0
	}
	return total - limit
}

func clampScroll(top, total, limit int) int {
	if top < 0 {
		return 0
	}
	if max := maxScroll(total, limit); top > max {
		return max
	}
	return top
}
