package schema

// NoticeLevel describes how prominently a notice is presented.
type NoticeLevel string

const (
	// NoticeInfo is an informational notice.
	NoticeInfo NoticeLevel = "info"
	// NoticeError reports a failed operation.
	NoticeError NoticeLevel = "error"
)

// Notice is a user-visible message raised by the session.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// RecentFilesEvent carries the recent files list for menu population.
type RecentFilesEvent struct {
	Paths []string
}
