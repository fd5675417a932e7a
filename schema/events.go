package schema

// DocumentEventType describes tab lifecycle or document changes.
type DocumentEventType string

const (
	// DocumentEventTabAdded indicates a tab was created.
	DocumentEventTabAdded DocumentEventType = "tab_added"
	// DocumentEventTabClosed indicates a tab was removed.
	DocumentEventTabClosed DocumentEventType = "tab_closed"
	// DocumentEventTabActivated indicates the active tab changed.
	DocumentEventTabActivated DocumentEventType = "tab_activated"
	// DocumentEventChanged indicates the active content changed.
	DocumentEventChanged DocumentEventType = "changed"
	// DocumentEventReset indicates a document was reset to blank.
	DocumentEventReset DocumentEventType = "reset"
	// DocumentEventLoaded indicates a file was loaded into the active tab.
	DocumentEventLoaded DocumentEventType = "loaded"
	// DocumentEventSaved indicates the active tab was saved.
	DocumentEventSaved DocumentEventType = "saved"
	// DocumentEventView indicates view settings changed.
	DocumentEventView DocumentEventType = "view"
	// DocumentEventDialog indicates dialog or search state changed.
	DocumentEventDialog DocumentEventType = "dialog"
)

// DocumentEvent represents a change to a tab or the tab list.
type DocumentEvent struct {
	UserID    UserID
	Type      DocumentEventType
	Tab       TabSnapshot
	ActiveTab TabID
}

// NoticeLevel grades user-visible notices.
type NoticeLevel string

const (
	// NoticeInfo is informational.
	NoticeInfo NoticeLevel = "info"
	// NoticeWarn reports a failed user action.
	NoticeWarn NoticeLevel = "warn"
)

// NoticeEvent is a user-visible message.
type NoticeEvent struct {
	UserID  UserID
	Level   NoticeLevel
	Message string
}

// FilePayload is a document emitted for download.
type FilePayload struct {
	UserID  UserID `json:"-"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// OpenFileRequest asks the surface to let the user pick a file.
type OpenFileRequest struct {
	UserID UserID   `json:"-"`
	Seq    uint64   `json:"seq"`
	Accept []string `json:"accept"`
}

// OpenFileResult is the content of a picked file.
type OpenFileResult struct {
	Seq     uint64 `json:"seq"`
	Name    string `json:"name"`
	Content string `json:"content"`
}
