package schema

// SessionResponse reports the session state after an operation.
type SessionResponse struct {
	Session     SessionSnapshot  `json:"session"`
	Selection   *Selection       `json:"selection,omitempty"`
	Found       bool             `json:"found,omitempty"`
	Count       int              `json:"count,omitempty"`
	Notice      string           `json:"notice,omitempty"`
	Stats       *TextStats       `json:"stats,omitempty"`
	Downloads   []FilePayload    `json:"downloads,omitempty"`
	OpenRequest *OpenFileRequest `json:"open_request,omitempty"`
}

// Session and tabs.

// GetSessionRequest describes a request for the current session snapshot.
type GetSessionRequest struct {
	UserID UserID
}

// CreateTabRequest describes a request to add an untitled tab.
type CreateTabRequest struct {
	UserID UserID
}

// CloseTabRequest describes a request to close a tab.
// SaveChanges answers the unsaved-changes confirmation when set.
type CloseTabRequest struct {
	UserID      UserID
	TabID       TabID
	SaveChanges *bool
}

// ActivateTabRequest describes a request to activate a tab.
type ActivateTabRequest struct {
	UserID UserID
	TabID  TabID
}

// Document and files.

// UpdateContentRequest replaces the active document text.
type UpdateContentRequest struct {
	UserID  UserID
	Content string
}

// NewDocumentRequest asks for a blank active document.
type NewDocumentRequest struct {
	UserID UserID
}

// OpenDocumentRequest asks for the file picker.
type OpenDocumentRequest struct {
	UserID UserID
}

// LoadFileRequest completes an open request with file content.
type LoadFileRequest struct {
	UserID UserID
	File   OpenFileResult
}

// SaveRequest saves the active document. Name answers the filename prompt when set.
type SaveRequest struct {
	UserID UserID
	Name   *string
}

// SaveAsRequest saves the active document under a new name.
type SaveAsRequest struct {
	UserID UserID
	Name   *string
}

// ResolveSaveRequest answers the unsaved-changes dialog.
type ResolveSaveRequest struct {
	UserID   UserID
	Decision SaveDecision
	Name     *string
}

// Search.

// SetSearchRequest updates the search dialog state.
type SetSearchRequest struct {
	UserID      UserID
	Pattern     string
	Replacement string
	Mode        SearchMode
}

// SearchRequest runs a search operation relative to a selection.
type SearchRequest struct {
	UserID    UserID
	Selection Selection
}

// ReplaceAllRequest replaces every occurrence of the current pattern.
type ReplaceAllRequest struct {
	UserID UserID
}

// DismissDialogsRequest closes find, replace, and go-to-line dialogs.
type DismissDialogsRequest struct {
	UserID UserID
}

// View and editing.

// ViewAction names a view-setting change.
type ViewAction string

const (
	// ViewToggleWordWrap flips word wrap.
	ViewToggleWordWrap ViewAction = "toggle_word_wrap"
	// ViewSetFontSize sets the font size to Value.
	ViewSetFontSize ViewAction = "set_font_size"
	// ViewZoomIn increases zoom by one step.
	ViewZoomIn ViewAction = "zoom_in"
	// ViewZoomOut decreases zoom by one step.
	ViewZoomOut ViewAction = "zoom_out"
	// ViewResetZoom restores the default zoom.
	ViewResetZoom ViewAction = "reset_zoom"
)

// UpdateViewRequest applies a view action.
type UpdateViewRequest struct {
	UserID UserID
	Action ViewAction
	Value  int
}

// InsertTextRequest inserts text at a selection.
type InsertTextRequest struct {
	UserID    UserID
	Selection Selection
	Text      string
}

// InsertDateTimeRequest inserts the current time at a selection.
type InsertDateTimeRequest struct {
	UserID    UserID
	Selection Selection
}

// ClipboardOp names a clipboard operation.
type ClipboardOp string

const (
	// ClipboardCopy copies the selection.
	ClipboardCopy ClipboardOp = "copy"
	// ClipboardCut copies and removes the selection.
	ClipboardCut ClipboardOp = "cut"
	// ClipboardPaste replaces the selection with clipboard text.
	ClipboardPaste ClipboardOp = "paste"
)

// ClipboardRequest runs a clipboard operation on a selection.
type ClipboardRequest struct {
	UserID    UserID
	Op        ClipboardOp
	Selection Selection
}

// GoToLineRequest moves the caret to the start of a 1-based line.
type GoToLineRequest struct {
	UserID UserID
	Line   int
}

// StatsRequest asks for footer statistics at a selection.
type StatsRequest struct {
	UserID    UserID
	Selection Selection
}
