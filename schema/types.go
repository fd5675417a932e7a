package schema

// UserID identifies a user in the system.
type UserID string

// TabID identifies a document tab. Ids are positive and unique per user.
type TabID int

// TabName is the user-facing name of a tab.
type TabName string

// DefaultTabName is the name of the first untitled document.
const DefaultTabName TabName = "Untitled"

// PendingAction records which operation resumes after a save decision.
type PendingAction string

const (
	// PendingNone indicates no deferred action.
	PendingNone PendingAction = ""
	// PendingNew defers a new-document reset.
	PendingNew PendingAction = "new"
	// PendingOpen defers a file-picker invocation.
	PendingOpen PendingAction = "open"
)

// SaveDecision is the user's answer to the unsaved-changes dialog.
type SaveDecision string

const (
	// DecisionSave saves the document before resuming.
	DecisionSave SaveDecision = "save"
	// DecisionDontSave resumes without saving.
	DecisionDontSave SaveDecision = "dont_save"
	// DecisionCancel discards the pending action.
	DecisionCancel SaveDecision = "cancel"
)

// SearchMode describes which search dialog is visible.
type SearchMode string

const (
	// SearchClosed means no search dialog is shown.
	SearchClosed SearchMode = ""
	// SearchFind shows the find dialog.
	SearchFind SearchMode = "find"
	// SearchReplace shows the find/replace dialog.
	SearchReplace SearchMode = "replace"
)

// Selection is a half-open [Start, End) range of rune offsets.
// A caret is a selection with Start == End.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered by the selection.
func (s Selection) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Caret returns a zero-width selection at offset.
func Caret(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// ClampSelection orders and bounds a selection to [0, length].
func ClampSelection(sel Selection, length int) Selection {
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	if sel.Start < 0 {
		sel.Start = 0
	}
	if sel.End < 0 {
		sel.End = 0
	}
	if sel.Start > length {
		sel.Start = length
	}
	if sel.End > length {
		sel.End = length
	}
	return sel
}
