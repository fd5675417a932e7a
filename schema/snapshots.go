package schema

// TabSnapshot is a read-only view of tab state for transports.
type TabSnapshot struct {
	ID         TabID   `json:"id"`
	Name       TabName `json:"name"`
	Modified   bool    `json:"modified"`
	OriginPath string  `json:"origin_path,omitempty"`
	Active     bool    `json:"active"`
}

// DocumentSnapshot is the active tab including its content.
type DocumentSnapshot struct {
	TabSnapshot
	Content string `json:"content"`
}

// ViewSettings are the persisted presentation scalars.
type ViewSettings struct {
	WordWrap bool `json:"word_wrap"`
	FontSize int  `json:"font_size"`
	Zoom     int  `json:"zoom"`
}

// SearchState is the shared state of the find and replace dialogs.
type SearchState struct {
	Pattern     string     `json:"pattern"`
	Replacement string     `json:"replacement"`
	Mode        SearchMode `json:"mode"`
}

// DialogState reports which modal dialogs are visible.
type DialogState struct {
	SaveConfirm bool          `json:"save_confirm"`
	Pending     PendingAction `json:"pending,omitempty"`
	GoToLine    bool          `json:"go_to_line"`
}

// TextStats is the footer summary for a document and caret.
type TextStats struct {
	Line       int `json:"line"`
	Column     int `json:"column"`
	Characters int `json:"characters"`
	Words      int `json:"words"`
	Lines      int `json:"lines"`
}

// SessionSnapshot captures everything a surface needs to render a session.
type SessionSnapshot struct {
	Tabs      []TabSnapshot    `json:"tabs"`
	ActiveTab TabID            `json:"active_tab"`
	Document  DocumentSnapshot `json:"document"`
	View      ViewSettings     `json:"view"`
	Search    SearchState      `json:"search"`
	Dialogs   DialogState      `json:"dialogs"`
}
