package core

import "pkt.systems/notepad/schema"

// tab is one open document buffer.
type tab struct {
	ID         schema.TabID
	Name       schema.TabName
	Content    string
	Modified   bool
	OriginPath string
}

func newTab(id schema.TabID) *tab {
	return &tab{ID: id, Name: schema.DefaultTabNameFor(id)}
}

// reset clears the tab back to a blank, never-saved document.
func (t *tab) reset() {
	t.Content = ""
	t.Name = schema.DefaultTabName
	t.OriginPath = ""
	t.Modified = false
}

// hasUnsavedText reports whether discarding the tab would lose typed text.
func (t *tab) hasUnsavedText() bool {
	return t.Modified && !isBlank(t.Content)
}

// Snapshot returns a transport-friendly view of the tab.
func (t *tab) Snapshot(active bool) schema.TabSnapshot {
	return schema.TabSnapshot{
		ID:         t.ID,
		Name:       t.Name,
		Modified:   t.Modified,
		OriginPath: t.OriginPath,
		Active:     active,
	}
}
