package core

import (
	"context"
	"fmt"

	"pkt.systems/notepad/schema"
)

// SetSearch updates the shared find/replace state.
func (s *Session) SetSearch(ctx context.Context, state schema.SearchState) Outcome {
	s.search = state
	s.emitTab(schema.DocumentEventDialog, s.tabs.Active())
	s.logger(ctx).Debug("session search updated", "mode", state.Mode, "pattern_len", len(state.Pattern))
	return Outcome{}
}

// ShowGoToLine opens the go-to-line dialog.
func (s *Session) ShowGoToLine(ctx context.Context) Outcome {
	s.goToLine = true
	s.emitTab(schema.DocumentEventDialog, s.tabs.Active())
	return Outcome{}
}

// DismissDialogs closes the search and go-to-line dialogs. A pending save
// decision stays open; only its own buttons resolve it.
func (s *Session) DismissDialogs(ctx context.Context) Outcome {
	s.search.Mode = schema.SearchClosed
	s.goToLine = false
	s.emitTab(schema.DocumentEventDialog, s.tabs.Active())
	s.logger(ctx).Debug("session dialogs dismissed")
	return Outcome{}
}

// FindNext selects the next occurrence after sel, wrapping around.
func (s *Session) FindNext(ctx context.Context, sel schema.Selection) Outcome {
	return s.find(ctx, sel, FindNext, func(sel schema.Selection) int { return sel.End })
}

// FindPrevious selects the occurrence before sel, wrapping around.
func (s *Session) FindPrevious(ctx context.Context, sel schema.Selection) Outcome {
	return s.find(ctx, sel, FindPrevious, func(sel schema.Selection) int { return sel.Start })
}

func (s *Session) find(ctx context.Context, sel schema.Selection, search func(string, string, int) (schema.Selection, bool), cursor func(schema.Selection) int) Outcome {
	pattern := s.search.Pattern
	content := s.tabs.Active().Content
	sel = schema.ClampSelection(sel, len([]rune(content)))
	if pattern == "" {
		return Outcome{Selection: &sel}
	}
	match, ok := search(content, pattern, cursor(sel))
	if !ok {
		return s.notFound(ctx, pattern, sel)
	}
	return Outcome{Selection: &match, Found: true}
}

// Replace substitutes the replacement when sel holds the pattern, otherwise
// it selects the next occurrence so the caller can retry.
func (s *Session) Replace(ctx context.Context, sel schema.Selection) Outcome {
	pattern := s.search.Pattern
	content := s.tabs.Active().Content
	sel = schema.ClampSelection(sel, len([]rune(content)))
	if pattern == "" {
		return Outcome{Selection: &sel}
	}
	res := ReplaceOne(content, pattern, s.search.Replacement, sel)
	if !res.Found {
		return s.notFound(ctx, pattern, sel)
	}
	out := Outcome{Selection: &res.Selection, Found: true}
	if res.Replaced {
		s.setActiveContent(ctx, res.Text)
		out.Count = 1
		s.logger(ctx).Debug("session replace applied", "tab", s.tabs.ActiveID(), "start", res.Selection.Start)
	}
	return out
}

// ReplaceAll replaces every occurrence of the pattern in the active document.
func (s *Session) ReplaceAll(ctx context.Context) Outcome {
	pattern := s.search.Pattern
	if pattern == "" {
		return Outcome{}
	}
	content := s.tabs.Active().Content
	updated, count := ReplaceAll(content, pattern, s.search.Replacement)
	if count == 0 {
		return s.notFound(ctx, pattern, schema.Selection{})
	}
	s.setActiveContent(ctx, updated)
	s.logger(ctx).Info("session replace all applied", "tab", s.tabs.ActiveID(), "count", count)
	out := s.notify(schema.NoticeInfo, fmt.Sprintf("Replaced %d occurrence(s)", count))
	out.Found = true
	out.Count = count
	return out
}

func (s *Session) notFound(ctx context.Context, pattern string, sel schema.Selection) Outcome {
	err := &schema.PatternError{Pattern: pattern}
	s.logger(ctx).Debug("session search miss", "err", err)
	out := s.notify(schema.NoticeInfo, err.Error())
	out.Selection = &sel
	return out
}

// setActiveContent is the edit path shared by replace and insert operations.
func (s *Session) setActiveContent(ctx context.Context, text string) {
	s.tabs.UpdateActive(func(t *tab) {
		t.Content = text
		t.Modified = true
	})
	s.mirrorActive(ctx)
	s.emitTab(schema.DocumentEventChanged, s.tabs.Active())
}
