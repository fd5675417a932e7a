package core

import (
	"context"
	"fmt"

	"pkt.systems/notepad/schema"
)

// DateTimeLayout is the format inserted by InsertDateTime.
const DateTimeLayout = "1/2/2006, 3:04:05 PM"

// InsertText replaces sel in the active document with text and places the
// caret after it.
func (s *Session) InsertText(ctx context.Context, sel schema.Selection, text string) Outcome {
	runes := []rune(s.tabs.Active().Content)
	sel = schema.ClampSelection(sel, len(runes))
	insert := []rune(text)
	out := make([]rune, 0, len(runes)-sel.Len()+len(insert))
	out = append(out, runes[:sel.Start]...)
	out = append(out, insert...)
	out = append(out, runes[sel.End:]...)
	s.setActiveContent(ctx, string(out))
	caret := schema.Caret(sel.Start + len(insert))
	return Outcome{Selection: &caret}
}

// InsertDateTime inserts the current local date and time at sel.
func (s *Session) InsertDateTime(ctx context.Context, sel schema.Selection) Outcome {
	return s.InsertText(ctx, sel, s.deps.Now().Format(DateTimeLayout))
}

// Copy writes the selected text to the clipboard. A session without a
// clipboard reports ErrClipboardUnavailable as a notice.
func (s *Session) Copy(ctx context.Context, sel schema.Selection) (Outcome, error) {
	cb := s.clipboard(ctx)
	if cb == nil {
		return s.noClipboard(ctx, sel), nil
	}
	runes := []rune(s.tabs.Active().Content)
	sel = schema.ClampSelection(sel, len(runes))
	if err := cb.WriteText(string(runes[sel.Start:sel.End])); err != nil {
		return Outcome{}, fmt.Errorf("clipboard write: %w", err)
	}
	return Outcome{Selection: &sel}, nil
}

// Cut copies the selection and removes it from the document.
func (s *Session) Cut(ctx context.Context, sel schema.Selection) (Outcome, error) {
	out, err := s.Copy(ctx, sel)
	if err != nil || out.Notice != "" {
		return out, err
	}
	if out.Selection.Len() == 0 {
		return out, nil
	}
	return s.InsertText(ctx, *out.Selection, ""), nil
}

// Paste replaces sel with the clipboard text.
func (s *Session) Paste(ctx context.Context, sel schema.Selection) (Outcome, error) {
	cb := s.clipboard(ctx)
	if cb == nil {
		return s.noClipboard(ctx, sel), nil
	}
	text, err := cb.ReadText()
	if err != nil {
		return Outcome{}, fmt.Errorf("clipboard read: %w", err)
	}
	return s.InsertText(ctx, sel, text), nil
}

// SelectAll selects the whole active document.
func (s *Session) SelectAll(context.Context) Outcome {
	sel := schema.Selection{Start: 0, End: len([]rune(s.tabs.Active().Content))}
	return Outcome{Selection: &sel}
}

// GoToLine places the caret at the start of a 1-based line and closes the
// go-to-line dialog. A line the document does not have leaves the caret
// where it is.
func (s *Session) GoToLine(ctx context.Context, line int) Outcome {
	content := s.tabs.Active().Content
	if s.goToLine {
		s.goToLine = false
		s.emitTab(schema.DocumentEventDialog, s.tabs.Active())
	}
	offset, ok := LineOffset(content, line)
	if !ok {
		s.logger(ctx).Debug("session go to line ignored", "line", line)
		return Outcome{}
	}
	caret := schema.Caret(offset)
	stats := ComputeStats(content, caret)
	return Outcome{Selection: &caret, Stats: &stats}
}

// Stats returns the footer statistics for the active document at sel.
func (s *Session) Stats(_ context.Context, sel schema.Selection) Outcome {
	stats := ComputeStats(s.tabs.Active().Content, sel)
	return Outcome{Stats: &stats}
}

func (s *Session) noClipboard(ctx context.Context, sel schema.Selection) Outcome {
	s.logger(ctx).Debug("session clipboard missing", "err", schema.ErrClipboardUnavailable)
	out := s.notify(schema.NoticeWarn, "Clipboard is not available")
	out.Selection = &sel
	return out
}
