package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/schema"
)

// Action names a keyboard-shortcut action.
type Action string

const (
	ActionNew          Action = "new"
	ActionOpen         Action = "open"
	ActionSave         Action = "save"
	ActionSaveAs       Action = "save_as"
	ActionFind         Action = "find"
	ActionReplace      Action = "replace"
	ActionGoToLine     Action = "goto_line"
	ActionPrint        Action = "print"
	ActionDateTime     Action = "insert_datetime"
	ActionFindNext     Action = "find_next"
	ActionFindPrevious Action = "find_previous"
	ActionDismiss      Action = "dismiss"
	ActionNewTab       Action = "new_tab"
	ActionCloseTab     Action = "close_tab"
	ActionZoomIn       Action = "zoom_in"
	ActionZoomOut      Action = "zoom_out"
	ActionResetZoom    Action = "reset_zoom"
)

// PrintNotice is reported for the print shortcut; printing is left to the host.
const PrintNotice = "Printing is handled by your browser or terminal"

var shortcuts = map[string]Action{
	"ctrl+n":       ActionNew,
	"ctrl+o":       ActionOpen,
	"ctrl+s":       ActionSave,
	"ctrl+shift+s": ActionSaveAs,
	"ctrl+f":       ActionFind,
	"ctrl+h":       ActionReplace,
	"ctrl+g":       ActionGoToLine,
	"ctrl+p":       ActionPrint,
	"f5":           ActionDateTime,
	"f3":           ActionFindNext,
	"shift+f3":     ActionFindPrevious,
	"escape":       ActionDismiss,
	"ctrl+t":       ActionNewTab,
	"ctrl+w":       ActionCloseTab,
	"ctrl+=":       ActionZoomIn,
	"ctrl+-":       ActionZoomOut,
	"ctrl+0":       ActionResetZoom,
}

// Shortcut is a chord bound to an action.
type Shortcut struct {
	Chord  string
	Action Action
}

// Shortcuts lists the key table in chord order.
func Shortcuts() []Shortcut {
	order := []string{
		"ctrl+n", "ctrl+o", "ctrl+s", "ctrl+shift+s", "ctrl+f", "ctrl+h", "ctrl+g", "ctrl+p",
		"f5", "f3", "shift+f3", "escape", "ctrl+t", "ctrl+w", "ctrl+=", "ctrl+-", "ctrl+0",
	}
	out := make([]Shortcut, 0, len(order))
	for _, chord := range order {
		out = append(out, Shortcut{Chord: chord, Action: shortcuts[chord]})
	}
	return out
}

// NormalizeChord lower-cases a chord and orders its modifiers as ctrl, alt, shift.
func NormalizeChord(chord string) string {
	chord = strings.ToLower(strings.TrimSpace(chord))
	if chord == "" {
		return ""
	}
	// "ctrl++" and "ctrl+plus" both mean the zoom-in key.
	if strings.HasSuffix(chord, "++") {
		chord = strings.TrimSuffix(chord, "++") + "+="
	}
	parts := strings.Split(chord, "+")
	var ctrl, alt, shift bool
	key := ""
	for _, part := range parts {
		switch strings.TrimSpace(part) {
		case "ctrl", "control", "cmd", "meta":
			ctrl = true
		case "alt", "option":
			alt = true
		case "shift":
			shift = true
		case "esc":
			key = "escape"
		case "plus":
			key = "="
		case "minus":
			key = "-"
		default:
			key = strings.TrimSpace(part)
		}
	}
	var b strings.Builder
	if ctrl {
		b.WriteString("ctrl+")
	}
	if alt {
		b.WriteString("alt+")
	}
	if shift {
		b.WriteString("shift+")
	}
	b.WriteString(key)
	return b.String()
}

// Lookup returns the action bound to chord.
func Lookup(chord string) (Action, bool) {
	action, ok := shortcuts[NormalizeChord(chord)]
	return action, ok
}

// KeyRequest is one shortcut press. Text carries the optional argument of
// actions that take one (search text, line number).
type KeyRequest struct {
	UserID    schema.UserID
	Chord     string
	Selection schema.Selection
	Text      *string
}

// DispatchKey maps a chord to a single service call.
func DispatchKey(ctx context.Context, svc core.Service, req KeyRequest) (schema.SessionResponse, error) {
	action, ok := Lookup(req.Chord)
	if !ok {
		return schema.SessionResponse{}, fmt.Errorf("%w: unknown shortcut %q", schema.ErrInvalidRequest, req.Chord)
	}
	user := req.UserID
	switch action {
	case ActionNew:
		return svc.NewDocument(ctx, schema.NewDocumentRequest{UserID: user})
	case ActionOpen:
		return svc.OpenDocument(ctx, schema.OpenDocumentRequest{UserID: user})
	case ActionSave:
		return svc.Save(ctx, schema.SaveRequest{UserID: user, Name: req.Text})
	case ActionSaveAs:
		return svc.SaveAs(ctx, schema.SaveAsRequest{UserID: user, Name: req.Text})
	case ActionFind, ActionReplace:
		return openSearch(ctx, svc, user, action, req.Text)
	case ActionGoToLine:
		if req.Text == nil {
			return svc.ShowGoToLine(ctx, schema.GetSessionRequest{UserID: user})
		}
		line, err := strconv.Atoi(strings.TrimSpace(*req.Text))
		if err != nil {
			return schema.SessionResponse{}, fmt.Errorf("%w: line number %q", schema.ErrInvalidRequest, *req.Text)
		}
		return svc.GoToLine(ctx, schema.GoToLineRequest{UserID: user, Line: line})
	case ActionPrint:
		resp, err := svc.GetSession(ctx, schema.GetSessionRequest{UserID: user})
		if err != nil {
			return resp, err
		}
		resp.Notice = PrintNotice
		return resp, nil
	case ActionDateTime:
		return svc.InsertDateTime(ctx, schema.InsertDateTimeRequest{UserID: user, Selection: req.Selection})
	case ActionFindNext:
		return svc.FindNext(ctx, schema.SearchRequest{UserID: user, Selection: req.Selection})
	case ActionFindPrevious:
		return svc.FindPrevious(ctx, schema.SearchRequest{UserID: user, Selection: req.Selection})
	case ActionDismiss:
		return svc.DismissDialogs(ctx, schema.DismissDialogsRequest{UserID: user})
	case ActionNewTab:
		return svc.CreateTab(ctx, schema.CreateTabRequest{UserID: user})
	case ActionCloseTab:
		resp, err := svc.GetSession(ctx, schema.GetSessionRequest{UserID: user})
		if err != nil {
			return resp, err
		}
		return svc.CloseTab(ctx, schema.CloseTabRequest{UserID: user, TabID: resp.Session.ActiveTab})
	case ActionZoomIn:
		return svc.UpdateView(ctx, schema.UpdateViewRequest{UserID: user, Action: schema.ViewZoomIn})
	case ActionZoomOut:
		return svc.UpdateView(ctx, schema.UpdateViewRequest{UserID: user, Action: schema.ViewZoomOut})
	default:
		return svc.UpdateView(ctx, schema.UpdateViewRequest{UserID: user, Action: schema.ViewResetZoom})
	}
}

// openSearch opens the find or replace dialog, keeping the current
// replacement text and optionally setting a new pattern.
func openSearch(ctx context.Context, svc core.Service, user schema.UserID, action Action, pattern *string) (schema.SessionResponse, error) {
	resp, err := svc.GetSession(ctx, schema.GetSessionRequest{UserID: user})
	if err != nil {
		return resp, err
	}
	state := resp.Session.Search
	if pattern != nil {
		state.Pattern = *pattern
	}
	mode := schema.SearchFind
	if action == ActionReplace {
		mode = schema.SearchReplace
	}
	return svc.SetSearch(ctx, schema.SetSearchRequest{
		UserID:      user,
		Pattern:     state.Pattern,
		Replacement: state.Replacement,
		Mode:        mode,
	})
}
