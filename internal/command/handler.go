package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/internal/sessionprefs"
	"pkt.systems/notepad/internal/version"
	"pkt.systems/notepad/schema"
)

// OpenPrompt is the message a console picker uses to ask for a path.
const OpenPrompt = "Open file:"

// HandlerConfig configures slash command behavior.
type HandlerConfig struct {
	DisableAuditLogging bool
}

// Reply is what a console prints after a command.
type Reply struct {
	Lines    []string
	Response *schema.SessionResponse
	// Show asks the console to print the active document.
	Show bool
	Quit bool
}

// Handler routes slash commands to service operations.
type Handler struct {
	service core.Service
	cfg     HandlerConfig
}

// NewHandler constructs a command handler.
func NewHandler(service core.Service, cfg HandlerConfig) *Handler {
	return &Handler{service: service, cfg: cfg}
}

// Handle inspects input and executes slash commands. Non-command input is
// reported as unhandled so the caller can insert it as text.
func (h *Handler) Handle(ctx context.Context, userID schema.UserID, input string) (Reply, bool, error) {
	if ctx == nil {
		return Reply{}, false, errors.New("missing context")
	}
	cmd, ok := Parse(input)
	if !ok {
		return Reply{}, false, nil
	}
	baseLog := logx.WithUser(ctx, userID)
	ctx = logx.ContextWithUserLogger(ctx, baseLog, userID)
	if !h.cfg.DisableAuditLogging {
		baseLog.Debug("audit command", "command_type", "slash", "command", auditText(cmd))
	}
	log := baseLog.With("command", cmd.Name, "args", len(cmd.Args))
	log.Info("command slash request")
	reply, err := h.dispatch(ctx, userID, cmd)
	if err != nil {
		log.Warn("command slash failed", "err", err)
		return reply, true, err
	}
	if reply.Response != nil {
		remember(ctx, reply.Response)
	}
	return reply, true, nil
}

// textCommands carry document or search text after the command name.
var textCommands = map[string]bool{"find": true, "with": true, "key": true}

// auditText renders cmd for the audit log with any document text replaced
// by its length.
func auditText(cmd Command) string {
	if !textCommands[cmd.Name] || cmd.Remainder == "" {
		return strings.TrimSpace("/" + cmd.Raw)
	}
	if cmd.Name == "key" {
		if text := afterFields(cmd.Raw, 2); text != "" {
			return fmt.Sprintf("/key %s [%d chars]", cmd.Args[0], len([]rune(text)))
		}
		return "/key " + cmd.Args[0]
	}
	return fmt.Sprintf("/%s [%d chars]", cmd.Name, len([]rune(cmd.Remainder)))
}

// InsertLine inserts a typed line followed by a newline at the caret.
func (h *Handler) InsertLine(ctx context.Context, userID schema.UserID, line string) (Reply, error) {
	resp, err := h.service.InsertText(ctx, schema.InsertTextRequest{
		UserID:    userID,
		Selection: selection(ctx),
		Text:      LiteralText(line) + "\n",
	})
	if err != nil {
		return Reply{}, err
	}
	remember(ctx, &resp)
	return Reply{Response: &resp}, nil
}

func (h *Handler) dispatch(ctx context.Context, userID schema.UserID, cmd Command) (Reply, error) {
	sel := selection(ctx)
	switch cmd.Name {
	case "":
		return Reply{}, fmt.Errorf("invalid command")
	case "new":
		return h.withDecision(ctx, userID, func(ctx context.Context) (schema.SessionResponse, error) {
			return h.service.NewDocument(ctx, schema.NewDocumentRequest{UserID: userID})
		})
	case "open":
		return h.handleOpen(ctx, userID, cmd)
	case "save":
		return respond(h.service.Save(ctx, schema.SaveRequest{UserID: userID, Name: optional(cmd.Remainder)}))
	case "saveas":
		return respond(h.service.SaveAs(ctx, schema.SaveAsRequest{UserID: userID, Name: optional(cmd.Remainder)}))
	case "tab":
		return h.handleTab(ctx, userID, cmd)
	case "tabs":
		resp, err := h.service.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Lines: tabLines(resp.Session), Response: &resp}, nil
	case "close":
		return h.handleClose(ctx, userID, cmd)
	case "find":
		if cmd.Remainder == "" {
			return Reply{}, fmt.Errorf("usage: /find <text>")
		}
		if _, err := DispatchKey(ctx, h.service, KeyRequest{UserID: userID, Chord: "ctrl+f", Text: &cmd.Remainder}); err != nil {
			return Reply{}, err
		}
		return respond(h.service.FindNext(ctx, schema.SearchRequest{UserID: userID, Selection: schema.Caret(sel.Start)}))
	case "with":
		resp, err := h.service.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
		if err != nil {
			return Reply{}, err
		}
		search := resp.Session.Search
		return respond(h.service.SetSearch(ctx, schema.SetSearchRequest{
			UserID:      userID,
			Pattern:     search.Pattern,
			Replacement: cmd.Remainder,
			Mode:        schema.SearchReplace,
		}))
	case "next":
		return respond(h.service.FindNext(ctx, schema.SearchRequest{UserID: userID, Selection: sel}))
	case "prev":
		return respond(h.service.FindPrevious(ctx, schema.SearchRequest{UserID: userID, Selection: sel}))
	case "replace":
		return respond(h.service.Replace(ctx, schema.SearchRequest{UserID: userID, Selection: sel}))
	case "replaceall":
		return respond(h.service.ReplaceAll(ctx, schema.ReplaceAllRequest{UserID: userID}))
	case "wrap":
		return respond(h.service.UpdateView(ctx, schema.UpdateViewRequest{UserID: userID, Action: schema.ViewToggleWordWrap}))
	case "zoom":
		return h.handleZoom(ctx, userID, cmd)
	case "font":
		if len(cmd.Args) != 1 {
			return Reply{}, fmt.Errorf("usage: /font <size>")
		}
		size, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			return Reply{}, fmt.Errorf("usage: /font <size>")
		}
		return respond(h.service.UpdateView(ctx, schema.UpdateViewRequest{UserID: userID, Action: schema.ViewSetFontSize, Value: size}))
	case "goto":
		if len(cmd.Args) != 1 {
			return Reply{}, fmt.Errorf("usage: /goto <line>")
		}
		return respond(DispatchKey(ctx, h.service, KeyRequest{UserID: userID, Chord: "ctrl+g", Text: &cmd.Args[0]}))
	case "date":
		return respond(h.service.InsertDateTime(ctx, schema.InsertDateTimeRequest{UserID: userID, Selection: sel}))
	case "copy":
		return respond(h.service.Clipboard(ctx, schema.ClipboardRequest{UserID: userID, Op: schema.ClipboardCopy, Selection: sel}))
	case "cut":
		return respond(h.service.Clipboard(ctx, schema.ClipboardRequest{UserID: userID, Op: schema.ClipboardCut, Selection: sel}))
	case "paste":
		return respond(h.service.Clipboard(ctx, schema.ClipboardRequest{UserID: userID, Op: schema.ClipboardPaste, Selection: sel}))
	case "selectall":
		return respond(h.service.SelectAll(ctx, schema.GetSessionRequest{UserID: userID}))
	case "select":
		return h.handleSelect(ctx, userID, cmd)
	case "show":
		resp, err := h.service.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Response: &resp, Show: true}, nil
	case "stats":
		resp, err := h.service.Stats(ctx, schema.StatsRequest{UserID: userID, Selection: sel})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Lines: []string{FormatStats(*resp.Stats)}, Response: &resp}, nil
	case "key":
		return h.handleKey(ctx, userID, cmd, sel)
	case "help":
		return Reply{Lines: helpLines()}, nil
	case "version":
		return Reply{Lines: []string{version.About()}}, nil
	case "quit", "exit":
		return Reply{Quit: true}, nil
	default:
		return Reply{}, fmt.Errorf("unknown command: /%s", cmd.Name)
	}
}

func (h *Handler) handleOpen(ctx context.Context, userID schema.UserID, cmd Command) (Reply, error) {
	interactive := core.PrompterFromContext(ctx)
	openCtx := ctx
	if cmd.Remainder != "" {
		openCtx = core.WithPrompter(ctx, openPathPrompter{path: cmd.Remainder, fallback: interactive})
	}
	return h.withDecision(openCtx, userID, func(ctx context.Context) (schema.SessionResponse, error) {
		return h.service.OpenDocument(ctx, schema.OpenDocumentRequest{UserID: userID})
	})
}

// withDecision runs a new/open request and, when the active document has
// unsaved text, asks the interactive prompter for a save decision.
func (h *Handler) withDecision(ctx context.Context, userID schema.UserID, run func(context.Context) (schema.SessionResponse, error)) (Reply, error) {
	resp, err := run(ctx)
	if err != nil || !resp.Session.Dialogs.SaveConfirm {
		return respond(resp, err)
	}
	decision := askDecision(ctx, resp.Session.Document.Name)
	resp, err = h.service.ResolveSave(ctx, schema.ResolveSaveRequest{UserID: userID, Decision: decision})
	return respond(resp, err)
}

func askDecision(ctx context.Context, name schema.TabName) schema.SaveDecision {
	prompter := core.PrompterFromContext(ctx)
	if p, ok := prompter.(openPathPrompter); ok {
		prompter = p.fallback
	}
	if prompter == nil {
		return schema.DecisionCancel
	}
	message := fmt.Sprintf("Do you want to save changes to %s? [save/dont_save/cancel]", name)
	answer, ok := prompter.PromptText(ctx, message, string(schema.DecisionSave))
	if !ok {
		return schema.DecisionCancel
	}
	return ParseDecision(answer)
}

// ParseDecision maps a typed answer to a save decision; anything unknown cancels.
func ParseDecision(answer string) schema.SaveDecision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "y", "yes", "save":
		return schema.DecisionSave
	case "n", "no", "d", "dont_save", "don't save", "dont":
		return schema.DecisionDontSave
	default:
		return schema.DecisionCancel
	}
}

// openPathPrompter answers the open prompt with a path given on the
// command line and defers every other prompt.
type openPathPrompter struct {
	path     string
	fallback core.Prompter
}

func (p openPathPrompter) Confirm(ctx context.Context, message string) bool {
	if p.fallback == nil {
		return false
	}
	return p.fallback.Confirm(ctx, message)
}

func (p openPathPrompter) PromptText(ctx context.Context, message, def string) (string, bool) {
	if message == OpenPrompt {
		return p.path, true
	}
	if p.fallback == nil {
		return "", false
	}
	return p.fallback.PromptText(ctx, message, def)
}

func (h *Handler) handleTab(ctx context.Context, userID schema.UserID, cmd Command) (Reply, error) {
	var (
		resp schema.SessionResponse
		err  error
	)
	if len(cmd.Args) == 0 {
		resp, err = h.service.CreateTab(ctx, schema.CreateTabRequest{UserID: userID})
	} else {
		id, convErr := strconv.Atoi(cmd.Args[0])
		if convErr != nil || id <= 0 {
			return Reply{}, fmt.Errorf("usage: /tab [id]")
		}
		resp, err = h.service.ActivateTab(ctx, schema.ActivateTabRequest{UserID: userID, TabID: schema.TabID(id)})
	}
	if err != nil {
		return Reply{}, err
	}
	moveCaretToEnd(ctx, resp)
	return Reply{Lines: tabLines(resp.Session), Response: &resp}, nil
}

func (h *Handler) handleClose(ctx context.Context, userID schema.UserID, cmd Command) (Reply, error) {
	if len(cmd.Args) == 0 {
		resp, err := DispatchKey(ctx, h.service, KeyRequest{UserID: userID, Chord: "ctrl+w"})
		if err != nil {
			return Reply{}, err
		}
		moveCaretToEnd(ctx, resp)
		return Reply{Lines: tabLines(resp.Session), Response: &resp}, nil
	}
	id, err := strconv.Atoi(cmd.Args[0])
	if err != nil || id <= 0 {
		return Reply{}, fmt.Errorf("usage: /close [id]")
	}
	resp, err := h.service.CloseTab(ctx, schema.CloseTabRequest{UserID: userID, TabID: schema.TabID(id)})
	if err != nil {
		return Reply{}, err
	}
	moveCaretToEnd(ctx, resp)
	return Reply{Lines: tabLines(resp.Session), Response: &resp}, nil
}

func (h *Handler) handleZoom(ctx context.Context, userID schema.UserID, cmd Command) (Reply, error) {
	if len(cmd.Args) != 1 {
		return Reply{}, fmt.Errorf("usage: /zoom in|out|reset")
	}
	var action schema.ViewAction
	switch strings.ToLower(cmd.Args[0]) {
	case "in", "+":
		action = schema.ViewZoomIn
	case "out", "-":
		action = schema.ViewZoomOut
	case "reset", "0":
		action = schema.ViewResetZoom
	default:
		return Reply{}, fmt.Errorf("usage: /zoom in|out|reset")
	}
	resp, err := h.service.UpdateView(ctx, schema.UpdateViewRequest{UserID: userID, Action: action})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Lines: []string{fmt.Sprintf("zoom %d%%", resp.Session.View.Zoom)}, Response: &resp}, nil
}

func (h *Handler) handleSelect(ctx context.Context, userID schema.UserID, cmd Command) (Reply, error) {
	if len(cmd.Args) != 2 {
		return Reply{}, fmt.Errorf("usage: /select <start> <end>")
	}
	start, err1 := strconv.Atoi(cmd.Args[0])
	end, err2 := strconv.Atoi(cmd.Args[1])
	if err1 != nil || err2 != nil {
		return Reply{}, fmt.Errorf("usage: /select <start> <end>")
	}
	resp, err := h.service.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
	if err != nil {
		return Reply{}, err
	}
	sel := schema.ClampSelection(schema.Selection{Start: start, End: end}, len([]rune(resp.Session.Document.Content)))
	resp.Selection = &sel
	return Reply{Lines: []string{fmt.Sprintf("selected %d-%d", sel.Start, sel.End)}, Response: &resp}, nil
}

func (h *Handler) handleKey(ctx context.Context, userID schema.UserID, cmd Command, sel schema.Selection) (Reply, error) {
	if len(cmd.Args) == 0 {
		return Reply{}, fmt.Errorf("usage: /key <chord> [text]")
	}
	req := KeyRequest{UserID: userID, Chord: cmd.Args[0], Selection: sel}
	if text := afterFields(cmd.Raw, 2); text != "" {
		req.Text = &text
	}
	action, ok := Lookup(req.Chord)
	if ok && (action == ActionNew || action == ActionOpen) {
		return h.withDecision(ctx, userID, func(ctx context.Context) (schema.SessionResponse, error) {
			return DispatchKey(ctx, h.service, req)
		})
	}
	return respond(DispatchKey(ctx, h.service, req))
}

func respond(resp schema.SessionResponse, err error) (Reply, error) {
	if err != nil {
		return Reply{}, err
	}
	reply := Reply{Response: &resp}
	if resp.Notice != "" {
		reply.Lines = append(reply.Lines, resp.Notice)
	}
	return reply, nil
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func selection(ctx context.Context) schema.Selection {
	if prefs := sessionprefs.FromContext(ctx); prefs != nil {
		return prefs.Selection()
	}
	return schema.Selection{}
}

// remember stores the returned selection, or clamps the remembered one to
// the current document.
func remember(ctx context.Context, resp *schema.SessionResponse) {
	prefs := sessionprefs.FromContext(ctx)
	if prefs == nil {
		return
	}
	if resp.Selection != nil {
		prefs.Remember(*resp.Selection)
		return
	}
	length := len([]rune(resp.Session.Document.Content))
	prefs.Remember(schema.ClampSelection(prefs.Selection(), length))
}

func moveCaretToEnd(ctx context.Context, resp schema.SessionResponse) {
	if prefs := sessionprefs.FromContext(ctx); prefs != nil {
		prefs.Remember(schema.Caret(len([]rune(resp.Session.Document.Content))))
	}
}

func tabLines(session schema.SessionSnapshot) []string {
	lines := make([]string, 0, len(session.Tabs))
	for _, tab := range session.Tabs {
		marker := " "
		if tab.ID == session.ActiveTab {
			marker = "*"
		}
		line := fmt.Sprintf("%s %d %s", marker, tab.ID, tab.Name)
		if tab.Modified {
			line += " (modified)"
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatStats renders footer statistics the way the status bar shows them.
func FormatStats(stats schema.TextStats) string {
	return fmt.Sprintf("Ln %d, Col %d | %d characters | %d words | %d lines",
		stats.Line, stats.Column, stats.Characters, stats.Words, stats.Lines)
}

func helpLines() []string {
	return []string{
		"Type text to insert it at the caret; start a line with // to insert a literal /. Commands:",
		"  /new, /open [path], /save, /saveas [name]   file",
		"  /tab [id], /tabs, /close [id]                tabs",
		"  /find <text>, /next, /prev                   search",
		"  /with <text>, /replace, /replaceall          replace",
		"  /wrap, /zoom in|out|reset, /font <n>         view",
		"  /goto <n>, /date, /select <start> <end>      caret",
		"  /copy, /cut, /paste, /selectall              clipboard",
		"  /show, /stats, /key <chord> [text]           display and shortcuts",
		"  /version, /help, /quit",
	}
}
