package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// Outcome reports the user-facing result of a session operation.
type Outcome struct {
	Selection *schema.Selection
	Found     bool
	Count     int
	Notice    string
	Stats     *schema.TextStats
}

// Session is the document/session controller of one user.
// It is not safe for concurrent use; Service serialises access.
type Session struct {
	user schema.UserID
	cfg  schema.ServiceConfig
	deps SessionDeps

	tabs        *TabCollection
	search      schema.SearchState
	view        schema.ViewSettings
	saveConfirm bool
	pending     schema.PendingAction
	pendingTab  schema.TabID
	goToLine    bool
	openSeq     uint64
}

// NewSession constructs a session and restores the mirrored document and view settings.
func NewSession(ctx context.Context, userID schema.UserID, cfg schema.ServiceConfig, deps SessionDeps) (*Session, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Session{
		user: userID,
		cfg:  normalized,
		deps: deps,
		tabs: NewTabCollection(),
		view: schema.ViewSettings{
			WordWrap: !normalized.NoWordWrap,
			FontSize: normalized.DefaultFontSize,
			Zoom:     normalized.DefaultZoom,
		},
	}
	s.restore(ctx)
	return s, nil
}

// Snapshot returns the transport view of the session.
func (s *Session) Snapshot() schema.SessionSnapshot {
	active := s.tabs.Active()
	return schema.SessionSnapshot{
		Tabs:      s.tabs.Snapshots(),
		ActiveTab: active.ID,
		Document: schema.DocumentSnapshot{
			TabSnapshot: active.Snapshot(true),
			Content:     active.Content,
		},
		View:   s.view,
		Search: s.search,
		Dialogs: schema.DialogState{
			SaveConfirm: s.saveConfirm,
			Pending:     s.pending,
			GoToLine:    s.goToLine,
		},
	}
}

// AddTab opens a new untitled tab and activates it.
func (s *Session) AddTab(ctx context.Context) Outcome {
	t := s.tabs.Add()
	s.mirrorActive(ctx)
	s.emitTab(schema.DocumentEventTabAdded, t)
	s.logger(ctx).Info("session tab added", "tab", t.ID, "tabs", s.tabs.Len())
	return Outcome{}
}

// CloseTab closes id. A modified tab that will be removed asks whether to
// save it first; the sole tab is reset without asking.
func (s *Session) CloseTab(ctx context.Context, id schema.TabID) Outcome {
	ctx = logx.ContextWithTab(ctx, id)
	log := s.logger(ctx)
	t, ok := s.tabs.Get(id)
	if !ok {
		log.Warn("session tab close ignored", "err", schema.ErrTabNotFound)
		return Outcome{}
	}
	if s.tabs.Len() > 1 && t.Modified {
		message := fmt.Sprintf("Do you want to save changes to %s?", t.Name)
		if s.prompter(ctx).Confirm(ctx, message) {
			s.emitFile(ctx, string(t.Name), t.Content)
		}
	}
	if s.saveConfirm && s.pendingTab == id {
		s.clearPending()
		log.Info("session save decision dropped with its tab")
	}
	closed := t.Snapshot(false)
	switch s.tabs.Close(id) {
	case CloseReset:
		s.mirrorActive(ctx)
		s.emitTab(schema.DocumentEventReset, s.tabs.Active())
		log.Info("session tab reset")
	case CloseRemoved:
		s.mirrorActive(ctx)
		s.emitEvent(schema.DocumentEventTabClosed, closed)
		log.Info("session tab closed", "active", s.tabs.ActiveID(), "tabs", s.tabs.Len())
	}
	return Outcome{}
}

// SwitchTab activates id. Unknown ids are ignored.
func (s *Session) SwitchTab(ctx context.Context, id schema.TabID) Outcome {
	if !s.tabs.SwitchTo(id) {
		s.logger(ctx).Warn("session tab switch ignored", "tab", id, "err", schema.ErrTabNotFound)
		return Outcome{}
	}
	s.mirrorActive(ctx)
	s.emitTab(schema.DocumentEventTabActivated, s.tabs.Active())
	s.logger(ctx).Debug("session tab activated", "tab", id)
	return Outcome{}
}

// UpdateContent replaces the active document text and marks it modified.
func (s *Session) UpdateContent(ctx context.Context, text string) Outcome {
	s.setActiveContent(ctx, text)
	s.logger(ctx).Trace("session content updated", "tab", s.tabs.ActiveID(), "runes", len([]rune(text)))
	return Outcome{}
}

// RequestNew resets the active document, or asks for a save decision first
// when it holds unsaved text.
func (s *Session) RequestNew(ctx context.Context) Outcome {
	if s.tabs.Active().hasUnsavedText() {
		s.awaitDecision(ctx, schema.PendingNew)
		return Outcome{}
	}
	s.resetActive(ctx)
	return Outcome{}
}

// RequestOpen invokes the file picker, or asks for a save decision first
// when the active document holds unsaved text.
func (s *Session) RequestOpen(ctx context.Context) Outcome {
	if s.tabs.Active().hasUnsavedText() {
		s.awaitDecision(ctx, schema.PendingOpen)
		return Outcome{}
	}
	s.pickFile(ctx)
	return Outcome{}
}

// ResolveSaveDecision answers the unsaved-changes dialog. It is a no-op
// when no decision is pending. Save and DontSave act on the tab the
// dialog was raised for, activating it again if the user switched away.
func (s *Session) ResolveSaveDecision(ctx context.Context, decision schema.SaveDecision) Outcome {
	log := s.logger(ctx)
	if !s.saveConfirm || s.pending == schema.PendingNone {
		log.Debug("session save decision ignored", "decision", decision)
		return Outcome{}
	}
	pending := s.pending
	log = log.With("pending", pending, "decision", decision, "tab", s.pendingTab)
	if (decision == schema.DecisionSave || decision == schema.DecisionDontSave) && s.tabs.ActiveID() != s.pendingTab {
		if !s.tabs.SwitchTo(s.pendingTab) {
			s.clearPending()
			log.Warn("session save decision dropped", "err", schema.ErrTabNotFound)
			return Outcome{}
		}
		s.mirrorActive(ctx)
		s.emitTab(schema.DocumentEventTabActivated, s.tabs.Active())
	}
	switch decision {
	case schema.DecisionSave:
		if err := s.saveActive(ctx, "Save As - Enter filename:", suggestTxtName); err != nil {
			s.clearPending()
			log.Info("session save decision aborted", "err", err)
			return Outcome{}
		}
		s.clearPending()
		s.runPending(ctx, pending)
	case schema.DecisionDontSave:
		s.clearPending()
		s.runPending(ctx, pending)
	default:
		s.clearPending()
	}
	log.Info("session save decision resolved")
	return Outcome{}
}

// Save emits the active document under its origin name, or behaves as
// SaveAs when it has never been saved.
func (s *Session) Save(ctx context.Context) Outcome {
	active := s.tabs.Active()
	if active.OriginPath == "" {
		return s.SaveAs(ctx)
	}
	s.emitFile(ctx, string(active.Name), active.Content)
	s.tabs.UpdateActive(func(t *tab) { t.Modified = false })
	s.emitTab(schema.DocumentEventSaved, s.tabs.Active())
	s.logger(ctx).Info("session save emitted", "tab", active.ID, "name", active.Name)
	return Outcome{}
}

// SaveAs prompts for a filename and emits the active document under it.
func (s *Session) SaveAs(ctx context.Context) Outcome {
	active := s.tabs.Active()
	name, ok := s.prompter(ctx).PromptText(ctx, "Enter filename:", string(active.Name))
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		s.logger(ctx).Debug("session save as cancelled", "tab", active.ID, "err", schema.ErrSaveTargetUnresolved)
		return Outcome{}
	}
	s.commitSave(ctx, name)
	return Outcome{}
}

// CompleteOpen loads a picked file into the active tab. Only the most
// recently issued open request is honoured.
func (s *Session) CompleteOpen(ctx context.Context, file schema.OpenFileResult) Outcome {
	log := s.logger(ctx).With("seq", file.Seq, "name", file.Name)
	if file.Seq == 0 || file.Seq != s.openSeq {
		log.Warn("session open dropped", "latest", s.openSeq, "err", schema.ErrStaleOpen)
		return s.notify(schema.NoticeWarn, fmt.Sprintf("Ignored %s: a newer open request is pending", file.Name))
	}
	s.openSeq++
	s.tabs.UpdateActive(func(t *tab) {
		t.Content = file.Content
		t.Name = schema.TabName(file.Name)
		t.OriginPath = file.Name
		t.Modified = false
	})
	s.mirrorActive(ctx)
	s.emitTab(schema.DocumentEventLoaded, s.tabs.Active())
	log.Info("session file loaded", "tab", s.tabs.ActiveID(), "runes", len([]rune(file.Content)))
	return Outcome{}
}

func (s *Session) awaitDecision(ctx context.Context, action schema.PendingAction) {
	s.pending = action
	s.pendingTab = s.tabs.ActiveID()
	s.saveConfirm = true
	s.emitTab(schema.DocumentEventDialog, s.tabs.Active())
	s.logger(ctx).Info("session save decision requested", "pending", action, "tab", s.tabs.ActiveID())
}

func (s *Session) clearPending() {
	s.pending = schema.PendingNone
	s.pendingTab = 0
	s.saveConfirm = false
	s.emitTab(schema.DocumentEventDialog, s.tabs.Active())
}

func (s *Session) runPending(ctx context.Context, action schema.PendingAction) {
	switch action {
	case schema.PendingNew:
		s.resetActive(ctx)
	case schema.PendingOpen:
		s.pickFile(ctx)
	}
}

func (s *Session) resetActive(ctx context.Context) {
	s.tabs.UpdateActive(func(t *tab) { t.reset() })
	s.mirrorActive(ctx)
	s.emitTab(schema.DocumentEventReset, s.tabs.Active())
	s.logger(ctx).Info("session document reset", "tab", s.tabs.ActiveID())
}

func (s *Session) pickFile(ctx context.Context) {
	s.openSeq++
	req := schema.OpenFileRequest{
		UserID: s.user,
		Seq:    s.openSeq,
		Accept: append([]string(nil), s.cfg.AcceptExtensions...),
	}
	if box := outboxFromContext(ctx); box != nil {
		box.open = &req
	}
	log := s.logger(ctx).With("seq", req.Seq)
	if files := s.files(ctx); files != nil {
		if err := files.PickFile(ctx, req); err != nil {
			log.Warn("session file picker failed", "err", err)
			return
		}
	}
	log.Info("session file picker requested")
}

// saveActive emits the active document under its origin name or a prompted
// one. suggest shapes the prompt default from the display name.
func (s *Session) saveActive(ctx context.Context, message string, suggest func(schema.TabName) string) error {
	active := s.tabs.Active()
	if active.OriginPath != "" {
		s.emitFile(ctx, string(active.Name), active.Content)
		s.tabs.UpdateActive(func(t *tab) { t.Modified = false })
		s.emitTab(schema.DocumentEventSaved, s.tabs.Active())
		return nil
	}
	name, ok := s.prompter(ctx).PromptText(ctx, message, suggest(active.Name))
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return schema.ErrSaveTargetUnresolved
	}
	s.commitSave(ctx, name)
	return nil
}

func (s *Session) commitSave(ctx context.Context, name string) {
	content := s.tabs.Active().Content
	s.emitFile(ctx, name, content)
	s.tabs.UpdateActive(func(t *tab) {
		t.Name = schema.TabName(name)
		t.OriginPath = name
		t.Modified = false
	})
	s.mirrorActive(ctx)
	s.emitTab(schema.DocumentEventSaved, s.tabs.Active())
	s.logger(ctx).Info("session save emitted", "tab", s.tabs.ActiveID(), "name", name)
}

func (s *Session) emitFile(ctx context.Context, name, content string) {
	payload := schema.FilePayload{UserID: s.user, Name: name, Content: content}
	if box := outboxFromContext(ctx); box != nil {
		box.downloads = append(box.downloads, payload)
	}
	if files := s.files(ctx); files != nil {
		if err := files.Emit(ctx, payload); err != nil {
			s.logger(ctx).Warn("session file emit failed", "name", name, "err", err)
		}
	}
}

func (s *Session) notify(level schema.NoticeLevel, message string) Outcome {
	if s.deps.EventSink != nil {
		s.deps.EventSink.OnNotice(schema.NoticeEvent{UserID: s.user, Level: level, Message: message})
	}
	return Outcome{Notice: message}
}

func (s *Session) emitTab(eventType schema.DocumentEventType, t *tab) {
	s.emitEvent(eventType, t.Snapshot(t.ID == s.tabs.ActiveID()))
}

func (s *Session) emitEvent(eventType schema.DocumentEventType, snapshot schema.TabSnapshot) {
	if s.deps.EventSink == nil {
		return
	}
	s.deps.EventSink.OnDocumentEvent(schema.DocumentEvent{
		UserID:    s.user,
		Type:      eventType,
		Tab:       snapshot,
		ActiveTab: s.tabs.ActiveID(),
	})
}

func (s *Session) prompter(ctx context.Context) Prompter {
	if p := PrompterFromContext(ctx); p != nil {
		return p
	}
	if s.deps.Prompter != nil {
		return s.deps.Prompter
	}
	return declinePrompter{}
}

func (s *Session) files(ctx context.Context) FileHandler {
	if f := filesFromContext(ctx); f != nil {
		return f
	}
	return s.deps.Files
}

func (s *Session) clipboard(ctx context.Context) Clipboard {
	if c := clipboardFromContext(ctx); c != nil {
		return c
	}
	return s.deps.Clipboard
}

func (s *Session) logger(ctx context.Context) pslog.Logger {
	return logx.WithUser(ctx, s.user)
}

func suggestTxtName(name schema.TabName) string {
	value := string(name)
	if strings.HasSuffix(value, ".txt") {
		return value
	}
	return value + ".txt"
}
