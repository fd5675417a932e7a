package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/command"
	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/internal/sessionprefs"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// Server serves the HTTP API and UI.
type Server struct {
	cfg      Config
	service  core.Service
	sessions *sessionStore
	hub      *Hub
	web      webRoot
}

// NewServer constructs an HTTP server.
func NewServer(cfg Config, service core.Service, hub *Hub) *Server {
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	if strings.TrimSpace(cfg.SessionCookie) == "" {
		cfg.SessionCookie = "notepad_session"
	}
	if hub == nil {
		hub = NewHub(cfg.HubHistory)
	}
	s := &Server{
		cfg:     cfg,
		service: service,
		hub:     hub,
		web:     newWebRoot(cfg.BaseURL, cfg.BasePath),
	}
	s.sessions = newSessionStore(ttl, cfg.SessionsPath, s.releaseUser)
	return s
}

// releaseUser frees everything kept for a browser whose session ended.
// Each browser is its own user, so nothing else refers to it.
func (s *Server) releaseUser(userID schema.UserID) {
	s.hub.Forget(userID)
	if err := s.service.DropUser(context.Background(), userID); err != nil {
		logx.WithUser(context.Background(), userID).Warn("http session release failed", "err", err)
	}
}

// SetBaseContext sets the parent context for session lifetimes.
func (s *Server) SetBaseContext(ctx context.Context) {
	if s == nil || ctx == nil {
		return
	}
	s.sessions.setBaseContext(ctx)
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/assets/", s.web.static())

	mux.HandleFunc("/api/session", s.requireSession(s.handleSession))
	mux.HandleFunc("/api/tabs", s.requireSession(s.handleCreateTab))
	mux.HandleFunc("/api/tabs/close", s.requireSession(s.handleCloseTab))
	mux.HandleFunc("/api/tabs/activate", s.requireSession(s.handleActivate))
	mux.HandleFunc("/api/document", s.requireSession(s.handleDocument))

	mux.HandleFunc("/api/file/new", s.requireSession(s.handleNew))
	mux.HandleFunc("/api/file/open", s.requireSession(s.handleOpen))
	mux.HandleFunc("/api/file/load", s.requireSession(s.handleLoad))
	mux.HandleFunc("/api/file/save", s.requireSession(s.handleSave))
	mux.HandleFunc("/api/file/saveas", s.requireSession(s.handleSaveAs))
	mux.HandleFunc("/api/file/decision", s.requireSession(s.handleDecision))

	mux.HandleFunc("/api/search", s.requireSession(s.handleSetSearch))
	mux.HandleFunc("/api/search/next", s.requireSession(s.handleSearchOp(searchNext)))
	mux.HandleFunc("/api/search/prev", s.requireSession(s.handleSearchOp(searchPrev)))
	mux.HandleFunc("/api/search/replace", s.requireSession(s.handleSearchOp(searchReplace)))
	mux.HandleFunc("/api/search/replaceall", s.requireSession(s.handleReplaceAll))
	mux.HandleFunc("/api/dialogs/dismiss", s.requireSession(s.handleDismiss))
	mux.HandleFunc("/api/dialogs/goto", s.requireSession(s.handleShowGoTo))

	mux.HandleFunc("/api/view", s.requireSession(s.handleView))
	mux.HandleFunc("/api/edit/insert", s.requireSession(s.handleInsert))
	mux.HandleFunc("/api/edit/datetime", s.requireSession(s.handleDateTime))
	mux.HandleFunc("/api/edit/goto", s.requireSession(s.handleGoTo))
	mux.HandleFunc("/api/edit/clipboard", s.requireSession(s.handleClipboard))
	mux.HandleFunc("/api/edit/selectall", s.requireSession(s.handleSelectAll))
	mux.HandleFunc("/api/stats", s.requireSession(s.handleStats))
	mux.HandleFunc("/api/key", s.requireSession(s.handleKey))
	mux.HandleFunc("/api/stream", s.requireSession(s.handleStream))

	return s.web.mount(withRequestLogging(mux, s.lookupSession))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.ensureSession(w, r)
	s.web.serveIndex(w, r)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
	s.reply(w, r, "session", resp, err)
}

func (s *Server) handleCreateTab(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.CreateTab(ctx, schema.CreateTabRequest{UserID: userID})
	s.reply(w, r, "tabs create", resp, err)
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		ID          schema.TabID `json:"id"`
		SaveChanges *bool        `json:"save_changes"`
	}
	if !s.decodePost(w, r, "tabs close", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.CloseTab(ctx, schema.CloseTabRequest{
		UserID:      userID,
		TabID:       payload.ID,
		SaveChanges: payload.SaveChanges,
	})
	s.reply(w, r, "tabs close", resp, err)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		ID schema.TabID `json:"id"`
	}
	if !s.decodePost(w, r, "tabs activate", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.ActivateTab(ctx, schema.ActivateTabRequest{UserID: userID, TabID: payload.ID})
	s.reply(w, r, "tabs activate", resp, err)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Content   string            `json:"content"`
		Selection *schema.Selection `json:"selection"`
	}
	if !s.decodePost(w, r, "document", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.UpdateContent(ctx, schema.UpdateContentRequest{UserID: userID, Content: payload.Content})
	if err == nil && payload.Selection != nil {
		resp.Selection = payload.Selection
	}
	s.reply(w, r, "document", resp, err)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.NewDocument(ctx, schema.NewDocumentRequest{UserID: userID})
	s.reply(w, r, "file new", resp, err)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.OpenDocument(ctx, schema.OpenDocumentRequest{UserID: userID})
	s.reply(w, r, "file open", resp, err)
}

// maxLoadSize bounds an uploaded file.
const maxLoadSize = 8 << 20

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoadSize)
	var payload schema.OpenFileResult
	if !s.decodePost(w, r, "file load", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.LoadFile(ctx, schema.LoadFileRequest{UserID: userID, File: payload})
	s.reply(w, r, "file load", resp, err)
}

type namePayload struct {
	Name *string `json:"name"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload namePayload
	if !s.decodePost(w, r, "file save", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.Save(ctx, schema.SaveRequest{UserID: userID, Name: payload.Name})
	s.reply(w, r, "file save", resp, err)
}

func (s *Server) handleSaveAs(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload namePayload
	if !s.decodePost(w, r, "file saveas", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.SaveAs(ctx, schema.SaveAsRequest{UserID: userID, Name: payload.Name})
	s.reply(w, r, "file saveas", resp, err)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Decision schema.SaveDecision `json:"decision"`
		Name     *string             `json:"name"`
	}
	if !s.decodePost(w, r, "file decision", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.ResolveSave(ctx, schema.ResolveSaveRequest{
		UserID:   userID,
		Decision: payload.Decision,
		Name:     payload.Name,
	})
	s.reply(w, r, "file decision", resp, err)
}

func (s *Server) handleSetSearch(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Pattern     string            `json:"pattern"`
		Replacement string            `json:"replacement"`
		Mode        schema.SearchMode `json:"mode"`
	}
	if !s.decodePost(w, r, "search", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.SetSearch(ctx, schema.SetSearchRequest{
		UserID:      userID,
		Pattern:     payload.Pattern,
		Replacement: payload.Replacement,
		Mode:        payload.Mode,
	})
	s.reply(w, r, "search", resp, err)
}

type searchOp int

const (
	searchNext searchOp = iota
	searchPrev
	searchReplace
)

type selectionPayload struct {
	Selection *schema.Selection `json:"selection"`
}

func (s *Server) handleSearchOp(op searchOp) func(http.ResponseWriter, *http.Request, schema.UserID) {
	name := map[searchOp]string{searchNext: "search next", searchPrev: "search prev", searchReplace: "search replace"}[op]
	return func(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
		var payload selectionPayload
		if !s.decodePost(w, r, name, &payload) {
			return
		}
		ctx := sessionContext(r.Context())
		req := schema.SearchRequest{UserID: userID, Selection: resolveSelection(ctx, payload.Selection)}
		var (
			resp schema.SessionResponse
			err  error
		)
		switch op {
		case searchNext:
			resp, err = s.service.FindNext(ctx, req)
		case searchPrev:
			resp, err = s.service.FindPrevious(ctx, req)
		default:
			resp, err = s.service.Replace(ctx, req)
		}
		s.reply(w, r, name, resp, err)
	}
}

func (s *Server) handleReplaceAll(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.ReplaceAll(ctx, schema.ReplaceAllRequest{UserID: userID})
	s.reply(w, r, "search replaceall", resp, err)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.DismissDialogs(ctx, schema.DismissDialogsRequest{UserID: userID})
	s.reply(w, r, "dialogs dismiss", resp, err)
}

func (s *Server) handleShowGoTo(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.ShowGoToLine(ctx, schema.GetSessionRequest{UserID: userID})
	s.reply(w, r, "dialogs goto", resp, err)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Action schema.ViewAction `json:"action"`
		Value  int               `json:"value"`
	}
	if !s.decodePost(w, r, "view", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.UpdateView(ctx, schema.UpdateViewRequest{
		UserID: userID,
		Action: payload.Action,
		Value:  payload.Value,
	})
	s.reply(w, r, "view", resp, err)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Selection *schema.Selection `json:"selection"`
		Text      string            `json:"text"`
	}
	if !s.decodePost(w, r, "edit insert", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.InsertText(ctx, schema.InsertTextRequest{
		UserID:    userID,
		Selection: resolveSelection(ctx, payload.Selection),
		Text:      payload.Text,
	})
	s.reply(w, r, "edit insert", resp, err)
}

func (s *Server) handleDateTime(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload selectionPayload
	if !s.decodePost(w, r, "edit datetime", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.InsertDateTime(ctx, schema.InsertDateTimeRequest{
		UserID:    userID,
		Selection: resolveSelection(ctx, payload.Selection),
	})
	s.reply(w, r, "edit datetime", resp, err)
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Line int `json:"line"`
	}
	if !s.decodePost(w, r, "edit goto", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.GoToLine(ctx, schema.GoToLineRequest{UserID: userID, Line: payload.Line})
	s.reply(w, r, "edit goto", resp, err)
}

func (s *Server) handleClipboard(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Op        schema.ClipboardOp `json:"op"`
		Selection *schema.Selection  `json:"selection"`
	}
	if !s.decodePost(w, r, "edit clipboard", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.Clipboard(ctx, schema.ClipboardRequest{
		UserID:    userID,
		Op:        payload.Op,
		Selection: resolveSelection(ctx, payload.Selection),
	})
	s.reply(w, r, "edit clipboard", resp, err)
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.SelectAll(ctx, schema.GetSessionRequest{UserID: userID})
	s.reply(w, r, "edit selectall", resp, err)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload selectionPayload
	if !s.decodePost(w, r, "stats", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := s.service.Stats(ctx, schema.StatsRequest{
		UserID:    userID,
		Selection: resolveSelection(ctx, payload.Selection),
	})
	s.reply(w, r, "stats", resp, err)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	var payload struct {
		Key       string            `json:"key"`
		Selection *schema.Selection `json:"selection"`
		Text      *string           `json:"text"`
	}
	if !s.decodePost(w, r, "key", &payload) {
		return
	}
	ctx := sessionContext(r.Context())
	resp, err := command.DispatchKey(ctx, s.service, command.KeyRequest{
		UserID:    userID,
		Chord:     payload.Key,
		Selection: resolveSelection(ctx, payload.Selection),
		Text:      payload.Text,
	})
	s.reply(w, r, "key", resp, err)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, userID schema.UserID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("stream unsupported"))
		return
	}
	log := logx.WithUser(r.Context(), userID)
	ctx := sessionContext(r.Context())

	// Subscribe before the snapshot so nothing published in between is lost.
	ch, unsubscribe, _, _ := s.hub.Subscribe(userID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	lastID := parseUint(r.Header.Get("Last-Event-ID"))

	resp, err := s.service.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
	if err != nil {
		log.Warn("http stream snapshot failed", "err", err)
	} else {
		snapshot := resp.Session
		_ = writeSSEvent(w, StreamEvent{
			Type:      streamSnapshot,
			Snapshot:  &snapshot,
			Timestamp: time.Now(),
		})
	}
	flusher.Flush()

	replayCount := 0
	if lastID > 0 {
		replay := s.hub.Replay(userID, lastID)
		replayCount = len(replay)
		for _, event := range replay {
			_ = writeSSEvent(w, event)
			lastID = event.Seq
		}
		flusher.Flush()
	}

	notify := r.Context().Done()
	log.Info("http stream opened", "last_id", lastID, "replay", replayCount, "tabs", len(resp.Session.Tabs))
	for {
		select {
		case <-notify:
			log.Info("http stream closed")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Seq <= lastID {
				continue
			}
			_ = writeSSEvent(w, event)
			flusher.Flush()
		}
	}
}

// reply writes a service response, remembering the returned selection on
// the browser session so later requests may omit it.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, op string, resp schema.SessionResponse, err error) {
	log := logx.Ctx(r.Context())
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("http "+op+" failed", "err", err)
		} else {
			log.Warn("http "+op+" rejected", "err", err)
		}
		writeError(w, status, err)
		return
	}
	if resp.Selection != nil {
		if prefs := sessionprefs.FromContext(sessionContext(r.Context())); prefs != nil {
			prefs.Remember(*resp.Selection)
		}
	}
	writeJSON(w, http.StatusOK, resp)
	log.Debug("http "+op+" ok", "active", resp.Session.ActiveTab, "downloads", len(resp.Downloads), "open", resp.OpenRequest != nil)
}

// decodePost rejects non-POST requests and decodes an optional JSON body.
func (s *Server) decodePost(w http.ResponseWriter, r *http.Request, op string, target any) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if err := decodeJSON(r.Body, target); err != nil && !errors.Is(err, io.EOF) {
		logx.Ctx(r.Context()).Warn("http "+op+" decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrInvalidRequest),
		errors.Is(err, schema.ErrInvalidUser),
		errors.Is(err, schema.ErrInvalidView):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrTabNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func resolveSelection(ctx context.Context, sel *schema.Selection) schema.Selection {
	prefs := sessionprefs.FromContext(ctx)
	if prefs == nil {
		if sel != nil {
			return *sel
		}
		return schema.Selection{}
	}
	return prefs.Resolve(sel)
}

// requireSession resolves the browser session, creating an anonymous one
// on first contact.
func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, schema.UserID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := s.ensureSession(w, r)
		log := logx.Ctx(r.Context()).With("remote", clientIP(r), "user", entry.userID, "http_session", entry.id)
		ctx := logx.ContextWithSurface(logx.ContextWithUserLogger(r.Context(), log, entry.userID), logx.SurfaceHTTP)
		ctx = withSessionContext(ctx, entry)
		next(w, r.WithContext(ctx), entry.userID)
	}
}

func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) session {
	token := s.sessionToken(r)
	if token != "" {
		if entry, renewed, ok := s.sessions.get(token); ok {
			if renewed {
				s.setSessionCookie(w, token, entry.expiresAt)
			}
			return entry
		}
	}
	token, entry := s.sessions.create(newWebUserID())
	s.setSessionCookie(w, token, entry.expiresAt)
	// Later handlers in this request see the new session too.
	r.AddCookie(&http.Cookie{Name: s.cfg.SessionCookie, Value: token})
	return entry
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

type sessionContextKey struct{}

func withSessionContext(ctx context.Context, sess session) context.Context {
	if ctx == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// sessionContext moves a request onto the browser session's context and
// attaches the session's clipboard.
func sessionContext(ctx context.Context) context.Context {
	if ctx == nil {
		return nil
	}
	value := ctx.Value(sessionContextKey{})
	sess, ok := value.(session)
	if !ok || sess.ctx == nil {
		return ctx
	}
	logger := pslog.Ctx(ctx)
	out := logx.CopyContextFields(pslog.ContextWithLogger(sess.ctx, logger), ctx)
	if sess.clipboard != nil {
		out = core.WithClipboard(out, sess.clipboard)
	}
	return out
}

func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(s.cfg.SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) lookupSession(r *http.Request) (schema.UserID, string) {
	if s == nil || r == nil {
		return "", ""
	}
	token := s.sessionToken(r)
	if token == "" {
		return "", ""
	}
	entry, ok := s.sessions.peek(token)
	if !ok {
		return "", ""
	}
	return entry.userID, entry.id
}

func decodeJSON(body io.Reader, target any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeSSEvent(w http.ResponseWriter, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if event.Seq > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", event.Seq)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", strings.TrimSpace(string(data)))
	return nil
}

func parseUint(value string) uint64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
