package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// service implements Service with one lazily created Session per user.
type service struct {
	cfg    schema.ServiceConfig
	deps   ServiceDeps
	logger pslog.Logger
	mu     sync.Mutex
	users  map[schema.UserID]*userSession
}

// userSession serialises one user's operations. Interactive prompts may
// block while the lock is held, so it is per user rather than global.
type userSession struct {
	mu   sync.Mutex
	sess *Session
}

// NewService constructs the core service implementation.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &service{
		cfg:    normalized,
		deps:   deps,
		logger: logger,
		users:  make(map[schema.UserID]*userSession),
	}, nil
}

// outbox collects what a session hands to the file collaborators during one call.
type outbox struct {
	downloads []schema.FilePayload
	open      *schema.OpenFileRequest
}

type outboxKey struct{}

func withOutbox(ctx context.Context, box *outbox) context.Context {
	return context.WithValue(ctx, outboxKey{}, box)
}

func outboxFromContext(ctx context.Context) *outbox {
	if ctx == nil {
		return nil
	}
	box, _ := ctx.Value(outboxKey{}).(*outbox)
	return box
}

type sessionOp func(ctx context.Context, sess *Session) (Outcome, error)

// do runs op against the user's session under the service lock and builds
// the response. answers, when non-nil, replace the interactive prompter.
func (s *service) do(ctx context.Context, userID schema.UserID, name string, answers *Answers, op sessionOp) (schema.SessionResponse, error) {
	if ctx == nil {
		return schema.SessionResponse{}, errors.New("missing context")
	}
	userID, err := normalizeUserID(userID)
	if err != nil {
		return schema.SessionResponse{}, err
	}
	log := logx.WithUser(ctx, userID)
	ctx = logx.ContextWithUserLogger(ctx, log, userID)

	user, err := s.userSession(ctx, userID)
	if err != nil {
		log.Warn("service session unavailable", "op", name, "err", err)
		return schema.SessionResponse{}, err
	}
	user.mu.Lock()
	defer user.mu.Unlock()
	sess := user.sess
	box := &outbox{}
	ctx = withOutbox(ctx, box)
	if answers != nil {
		ctx = WithPrompter(ctx, *answers)
	}
	out, err := op(ctx, sess)
	if err != nil {
		log.Warn("service op failed", "op", name, "err", err)
		return schema.SessionResponse{}, err
	}
	log.Trace("service op done", "op", name, "downloads", len(box.downloads), "open", box.open != nil)
	return schema.SessionResponse{
		Session:     sess.Snapshot(),
		Selection:   out.Selection,
		Found:       out.Found,
		Count:       out.Count,
		Notice:      out.Notice,
		Stats:       out.Stats,
		Downloads:   box.downloads,
		OpenRequest: box.open,
	}, nil
}

func (s *service) userSession(ctx context.Context, userID schema.UserID) (*userSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		return user, nil
	}
	deps := SessionDeps{
		Files:     s.deps.Files,
		Prompter:  s.deps.Prompter,
		Clipboard: s.deps.Clipboard,
		EventSink: s.deps.EventSink,
		Now:       s.deps.Now,
	}
	if s.deps.Store != nil {
		bucket, err := s.deps.Store.Bucket(userID)
		if err != nil {
			return nil, fmt.Errorf("open store bucket: %w", err)
		}
		deps.Store = bucket
	}
	sess, err := NewSession(ctx, userID, s.cfg, deps)
	if err != nil {
		return nil, err
	}
	user := &userSession{sess: sess}
	s.users[userID] = user
	s.logger.Info("service session created", "user", userID, "sessions", len(s.users))
	return user, nil
}

// DropUser releases userID's session once any running operation returns,
// then deletes the user's bucket when the store supports it. The next call
// for the user starts from a fresh session.
func (s *service) DropUser(ctx context.Context, userID schema.UserID) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	userID, err := normalizeUserID(userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	user, ok := s.users[userID]
	delete(s.users, userID)
	remaining := len(s.users)
	s.mu.Unlock()
	tabs := 0
	if ok {
		user.mu.Lock()
		tabs = user.sess.tabs.Len()
		user.mu.Unlock()
	}
	log := logx.WithUser(ctx, userID)
	if dropper, can := s.deps.Store.(BucketDropper); can {
		if err := dropper.DropBucket(userID); err != nil {
			log.Warn("service bucket drop failed", "err", err)
			return fmt.Errorf("drop store bucket: %w", err)
		}
	}
	log.Info("service session dropped", "had_session", ok, "tabs", tabs, "sessions", remaining)
	return nil
}

func normalizeUserID(userID schema.UserID) (schema.UserID, error) {
	if err := schema.ValidateUserID(userID); err != nil {
		return "", err
	}
	return userID, nil
}

func pass(out Outcome) (Outcome, error) {
	return out, nil
}

func (s *service) GetSession(ctx context.Context, req schema.GetSessionRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "get_session", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return Outcome{}, nil
	})
}

func (s *service) CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "create_tab", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.AddTab(ctx))
	})
}

func (s *service) CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.SessionResponse, error) {
	if req.TabID <= 0 {
		return schema.SessionResponse{}, schema.ErrInvalidRequest
	}
	var answers *Answers
	if req.SaveChanges != nil {
		answers = &Answers{Confirmed: req.SaveChanges}
	}
	return s.do(ctx, req.UserID, "close_tab", answers, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.CloseTab(ctx, req.TabID))
	})
}

func (s *service) ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.SessionResponse, error) {
	if req.TabID <= 0 {
		return schema.SessionResponse{}, schema.ErrInvalidRequest
	}
	return s.do(ctx, req.UserID, "activate_tab", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.SwitchTab(ctx, req.TabID))
	})
}

func (s *service) UpdateContent(ctx context.Context, req schema.UpdateContentRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "update_content", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.UpdateContent(ctx, req.Content))
	})
}

func (s *service) NewDocument(ctx context.Context, req schema.NewDocumentRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "new_document", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.RequestNew(ctx))
	})
}

func (s *service) OpenDocument(ctx context.Context, req schema.OpenDocumentRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "open_document", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.RequestOpen(ctx))
	})
}

func (s *service) ResolveSave(ctx context.Context, req schema.ResolveSaveRequest) (schema.SessionResponse, error) {
	if !schema.ValidSaveDecision(req.Decision) {
		return schema.SessionResponse{}, schema.ErrInvalidRequest
	}
	return s.do(ctx, req.UserID, "resolve_save", nameAnswers(req.Name), func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.ResolveSaveDecision(ctx, req.Decision))
	})
}

func (s *service) LoadFile(ctx context.Context, req schema.LoadFileRequest) (schema.SessionResponse, error) {
	if req.File.Seq == 0 {
		return schema.SessionResponse{}, schema.ErrInvalidRequest
	}
	return s.do(ctx, req.UserID, "load_file", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.CompleteOpen(ctx, req.File))
	})
}

func (s *service) Save(ctx context.Context, req schema.SaveRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "save", nameAnswers(req.Name), func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.Save(ctx))
	})
}

func (s *service) SaveAs(ctx context.Context, req schema.SaveAsRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "save_as", nameAnswers(req.Name), func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.SaveAs(ctx))
	})
}

func (s *service) SetSearch(ctx context.Context, req schema.SetSearchRequest) (schema.SessionResponse, error) {
	switch req.Mode {
	case schema.SearchClosed, schema.SearchFind, schema.SearchReplace:
	default:
		return schema.SessionResponse{}, schema.ErrInvalidRequest
	}
	state := schema.SearchState{Pattern: req.Pattern, Replacement: req.Replacement, Mode: req.Mode}
	return s.do(ctx, req.UserID, "set_search", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.SetSearch(ctx, state))
	})
}

func (s *service) FindNext(ctx context.Context, req schema.SearchRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "find_next", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.FindNext(ctx, req.Selection))
	})
}

func (s *service) FindPrevious(ctx context.Context, req schema.SearchRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "find_previous", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.FindPrevious(ctx, req.Selection))
	})
}

func (s *service) Replace(ctx context.Context, req schema.SearchRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "replace", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.Replace(ctx, req.Selection))
	})
}

func (s *service) ReplaceAll(ctx context.Context, req schema.ReplaceAllRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "replace_all", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.ReplaceAll(ctx))
	})
}

func (s *service) DismissDialogs(ctx context.Context, req schema.DismissDialogsRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "dismiss_dialogs", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.DismissDialogs(ctx))
	})
}

func (s *service) ShowGoToLine(ctx context.Context, req schema.GetSessionRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "show_goto", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.ShowGoToLine(ctx))
	})
}

func (s *service) UpdateView(ctx context.Context, req schema.UpdateViewRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "update_view", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		switch req.Action {
		case schema.ViewToggleWordWrap:
			return pass(sess.ToggleWordWrap(ctx))
		case schema.ViewSetFontSize:
			return sess.SetFontSize(ctx, req.Value)
		case schema.ViewZoomIn:
			return pass(sess.ZoomIn(ctx))
		case schema.ViewZoomOut:
			return pass(sess.ZoomOut(ctx))
		case schema.ViewResetZoom:
			return pass(sess.ResetZoom(ctx))
		default:
			return Outcome{}, schema.ErrInvalidView
		}
	})
}

func (s *service) InsertText(ctx context.Context, req schema.InsertTextRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "insert_text", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.InsertText(ctx, req.Selection, req.Text))
	})
}

func (s *service) InsertDateTime(ctx context.Context, req schema.InsertDateTimeRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "insert_datetime", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.InsertDateTime(ctx, req.Selection))
	})
}

func (s *service) Clipboard(ctx context.Context, req schema.ClipboardRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "clipboard", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		switch req.Op {
		case schema.ClipboardCopy:
			return sess.Copy(ctx, req.Selection)
		case schema.ClipboardCut:
			return sess.Cut(ctx, req.Selection)
		case schema.ClipboardPaste:
			return sess.Paste(ctx, req.Selection)
		default:
			return Outcome{}, schema.ErrInvalidRequest
		}
	})
}

func (s *service) SelectAll(ctx context.Context, req schema.GetSessionRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "select_all", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.SelectAll(ctx))
	})
}

func (s *service) GoToLine(ctx context.Context, req schema.GoToLineRequest) (schema.SessionResponse, error) {
	if req.Line <= 0 {
		return schema.SessionResponse{}, schema.ErrInvalidRequest
	}
	return s.do(ctx, req.UserID, "goto_line", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.GoToLine(ctx, req.Line))
	})
}

func (s *service) Stats(ctx context.Context, req schema.StatsRequest) (schema.SessionResponse, error) {
	return s.do(ctx, req.UserID, "stats", nil, func(ctx context.Context, sess *Session) (Outcome, error) {
		return pass(sess.Stats(ctx, req.Selection))
	})
}

func nameAnswers(name *string) *Answers {
	if name == nil {
		return nil
	}
	return &Answers{Text: name}
}
