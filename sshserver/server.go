package sshserver

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"

	gliderssh "github.com/gliderlabs/ssh"
	"golang.org/x/crypto/ssh"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/clipboard"
	"pkt.systems/notepad/internal/command"
	"pkt.systems/notepad/internal/console"
	"pkt.systems/notepad/internal/eventbus"
	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// KeyChecker decides which public keys may log in.
type KeyChecker interface {
	Allowed(key ssh.PublicKey) (bool, error)
}

// Server exposes the notepad console over SSH.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Service     core.Service
	Handler     *command.Handler
	Prompt      string
	Theme       string
	FileRoot    string
	Keys        KeyChecker
	EventBus    *eventbus.Bus
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.Prompt == "" {
		s.Prompt = "notepad> "
	}
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.Service == nil {
		return errors.New("service is required for SSH")
	}
	if s.Keys == nil {
		return errors.New("authorized keys are required for SSH")
	}
	if s.Handler == nil {
		s.Handler = command.NewHandler(s.Service, command.HandlerConfig{})
	}

	hostKey, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}
	if hostKey.Created {
		s.logger.Info("ssh host key generated", "path", s.HostKeyPath, "fingerprint", hostKey.Fingerprint())
	}

	server := &gliderssh.Server{
		Addr:             s.Addr,
		Handler:          s.handleSession,
		PublicKeyHandler: s.handlePublicKey,
	}
	server.AddHostKey(hostKey.Signer)
	s.logger.Info("ssh server listening", "addr", s.Addr, "host_key", hostKey.Fingerprint())

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, gliderssh.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handlePublicKey(ctx gliderssh.Context, key gliderssh.PublicKey) bool {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(ctx)
	}
	fingerprint := ssh.FingerprintSHA256(key)
	remote := remoteAddr(ctx)
	userID := schema.UserID(ctx.User())
	if err := schema.ValidateUserID(userID); err != nil {
		log.Warn("ssh pubkey rejected", "reason", "invalid user", "remote", remote, "fingerprint", fingerprint, "err", err)
		return false
	}
	log = log.With("user", userID, "remote", remote, "fingerprint", fingerprint)
	if sshSession := ctx.SessionID(); sshSession != "" {
		log = log.With("ssh_session", sshSession)
	}
	ok, err := s.Keys.Allowed(key)
	if err != nil {
		log.Warn("ssh pubkey rejected", "err", err)
		return false
	}
	if !ok {
		log.Warn("ssh pubkey rejected", "reason", "no matching key")
		return false
	}
	log.Info("ssh pubkey accepted")
	return true
}

func remoteAddr(ctx gliderssh.Context) string {
	if ctx == nil || ctx.RemoteAddr() == nil {
		return ""
	}
	return ctx.RemoteAddr().String()
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	userID := schema.UserID(sess.User())
	remote := sess.RemoteAddr().String()
	log = logx.WithRemote(log.With("user", userID), remote)
	if sshSession := sess.Context().SessionID(); sshSession != "" {
		log = log.With("ssh_session", sshSession)
	}
	ctx := logx.ContextWithSurface(logx.ContextWithUserLogger(sess.Context(), log, userID), logx.SurfaceSSH)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		return
	}

	var events <-chan eventbus.Event
	if s.EventBus != nil {
		var unsubscribe func()
		events, unsubscribe = s.EventBus.Subscribe(userID)
		defer unsubscribe()
	}
	log.Info("ssh session opened", "term", pty.Term, "consoles", s.EventBus.Subscribers(userID))
	fileRoot := ""
	if s.FileRoot != "" {
		fileRoot = filepath.Join(s.FileRoot, string(userID))
	}
	ui := console.New(sess, s.Service, s.Handler, console.Config{
		UserID:    userID,
		Prompt:    s.Prompt,
		Theme:     s.Theme,
		Width:     pty.Window.Width,
		FileRoot:  fileRoot,
		Confine:   true,
		Clipboard: clipboard.NewMemory(),
		Events:    events,
	})
	ui.SetSize(pty.Window.Width, pty.Window.Height)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case win, ok := <-winCh:
				if !ok {
					return
				}
				ui.SetSize(win.Width, win.Height)
				log.Debug("ssh resize", "width", win.Width, "height", win.Height)
			}
		}
	}()
	if err := ui.Run(runCtx); err != nil {
		log.Warn("ssh console failed", "err", err)
	}
	log.Info("ssh session closed", "term", pty.Term)
}
