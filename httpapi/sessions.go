package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"pkt.systems/notepad/internal/clipboard"
	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/internal/sessionprefs"
	"pkt.systems/notepad/schema"
)

// session is one browser. Each browser is its own anonymous user, so tabs
// are never shared between visitors.
type session struct {
	id        string
	userID    schema.UserID
	expiresAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	prefs     *sessionprefs.Prefs
	clipboard *clipboard.Memory
}

func (e session) end() {
	if e.cancel != nil {
		e.cancel()
	}
}

// sessionStore maps cookie tokens to browser sessions. Expiry slides: a
// session used after half its lifetime is renewed for a full TTL.
// release is called with the user of every session that expires or is
// deleted, outside the store lock.
type sessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	baseCtx context.Context
	items   map[string]session
	path    string
	release func(schema.UserID)

	// writeMu orders file writes so an older snapshot never replaces a newer one.
	writeMu sync.Mutex
}

func newSessionStore(ttl time.Duration, path string, release func(schema.UserID)) *sessionStore {
	store := &sessionStore{
		ttl:     ttl,
		baseCtx: context.Background(),
		items:   make(map[string]session),
		path:    strings.TrimSpace(path),
		release: release,
	}
	if store.path != "" {
		if err := store.load(); err != nil {
			logx.Ctx(context.Background()).Warn("http session file unreadable", "path", store.path, "err", err)
		}
	}
	return store
}

// newWebUserID returns a fresh anonymous user id of the form web-<hex>.
func newWebUserID() schema.UserID {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return schema.UserID("web-" + strconv.FormatInt(time.Now().UnixNano(), 16))
	}
	return schema.UserID("web-" + hex.EncodeToString(buf))
}

func (s *sessionStore) create(userID schema.UserID) (string, session) {
	now := time.Now()
	token := randomToken(32)
	s.mu.Lock()
	expired := s.sweepLocked(now)
	entry := s.newSessionLocked(userID, now.Add(s.ttl), "")
	s.items[token] = entry
	s.mu.Unlock()
	s.releaseUsers(expired...)
	s.persist()
	logx.WithUser(context.Background(), userID).Info("http session created", "http_session", entry.id, "expires", entry.expiresAt.Format(time.RFC3339))
	return token, entry
}

// get returns the live session for token. renewed reports that the expiry
// moved and the cookie should be reissued.
func (s *sessionStore) get(token string) (entry session, renewed bool, ok bool) {
	now := time.Now()
	s.mu.Lock()
	entry, ok = s.items[token]
	if !ok {
		s.mu.Unlock()
		return session{}, false, false
	}
	if now.After(entry.expiresAt) {
		delete(s.items, token)
		s.mu.Unlock()
		entry.end()
		logx.WithUser(context.Background(), entry.userID).Info("http session expired", "http_session", entry.id)
		s.releaseUsers(entry.userID)
		s.persist()
		return session{}, false, false
	}
	if entry.expiresAt.Sub(now) < s.ttl/2 {
		entry.expiresAt = now.Add(s.ttl)
		s.items[token] = entry
		renewed = true
	}
	s.mu.Unlock()
	if renewed {
		s.persist()
	}
	return entry, renewed, true
}

// peek looks a session up without renewing or expiring it.
func (s *sessionStore) peek(token string) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[token]
	return entry, ok
}

func (s *sessionStore) delete(token string) {
	s.mu.Lock()
	entry, ok := s.items[token]
	delete(s.items, token)
	s.mu.Unlock()
	if !ok {
		return
	}
	entry.end()
	logx.WithUser(context.Background(), entry.userID).Info("http session deleted", "http_session", entry.id)
	s.releaseUsers(entry.userID)
	s.persist()
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// setBaseContext reparents every session onto ctx, keeping prefs and clipboard.
func (s *sessionStore) setBaseContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseCtx = ctx
	for token, entry := range s.items {
		entry.end()
		entry.ctx, entry.cancel = context.WithCancel(sessionprefs.WithContext(ctx, entry.prefs))
		s.items[token] = entry
	}
}

// sweepLocked removes expired sessions and returns their users.
func (s *sessionStore) sweepLocked(now time.Time) []schema.UserID {
	var expired []schema.UserID
	for token, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, token)
			entry.end()
			expired = append(expired, entry.userID)
		}
	}
	return expired
}

func (s *sessionStore) releaseUsers(users ...schema.UserID) {
	if s.release == nil {
		return
	}
	for _, userID := range users {
		s.release(userID)
	}
}

func (s *sessionStore) newSessionLocked(userID schema.UserID, expiresAt time.Time, sessionID string) session {
	if sessionID == "" {
		sessionID = randomToken(12)
	}
	prefs := sessionprefs.New()
	ctx, cancel := context.WithCancel(sessionprefs.WithContext(s.baseCtx, prefs))
	return session{
		id:        sessionID,
		userID:    userID,
		expiresAt: expiresAt,
		ctx:       ctx,
		cancel:    cancel,
		prefs:     prefs,
		clipboard: clipboard.NewMemory(),
	}
}

func randomToken(size int) string {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// sessionRecord is the on-disk form of a session. Prefs and clipboard
// contents are not kept across restarts.
type sessionRecord struct {
	Token     string    `yaml:"token"`
	SessionID string    `yaml:"session_id"`
	UserID    string    `yaml:"user_id"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

type sessionFile struct {
	Version  int             `yaml:"version"`
	Sessions []sessionRecord `yaml:"sessions"`
}

func (s *sessionStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var file sessionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	now := time.Now()
	var expired []schema.UserID
	s.mu.Lock()
	for _, record := range file.Sessions {
		userID := schema.UserID(record.UserID)
		if record.Token == "" || schema.ValidateUserID(userID) != nil {
			continue
		}
		if now.After(record.ExpiresAt) {
			expired = append(expired, userID)
			continue
		}
		s.items[record.Token] = s.newSessionLocked(userID, record.ExpiresAt, record.SessionID)
	}
	kept := len(s.items)
	s.mu.Unlock()
	s.releaseUsers(expired...)
	if kept != len(file.Sessions) {
		s.persist()
	}
	logx.Ctx(context.Background()).Info("http sessions restored", "sessions", kept, "dropped", len(file.Sessions)-kept)
	return nil
}

func (s *sessionStore) persist() {
	if s.path == "" {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	file := sessionFile{Version: 1, Sessions: make([]sessionRecord, 0, len(s.items))}
	for token, entry := range s.items {
		file.Sessions = append(file.Sessions, sessionRecord{
			Token:     token,
			SessionID: entry.id,
			UserID:    string(entry.userID),
			ExpiresAt: entry.expiresAt,
		})
	}
	s.mu.Unlock()
	if err := writeSessionFile(s.path, file); err != nil {
		logx.Ctx(context.Background()).Warn("http session file not written", "path", s.path, "err", err)
	}
}

func writeSessionFile(path string, file sessionFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".sessions-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
