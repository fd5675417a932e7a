package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// Store persists one key-value bucket per user as a JSON file.
type Store struct {
	dir string
	log pslog.Logger

	mu      sync.Mutex
	buckets map[schema.UserID]*Bucket
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger, buckets: make(map[schema.UserID]*Bucket)}, nil
}

// Bucket returns the key-value bucket of userID. Buckets are cached so all
// sessions of a user share one in-memory view.
func (s *Store) Bucket(userID schema.UserID) (core.KeyValueStore, error) {
	return s.bucket(userID)
}

func (s *Store) bucket(userID schema.UserID) (*Bucket, error) {
	if err := schema.ValidateUserID(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[userID]; ok {
		return b, nil
	}
	b := &Bucket{store: s, user: userID, path: s.pathForUser(userID)}
	if err := b.load(); err != nil {
		return nil, err
	}
	s.buckets[userID] = b
	return b, nil
}

// DropBucket deletes userID's state file and evicts the cached bucket.
// A missing file is not an error.
func (s *Store) DropBucket(userID schema.UserID) error {
	if err := schema.ValidateUserID(userID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.buckets, userID)
	s.mu.Unlock()

	path := s.pathForUser(userID)
	unlock, err := lockFile(path+".lock", true)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	unlock()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Remove(path + ".lock"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if s.log != nil {
		s.log.Debug("state dropped", "user", userID)
	}
	return nil
}

// Bucket is the persisted key-value map of one user.
type Bucket struct {
	store *Store
	user  schema.UserID
	path  string

	mu     sync.Mutex
	values map[string]string
}

// Get returns the value stored under key.
func (b *Bucket) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.values[key]
	return value, ok, nil
}

// Set stores value under key and writes the bucket to disk.
func (b *Bucket) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if current, ok := b.values[key]; ok && current == value {
		return nil
	}
	b.values[key] = value
	if err := b.save(); err != nil {
		b.logWarn("state save failed", "key", key, "err", err)
		return err
	}
	b.logTrace("state save ok", "key", key, "bytes", len(value))
	return nil
}

func (b *Bucket) load() error {
	b.values = make(map[string]string)
	unlock, err := lockFile(b.path+".lock", false)
	if err != nil {
		return err
	}
	defer unlock()
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.logDebug("state load miss")
			return nil
		}
		b.logWarn("state load failed", "err", err)
		return err
	}
	if err := json.Unmarshal(data, &b.values); err != nil {
		b.logWarn("state load failed", "err", err)
		return fmt.Errorf("decode %s: %w", b.path, err)
	}
	b.logDebug("state load ok", "keys", len(b.values))
	return nil
}

func (b *Bucket) save() error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b.values, "", "  ")
	if err != nil {
		return err
	}
	unlock, err := lockFile(b.path+".lock", true)
	if err != nil {
		return err
	}
	defer unlock()
	tmp, err := os.CreateTemp(dir, "state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}

func (b *Bucket) logDebug(msg string, kv ...any) {
	if b.store.log != nil {
		b.store.log.Debug(msg, append([]any{"user", b.user}, kv...)...)
	}
}

func (b *Bucket) logTrace(msg string, kv ...any) {
	if b.store.log != nil {
		b.store.log.Trace(msg, append([]any{"user", b.user}, kv...)...)
	}
}

func (b *Bucket) logWarn(msg string, kv ...any) {
	if b.store.log != nil {
		b.store.log.Warn(msg, append([]any{"user", b.user}, kv...)...)
	}
}

func (s *Store) pathForUser(userID schema.UserID) string {
	name := sanitize(string(userID))
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(s.dir, name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
