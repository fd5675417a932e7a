package sshserver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	gliderssh "github.com/gliderlabs/ssh"
	"golang.org/x/crypto/ssh"
)

// AuthorizedKeys is an authorized_keys file that is re-read when it changes.
type AuthorizedKeys struct {
	path    string
	mu      sync.Mutex
	modTime time.Time
	keys    []ssh.PublicKey
}

// NewAuthorizedKeys returns a key set backed by path. A missing file
// admits nobody.
func NewAuthorizedKeys(path string) (*AuthorizedKeys, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("authorized keys path is required")
	}
	a := &AuthorizedKeys{path: path}
	if err := a.reload(); err != nil {
		return nil, err
	}
	return a, nil
}

// Allowed reports whether key is listed.
func (a *AuthorizedKeys) Allowed(key ssh.PublicKey) (bool, error) {
	if err := a.reload(); err != nil {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, candidate := range a.keys {
		if gliderssh.KeysEqual(candidate, key) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of keys currently loaded.
func (a *AuthorizedKeys) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.keys)
}

func (a *AuthorizedKeys) reload() error {
	info, err := os.Stat(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			a.mu.Lock()
			a.keys = nil
			a.modTime = time.Time{}
			a.mu.Unlock()
			return nil
		}
		return fmt.Errorf("stat authorized keys: %w", err)
	}
	a.mu.Lock()
	unchanged := info.ModTime().Equal(a.modTime) && !a.modTime.IsZero()
	a.mu.Unlock()
	if unchanged {
		return nil
	}
	data, err := os.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("read authorized keys: %w", err)
	}
	keys, err := ParseAuthorizedKeys(data)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.keys = keys
	a.modTime = info.ModTime()
	a.mu.Unlock()
	return nil
}

// ParseAuthorizedKeys parses every key in an authorized_keys document,
// skipping blank lines and comments.
func ParseAuthorizedKeys(data []byte) ([]ssh.PublicKey, error) {
	var keys []ssh.PublicKey
	for i, raw := range bytes.Split(data, []byte("\n")) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key, _, _, _, err := ssh.ParseAuthorizedKey(line)
		if err != nil {
			return nil, fmt.Errorf("parse authorized keys line %d: %w", i+1, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
