package sshserver

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

func TestParseAuthorizedKeysSkipsComments(t *testing.T) {
	key := newTestSigner(t).PublicKey()
	data := "# comment\n\n" + string(ssh.MarshalAuthorizedKey(key))
	keys, err := ParseAuthorizedKeys([]byte(data))
	if err != nil {
		t.Fatalf("ParseAuthorizedKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %d", len(keys))
	}
	if _, err := ParseAuthorizedKeys([]byte("not a key\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAuthorizedKeysReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authorized_keys")
	first := newTestSigner(t).PublicKey()
	second := newTestSigner(t).PublicKey()

	keys, err := NewAuthorizedKeys(path)
	if err != nil {
		t.Fatalf("NewAuthorizedKeys: %v", err)
	}
	if ok, _ := keys.Allowed(first); ok {
		t.Fatalf("expected missing file to admit nobody")
	}
	if err := os.WriteFile(path, ssh.MarshalAuthorizedKey(first), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ok, err := keys.Allowed(first); err != nil || !ok {
		t.Fatalf("expected first key allowed, got %v %v", ok, err)
	}
	if err := os.WriteFile(path, ssh.MarshalAuthorizedKey(second), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if ok, _ := keys.Allowed(first); ok {
		t.Fatalf("expected first key removed after reload")
	}
	if ok, _ := keys.Allowed(second); !ok {
		t.Fatalf("expected second key allowed after reload")
	}
	if keys.Len() != 1 {
		t.Fatalf("expected one key loaded, got %d", keys.Len())
	}
}

func TestEnsureHostKeyCreatesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_key")
	first, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("EnsureHostKey: %v", err)
	}
	if !first.Created {
		t.Fatalf("expected a generated key")
	}
	if _, err := os.Stat(path + ".pub"); err != nil {
		t.Fatalf("expected public key file: %v", err)
	}
	second, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("EnsureHostKey reload: %v", err)
	}
	if second.Created {
		t.Fatalf("expected reload, not regeneration")
	}
	if first.Fingerprint() != second.Fingerprint() || !strings.HasPrefix(first.Fingerprint(), "SHA256:") {
		t.Fatalf("expected same host key after reload")
	}
	if _, err := EnsureHostKey(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestEnsureHostKeyRefusesOpenPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "host_key")
	if _, err := EnsureHostKey(path); err != nil {
		t.Fatalf("EnsureHostKey: %v", err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := EnsureHostKey(path); err == nil || !strings.Contains(err.Error(), "accessible by others") {
		t.Fatalf("expected permission error, got %v", err)
	}
}
