package sshserver

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/crypto/ssh"
)

// HostKey is the server identity presented to SSH clients.
type HostKey struct {
	Signer ssh.Signer
	// Created is set when the key was generated on this start.
	Created bool
}

// Fingerprint returns the SHA256 fingerprint clients see on first connect.
func (k HostKey) Fingerprint() string {
	return ssh.FingerprintSHA256(k.Signer.PublicKey())
}

// EnsureHostKey loads the ed25519 host key at path, generating it when the
// file does not exist. A generated key also gets path + ".pub". Existing keys
// readable by group or others are refused.
func EnsureHostKey(path string) (HostKey, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return HostKey{}, errors.New("ssh host key path is required")
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
			return HostKey{}, fmt.Errorf("host key %s is accessible by others (mode %04o)", path, info.Mode().Perm())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return HostKey{}, fmt.Errorf("read host key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return HostKey{}, fmt.Errorf("parse host key %s: %w", path, err)
		}
		return HostKey{Signer: signer}, nil
	case !os.IsNotExist(err):
		return HostKey{}, fmt.Errorf("stat host key: %w", err)
	}

	signer, err := generateHostKey(path)
	if err != nil {
		return HostKey{}, err
	}
	return HostKey{Signer: signer, Created: true}, nil
}

func generateHostKey(path string) (ssh.Signer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create host key dir: %w", err)
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "notepad host key")
	if err != nil {
		return nil, fmt.Errorf("marshal host key: %w", err)
	}
	// O_EXCL: two servers racing on a fresh state dir must not overwrite each other.
	if err := writeExclusive(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("write host key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path+".pub", ssh.MarshalAuthorizedKey(signer.PublicKey()), 0o644); err != nil {
		return nil, fmt.Errorf("write host public key: %w", err)
	}
	return signer, nil
}

func writeExclusive(path string, data []byte, mode os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	return file.Close()
}
