package sshserver

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/persist"
	"pkt.systems/notepad/schema"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestSigner(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

func expectOutput(t *testing.T, output *lockedBuffer, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(output.String(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected output to contain %q, got %q", want, output.String())
}

type testServer struct {
	addr    string
	service core.Service
	root    string
}

func startServer(t *testing.T, allowed ...ssh.PublicKey) testServer {
	t.Helper()
	dir := t.TempDir()
	var keys bytes.Buffer
	keys.WriteString("# notepad users\n\n")
	for _, key := range allowed {
		keys.Write(ssh.MarshalAuthorizedKey(key))
	}
	keysPath := filepath.Join(dir, "authorized_keys")
	if err := os.WriteFile(keysPath, keys.Bytes(), 0o600); err != nil {
		t.Fatalf("write authorized keys: %v", err)
	}
	checker, err := NewAuthorizedKeys(keysPath)
	if err != nil {
		t.Fatalf("NewAuthorizedKeys: %v", err)
	}
	svc, err := core.NewService(schema.ServiceConfig{}, core.ServiceDeps{Store: persist.NewMemory()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	root := filepath.Join(dir, "files")
	server := &Server{
		Addr:        ln.Addr().String(),
		Listener:    ln,
		HostKeyPath: filepath.Join(dir, "host_key"),
		Service:     svc,
		Keys:        checker,
		FileRoot:    root,
	}
	done := make(chan struct{})
	go func() {
		_ = server.ListenAndServe(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = ln.Close()
	})
	return testServer{addr: ln.Addr().String(), service: svc, root: root}
}

func dial(addr, user string, signer ssh.Signer) (*ssh.Client, error) {
	return ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
}

func TestSSHSessionEditsDocument(t *testing.T) {
	signer := newTestSigner(t)
	ts := startServer(t, signer.PublicKey())

	client, err := dial(ts.addr, "alice", signer)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	session, err := client.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()
	if err := session.RequestPty("xterm", 40, 80, ssh.TerminalModes{}); err != nil {
		t.Fatal(err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := session.Shell(); err != nil {
		t.Fatal(err)
	}
	output := &lockedBuffer{}
	go func() {
		_, _ = io.Copy(output, stdout)
	}()

	expectOutput(t, output, "/help for commands", 5*time.Second)
	if _, err := fmt.Fprint(stdin, "hello over ssh\r/saveas greeting.txt\r"); err != nil {
		t.Fatal(err)
	}
	expectOutput(t, output, "saved ", 5*time.Second)
	if _, err := fmt.Fprint(stdin, "/quit\r"); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- session.Wait() }()
	select {
	case <-time.After(5 * time.Second):
		t.Fatalf("session did not close after /quit")
	case <-done:
	}

	data, err := os.ReadFile(filepath.Join(ts.root, "alice", "greeting.txt"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "hello over ssh\n" {
		t.Fatalf("unexpected saved content %q", data)
	}
	resp, err := ts.service.GetSession(context.Background(), schema.GetSessionRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if resp.Session.Document.Name != "greeting.txt" || resp.Session.Document.Modified {
		t.Fatalf("unexpected document state %+v", resp.Session.Document.TabSnapshot)
	}
}

func TestSSHRejectsUnknownKey(t *testing.T) {
	allowed := newTestSigner(t)
	ts := startServer(t, allowed.PublicKey())
	stranger := newTestSigner(t)
	if client, err := dial(ts.addr, "alice", stranger); err == nil {
		_ = client.Close()
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestSSHRejectsInvalidUser(t *testing.T) {
	signer := newTestSigner(t)
	ts := startServer(t, signer.PublicKey())
	if client, err := dial(ts.addr, "../etc", signer); err == nil {
		_ = client.Close()
		t.Fatalf("expected invalid user to be rejected")
	}
}
