package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/schema"
)

func TestStoreBucketMissingFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	bucket, err := store.Bucket("alice")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if _, ok, err := bucket.Get(core.KeyContent); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
}

func TestStoreSetPersistsAcrossStores(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	bucket, err := store.Bucket("alice")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if err := bucket.Set(core.KeyContent, "hello\nworld"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bucket.Set(core.KeyZoom, "120"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	bucket, err = reopened.Bucket("alice")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	got, ok, err := bucket.Get(core.KeyContent)
	if err != nil || !ok || got != "hello\nworld" {
		t.Fatalf("unexpected content %q ok=%v err=%v", got, ok, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "alice.json"))
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		t.Fatalf("decode state file: %v", err)
	}
	if values[core.KeyZoom] != "120" {
		t.Fatalf("unexpected file contents %v", values)
	}
	info, err := os.Stat(filepath.Join(dir, "alice.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 state file, got %v", info.Mode().Perm())
	}
}

func TestStoreBucketIsCached(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	a, _ := store.Bucket("alice")
	b, _ := store.Bucket("alice")
	if a != b {
		t.Fatalf("expected the same bucket for one user")
	}
}

func TestStoreLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	path := filepath.Join(dir, "alice.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0o600); err != nil {
		t.Fatalf("write bad json: %v", err)
	}
	if _, err := store.Bucket("alice"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestStoreRejectsInvalidUser(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Bucket("../etc"); err == nil {
		t.Fatalf("expected invalid user error")
	}
}

func TestNewStoreRequiresDir(t *testing.T) {
	if _, err := NewStore("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("web-1a2b"); got != "web-1a2b" {
		t.Fatalf("unexpected sanitize result %q", got)
	}
	if got := sanitize("a/b c"); got != "a_b_c" {
		t.Fatalf("unexpected sanitize result %q", got)
	}
}

func TestMemoryBuckets(t *testing.T) {
	mem := NewMemory()
	a, err := mem.Bucket("alice")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if err := a.Set(core.KeyFileName, "a.txt"); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, _ := mem.Bucket("bob")
	if _, ok, _ := b.Get(core.KeyFileName); ok {
		t.Fatalf("buckets must be isolated per user")
	}
	again, _ := mem.Bucket("alice")
	if v, _, _ := again.Get(core.KeyFileName); v != "a.txt" {
		t.Fatalf("expected persisted value, got %q", v)
	}
	var _ core.StoreProvider = mem
	var _ core.StoreProvider = (*Store)(nil)
	if _, err := mem.Bucket(schema.UserID("")); err == nil {
		t.Fatalf("expected invalid user error")
	}
}

func TestStoreDropBucketRemovesState(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	bucket, err := store.Bucket("web-1")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if err := bucket.Set(core.KeyContent, "scratch"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.DropBucket("web-1"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "web-1.json")); !os.IsNotExist(err) {
		t.Fatalf("expected state file removed, got %v", err)
	}
	if len(store.buckets) != 0 {
		t.Fatalf("expected bucket evicted")
	}
	again, err := store.Bucket("web-1")
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if _, ok, _ := again.Get(core.KeyContent); ok {
		t.Fatalf("expected empty bucket after drop")
	}
	if err := store.DropBucket("never-seen"); err != nil {
		t.Fatalf("drop missing bucket: %v", err)
	}
	var _ core.BucketDropper = store
	var _ core.BucketDropper = NewMemory()
}
