package core

import (
	"context"
	"errors"
	"testing"

	"pkt.systems/notepad/schema"
)

func newTestService(t *testing.T, deps ServiceDeps) Service {
	t.Helper()
	svc, err := NewService(schema.ServiceConfig{}, deps)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceRejectsInvalidUser(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	for _, user := range []schema.UserID{"", "Alice", " bob", "a/b"} {
		_, err := svc.GetSession(context.Background(), schema.GetSessionRequest{UserID: user})
		if !errors.Is(err, schema.ErrInvalidUser) {
			t.Fatalf("user %q: expected ErrInvalidUser, got %v", user, err)
		}
	}
}

func TestServiceSessionsArePerUser(t *testing.T) {
	provider := &memProvider{}
	svc := newTestService(t, ServiceDeps{Store: provider})
	ctx := context.Background()
	if _, err := svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "alice", Content: "secret"}); err != nil {
		t.Fatalf("update content: %v", err)
	}
	resp, err := svc.GetSession(ctx, schema.GetSessionRequest{UserID: "bob"})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if resp.Session.Document.Content != "" {
		t.Fatalf("bob must not see alice's document, got %q", resp.Session.Document.Content)
	}
	if got := provider.buckets["alice"].value(KeyContent); got != "secret" {
		t.Fatalf("expected alice bucket to mirror content, got %q", got)
	}
	if got := provider.buckets["bob"].value(KeyContent); got != "" {
		t.Fatalf("expected bob bucket untouched, got %q", got)
	}
}

func TestServiceRestoresFromBucket(t *testing.T) {
	provider := &memProvider{}
	bucket, _ := provider.Bucket("alice")
	_ = bucket.Set(KeyContent, "from disk")
	_ = bucket.Set(KeyZoom, "150")
	svc := newTestService(t, ServiceDeps{Store: provider})
	resp, err := svc.GetSession(context.Background(), schema.GetSessionRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if resp.Session.Document.Content != "from disk" || resp.Session.View.Zoom != 150 {
		t.Fatalf("unexpected restored session %+v", resp.Session)
	}
}

func TestServiceSaveUsesRequestName(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	ctx := context.Background()
	if _, err := svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "alice", Content: "body"}); err != nil {
		t.Fatalf("update content: %v", err)
	}

	resp, err := svc.Save(ctx, schema.SaveRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("save without name: %v", err)
	}
	if len(resp.Downloads) != 0 || !resp.Session.Document.Modified {
		t.Fatalf("expected declined prompt to keep document modified, got %+v", resp)
	}

	resp, err = svc.Save(ctx, schema.SaveRequest{UserID: "alice", Name: strPtr("body.txt")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(resp.Downloads) != 1 || resp.Downloads[0].Name != "body.txt" || resp.Downloads[0].Content != "body" {
		t.Fatalf("unexpected downloads %+v", resp.Downloads)
	}
	if resp.Session.Document.Modified || resp.Session.Document.Name != "body.txt" {
		t.Fatalf("unexpected document after save %+v", resp.Session.Document)
	}
}

func TestServiceOpenAndLoad(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	ctx := context.Background()
	resp, err := svc.OpenDocument(ctx, schema.OpenDocumentRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("open document: %v", err)
	}
	if resp.OpenRequest == nil || resp.OpenRequest.Seq != 1 {
		t.Fatalf("expected open request, got %+v", resp.OpenRequest)
	}
	resp, err = svc.LoadFile(ctx, schema.LoadFileRequest{UserID: "alice", File: schema.OpenFileResult{Seq: 1, Name: "a.md", Content: "# a"}})
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if resp.Session.Document.Content != "# a" || resp.Session.Document.OriginPath != "a.md" {
		t.Fatalf("unexpected loaded document %+v", resp.Session.Document)
	}
	if _, err := svc.LoadFile(ctx, schema.LoadFileRequest{UserID: "alice"}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero seq, got %v", err)
	}
}

func TestServiceNewWithDecision(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	ctx := context.Background()
	_, _ = svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "alice", Content: "unsaved"})
	resp, err := svc.NewDocument(ctx, schema.NewDocumentRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if !resp.Session.Dialogs.SaveConfirm {
		t.Fatalf("expected save confirmation, got %+v", resp.Session.Dialogs)
	}
	if _, err := svc.ResolveSave(ctx, schema.ResolveSaveRequest{UserID: "alice", Decision: "maybe"}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	resp, err = svc.ResolveSave(ctx, schema.ResolveSaveRequest{UserID: "alice", Decision: schema.DecisionSave, Name: strPtr("kept.txt")})
	if err != nil {
		t.Fatalf("resolve save: %v", err)
	}
	if len(resp.Downloads) != 1 || resp.Downloads[0].Name != "kept.txt" {
		t.Fatalf("unexpected downloads %+v", resp.Downloads)
	}
	if resp.Session.Document.Content != "" || resp.Session.Dialogs.SaveConfirm {
		t.Fatalf("expected pending new to run, got %+v", resp.Session)
	}
}

func TestServiceCloseTabSaveChanges(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	ctx := context.Background()
	_, _ = svc.CreateTab(ctx, schema.CreateTabRequest{UserID: "alice"})
	_, _ = svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "alice", Content: "tab two"})
	resp, err := svc.CloseTab(ctx, schema.CloseTabRequest{UserID: "alice", TabID: 2, SaveChanges: boolPtr(true)})
	if err != nil {
		t.Fatalf("close tab: %v", err)
	}
	if len(resp.Downloads) != 1 || resp.Downloads[0].Name != "Untitled-2" {
		t.Fatalf("unexpected downloads %+v", resp.Downloads)
	}
	if len(resp.Session.Tabs) != 1 || resp.Session.ActiveTab != 1 {
		t.Fatalf("unexpected tabs %+v", resp.Session.Tabs)
	}
	if _, err := svc.CloseTab(ctx, schema.CloseTabRequest{UserID: "alice"}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing tab id, got %v", err)
	}
	resp, err = svc.ActivateTab(ctx, schema.ActivateTabRequest{UserID: "alice", TabID: 9})
	if err != nil {
		t.Fatalf("activate unknown tab must be a no-op, got %v", err)
	}
	if resp.Session.ActiveTab != 1 {
		t.Fatalf("unexpected active tab %d", resp.Session.ActiveTab)
	}
}

func TestServiceUpdateView(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	ctx := context.Background()
	resp, err := svc.UpdateView(ctx, schema.UpdateViewRequest{UserID: "alice", Action: schema.ViewZoomIn})
	if err != nil {
		t.Fatalf("zoom in: %v", err)
	}
	if resp.Session.View.Zoom != 110 {
		t.Fatalf("expected zoom 110, got %d", resp.Session.View.Zoom)
	}
	if _, err := svc.UpdateView(ctx, schema.UpdateViewRequest{UserID: "alice", Action: "spin"}); !errors.Is(err, schema.ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView, got %v", err)
	}
	if _, err := svc.UpdateView(ctx, schema.UpdateViewRequest{UserID: "alice", Action: schema.ViewSetFontSize, Value: -1}); !errors.Is(err, schema.ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView for font size, got %v", err)
	}
}

func TestServiceSearchFlow(t *testing.T) {
	sink := &recordingSink{}
	svc := newTestService(t, ServiceDeps{EventSink: sink})
	ctx := context.Background()
	_, _ = svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "alice", Content: "Cat cat CAT"})
	if _, err := svc.SetSearch(ctx, schema.SetSearchRequest{UserID: "alice", Pattern: "cat", Replacement: "dog", Mode: schema.SearchReplace}); err != nil {
		t.Fatalf("set search: %v", err)
	}
	resp, err := svc.FindNext(ctx, schema.SearchRequest{UserID: "alice", Selection: schema.Caret(1)})
	if err != nil {
		t.Fatalf("find next: %v", err)
	}
	if !resp.Found || resp.Selection.Start != 4 {
		t.Fatalf("unexpected find next %+v", resp)
	}
	resp, err = svc.ReplaceAll(ctx, schema.ReplaceAllRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("replace all: %v", err)
	}
	if resp.Count != 3 || resp.Session.Document.Content != "dog dog dog" {
		t.Fatalf("unexpected replace all %+v", resp)
	}
	if _, err := svc.SetSearch(ctx, schema.SetSearchRequest{UserID: "alice", Mode: "grep"}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(sink.notices) != 1 {
		t.Fatalf("expected one notice, got %+v", sink.notices)
	}
}

func TestServiceClipboardOps(t *testing.T) {
	clip := &memClipboard{}
	svc := newTestService(t, ServiceDeps{Clipboard: clip})
	ctx := context.Background()
	_, _ = svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "alice", Content: "copy me"})
	if _, err := svc.Clipboard(ctx, schema.ClipboardRequest{UserID: "alice", Op: schema.ClipboardCopy, Selection: schema.Selection{Start: 0, End: 4}}); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if clip.text != "copy" {
		t.Fatalf("expected clipboard text, got %q", clip.text)
	}
	if _, err := svc.Clipboard(ctx, schema.ClipboardRequest{UserID: "alice", Op: "shred"}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestServiceGoToLineValidates(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	if _, err := svc.GoToLine(context.Background(), schema.GoToLineRequest{UserID: "alice", Line: 0}); !errors.Is(err, schema.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestServiceDropUserStartsFresh(t *testing.T) {
	provider := &memProvider{}
	svc := newTestService(t, ServiceDeps{Store: provider})
	ctx := context.Background()
	if _, err := svc.CreateTab(ctx, schema.CreateTabRequest{UserID: "web-1"}); err != nil {
		t.Fatalf("create tab: %v", err)
	}
	if _, err := svc.UpdateContent(ctx, schema.UpdateContentRequest{UserID: "web-1", Content: "gone"}); err != nil {
		t.Fatalf("update content: %v", err)
	}

	if err := svc.DropUser(ctx, "web-1"); err != nil {
		t.Fatalf("drop user: %v", err)
	}
	if len(provider.dropped) != 1 || provider.dropped[0] != "web-1" {
		t.Fatalf("expected bucket dropped, got %v", provider.dropped)
	}
	if got := len(svc.(*service).users); got != 0 {
		t.Fatalf("expected no live sessions, got %d", got)
	}

	resp, err := svc.GetSession(ctx, schema.GetSessionRequest{UserID: "web-1"})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(resp.Session.Tabs) != 1 || resp.Session.Document.Content != "" {
		t.Fatalf("expected a fresh session, got %+v", resp.Session)
	}
}

func TestServiceDropUnknownUser(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	if err := svc.DropUser(context.Background(), "nobody"); err != nil {
		t.Fatalf("drop unknown user: %v", err)
	}
	if err := svc.DropUser(context.Background(), "a/b"); !errors.Is(err, schema.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}
