package sessionprefs

import (
	"context"
	"testing"

	"pkt.systems/notepad/schema"
)

func TestContextCarriesConnectionSelection(t *testing.T) {
	prefs := New()
	prefs.Remember(schema.Selection{Start: 2, End: 5})

	ctx := WithContext(context.Background(), prefs)
	got := FromContext(ctx)
	if got == nil {
		t.Fatalf("expected prefs")
	}
	if got.Selection() != (schema.Selection{Start: 2, End: 5}) {
		t.Fatalf("selection = %+v, want 2..5", got.Selection())
	}
}

func TestResolvePrefersExplicitSelection(t *testing.T) {
	prefs := New()
	prefs.Remember(schema.Caret(7))
	if got := prefs.Resolve(nil); got != schema.Caret(7) {
		t.Fatalf("expected remembered caret, got %+v", got)
	}
	explicit := schema.Selection{Start: 1, End: 3}
	if got := prefs.Resolve(&explicit); got != explicit {
		t.Fatalf("expected explicit selection, got %+v", got)
	}
}

func TestContextWithoutPrefs(t *testing.T) {
	var nilCtx context.Context
	ctx := WithContext(nilCtx, New())
	if ctx != nil {
		t.Fatalf("expected nil context")
	}
	ctx = WithContext(context.Background(), nil)
	if ctx == nil {
		t.Fatalf("expected non-nil context to pass through")
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no prefs for empty context")
	}
}
