package sessionprefs

import (
	"context"
	"sync"

	"pkt.systems/notepad/schema"
)

// Prefs captures per-connection preferences. A browser session or console
// keeps its own Prefs even when several connections share a user.
type Prefs struct {
	mu        sync.Mutex
	selection schema.Selection
}

type prefsKey struct{}

// New returns prefs with no remembered selection.
func New() *Prefs {
	return new(Prefs)
}

// Selection returns the last selection remembered on this connection.
func (p *Prefs) Selection() schema.Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection
}

// Remember stores sel as the connection's current selection.
func (p *Prefs) Remember(sel schema.Selection) {
	p.mu.Lock()
	p.selection = sel
	p.mu.Unlock()
}

// Resolve returns sel when set, otherwise the remembered selection.
func (p *Prefs) Resolve(sel *schema.Selection) schema.Selection {
	if sel != nil {
		return *sel
	}
	return p.Selection()
}

// WithContext attaches prefs to ctx. A nil ctx or prefs leaves ctx as is.
func WithContext(ctx context.Context, prefs *Prefs) context.Context {
	if ctx == nil || prefs == nil {
		return ctx
	}
	return context.WithValue(ctx, prefsKey{}, prefs)
}

// FromContext returns the connection prefs carried by ctx, or nil.
func FromContext(ctx context.Context) *Prefs {
	if ctx == nil {
		return nil
	}
	prefs, _ := ctx.Value(prefsKey{}).(*Prefs)
	return prefs
}
