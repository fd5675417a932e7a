package core

import (
	"context"
	"strconv"

	"pkt.systems/notepad/schema"
)

// Keys of the persistent mirror.
const (
	KeyContent  = "notepad-content"
	KeyFileName = "notepad-filename"
	KeyWordWrap = "notepad-wordwrap"
	KeyFontSize = "notepad-fontsize"
	KeyZoom     = "notepad-zoom"
)

// restore loads the mirrored document into the first tab and the stored view settings.
func (s *Session) restore(ctx context.Context) {
	if s.deps.Store == nil {
		return
	}
	log := s.logger(ctx)
	content, hasContent := s.storeGet(ctx, KeyContent)
	name, hasName := s.storeGet(ctx, KeyFileName)
	if hasContent || hasName {
		s.tabs.UpdateActive(func(t *tab) {
			if hasContent {
				t.Content = content
			}
			if hasName && name != "" {
				t.Name = schema.TabName(name)
			}
		})
	}
	if raw, ok := s.storeGet(ctx, KeyWordWrap); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			s.view.WordWrap = v
		}
	}
	if raw, ok := s.storeGet(ctx, KeyFontSize); ok {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= schema.MaxFontSize {
			s.view.FontSize = v
		}
	}
	if raw, ok := s.storeGet(ctx, KeyZoom); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			s.view.Zoom = schema.ClampZoom(v)
		}
	}
	log.Debug("session restored", "content", hasContent, "name", hasName, "zoom", s.view.Zoom, "font_size", s.view.FontSize, "word_wrap", s.view.WordWrap)
}

// mirrorActive overwrites the stored document with the active tab.
func (s *Session) mirrorActive(ctx context.Context) {
	active := s.tabs.Active()
	s.storeSet(ctx, KeyContent, active.Content)
	s.storeSet(ctx, KeyFileName, string(active.Name))
}

func (s *Session) mirrorView(ctx context.Context) {
	s.storeSet(ctx, KeyWordWrap, strconv.FormatBool(s.view.WordWrap))
	s.storeSet(ctx, KeyFontSize, strconv.Itoa(s.view.FontSize))
	s.storeSet(ctx, KeyZoom, strconv.Itoa(s.view.Zoom))
}

func (s *Session) storeGet(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.deps.Store.Get(key)
	if err != nil {
		s.logger(ctx).Warn("session store read failed", "key", key, "err", err)
		return "", false
	}
	return value, ok
}

// storeSet is fire-and-forget; failures are logged and otherwise ignored.
func (s *Session) storeSet(ctx context.Context, key, value string) {
	if s.deps.Store == nil {
		return
	}
	if err := s.deps.Store.Set(key, value); err != nil {
		s.logger(ctx).Warn("session store write failed", "key", key, "err", err)
	}
}
