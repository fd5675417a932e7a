package core

import (
	"context"

	"pkt.systems/notepad/schema"
)

// ToggleWordWrap flips word wrap.
func (s *Session) ToggleWordWrap(ctx context.Context) Outcome {
	s.view.WordWrap = !s.view.WordWrap
	return s.viewChanged(ctx)
}

// SetFontSize sets the editor font size. Sizes outside (0, MaxFontSize] are rejected.
func (s *Session) SetFontSize(ctx context.Context, size int) (Outcome, error) {
	if size <= 0 || size > schema.MaxFontSize {
		return Outcome{}, schema.ErrInvalidView
	}
	s.view.FontSize = size
	return s.viewChanged(ctx), nil
}

// ZoomIn increases zoom by one step up to ZoomMax.
func (s *Session) ZoomIn(ctx context.Context) Outcome {
	s.view.Zoom = schema.ClampZoom(s.view.Zoom + schema.ZoomStep)
	return s.viewChanged(ctx)
}

// ZoomOut decreases zoom by one step down to ZoomMin.
func (s *Session) ZoomOut(ctx context.Context) Outcome {
	s.view.Zoom = schema.ClampZoom(s.view.Zoom - schema.ZoomStep)
	return s.viewChanged(ctx)
}

// ResetZoom restores the default zoom.
func (s *Session) ResetZoom(ctx context.Context) Outcome {
	s.view.Zoom = schema.DefaultZoom
	return s.viewChanged(ctx)
}

func (s *Session) viewChanged(ctx context.Context) Outcome {
	s.mirrorView(ctx)
	s.emitTab(schema.DocumentEventView, s.tabs.Active())
	s.logger(ctx).Debug("session view updated", "word_wrap", s.view.WordWrap, "font_size", s.view.FontSize, "zoom", s.view.Zoom)
	return Outcome{}
}
