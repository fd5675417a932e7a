package schema

import "errors"

// ServiceConfig defines defaults and limits for the core service.
type ServiceConfig struct {
	// NoWordWrap starts new sessions with word wrap off.
	NoWordWrap       bool
	DefaultFontSize  int
	DefaultZoom      int
	AcceptExtensions []string
}

const (
	// ZoomMin is the smallest zoom percentage.
	ZoomMin = 10
	// ZoomMax is the largest zoom percentage.
	ZoomMax = 500
	// ZoomStep is the zoom increment.
	ZoomStep = 10
	// DefaultZoom is the zoom restored by a reset.
	DefaultZoom = 100
	// DefaultFontSize is the initial font size in points.
	DefaultFontSize = 14
	// MaxFontSize bounds font sizes accepted from clients.
	MaxFontSize = 400
)

// DefaultAcceptExtensions lists the file types offered by the open dialog.
var DefaultAcceptExtensions = []string{".txt", ".md", ".js", ".jsx", ".html", ".css", ".json", ".log", ".xml", ".csv"}

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.DefaultFontSize == 0 {
		cfg.DefaultFontSize = DefaultFontSize
	}
	if cfg.DefaultZoom == 0 {
		cfg.DefaultZoom = DefaultZoom
	}
	if cfg.DefaultFontSize < 0 || cfg.DefaultFontSize > MaxFontSize {
		return ServiceConfig{}, errors.New("default font size out of range")
	}
	if cfg.DefaultZoom < ZoomMin || cfg.DefaultZoom > ZoomMax {
		return ServiceConfig{}, errors.New("default zoom out of range")
	}
	if len(cfg.AcceptExtensions) == 0 {
		cfg.AcceptExtensions = append([]string(nil), DefaultAcceptExtensions...)
	}
	return cfg, nil
}

// ClampZoom bounds a zoom percentage to [ZoomMin, ZoomMax].
func ClampZoom(zoom int) int {
	if zoom < ZoomMin {
		return ZoomMin
	}
	if zoom > ZoomMax {
		return ZoomMax
	}
	return zoom
}
