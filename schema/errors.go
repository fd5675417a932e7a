package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidUser indicates an invalid user identifier.
	ErrInvalidUser = errors.New("invalid user")
	// ErrTabNotFound indicates a requested tab could not be found.
	ErrTabNotFound = errors.New("tab not found")
	// ErrPatternNotFound indicates a search found no occurrence.
	ErrPatternNotFound = errors.New("pattern not found")
	// ErrSaveTargetUnresolved indicates the user cancelled the filename prompt.
	ErrSaveTargetUnresolved = errors.New("save target unresolved")
	// ErrStaleOpen indicates a file load completed for a superseded open request.
	ErrStaleOpen = errors.New("stale open request")
	// ErrClipboardUnavailable indicates no clipboard is attached to the session.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrInvalidView indicates an unknown view action or value.
	ErrInvalidView = errors.New("invalid view setting")
)

// PatternError reports a search pattern that has no occurrence.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("Cannot find %q", e.Pattern)
}

// Is reports whether target is ErrPatternNotFound.
func (e *PatternError) Is(target error) bool {
	return target == ErrPatternNotFound
}
