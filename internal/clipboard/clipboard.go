// Package clipboard adapts text clipboards for notepad sessions.
package clipboard

import (
	"errors"
	"sync"

	atotto "github.com/atotto/clipboard"
)

// ErrUnsupported is returned when the host has no clipboard utility.
var ErrUnsupported = errors.New("system clipboard unsupported")

// System is the host clipboard (xclip, xsel, wl-clipboard, pbcopy or the Windows API).
type System struct{}

// Available reports whether a system clipboard utility was found.
func Available() bool {
	return !atotto.Unsupported
}

// ReadText returns the clipboard text.
func (System) ReadText() (string, error) {
	if atotto.Unsupported {
		return "", ErrUnsupported
	}
	return atotto.ReadAll()
}

// WriteText replaces the clipboard text.
func (System) WriteText(text string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	return atotto.WriteAll(text)
}

// Memory is a process-local clipboard, one per SSH connection.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns an empty clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// ReadText returns the stored text.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteText stores text.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}
