package core

import (
	"strings"

	"pkt.systems/notepad/schema"
)

// ComputeStats returns the footer summary for text with the caret at sel.Start.
func ComputeStats(text string, sel schema.Selection) schema.TextStats {
	runes := []rune(text)
	sel = schema.ClampSelection(sel, len(runes))
	before := runes[:sel.Start]
	line := 1
	lastNewline := -1
	for i, r := range before {
		if r == '\n' {
			line++
			lastNewline = i
		}
	}
	return schema.TextStats{
		Line:       line,
		Column:     sel.Start - lastNewline,
		Characters: len(runes),
		Words:      len(strings.Fields(text)),
		Lines:      strings.Count(text, "\n") + 1,
	}
}

// LineOffset returns the rune offset of the start of a 1-based line.
// ok is false when the document has no such line.
func LineOffset(text string, line int) (offset int, ok bool) {
	if line < 1 {
		return 0, false
	}
	if line == 1 {
		return 0, true
	}
	current := 1
	for i, r := range []rune(text) {
		if r != '\n' {
			continue
		}
		current++
		if current == line {
			return i + 1, true
		}
	}
	return 0, false
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
