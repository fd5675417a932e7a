package core

import (
	"unicode"

	"pkt.systems/notepad/schema"
)

// ReplaceResult reports the outcome of a single replacement.
type ReplaceResult struct {
	Text      string
	Selection schema.Selection
	Replaced  bool
	Found     bool
}

// FindNext returns the first case-insensitive match of pattern starting at
// or after from, wrapping to the start of buffer when nothing follows.
// Offsets are runes.
func FindNext(buffer, pattern string, from int) (schema.Selection, bool) {
	text, query := foldRunes([]rune(buffer)), foldRunes([]rune(pattern))
	if len(query) == 0 || len(query) > len(text) {
		return schema.Selection{}, false
	}
	if from < 0 {
		from = 0
	}
	if idx := indexFrom(text, query, from); idx >= 0 {
		return schema.Selection{Start: idx, End: idx + len(query)}, true
	}
	if idx := indexFrom(text, query, 0); idx >= 0 {
		return schema.Selection{Start: idx, End: idx + len(query)}, true
	}
	return schema.Selection{}, false
}

// FindPrevious returns the last case-insensitive match starting strictly
// before before, wrapping to the last match in buffer when none precedes it.
func FindPrevious(buffer, pattern string, before int) (schema.Selection, bool) {
	text, query := foldRunes([]rune(buffer)), foldRunes([]rune(pattern))
	if len(query) == 0 || len(query) > len(text) {
		return schema.Selection{}, false
	}
	if idx := lastIndexBefore(text, query, before); idx >= 0 {
		return schema.Selection{Start: idx, End: idx + len(query)}, true
	}
	if idx := lastIndexBefore(text, query, len(text)+1); idx >= 0 {
		return schema.Selection{Start: idx, End: idx + len(query)}, true
	}
	return schema.Selection{}, false
}

// ReplaceOne substitutes replacement for the selected text when the
// selection already holds a match. Otherwise it relocates the next match
// after the selection without touching the buffer.
func ReplaceOne(buffer, pattern, replacement string, sel schema.Selection) ReplaceResult {
	runes := []rune(buffer)
	sel = schema.ClampSelection(sel, len(runes))
	query := foldRunes([]rune(pattern))
	if len(query) == 0 {
		return ReplaceResult{Text: buffer, Selection: sel}
	}
	if sel.Len() == len(query) && equalRunes(foldRunes(runes[sel.Start:sel.End]), query) {
		repl := []rune(replacement)
		out := make([]rune, 0, len(runes)-sel.Len()+len(repl))
		out = append(out, runes[:sel.Start]...)
		out = append(out, repl...)
		out = append(out, runes[sel.End:]...)
		return ReplaceResult{
			Text:      string(out),
			Selection: schema.Selection{Start: sel.Start, End: sel.Start + len(repl)},
			Replaced:  true,
			Found:     true,
		}
	}
	next, ok := FindNext(buffer, pattern, sel.End)
	if !ok {
		return ReplaceResult{Text: buffer, Selection: sel}
	}
	return ReplaceResult{Text: buffer, Selection: next, Found: true}
}

// ReplaceAll replaces every case-insensitive literal occurrence of pattern
// in a single left-to-right pass and returns the new buffer with the
// occurrence count. It matches exactly what FindNext matches.
func ReplaceAll(buffer, pattern, replacement string) (string, int) {
	runes := []rune(buffer)
	text, query := foldRunes(runes), foldRunes([]rune(pattern))
	if len(query) == 0 || len(query) > len(text) {
		return buffer, 0
	}
	repl := []rune(replacement)
	var out []rune
	count, last := 0, 0
	for i := indexFrom(text, query, 0); i >= 0; i = indexFrom(text, query, last) {
		out = append(out, runes[last:i]...)
		out = append(out, repl...)
		last = i + len(query)
		count++
	}
	if count == 0 {
		return buffer, 0
	}
	out = append(out, runes[last:]...)
	return string(out), count
}

func indexFrom(text, query []rune, from int) int {
	for i := from; i+len(query) <= len(text); i++ {
		if equalRunes(text[i:i+len(query)], query) {
			return i
		}
	}
	return -1
}

func lastIndexBefore(text, query []rune, before int) int {
	start := len(text) - len(query)
	if before-1 < start {
		start = before - 1
	}
	for i := start; i >= 0; i-- {
		if equalRunes(text[i:i+len(query)], query) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func foldRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
