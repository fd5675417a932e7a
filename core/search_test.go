package core

import (
	"strings"
	"testing"

	"pkt.systems/notepad/schema"
)

func TestFindNextWrapsAround(t *testing.T) {
	buffer := "abcXabcXabc"
	got, ok := FindNext(buffer, "abc", 9)
	if !ok {
		t.Fatalf("expected match")
	}
	if got.Start != 0 || got.End != 3 {
		t.Fatalf("expected wrap to 0, got %+v", got)
	}
	got, ok = FindNext(buffer, "ABC", 1)
	if !ok || got.Start != 4 {
		t.Fatalf("expected case-insensitive match at 4, got %+v ok=%v", got, ok)
	}
	got, ok = FindNext(buffer, "abc", 4)
	if !ok || got.Start != 4 {
		t.Fatalf("expected inclusive match at 4, got %+v", got)
	}
}

func TestFindPreviousWrapsToLast(t *testing.T) {
	buffer := "abcXabcXabc"
	got, ok := FindPrevious(buffer, "abc", 0)
	if !ok {
		t.Fatalf("expected match")
	}
	if got.Start != 8 || got.End != 11 {
		t.Fatalf("expected wrap to last match at 8, got %+v", got)
	}
	got, ok = FindPrevious(buffer, "abc", 4)
	if !ok || got.Start != 0 {
		t.Fatalf("expected strictly-before match at 0, got %+v", got)
	}
	got, ok = FindPrevious(buffer, "abc", 5)
	if !ok || got.Start != 4 {
		t.Fatalf("expected match at 4, got %+v", got)
	}
}

func TestFindMissingAndEmptyPattern(t *testing.T) {
	if _, ok := FindNext("hello", "xyz", 0); ok {
		t.Fatalf("expected no match")
	}
	if _, ok := FindNext("hello", "", 0); ok {
		t.Fatalf("expected empty pattern to find nothing")
	}
	if _, ok := FindPrevious("hello", "", 3); ok {
		t.Fatalf("expected empty pattern to find nothing")
	}
	if _, ok := FindNext("hi", "longer", 0); ok {
		t.Fatalf("expected no match for pattern longer than buffer")
	}
}

func TestFindUsesRuneOffsets(t *testing.T) {
	got, ok := FindNext("åäö ÅÄÖ", "åäö", 1)
	if !ok {
		t.Fatalf("expected match")
	}
	if got.Start != 4 || got.End != 7 {
		t.Fatalf("expected rune offsets 4..7, got %+v", got)
	}
}

func TestReplaceOneOnlyReplacesActiveMatch(t *testing.T) {
	buffer := "one Two three two"
	res := ReplaceOne(buffer, "two", "2", schema.Selection{Start: 4, End: 7})
	if !res.Replaced {
		t.Fatalf("expected replacement")
	}
	if res.Text != "one 2 three two" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Selection.Start != 4 || res.Selection.End != 5 {
		t.Fatalf("unexpected selection %+v", res.Selection)
	}

	res = ReplaceOne(buffer, "two", "2", schema.Selection{Start: 0, End: 3})
	if res.Replaced {
		t.Fatalf("did not expect replacement for non-matching selection")
	}
	if res.Text != buffer {
		t.Fatalf("expected buffer unchanged, got %q", res.Text)
	}
	if !res.Found || res.Selection.Start != 4 {
		t.Fatalf("expected relocation to 4, got %+v", res)
	}

	res = ReplaceOne(buffer, "zzz", "2", schema.Caret(0))
	if res.Found || res.Replaced || res.Text != buffer {
		t.Fatalf("expected not found, got %+v", res)
	}
}

func TestReplaceAllTreatsPatternLiterally(t *testing.T) {
	out, count := ReplaceAll("cat.dog", ".", "_")
	if out != "cat_dog" || count != 1 {
		t.Fatalf("expected literal replacement, got %q count=%d", out, count)
	}
	out, count = ReplaceAll("a.b.a.b", "a.b", "X")
	if out != "X.X" || count != 2 {
		t.Fatalf("unexpected output %q count=%d", out, count)
	}
	out, count = ReplaceAll("Cost: $1 (or $1)", "$1", "${2}")
	if out != "Cost: ${2} (or ${2})" || count != 2 {
		t.Fatalf("expected literal replacement text, got %q count=%d", out, count)
	}
}

func TestReplaceAllCaseInsensitiveAndMissing(t *testing.T) {
	out, count := ReplaceAll("Go go GO", "go", "x")
	if out != "x x x" || count != 3 {
		t.Fatalf("unexpected output %q count=%d", out, count)
	}
	out, count = ReplaceAll("hello", "zzz", "x")
	if out != "hello" || count != 0 {
		t.Fatalf("expected unchanged buffer, got %q count=%d", out, count)
	}
	if _, count := ReplaceAll("hello", "", "x"); count != 0 {
		t.Fatalf("expected empty pattern to be ignored")
	}
}

func TestReplaceAllMatchesWhatFindMatches(t *testing.T) {
	cases := []struct {
		buffer, pattern string
	}{
		{"ſ", "s"},
		{"Straße STRASSE", "straße"},
		{"ÄÖü äöÜ", "äöü"},
		{"K kelvin", "k"},
	}
	for _, tc := range cases {
		found := 0
		from := 0
		for {
			sel, ok := FindNext(tc.buffer, tc.pattern, from)
			if !ok || sel.Start < from {
				break
			}
			found++
			from = sel.End
		}
		if _, count := ReplaceAll(tc.buffer, tc.pattern, "_"); count != found {
			t.Fatalf("%q in %q: find saw %d matches, replace all replaced %d", tc.pattern, tc.buffer, found, count)
		}
	}
}

func TestReplaceAllWithSelfIsIdempotent(t *testing.T) {
	buffers := []string{"abcXabcXabc", "no match here", "a.b*a.b", strings.Repeat("ab", 50)}
	patterns := []string{"abc", "x", "a.b", "ab"}
	for i, buffer := range buffers {
		pattern := patterns[i]
		out, count := ReplaceAll(buffer, pattern, pattern)
		if out != buffer {
			t.Fatalf("buffer changed: %q -> %q", buffer, out)
		}
		want := strings.Count(strings.ToLower(buffer), strings.ToLower(pattern))
		if count != want {
			t.Fatalf("count for %q/%q = %d, want %d", buffer, pattern, count, want)
		}
	}
}
