package command

import "strings"

// Command is a slash command typed at the console prompt.
type Command struct {
	Name string
	Args []string
	// Raw is everything after the slash.
	Raw string
	// Remainder is Raw without the command name, e.g. a file name with spaces.
	Remainder string
}

// Parse reports whether input is a slash command. A leading "//" escapes the
// slash so the line is inserted as text instead.
func Parse(input string) (Command, bool) {
	trimmed := strings.TrimLeft(input, " \t")
	if !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "//") {
		return Command{}, false
	}
	raw := strings.TrimSpace(trimmed[1:])
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Raw: raw}, true
	}
	return Command{
		Name:      strings.ToLower(fields[0]),
		Args:      fields[1:],
		Raw:       raw,
		Remainder: afterFields(raw, 1),
	}, true
}

// LiteralText returns the text a non-command line inserts into the document.
func LiteralText(input string) string {
	trimmed := strings.TrimLeft(input, " \t")
	if strings.HasPrefix(trimmed, "//") {
		return input[:len(input)-len(trimmed)] + trimmed[1:]
	}
	return input
}

// afterFields drops the first n whitespace separated fields of raw.
func afterFields(raw string, n int) string {
	rest := raw
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t\r\n")
		end := strings.IndexAny(rest, " \t\r\n")
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}
	return strings.TrimSpace(rest)
}
