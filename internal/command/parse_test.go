package command

import "testing"

func TestParse(t *testing.T) {
	cmd, ok := Parse("  /SaveAs  my notes.txt ")
	if !ok {
		t.Fatalf("expected command")
	}
	if cmd.Name != "saveas" || cmd.Remainder != "my notes.txt" || len(cmd.Args) != 2 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, ok = Parse("/")
	if !ok || cmd.Name != "" {
		t.Fatalf("expected empty command, got %+v %v", cmd, ok)
	}

	for _, input := range []string{"hello", "", "//not a command", "  // indented"} {
		if _, ok := Parse(input); ok {
			t.Fatalf("expected %q to be text", input)
		}
	}
}

func TestLiteralText(t *testing.T) {
	cases := map[string]string{
		"plain":        "plain",
		"//etc/hosts":  "/etc/hosts",
		"  //x":        "  /x",
		"/not escaped": "/not escaped",
	}
	for in, want := range cases {
		if got := LiteralText(in); got != want {
			t.Fatalf("LiteralText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAfterFields(t *testing.T) {
	if got := afterFields("key ctrl+f hello  world", 2); got != "hello  world" {
		t.Fatalf("unexpected remainder %q", got)
	}
	if got := afterFields("key", 2); got != "" {
		t.Fatalf("expected empty remainder, got %q", got)
	}
}
