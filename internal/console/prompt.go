package console

import (
	"context"
	"fmt"
	"strings"
)

// cancelInput declines any pending prompt.
const cancelInput = "/cancel"

// linePrompter answers core prompts with the next input line.
type linePrompter struct {
	console *Console
}

func (p linePrompter) Confirm(ctx context.Context, message string) bool {
	answer, ok := p.ask(ctx, message+" [y/N]")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// PromptText returns def for an empty answer.
func (p linePrompter) PromptText(ctx context.Context, message, def string) (string, bool) {
	label := message
	if def != "" {
		label = fmt.Sprintf("%s [%s]", message, def)
	}
	answer, ok := p.ask(ctx, label)
	if !ok {
		return "", false
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, true
	}
	return answer, true
}

func (p linePrompter) ask(ctx context.Context, label string) (string, bool) {
	c := p.console
	c.println(c.theme.meta.Render(label + " (" + cancelInput + " to cancel)"))
	select {
	case <-ctx.Done():
		return "", false
	case in, ok := <-c.lines:
		if !ok || in.err != nil {
			return "", false
		}
		if strings.TrimSpace(in.line) == cancelInput {
			return "", false
		}
		return in.line, true
	}
}
