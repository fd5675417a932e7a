package core

import "context"

// Prompter asks the user for confirmation or a line of text.
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
	PromptText(ctx context.Context, message, def string) (string, bool)
}

// Answers is a Prompter that replies with values supplied up front.
// A nil field declines the corresponding prompt.
type Answers struct {
	Confirmed *bool
	Text      *string
}

// Confirm implements Prompter.
func (a Answers) Confirm(context.Context, string) bool {
	return a.Confirmed != nil && *a.Confirmed
}

// PromptText implements Prompter.
func (a Answers) PromptText(context.Context, string, string) (string, bool) {
	if a.Text == nil {
		return "", false
	}
	return *a.Text, true
}

type declinePrompter struct{}

func (declinePrompter) Confirm(context.Context, string) bool { return false }

func (declinePrompter) PromptText(context.Context, string, string) (string, bool) {
	return "", false
}

type prompterKey struct{}
type clipboardKey struct{}
type filesKey struct{}

// WithPrompter attaches a prompter that overrides the configured one.
func WithPrompter(ctx context.Context, p Prompter) context.Context {
	if ctx == nil || p == nil {
		return ctx
	}
	return context.WithValue(ctx, prompterKey{}, p)
}

// WithClipboard attaches a clipboard for the calling surface.
func WithClipboard(ctx context.Context, c Clipboard) context.Context {
	if ctx == nil || c == nil {
		return ctx
	}
	return context.WithValue(ctx, clipboardKey{}, c)
}

// WithFileHandler attaches a file handler for the calling surface.
func WithFileHandler(ctx context.Context, f FileHandler) context.Context {
	if ctx == nil || f == nil {
		return ctx
	}
	return context.WithValue(ctx, filesKey{}, f)
}

// PrompterFromContext returns the prompter attached to ctx, if any.
func PrompterFromContext(ctx context.Context) Prompter {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(prompterKey{}).(Prompter)
	return p
}

func clipboardFromContext(ctx context.Context) Clipboard {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(clipboardKey{}).(Clipboard)
	return c
}

func filesFromContext(ctx context.Context) FileHandler {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(filesKey{}).(FileHandler)
	return f
}
