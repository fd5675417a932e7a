package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/command"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

// errOutsideRoot rejects paths that leave a confined file root.
var errOutsideRoot = errors.New("path is outside the notepad directory")

var errNoFileRoot = errors.New("file access is disabled")

// files is the console's file picker and download target.
type files struct {
	console *Console
	root    string
	confine bool
}

// PickFile asks for a path and reads it in the background; the console
// loop completes the open when the read finishes.
func (f *files) PickFile(ctx context.Context, req schema.OpenFileRequest) error {
	prompter := core.PrompterFromContext(ctx)
	if prompter == nil {
		prompter = linePrompter{console: f.console}
	}
	answer, ok := prompter.PromptText(ctx, command.OpenPrompt, "")
	answer = strings.TrimSpace(answer)
	if !ok || answer == "" {
		pslog.Ctx(ctx).Debug("console open cancelled", "seq", req.Seq)
		return nil
	}
	path, err := f.resolve(answer)
	if err != nil {
		f.console.printError(err)
		return err
	}
	if !accepted(path, req.Accept) {
		err := fmt.Errorf("unsupported file type %q", filepath.Ext(path))
		f.console.printError(err)
		return err
	}
	go func() {
		data, err := os.ReadFile(path)
		res := openResult{seq: req.Seq, name: filepath.Base(path), content: string(data), err: err}
		select {
		case f.console.opens <- res:
		case <-ctx.Done():
		}
	}()
	return nil
}

// Emit writes a saved document to disk.
func (f *files) Emit(ctx context.Context, file schema.FilePayload) error {
	path, err := f.resolve(file.Name)
	if err != nil {
		f.console.printError(err)
		return err
	}
	if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
		f.console.printError(err)
		return fmt.Errorf("write %s: %w", path, err)
	}
	pslog.Ctx(ctx).Info("console file written", "path", path, "bytes", len(file.Content))
	f.console.println(f.console.theme.meta.Render("saved " + path))
	return nil
}

func (f *files) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("empty file name")
	}
	if f.confine {
		if f.root == "" {
			return "", errNoFileRoot
		}
		if !filepath.IsLocal(name) {
			return "", errOutsideRoot
		}
		if err := os.MkdirAll(f.root, 0o700); err != nil {
			return "", err
		}
		return filepath.Join(f.root, name), nil
	}
	if filepath.IsAbs(name) || f.root == "" {
		return name, nil
	}
	return filepath.Join(f.root, name), nil
}

func accepted(path string, accept []string) bool {
	if len(accept) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range accept {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}
