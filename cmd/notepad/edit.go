package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/internal/appconfig"
	"pkt.systems/notepad/internal/clipboard"
	"pkt.systems/notepad/internal/command"
	"pkt.systems/notepad/internal/console"
	"pkt.systems/notepad/internal/logx"
	"pkt.systems/notepad/internal/persist"
	"pkt.systems/notepad/schema"
	"pkt.systems/pslog"
)

func newEditCmd() *cobra.Command {
	var cfgPath string
	var user string
	var logFile string
	cmd := &cobra.Command{
		Use:   "edit [file...]",
		Short: "Edit documents in the local terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			userID := schema.UserID(user)
			if err := schema.ValidateUserID(userID); err != nil {
				return err
			}
			logger, closeLog, err := editLogger(logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			ctx := logx.ContextWithSurface(pslog.ContextWithLogger(cmd.Context(), logger), logx.SurfaceLocal)

			store, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
			if err != nil {
				return err
			}
			svc, err := core.NewService(cfg.ServiceConfig(), core.ServiceDeps{Store: store, Logger: logger})
			if err != nil {
				return err
			}
			if err := preloadFiles(ctx, svc, userID, args); err != nil {
				return err
			}

			root, confine := cfg.Console.SaveDir, cfg.Console.SaveDir != ""
			if !confine {
				if root, err = os.Getwd(); err != nil {
					return err
				}
			}
			var board core.Clipboard = clipboard.NewMemory()
			if clipboard.Available() {
				board = clipboard.System{}
			}

			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			width := 80
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				state, err := term.MakeRaw(int(f.Fd()))
				if err != nil {
					return err
				}
				defer func() { _ = term.Restore(int(f.Fd()), state) }()
				if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
					width = w
				}
			}
			con := console.New(struct {
				io.Reader
				io.Writer
			}{in, out}, svc, command.NewHandler(svc, command.HandlerConfig{}), console.Config{
				UserID:    userID,
				Theme:     cfg.Console.Theme,
				Width:     width,
				FileRoot:  root,
				Confine:   confine,
				Clipboard: board,
			})
			return con.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&user, "user", "local", "notepad user whose tabs are edited")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	return cmd
}

// editLogger keeps log lines off the terminal the console draws on.
func editLogger(path string) (pslog.Logger, func(), error) {
	if path == "" {
		return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.ErrorLevel}), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := pslog.NewWithOptions(f, pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: pslog.DebugLevel})
	return logger, func() { _ = f.Close() }, nil
}

// preloadFiles opens each path in a tab of its own. The active tab is reused
// for the first file when it holds nothing worth keeping.
func preloadFiles(ctx context.Context, svc core.Service, userID schema.UserID, paths []string) error {
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		resp, err := svc.GetSession(ctx, schema.GetSessionRequest{UserID: userID})
		if err != nil {
			return err
		}
		doc := resp.Session.Document
		if i > 0 || doc.Content != "" || doc.Modified {
			if _, err := svc.CreateTab(ctx, schema.CreateTabRequest{UserID: userID}); err != nil {
				return err
			}
		}
		resp, err = svc.OpenDocument(ctx, schema.OpenDocumentRequest{UserID: userID})
		if err != nil {
			return err
		}
		if resp.OpenRequest == nil {
			return fmt.Errorf("open %s: no file request issued", path)
		}
		if _, err := svc.LoadFile(ctx, schema.LoadFileRequest{
			UserID: userID,
			File:   schema.OpenFileResult{Seq: resp.OpenRequest.Seq, Name: path, Content: string(data)},
		}); err != nil {
			return err
		}
	}
	return nil
}
