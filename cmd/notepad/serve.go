package main

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/notepad"
	"pkt.systems/notepad/core"
	"pkt.systems/notepad/httpapi"
	"pkt.systems/notepad/internal/appconfig"
	"pkt.systems/notepad/internal/persist"
	"pkt.systems/notepad/sshserver"
	"pkt.systems/pslog"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var noHTTP bool
	var noSSH bool
	var disableAuditTrails bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notepad HTTP and SSH servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			opts := serveOptions(noHTTP, noSSH)
			if len(opts) == 0 {
				return errors.New("nothing to serve: both --no-http and --no-ssh given")
			}

			store, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
			if err != nil {
				return err
			}
			serverCfg := toServerConfig(cfg)
			serverCfg.DisableAuditLogging = disableAuditTrails
			server, err := notepad.New(serverCfg, notepad.ServerDeps{
				ServiceDeps: core.ServiceDeps{
					Store:  store,
					Logger: logger,
				},
			}, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if !noHTTP {
				logger.Info("http server listening", "addr", serverCfg.HTTP.Addr)
			}
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "do not start the HTTP server")
	cmd.Flags().BoolVar(&noSSH, "no-ssh", false, "do not start the SSH server")
	cmd.Flags().BoolVar(&disableAuditTrails, "disable-audit-trails", false, "disable audit trail logging for console commands")
	return cmd
}

func serveOptions(noHTTP, noSSH bool) []notepad.ServerOption {
	var opts []notepad.ServerOption
	if !noHTTP {
		opts = append(opts, notepad.WithHTTP())
	}
	if !noSSH {
		opts = append(opts, notepad.WithSSH())
	}
	return opts
}

func toServerConfig(cfg appconfig.Config) notepad.ServerConfig {
	return notepad.ServerConfig{
		Service: cfg.ServiceConfig(),
		HTTP:    toHTTPConfig(cfg),
		SSH:     toSSHConfig(cfg),
	}
}

func toHTTPConfig(cfg appconfig.Config) httpapi.Config {
	return httpapi.Config{
		Addr:            cfg.HTTP.Addr,
		SessionCookie:   cfg.HTTP.SessionCookie,
		SessionTTLHours: cfg.HTTP.SessionTTLHours,
		BaseURL:         cfg.HTTP.BaseURL,
		BasePath:        cfg.HTTP.BasePath,
		HubHistory:      cfg.HTTP.HubHistory,
		SessionsPath:    filepath.Join(cfg.StateDir, "http-sessions.yaml"),
	}
}

func toSSHConfig(cfg appconfig.Config) sshserver.Config {
	root := cfg.Console.SaveDir
	if root == "" {
		root = filepath.Join(cfg.StateDir, "files")
	}
	return sshserver.Config{
		Addr:               cfg.SSH.Addr,
		HostKeyPath:        cfg.SSH.HostKeyPath,
		AuthorizedKeysPath: cfg.SSH.AuthorizedKeys,
		Prompt:             cfg.SSH.Prompt,
		Theme:              cfg.Console.Theme,
		FileRoot:           root,
	}
}
