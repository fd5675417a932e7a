package notepad

import (
	"context"
	"errors"
	"net"
	"sync"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/httpapi"
	"pkt.systems/notepad/internal/command"
	"pkt.systems/notepad/internal/eventbus"
	"pkt.systems/notepad/schema"
	"pkt.systems/notepad/sshserver"
	"pkt.systems/pslog"
)

// Server composes the HTTP and SSH surfaces over one notepad service.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Service             schema.ServiceConfig
	HTTP                httpapi.Config
	SSH                 sshserver.Config
	DisableAuditLogging bool
}

// ServerDeps carries the service collaborators. The listeners are optional
// and take precedence over the configured addresses.
type ServerDeps struct {
	ServiceDeps  core.ServiceDeps
	HTTPListener net.Listener
	SSHListener  net.Listener
}

// ServerOption enables a surface.
type ServerOption func(*surfaceSet)

type surfaceSet struct {
	http bool
	ssh  bool
}

// WithHTTP enables the HTTP API and web UI.
func WithHTTP() ServerOption {
	return func(s *surfaceSet) { s.http = true }
}

// WithSSH enables the SSH console.
func WithSSH() ServerOption {
	return func(s *surfaceSet) { s.ssh = true }
}

// surface is one long-running listener sharing the service.
type surface struct {
	name string
	run  func(ctx context.Context) error
}

// New builds the service and every enabled surface. Nothing listens until
// Start is called.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	var enabled surfaceSet
	for _, opt := range opts {
		opt(&enabled)
	}
	if !enabled.http && !enabled.ssh {
		return nil, errors.New("no services enabled")
	}
	serviceCfg, err := schema.NormalizeServiceConfig(cfg.Service)
	if err != nil {
		return nil, err
	}
	cfg.Service = serviceCfg

	serviceDeps := deps.ServiceDeps
	sinks := []core.EventSink{serviceDeps.EventSink}
	var hub *httpapi.Hub
	if enabled.http {
		hub = httpapi.NewHub(cfg.HTTP.HubHistory)
		sinks = append(sinks, hub)
	}
	var bus *eventbus.Bus
	if enabled.ssh {
		bus = eventbus.New(serviceDeps.Logger)
		sinks = append(sinks, bus)
	}
	serviceDeps.EventSink = joinSinks(sinks...)

	service, err := core.NewService(cfg.Service, serviceDeps)
	if err != nil {
		return nil, err
	}

	srv := &compositeServer{fields: []any{
		"http", enabled.http,
		"ssh", enabled.ssh,
	}}
	if enabled.http {
		httpSrv := httpapi.NewServer(cfg.HTTP, service, hub)
		srv.fields = append(srv.fields,
			"http_addr", cfg.HTTP.Addr,
			"http_base_url", cfg.HTTP.BaseURL,
			"http_base_path", cfg.HTTP.BasePath,
		)
		srv.surfaces = append(srv.surfaces, surface{name: "http", run: func(ctx context.Context) error {
			httpSrv.SetBaseContext(ctx)
			if deps.HTTPListener != nil {
				return httpapi.Serve(ctx, deps.HTTPListener, httpSrv.Handler())
			}
			return httpapi.ListenAndServe(ctx, cfg.HTTP.Addr, httpSrv.Handler())
		}})
	}
	if enabled.ssh {
		keys, err := sshserver.NewAuthorizedKeys(cfg.SSH.AuthorizedKeysPath)
		if err != nil {
			return nil, err
		}
		sshSrv := &sshserver.Server{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
			Listener:    deps.SSHListener,
			Service:     service,
			Handler:     command.NewHandler(service, command.HandlerConfig{DisableAuditLogging: cfg.DisableAuditLogging}),
			Prompt:      cfg.SSH.Prompt,
			Theme:       cfg.SSH.Theme,
			FileRoot:    cfg.SSH.FileRoot,
			Keys:        keys,
			EventBus:    bus,
		}
		srv.fields = append(srv.fields, "ssh_addr", cfg.SSH.Addr)
		srv.surfaces = append(srv.surfaces, surface{name: "ssh", run: sshSrv.ListenAndServe})
	}
	return srv, nil
}

type compositeServer struct {
	surfaces []surface
	fields   []any

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	log     pslog.Logger
	failed  chan error
	running sync.WaitGroup
	started bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.log = pslog.Ctx(s.ctx)
	s.failed = make(chan error, len(s.surfaces))

	s.log.Info("server start", s.fields...)
	for _, sf := range s.surfaces {
		s.running.Add(1)
		go s.serve(sf)
	}
	return nil
}

func (s *compositeServer) serve(sf surface) {
	defer s.running.Done()
	if err := sf.run(s.ctx); err != nil {
		s.log.Error(sf.name+" server failed", "err", err)
		s.failed <- err
	}
}

// Wait blocks until the start context ends or a surface fails. A failing
// surface stops the others.
func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx, failed, started := s.ctx, s.failed, s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}
	select {
	case <-ctx.Done():
		return nil
	case err := <-failed:
		pslog.Ctx(ctx).Error("server stopped", "err", err)
		_ = s.Stop(context.Background())
		return err
	}
}

// Stop cancels the surfaces and waits for them to return or ctx to expire.
func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, log, started := s.cancel, s.log, s.started
	s.mu.Unlock()
	if !started {
		return nil
	}
	log.Info("server stop requested")
	cancel()
	if ctx == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("server stopped")
		return nil
	}
}
