package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"pkt.systems/pslog"
)

const shutdownTimeout = 5 * time.Second

// ListenAndServe starts an HTTP server and shuts it down on context cancellation.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	return serve(ctx, &http.Server{Addr: addr, Handler: handler}, nil)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	return serve(ctx, &http.Server{Handler: handler}, ln)
}

func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	logger := pslog.Ctx(ctx)
	server.ErrorLog = pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel)
	server.BaseContext = func(_ net.Listener) context.Context {
		return ctx
	}

	errCh := make(chan error, 1)
	go func() {
		if ln != nil {
			errCh <- server.Serve(ln)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
