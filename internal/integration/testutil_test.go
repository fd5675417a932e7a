package integration_test

import (
	"net/http/httptest"
	"testing"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/httpapi"
	"pkt.systems/notepad/internal/persist"
	"pkt.systems/notepad/schema"
)

func requireLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

type testServer struct {
	svc     core.Service
	hub     *httpapi.Hub
	httpSrv *httpapi.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hub := httpapi.NewHub(0)
	svc, err := core.NewService(schema.ServiceConfig{}, core.ServiceDeps{
		Store:     persist.NewMemory(),
		EventSink: hub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testServer{svc: svc, hub: hub, httpSrv: httpapi.NewServer(httpapi.Config{}, svc, hub)}
}

func (ts *testServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(ts.httpSrv.Handler())
	t.Cleanup(server.Close)
	return server
}
