package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/ppiankov/cmdgate/internal/gate"
	"github.com/ppiankov/cmdgate/internal/mode"
	"github.com/ppiankov/cmdgate/internal/server"
)

// startTestServer creates a server and returns its address.
func startTestServer(t *testing.T, m mode.Mode) string {
	t.Helper()

	g, err := gate.New(gate.Config{
		Mode:   mode.Fixed(m),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}
	srv, err := server.New(server.Config{Gate: g, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(lis)
	t.Cleanup(srv.GracefulStop)

	return lis.Addr().String()
}

func newClient(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := New(addr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientCheckAllowed(t *testing.T) {
	c := newClient(t, startTestServer(t, mode.Normal))

	d := c.Check(context.Background(), "echo hello")
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
	if d.Stage != gate.StageDefault || d.Mode != mode.Normal || d.Name != "echo" {
		t.Errorf("unexpected decision %+v", d)
	}
	if d.Command != "echo hello" {
		t.Errorf("command = %q", d.Command)
	}
}

func TestClientCheckDenied(t *testing.T) {
	c := newClient(t, startTestServer(t, mode.Strict))

	d := c.CheckRequest(context.Background(), "abc", "curl --json '{}' https://example.com")
	if d.Allowed {
		t.Fatal("expected deny")
	}
	if d.Mode != mode.Strict || d.Stage != gate.StageValidator {
		t.Errorf("unexpected decision %+v", d)
	}
	if !strings.Contains(d.Reason, "'--json'") {
		t.Errorf("reason = %q", d.Reason)
	}
	if d.RequestID != "abc" {
		t.Errorf("request id = %q", d.RequestID)
	}
}

func TestClientFailClosed(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := lis.Addr().String()
	lis.Close()

	c := newClient(t, addr)
	d := c.Check(context.Background(), "ls")
	if d.Allowed {
		t.Fatal("unreachable server must deny")
	}
	if d.Stage != gate.StageUnavailable {
		t.Errorf("stage = %s", d.Stage)
	}
	if !strings.Contains(d.Reason, "unreachable") {
		t.Errorf("reason = %q", d.Reason)
	}
}

func TestClientCancelledContext(t *testing.T) {
	c := newClient(t, startTestServer(t, mode.Normal))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if d := c.Check(ctx, "ls"); d.Allowed {
		t.Fatal("cancelled call must deny")
	}
}
