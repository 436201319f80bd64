package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	platformgrpc "github.com/louisbranch/cortex.space/internal/platform/grpc"
)

func TestNewRejectsMalformedRules(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(rulesPath, []byte("stress_types = ["), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	if _, err := New(Config{DBPath: filepath.Join(dir, "cortex.db"), RulesPath: rulesPath}); err == nil {
		t.Fatal("expected malformed rules error")
	}
}

func TestNewCreatesStorageDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cortex.db")

	server, err := New(Config{DBPath: dbPath})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer server.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected storage dir: %v", err)
	}
	if server.HealthAddr() != "" {
		t.Fatalf("expected health disabled, got %q", server.HealthAddr())
	}
	if server.Engine() == nil {
		t.Fatal("expected engine")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	server, err := New(Config{DBPath: filepath.Join(t.TempDir(), "cortex.db")})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	server.Close()
	server.Close()
}

func TestServeReportsHealthWhileMCPRuns(t *testing.T) {
	server, err := New(Config{
		DBPath:         filepath.Join(t.TempDir(), "cortex.db"),
		HealthAddr:     "127.0.0.1:0",
		EndGrantSecret: "secret",
		EndGrantTTL:    time.Minute,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	healthAddr := server.HealthAddr()
	if healthAddr == "" {
		t.Fatal("expected health address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer session.Close()

	if err := platformgrpc.CheckHealth(context.Background(), healthAddr, HealthService, 2*time.Second); err != nil {
		t.Fatalf("check health: %v", err)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeNilServer(t *testing.T) {
	var server *Server
	if err := server.Serve(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil server")
	}
}
