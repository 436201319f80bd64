package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	platformgrpc "github.com/louisbranch/cortex.space/internal/platform/grpc"
	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
	mcpservice "github.com/louisbranch/cortex.space/internal/services/cortex/mcp/service"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage/sqlite"
)

// HealthService is the gRPC health service name reported while MCP is serving.
const HealthService = "cortex.mcp"

// Config selects storage, rules and the optional health endpoint.
type Config struct {
	DBPath         string
	RulesPath      string
	HealthAddr     string
	EndGrantSecret string
	EndGrantTTL    time.Duration
}

// Server owns the runtime resources of one cortex process.
type Server struct {
	store  *sqlite.Store
	engine *engine.Engine
	mcp    *mcpservice.Server
	health *platformgrpc.HealthServer
	closed sync.Once
}

// New opens storage, loads rules and builds the MCP server. The health
// listener is bound only when cfg.HealthAddr is set.
func New(cfg Config) (*Server, error) {
	rules, err := engine.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{engine.WithRules(rules)}
	if secret := strings.TrimSpace(cfg.EndGrantSecret); secret != "" {
		opts = append(opts, engine.WithEndGrants(engine.EndGrantConfig{Secret: []byte(secret), TTL: cfg.EndGrantTTL}))
	} else {
		log.Printf("end grant secret not set; campaign_end_request is disabled")
	}
	eng, err := engine.New(store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("new engine: %w", err)
	}
	mcpServer, err := mcpservice.New(eng)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("new MCP server: %w", err)
	}

	server := &Server{store: store, engine: eng, mcp: mcpServer}
	if addr := strings.TrimSpace(cfg.HealthAddr); addr != "" {
		health, err := platformgrpc.NewHealthServer(addr, HealthService)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		server.health = health
	}
	return server, nil
}

// Engine returns the campaign engine.
func (s *Server) Engine() *engine.Engine {
	if s == nil {
		return nil
	}
	return s.engine
}

// HealthAddr returns the bound health address, or empty when disabled.
func (s *Server) HealthAddr() string {
	if s == nil {
		return ""
	}
	return s.health.Addr()
}

// Run builds a server and serves MCP on stdio until ctx ends or the client
// disconnects.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx, &mcp.StdioTransport{})
}

// Serve runs MCP on transport and, when configured, the health endpoint.
// Health reports SERVING while MCP is up. Resources are released on return.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	healthErr := make(chan error, 1)
	if s.health != nil {
		go func() {
			healthErr <- s.health.Serve(runCtx)
		}()
		s.health.SetServing(true)
	} else {
		healthErr <- nil
	}

	log.Printf("cortex MCP server ready")
	err := s.mcp.ServeTransport(runCtx, transport)
	if s.health != nil {
		s.health.SetServing(false)
	}
	cancel()
	if herr := <-healthErr; herr != nil && err == nil {
		err = herr
	}
	return err
}

// Close releases the health listener and the store. It is safe to call twice.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.closed.Do(func() {
		s.health.Close()
		if err := s.store.Close(); err != nil {
			log.Printf("close cortex store: %v", err)
		}
	})
}

func openStore(path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "cortex.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cortex sqlite store: %w", err)
	}
	return store, nil
}
