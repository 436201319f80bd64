package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
	"github.com/louisbranch/cortex.space/internal/services/cortex/mcp/domain"
)

const (
	serverName    = "Cortex Space MCP"
	serverVersion = "0.1.0"
)

type registrationModule struct {
	name  string
	tools func(*engine.Engine) []domain.Registration
}

var toolModules = []registrationModule{
	{name: "campaign-tools", tools: domain.CampaignTools},
	{name: "play-tools", tools: domain.PlayTools},
	{name: "pool-tools", tools: domain.PoolTools},
}

// Server is the MCP front end of one campaign engine.
type Server struct {
	mcpServer *mcp.Server
}

// New builds an MCP server with every cortex tool and the campaign resource.
func New(eng *engine.Engine) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	seen := make(map[string]string)
	for _, module := range toolModules {
		for _, registration := range module.tools(eng) {
			name := registration.Tool.Name
			if owner, ok := seen[name]; ok {
				return nil, fmt.Errorf("tool %q registered by %s and %s", name, owner, module.name)
			}
			seen[name] = module.name
			registration.AddTo(mcpServer)
		}
	}
	mcpServer.AddResourceTemplate(domain.CampaignResourceTemplate(), domain.CampaignResourceHandler(eng))

	return &Server{mcpServer: mcpServer}, nil
}

// resourceSubscribeHandler accepts subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport runs the server on transport until the session ends or ctx
// is canceled. Cancellation is a clean stop.
func (s *Server) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
