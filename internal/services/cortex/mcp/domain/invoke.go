package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/platform/errors/i18n"
	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
)

// toolCallTimeout caps the time for a single engine call from a tool handler.
const toolCallTimeout = 5 * time.Second

// Registration binds a tool definition to its typed handler.
type Registration struct {
	Tool *mcp.Tool
	add  func(*mcp.Server)
}

// AddTo registers the tool on server.
func (r Registration) AddTo(server *mcp.Server) {
	r.add(server)
}

func register[I, O any](tool *mcp.Tool, handler mcp.ToolHandlerFor[I, O]) Registration {
	return Registration{
		Tool: tool,
		add: func(server *mcp.Server) {
			mcp.AddTool(server, tool, handler)
		},
	}
}

// handle adapts an engine call to a typed tool handler with a call timeout
// and localized domain errors.
func handle[I, O any](fn func(context.Context, I) (O, error)) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		out, err := fn(runCtx, input)
		if err != nil {
			var zero O
			return nil, zero, toolError(err)
		}
		return nil, out, nil
	}
}

// ToolError is a rejected command with its domain code and a rendered message.
type ToolError struct {
	Code    apperrors.Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the engine error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// toolError renders domain errors through the en-US catalog. Errors without
// a domain code pass through unchanged.
func toolError(err error) error {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		return err
	}
	message := i18n.GetCatalog(i18n.BaseLocale).Format(string(code), apperrors.MetadataOf(err))
	return &ToolError{Code: code, Message: message, Err: err}
}

func actor(campaignID, actorID string) engine.Actor {
	return engine.Actor{CampaignID: strings.TrimSpace(campaignID), ExternalID: strings.TrimSpace(actorID)}
}
