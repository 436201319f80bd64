package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cortex.space/internal/random"
	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
	"github.com/louisbranch/cortex.space/internal/services/cortex/mcp/domain"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "cortex.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	eng, err := engine.New(store, engine.WithSeedSource(random.Fixed(3)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	server, err := New(eng)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

// connect serves the server over in-memory transports and returns a client session.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ServeTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}

	t.Cleanup(func() {
		defer session.Close()
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
	})
	return session
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil engine")
	}
}

func TestServeWithTransportRequiresServer(t *testing.T) {
	var server *Server
	if err := server.ServeTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil server")
	}
}

func TestListToolsExposesEveryModule(t *testing.T) {
	session := connect(t, newTestServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make(map[string]bool, len(result.Tools))
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"campaign_create", "scene_start", "stress_apply", "doom_die_add", "roll", "undo"} {
		if !names[want] {
			t.Fatalf("tool %q not listed", want)
		}
	}
}

func TestCallToolRoundTrip(t *testing.T) {
	session := connect(t, newTestServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "campaign_create",
		Arguments: map[string]any{
			"server_id":    "srv",
			"channel_id":   "chan",
			"name":         "Sunfall",
			"actor_id":     "u-gm",
			"display_name": "Gia",
		},
	})
	if err != nil {
		t.Fatalf("call campaign_create: %v", err)
	}
	if created == nil || created.IsError {
		t.Fatalf("campaign_create failed: %+v", created)
	}
	campaign := decodeStructuredContent[domain.CampaignCreateResult](t, created.StructuredContent)
	if campaign.Campaign.ID == "" {
		t.Fatal("campaign_create returned empty id")
	}
	if len(campaign.StressTypes) == 0 {
		t.Fatal("expected default stress types")
	}

	rolled, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "roll",
		Arguments: map[string]any{
			"campaign_id": campaign.Campaign.ID,
			"actor_id":    "u-gm",
			"dice":        "d6 d8 d10",
		},
	})
	if err != nil {
		t.Fatalf("call roll: %v", err)
	}
	if rolled.IsError {
		t.Fatalf("roll returned error content: %+v", rolled.Content)
	}
	view := decodeStructuredContent[domain.RollView](t, rolled.StructuredContent)
	if len(view.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(view.Results))
	}

	resource, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "campaign://" + campaign.Campaign.ID})
	if err != nil {
		t.Fatalf("read campaign resource: %v", err)
	}
	if len(resource.Contents) != 1 || resource.Contents[0].Text == "" {
		t.Fatalf("unexpected resource contents: %+v", resource.Contents)
	}
}

func TestCallToolRejectedCommandIsError(t *testing.T) {
	session := connect(t, newTestServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "undo",
		Arguments: map[string]any{
			"campaign_id": "missing",
			"actor_id":    "u-1",
		},
	})
	if err == nil && (result == nil || !result.IsError) {
		t.Fatalf("expected undo on unknown campaign to fail, got %+v", result)
	}
}
