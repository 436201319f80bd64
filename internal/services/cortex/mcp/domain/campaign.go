package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

// ActorInput identifies the campaign and the caller for commands with no
// other arguments.
type ActorInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
}

// CampaignCreateInput represents the MCP tool input for creating a campaign.
type CampaignCreateInput struct {
	ServerID    string            `json:"server_id" jsonschema:"chat server identifier"`
	ChannelID   string            `json:"channel_id" jsonschema:"chat channel identifier"`
	Name        string            `json:"name" jsonschema:"campaign name"`
	ActorID     string            `json:"actor_id" jsonschema:"external identity of the GM"`
	DisplayName string            `json:"display_name" jsonschema:"GM display name"`
	StressTypes []string          `json:"stress_types,omitempty" jsonschema:"stress categories; defaults to the rules preset"`
	Features    *storage.Features `json:"features,omitempty" jsonschema:"rule toggles; defaults to the rules preset"`
}

// CampaignCreateResult represents the MCP tool output for creating a campaign.
type CampaignCreateResult struct {
	Campaign    CampaignView         `json:"campaign" jsonschema:"created campaign"`
	GM          storage.Player       `json:"gm" jsonschema:"GM player"`
	StressTypes []storage.StressType `json:"stress_types" jsonschema:"stress categories"`
}

// CampaignGetInput looks a campaign up by id or by channel.
type CampaignGetInput struct {
	CampaignID string `json:"campaign_id,omitempty" jsonschema:"campaign identifier"`
	ServerID   string `json:"server_id,omitempty" jsonschema:"chat server identifier, with channel_id"`
	ChannelID  string `json:"channel_id,omitempty" jsonschema:"chat channel identifier, with server_id"`
}

// CampaignFeaturesInput replaces the campaign feature toggles.
type CampaignFeaturesInput struct {
	CampaignID string           `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string           `json:"actor_id" jsonschema:"external identity of the caller"`
	Features   storage.Features `json:"features" jsonschema:"new rule toggles"`
}

// PlayerJoinInput adds the caller to a campaign as a player.
type PlayerJoinInput struct {
	CampaignID  string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID     string `json:"actor_id" jsonschema:"external identity of the joining player"`
	DisplayName string `json:"display_name" jsonschema:"player display name"`
}

// PlayerDelegateInput grants or revokes GM permission.
type PlayerDelegateInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	PlayerID   string `json:"player_id" jsonschema:"player to change"`
	Delegate   bool   `json:"delegate" jsonschema:"whether the player acts with GM permission"`
}

// StressTypeAddInput adds a stress category.
type StressTypeAddInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Name       string `json:"name" jsonschema:"stress type name"`
}

// CampaignEndGrantResult carries the confirmation token for ending a campaign.
type CampaignEndGrantResult struct {
	Token     string `json:"token" jsonschema:"token to pass to campaign_end_confirm"`
	ExpiresAt string `json:"expires_at" jsonschema:"token expiry (RFC 3339)"`
}

// CampaignEndConfirmInput deletes a campaign with a confirmation token.
type CampaignEndConfirmInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Token      string `json:"token" jsonschema:"token from campaign_end_request"`
}

// CampaignEndResult reports a deleted campaign.
type CampaignEndResult struct {
	CampaignID string `json:"campaign_id" jsonschema:"deleted campaign"`
	Ended      bool   `json:"ended" jsonschema:"whether the campaign was deleted"`
}

// SnapshotInput reads the state of a campaign.
type SnapshotInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

// HistoryInput reads the action log of a campaign.
type HistoryInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum entries, newest first (default 20)"`
}

// HistoryResult lists action log entries.
type HistoryResult struct {
	Actions []ActionView `json:"actions" jsonschema:"action log entries, newest first"`
}

// CampaignTools returns the campaign lifecycle and read tools.
func CampaignTools(eng *engine.Engine) []Registration {
	return []Registration{
		register(&mcp.Tool{Name: "campaign_create", Description: "Creates a campaign bound to a chat channel with the caller as GM"}, CampaignCreateHandler(eng)),
		register(&mcp.Tool{Name: "campaign_get", Description: "Looks up a campaign by id or by server and channel"}, CampaignGetHandler(eng)),
		register(&mcp.Tool{Name: "campaign_features_set", Description: "Replaces the campaign rule toggles (GM only)"}, CampaignFeaturesHandler(eng)),
		register(&mcp.Tool{Name: "player_join", Description: "Adds the caller to a campaign as a player"}, PlayerJoinHandler(eng)),
		register(&mcp.Tool{Name: "player_delegate_set", Description: "Grants or revokes GM permission for a player (GM only)"}, PlayerDelegateHandler(eng)),
		register(&mcp.Tool{Name: "stress_type_add", Description: "Adds a stress category (GM only)"}, StressTypeAddHandler(eng)),
		register(&mcp.Tool{Name: "campaign_end_request", Description: "Issues a short-lived token that confirms deleting the campaign (GM only)"}, CampaignEndRequestHandler(eng)),
		register(&mcp.Tool{Name: "campaign_end_confirm", Description: "Deletes the campaign and all its state; this cannot be undone (GM only)"}, CampaignEndConfirmHandler(eng)),
		register(&mcp.Tool{Name: "campaign_snapshot", Description: "Reads players, traits, stress and pools of a campaign"}, SnapshotHandler(eng)),
		register(&mcp.Tool{Name: "campaign_history", Description: "Lists recent actions, newest first"}, HistoryHandler(eng)),
	}
}

// CampaignCreateHandler creates a campaign.
func CampaignCreateHandler(eng *engine.Engine) mcp.ToolHandlerFor[CampaignCreateInput, CampaignCreateResult] {
	return handle(func(ctx context.Context, input CampaignCreateInput) (CampaignCreateResult, error) {
		setup, err := eng.CreateCampaign(ctx, engine.CreateCampaignInput{
			ServerID:      input.ServerID,
			ChannelID:     input.ChannelID,
			Name:          input.Name,
			GMExternalID:  input.ActorID,
			GMDisplayName: input.DisplayName,
			StressTypes:   input.StressTypes,
			Features:      input.Features,
		})
		if err != nil {
			return CampaignCreateResult{}, err
		}
		return CampaignCreateResult{Campaign: campaignView(setup.Campaign), GM: setup.GM, StressTypes: setup.StressTypes}, nil
	})
}

// CampaignGetHandler resolves a campaign by id or channel.
func CampaignGetHandler(eng *engine.Engine) mcp.ToolHandlerFor[CampaignGetInput, CampaignView] {
	return handle(func(ctx context.Context, input CampaignGetInput) (CampaignView, error) {
		if campaignID := strings.TrimSpace(input.CampaignID); campaignID != "" {
			campaign, err := eng.GetCampaign(ctx, campaignID)
			if err != nil {
				return CampaignView{}, err
			}
			return campaignView(campaign), nil
		}
		if strings.TrimSpace(input.ServerID) == "" || strings.TrimSpace(input.ChannelID) == "" {
			return CampaignView{}, fmt.Errorf("campaign_id or server_id and channel_id are required")
		}
		campaign, err := eng.CampaignForChannel(ctx, strings.TrimSpace(input.ServerID), strings.TrimSpace(input.ChannelID))
		if err != nil {
			return CampaignView{}, err
		}
		return campaignView(campaign), nil
	})
}

// CampaignFeaturesHandler replaces feature toggles.
func CampaignFeaturesHandler(eng *engine.Engine) mcp.ToolHandlerFor[CampaignFeaturesInput, CampaignView] {
	return handle(func(ctx context.Context, input CampaignFeaturesInput) (CampaignView, error) {
		campaign, err := eng.SetFeatures(ctx, actor(input.CampaignID, input.ActorID), input.Features)
		if err != nil {
			return CampaignView{}, err
		}
		return campaignView(campaign), nil
	})
}

// PlayerJoinHandler adds a player.
func PlayerJoinHandler(eng *engine.Engine) mcp.ToolHandlerFor[PlayerJoinInput, storage.Player] {
	return handle(func(ctx context.Context, input PlayerJoinInput) (storage.Player, error) {
		return eng.AddPlayer(ctx, engine.AddPlayerInput{
			CampaignID:  strings.TrimSpace(input.CampaignID),
			ExternalID:  input.ActorID,
			DisplayName: input.DisplayName,
		})
	})
}

// PlayerDelegateHandler toggles delegate permission.
func PlayerDelegateHandler(eng *engine.Engine) mcp.ToolHandlerFor[PlayerDelegateInput, storage.Player] {
	return handle(func(ctx context.Context, input PlayerDelegateInput) (storage.Player, error) {
		return eng.SetDelegate(ctx, actor(input.CampaignID, input.ActorID), strings.TrimSpace(input.PlayerID), input.Delegate)
	})
}

// StressTypeAddHandler adds a stress type.
func StressTypeAddHandler(eng *engine.Engine) mcp.ToolHandlerFor[StressTypeAddInput, storage.StressType] {
	return handle(func(ctx context.Context, input StressTypeAddInput) (storage.StressType, error) {
		return eng.AddStressType(ctx, actor(input.CampaignID, input.ActorID), input.Name)
	})
}

// CampaignEndRequestHandler issues a campaign end grant.
func CampaignEndRequestHandler(eng *engine.Engine) mcp.ToolHandlerFor[ActorInput, CampaignEndGrantResult] {
	return handle(func(ctx context.Context, input ActorInput) (CampaignEndGrantResult, error) {
		grant, err := eng.RequestCampaignEnd(ctx, actor(input.CampaignID, input.ActorID))
		if err != nil {
			return CampaignEndGrantResult{}, err
		}
		return CampaignEndGrantResult{Token: grant.Token, ExpiresAt: formatTime(grant.ExpiresAt)}, nil
	})
}

// CampaignEndConfirmHandler deletes a campaign once the grant checks out.
func CampaignEndConfirmHandler(eng *engine.Engine) mcp.ToolHandlerFor[CampaignEndConfirmInput, CampaignEndResult] {
	return handle(func(ctx context.Context, input CampaignEndConfirmInput) (CampaignEndResult, error) {
		if err := eng.ConfirmCampaignEnd(ctx, actor(input.CampaignID, input.ActorID), input.Token); err != nil {
			return CampaignEndResult{}, err
		}
		return CampaignEndResult{CampaignID: strings.TrimSpace(input.CampaignID), Ended: true}, nil
	})
}

// SnapshotHandler reads campaign state.
func SnapshotHandler(eng *engine.Engine) mcp.ToolHandlerFor[SnapshotInput, SnapshotView] {
	return handle(func(ctx context.Context, input SnapshotInput) (SnapshotView, error) {
		snap, err := eng.Snapshot(ctx, strings.TrimSpace(input.CampaignID))
		if err != nil {
			return SnapshotView{}, err
		}
		return snapshotView(snap), nil
	})
}

// HistoryHandler lists the action log.
func HistoryHandler(eng *engine.Engine) mcp.ToolHandlerFor[HistoryInput, HistoryResult] {
	return handle(func(ctx context.Context, input HistoryInput) (HistoryResult, error) {
		entries, err := eng.History(ctx, strings.TrimSpace(input.CampaignID), input.Limit)
		if err != nil {
			return HistoryResult{}, err
		}
		result := HistoryResult{Actions: make([]ActionView, 0, len(entries))}
		for _, entry := range entries {
			result.Actions = append(result.Actions, actionView(entry))
		}
		return result, nil
	})
}
