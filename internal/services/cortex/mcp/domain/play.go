package domain

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

// SceneStartInput opens a scene.
type SceneStartInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Name       string `json:"name,omitempty" jsonschema:"scene name"`
}

// SceneEndInput closes the active scene.
type SceneEndInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Bridge     bool   `json:"bridge,omitempty" jsonschema:"step every non-GM stress die down one size"`
}

// SceneEndResult reports what a scene end removed.
type SceneEndResult struct {
	Scene              SceneView `json:"scene" jsonschema:"ended scene"`
	AssetsSwept        int       `json:"assets_swept" jsonschema:"scene assets deleted"`
	ComplicationsSwept int       `json:"complications_swept" jsonschema:"scene complications deleted"`
	CrisisPoolsSwept   int       `json:"crisis_pools_swept" jsonschema:"crisis pools deleted"`
	BridgeSteppedDown  int       `json:"bridge_stepped_down" jsonschema:"stress dice stepped down"`
	BridgeEliminated   int       `json:"bridge_eliminated" jsonschema:"d4 stress dice cleared"`
}

// TraitAddInput creates an asset or complication.
type TraitAddInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	PlayerID   string `json:"player_id,omitempty" jsonschema:"owning player; empty puts the trait on the scene"`
	Name       string `json:"name" jsonschema:"trait name"`
	Die        string `json:"die" jsonschema:"die size such as d8"`
	Duration   string `json:"duration,omitempty" jsonschema:"scene (default) or session"`
}

// TrackInput applies stress or trauma.
type TrackInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	PlayerID   string `json:"player_id" jsonschema:"player taking the die"`
	StressType string `json:"stress_type" jsonschema:"stress type id or name"`
	Die        string `json:"die" jsonschema:"die size such as d8"`
}

// RefInput targets one existing record by id.
type RefInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	ID         string `json:"id" jsonschema:"record identifier"`
}

// PointsInput adjusts plot points or XP.
type PointsInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	PlayerID   string `json:"player_id" jsonschema:"player whose points change"`
	Delta      int    `json:"delta" jsonschema:"amount to add; negative spends"`
}

// PlayTools returns the scene, trait, stress and point tools.
func PlayTools(eng *engine.Engine) []Registration {
	return []Registration{
		register(&mcp.Tool{Name: "scene_start", Description: "Starts a scene (GM only)"}, SceneStartHandler(eng)),
		register(&mcp.Tool{Name: "scene_end", Description: "Ends the active scene and clears scene traits and crisis pools (GM only)"}, SceneEndHandler(eng)),
		register(&mcp.Tool{Name: "asset_add", Description: "Adds an asset to a player or the scene"}, TraitAddHandler(eng.AddAsset)),
		refTool("asset_step_up", "Steps an asset up one die size", eng.StepUpAsset),
		refTool("asset_step_down", "Steps an asset down one die size; a d4 is eliminated", eng.StepDownAsset),
		refTool("asset_remove", "Removes an asset", eng.RemoveAsset),
		register(&mcp.Tool{Name: "complication_add", Description: "Adds a complication to a player or the scene"}, TraitAddHandler(eng.AddComplication)),
		refTool("complication_step_up", "Steps a complication up; at d12 the character is taken out", eng.StepUpComplication),
		refTool("complication_step_down", "Steps a complication down; a d4 is eliminated", eng.StepDownComplication),
		refTool("complication_remove", "Removes a complication", eng.RemoveComplication),
		register(&mcp.Tool{Name: "stress_apply", Description: "Applies stress; a larger die replaces, an equal or smaller die steps up"}, TrackHandler(eng.ApplyStress)),
		refTool("stress_step_down", "Recovers one size of stress", eng.StepDownStress),
		refTool("stress_clear", "Clears a stress die", eng.ClearStress),
		register(&mcp.Tool{Name: "trauma_apply", Description: "Applies trauma directly"}, TrackHandler(eng.ApplyTrauma)),
		refTool("trauma_step_down", "Recovers one size of trauma", eng.StepDownTrauma),
		refTool("trauma_clear", "Clears a trauma die", eng.ClearTrauma),
		register(&mcp.Tool{Name: "plot_points_adjust", Description: "Adds or spends plot points"}, PointsHandler(eng.AdjustPlotPoints)),
		register(&mcp.Tool{Name: "xp_adjust", Description: "Adds or spends experience points"}, PointsHandler(eng.AdjustXP)),
	}
}

// SceneStartHandler opens a scene.
func SceneStartHandler(eng *engine.Engine) mcp.ToolHandlerFor[SceneStartInput, SceneView] {
	return handle(func(ctx context.Context, input SceneStartInput) (SceneView, error) {
		scene, err := eng.StartScene(ctx, actor(input.CampaignID, input.ActorID), input.Name)
		if err != nil {
			return SceneView{}, err
		}
		return sceneView(scene), nil
	})
}

// SceneEndHandler closes the active scene.
func SceneEndHandler(eng *engine.Engine) mcp.ToolHandlerFor[SceneEndInput, SceneEndResult] {
	return handle(func(ctx context.Context, input SceneEndInput) (SceneEndResult, error) {
		end, err := eng.EndScene(ctx, actor(input.CampaignID, input.ActorID), input.Bridge)
		if err != nil {
			return SceneEndResult{}, err
		}
		return SceneEndResult{
			Scene:              sceneView(end.Scene),
			AssetsSwept:        end.Swept.Assets,
			ComplicationsSwept: end.Swept.Complications,
			CrisisPoolsSwept:   end.Swept.CrisisPools,
			BridgeSteppedDown:  end.BridgeSteppedDown,
			BridgeEliminated:   end.BridgeEliminated,
		}, nil
	})
}

// TraitAddHandler creates a trait through add.
func TraitAddHandler(add func(context.Context, engine.Actor, engine.TraitInput) (engine.Result, error)) mcp.ToolHandlerFor[TraitAddInput, ChangeView] {
	return handle(func(ctx context.Context, input TraitAddInput) (ChangeView, error) {
		size, err := dice.ParseSingle(input.Die)
		if err != nil {
			return ChangeView{}, err
		}
		result, err := add(ctx, actor(input.CampaignID, input.ActorID), engine.TraitInput{
			PlayerID: strings.TrimSpace(input.PlayerID),
			Name:     input.Name,
			Size:     size,
			Duration: storage.Duration(input.Duration),
		})
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}

// TrackHandler stacks stress or trauma through apply.
func TrackHandler(apply func(context.Context, engine.Actor, engine.TrackInput) (engine.Result, error)) mcp.ToolHandlerFor[TrackInput, ChangeView] {
	return handle(func(ctx context.Context, input TrackInput) (ChangeView, error) {
		size, err := dice.ParseSingle(input.Die)
		if err != nil {
			return ChangeView{}, err
		}
		result, err := apply(ctx, actor(input.CampaignID, input.ActorID), engine.TrackInput{
			PlayerID:   strings.TrimSpace(input.PlayerID),
			StressType: input.StressType,
			Size:       size,
		})
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}

// RefHandler runs op against one record id.
func RefHandler(op func(context.Context, engine.Actor, string) (engine.Result, error)) mcp.ToolHandlerFor[RefInput, ChangeView] {
	return handle(func(ctx context.Context, input RefInput) (ChangeView, error) {
		result, err := op(ctx, actor(input.CampaignID, input.ActorID), strings.TrimSpace(input.ID))
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}

func refTool(name, description string, op func(context.Context, engine.Actor, string) (engine.Result, error)) Registration {
	return register(&mcp.Tool{Name: name, Description: description}, RefHandler(op))
}

// PointsHandler adjusts a point counter through adjust.
func PointsHandler(adjust func(context.Context, engine.Actor, string, int) (engine.Result, error)) mcp.ToolHandlerFor[PointsInput, ChangeView] {
	return handle(func(ctx context.Context, input PointsInput) (ChangeView, error) {
		result, err := adjust(ctx, actor(input.CampaignID, input.ActorID), strings.TrimSpace(input.PlayerID), input.Delta)
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}
