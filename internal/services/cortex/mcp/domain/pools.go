package domain

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
)

// HeroDieBankInput banks a hero die for a player.
type HeroDieBankInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	PlayerID   string `json:"player_id" jsonschema:"player banking the die"`
	Die        string `json:"die" jsonschema:"die size such as d8"`
}

// DoomDieAddInput adds a die to the doom pool.
type DoomDieAddInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Die        string `json:"die" jsonschema:"die size such as d8"`
}

// PoolRollInput rolls the doom pool.
type PoolRollInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Difficulty *int   `json:"difficulty,omitempty" jsonschema:"optional difficulty to roll against"`
}

// CrisisPoolCreateInput opens a crisis pool in the active scene.
type CrisisPoolCreateInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Name       string `json:"name" jsonschema:"crisis pool name"`
	Dice       string `json:"dice,omitempty" jsonschema:"starting dice in notation such as 2d8 d10"`
}

// CrisisPoolCreateResult reports a created crisis pool.
type CrisisPoolCreateResult struct {
	Outcome string         `json:"outcome" jsonschema:"added"`
	Pool    CrisisPoolView `json:"pool" jsonschema:"created pool with its dice"`
	Seq     int64          `json:"seq" jsonschema:"action log sequence"`
}

// CrisisDieAddInput adds a die to a crisis pool.
type CrisisDieAddInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	PoolID     string `json:"pool_id" jsonschema:"crisis pool identifier"`
	Die        string `json:"die" jsonschema:"die size such as d8"`
}

// RollInput rolls a dice pool.
type RollInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"external identity of the caller"`
	Dice       string `json:"dice" jsonschema:"dice notation such as 2d8 d10 d6"`
	Difficulty *int   `json:"difficulty,omitempty" jsonschema:"optional difficulty to roll against"`
}

// PoolTools returns the hero die, doom pool, crisis pool, roll and undo tools.
func PoolTools(eng *engine.Engine) []Registration {
	return []Registration{
		register(&mcp.Tool{Name: "hero_die_bank", Description: "Banks a hero die for a player"}, HeroDieBankHandler(eng)),
		refTool("hero_die_spend", "Spends a banked hero die", eng.SpendHeroDie),
		register(&mcp.Tool{Name: "doom_die_add", Description: "Adds a die to the doom pool (GM only)"}, DoomDieAddHandler(eng)),
		refTool("doom_die_step_up", "Steps a doom die up (GM only)", eng.StepUpDoomDie),
		refTool("doom_die_step_down", "Steps a doom die down; a d4 is eliminated (GM only)", eng.StepDownDoomDie),
		refTool("doom_die_spend", "Spends a doom die (GM only)", eng.SpendDoomDie),
		register(&mcp.Tool{Name: "doom_pool_roll", Description: "Rolls the doom pool without changing it (GM only)"}, DoomPoolRollHandler(eng)),
		register(&mcp.Tool{Name: "crisis_pool_create", Description: "Opens a crisis pool in the active scene (GM only)"}, CrisisPoolCreateHandler(eng)),
		register(&mcp.Tool{Name: "crisis_die_add", Description: "Adds a die to a crisis pool (GM only)"}, CrisisDieAddHandler(eng)),
		refTool("crisis_die_spend", "Spends a crisis die (GM only)", eng.SpendCrisisDie),
		register(&mcp.Tool{Name: "roll", Description: "Rolls a dice pool and reports hitches and the best total and effect"}, RollHandler(eng)),
		register(&mcp.Tool{Name: "undo", Description: "Reverses the caller's most recent action; a GM reverses the campaign's"}, UndoHandler(eng)),
	}
}

// HeroDieBankHandler banks a hero die.
func HeroDieBankHandler(eng *engine.Engine) mcp.ToolHandlerFor[HeroDieBankInput, ChangeView] {
	return handle(func(ctx context.Context, input HeroDieBankInput) (ChangeView, error) {
		size, err := dice.ParseSingle(input.Die)
		if err != nil {
			return ChangeView{}, err
		}
		result, err := eng.BankHeroDie(ctx, actor(input.CampaignID, input.ActorID), strings.TrimSpace(input.PlayerID), size)
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}

// DoomDieAddHandler adds a doom die.
func DoomDieAddHandler(eng *engine.Engine) mcp.ToolHandlerFor[DoomDieAddInput, ChangeView] {
	return handle(func(ctx context.Context, input DoomDieAddInput) (ChangeView, error) {
		size, err := dice.ParseSingle(input.Die)
		if err != nil {
			return ChangeView{}, err
		}
		result, err := eng.AddDoomDie(ctx, actor(input.CampaignID, input.ActorID), size)
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}

// DoomPoolRollHandler rolls the doom pool.
func DoomPoolRollHandler(eng *engine.Engine) mcp.ToolHandlerFor[PoolRollInput, RollView] {
	return handle(func(ctx context.Context, input PoolRollInput) (RollView, error) {
		outcome, err := eng.RollDoomPool(ctx, actor(input.CampaignID, input.ActorID), input.Difficulty)
		if err != nil {
			return RollView{}, err
		}
		return rollView(outcome), nil
	})
}

// CrisisPoolCreateHandler opens a crisis pool.
func CrisisPoolCreateHandler(eng *engine.Engine) mcp.ToolHandlerFor[CrisisPoolCreateInput, CrisisPoolCreateResult] {
	return handle(func(ctx context.Context, input CrisisPoolCreateInput) (CrisisPoolCreateResult, error) {
		var sizes []int
		if strings.TrimSpace(input.Dice) != "" {
			parsed, err := dice.ParseNotation(input.Dice)
			if err != nil {
				return CrisisPoolCreateResult{}, err
			}
			sizes = parsed
		}
		created, err := eng.CreateCrisisPool(ctx, actor(input.CampaignID, input.ActorID), engine.CrisisPoolInput{Name: input.Name, Sizes: sizes})
		if err != nil {
			return CrisisPoolCreateResult{}, err
		}
		return CrisisPoolCreateResult{
			Outcome: string(created.Outcome),
			Pool:    crisisPoolView(created.Pool, created.Dice),
			Seq:     created.Seq,
		}, nil
	})
}

// CrisisDieAddHandler adds a crisis die.
func CrisisDieAddHandler(eng *engine.Engine) mcp.ToolHandlerFor[CrisisDieAddInput, ChangeView] {
	return handle(func(ctx context.Context, input CrisisDieAddInput) (ChangeView, error) {
		size, err := dice.ParseSingle(input.Die)
		if err != nil {
			return ChangeView{}, err
		}
		result, err := eng.AddCrisisDie(ctx, actor(input.CampaignID, input.ActorID), strings.TrimSpace(input.PoolID), size)
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}

// RollHandler rolls a pool given in dice notation.
func RollHandler(eng *engine.Engine) mcp.ToolHandlerFor[RollInput, RollView] {
	return handle(func(ctx context.Context, input RollInput) (RollView, error) {
		sizes, err := dice.ParseNotation(input.Dice)
		if err != nil {
			return RollView{}, err
		}
		outcome, err := eng.Roll(ctx, actor(input.CampaignID, input.ActorID), engine.RollInput{Sizes: sizes, Difficulty: input.Difficulty})
		if err != nil {
			return RollView{}, err
		}
		return rollView(outcome), nil
	})
}

// UndoHandler reverses the newest undoable action.
func UndoHandler(eng *engine.Engine) mcp.ToolHandlerFor[ActorInput, ChangeView] {
	return handle(func(ctx context.Context, input ActorInput) (ChangeView, error) {
		result, err := eng.Undo(ctx, actor(input.CampaignID, input.ActorID))
		if err != nil {
			return ChangeView{}, err
		}
		return changeView(result), nil
	})
}
