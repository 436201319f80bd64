package domain

import (
	"time"

	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/roll"
	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

// formatTime renders a stored timestamp as RFC 3339, or empty when unset.
func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// CampaignView is the tool representation of a campaign.
type CampaignView struct {
	ID        string           `json:"id" jsonschema:"campaign identifier"`
	ServerID  string           `json:"server_id" jsonschema:"chat server identifier"`
	ChannelID string           `json:"channel_id" jsonschema:"chat channel identifier"`
	Name      string           `json:"name" jsonschema:"campaign name"`
	Features  storage.Features `json:"features" jsonschema:"optional rule toggles"`
	CreatedAt string           `json:"created_at" jsonschema:"creation time (RFC 3339)"`
}

func campaignView(campaign storage.Campaign) CampaignView {
	return CampaignView{
		ID:        campaign.ID,
		ServerID:  campaign.ServerID,
		ChannelID: campaign.ChannelID,
		Name:      campaign.Name,
		Features:  campaign.Features,
		CreatedAt: formatTime(campaign.CreatedAt),
	}
}

// SceneView is the tool representation of a scene.
type SceneView struct {
	ID        string `json:"id" jsonschema:"scene identifier"`
	Name      string `json:"name,omitempty" jsonschema:"scene name"`
	Active    bool   `json:"active" jsonschema:"whether the scene is running"`
	CreatedAt string `json:"created_at" jsonschema:"start time (RFC 3339)"`
}

func sceneView(scene storage.Scene) SceneView {
	return SceneView{ID: scene.ID, Name: scene.Name, Active: scene.Active, CreatedAt: formatTime(scene.CreatedAt)}
}

// TraitView is an asset or complication.
type TraitView struct {
	ID       string `json:"id" jsonschema:"trait identifier"`
	PlayerID string `json:"player_id,omitempty" jsonschema:"owning player; empty for scene traits"`
	SceneID  string `json:"scene_id,omitempty" jsonschema:"scene the trait was created in"`
	Name     string `json:"name" jsonschema:"trait name"`
	Die      string `json:"die" jsonschema:"die label such as d8"`
	Size     int    `json:"size" jsonschema:"die size"`
	Duration string `json:"duration" jsonschema:"scene or session"`
}

func assetView(asset storage.Asset) TraitView {
	return TraitView{
		ID:       asset.ID,
		PlayerID: asset.PlayerID,
		SceneID:  asset.SceneID,
		Name:     asset.Name,
		Die:      dice.Label(asset.DieSize),
		Size:     asset.DieSize,
		Duration: string(asset.Duration),
	}
}

func complicationView(complication storage.Complication) TraitView {
	return TraitView{
		ID:       complication.ID,
		PlayerID: complication.PlayerID,
		SceneID:  complication.SceneID,
		Name:     complication.Name,
		Die:      dice.Label(complication.DieSize),
		Size:     complication.DieSize,
		Duration: string(complication.Scope),
	}
}

// TrackView is a stress or trauma die for one player and stress type.
type TrackView struct {
	ID           string `json:"id" jsonschema:"track identifier"`
	PlayerID     string `json:"player_id" jsonschema:"player carrying the die"`
	StressTypeID string `json:"stress_type_id" jsonschema:"stress type identifier"`
	Die          string `json:"die" jsonschema:"die label such as d8"`
	Size         int    `json:"size" jsonschema:"die size"`
}

func trackView(track storage.Track) TrackView {
	return TrackView{
		ID:           track.ID,
		PlayerID:     track.PlayerID,
		StressTypeID: track.StressTypeID,
		Die:          dice.Label(track.DieSize),
		Size:         track.DieSize,
	}
}

// DieView is a hero die, doom die, or crisis die.
type DieView struct {
	ID       string `json:"id" jsonschema:"die identifier"`
	PlayerID string `json:"player_id,omitempty" jsonschema:"holder of a hero die"`
	Die      string `json:"die" jsonschema:"die label such as d8"`
	Size     int    `json:"size" jsonschema:"die size"`
}

// CrisisPoolView is a crisis pool with its dice.
type CrisisPoolView struct {
	ID      string    `json:"id" jsonschema:"crisis pool identifier"`
	SceneID string    `json:"scene_id" jsonschema:"scene the pool belongs to"`
	Name    string    `json:"name" jsonschema:"crisis pool name"`
	Dice    []DieView `json:"dice" jsonschema:"dice in the pool"`
}

func crisisPoolView(pool storage.CrisisPool, crisisDice []storage.CrisisDie) CrisisPoolView {
	view := CrisisPoolView{ID: pool.ID, SceneID: pool.SceneID, Name: pool.Name, Dice: make([]DieView, 0, len(crisisDice))}
	for _, crisis := range crisisDice {
		view.Dice = append(view.Dice, DieView{ID: crisis.ID, Die: dice.Label(crisis.DieSize), Size: crisis.DieSize})
	}
	return view
}

// TraumaChangeView is the trauma side effect of a stress-out.
type TraumaChangeView struct {
	Outcome string `json:"outcome" jsonschema:"trauma outcome"`
	ID      string `json:"id,omitempty" jsonschema:"trauma identifier"`
	From    int    `json:"from" jsonschema:"die size before"`
	To      int    `json:"to" jsonschema:"die size after"`
	Seq     int64  `json:"seq,omitempty" jsonschema:"action log sequence, when recorded"`
}

// ChangeView reports the outcome of a mutating command.
type ChangeView struct {
	Outcome     string            `json:"outcome" jsonschema:"what happened, such as added, stepped_up, stressed_out or insufficient"`
	Entity      string            `json:"entity,omitempty" jsonschema:"table touched"`
	ID          string            `json:"id,omitempty" jsonschema:"record touched"`
	Name        string            `json:"name,omitempty" jsonschema:"record name"`
	From        int               `json:"from" jsonschema:"die size or point total before"`
	To          int               `json:"to" jsonschema:"die size or point total after"`
	Current     int               `json:"current,omitempty" jsonschema:"points held when insufficient"`
	Requested   int               `json:"requested,omitempty" jsonschema:"points asked for when insufficient"`
	Seq         int64             `json:"seq,omitempty" jsonschema:"action log sequence, when recorded"`
	ActionType  string            `json:"action_type,omitempty" jsonschema:"action log type"`
	Description string            `json:"description,omitempty" jsonschema:"action log description"`
	Stale       bool              `json:"stale,omitempty" jsonschema:"undo target had already changed"`
	Trauma      *TraumaChangeView `json:"trauma,omitempty" jsonschema:"trauma change caused by a stress-out"`
}

func changeView(result engine.Result) ChangeView {
	view := ChangeView{
		Outcome:     string(result.Outcome),
		Entity:      string(result.Entity),
		ID:          result.ID,
		Name:        result.Name,
		From:        result.From,
		To:          result.To,
		Current:     result.Current,
		Requested:   result.Requested,
		Seq:         result.Seq,
		ActionType:  result.ActionType,
		Description: result.Description,
		Stale:       result.Stale,
	}
	if trauma := result.Trauma; trauma != nil {
		view.Trauma = &TraumaChangeView{
			Outcome: string(trauma.Outcome),
			ID:      trauma.ID,
			From:    trauma.From,
			To:      trauma.To,
			Seq:     trauma.Seq,
		}
	}
	return view
}

// RolledDieView is one rolled die.
type RolledDieView struct {
	Die   string `json:"die" jsonschema:"die label such as d8"`
	Size  int    `json:"size" jsonschema:"die size"`
	Value int    `json:"value" jsonschema:"face rolled"`
}

// EffectView is the effect die of an option.
type EffectView struct {
	Die      string `json:"die" jsonschema:"die label such as d8"`
	Size     int    `json:"size" jsonschema:"effect die size"`
	Value    int    `json:"value" jsonschema:"face rolled, zero for the assumed d4"`
	Sentinel bool   `json:"sentinel" jsonschema:"no die was left over and a d4 effect is assumed"`
}

// OptionView is one way to read a pool.
type OptionView struct {
	Dice   []RolledDieView `json:"dice" jsonschema:"two dice kept for the total"`
	Total  int             `json:"total" jsonschema:"sum of the kept dice"`
	Effect EffectView      `json:"effect" jsonschema:"effect die"`
}

// DifficultyView is how an option fared against the difficulty.
type DifficultyView struct {
	Success     bool `json:"success" jsonschema:"total beat the difficulty"`
	Margin      int  `json:"margin" jsonschema:"total minus difficulty"`
	Heroic      bool `json:"heroic" jsonschema:"margin of five or more"`
	HeroicSteps int  `json:"heroic_steps" jsonschema:"effect die step-ups earned"`
}

// RollView is a rolled pool with its hitches and options.
type RollView struct {
	Seed       int64            `json:"seed" jsonschema:"seed that reproduces the roll"`
	Results    []RolledDieView  `json:"results" jsonschema:"every die rolled"`
	Hitches    []RolledDieView  `json:"hitches" jsonschema:"dice that rolled a 1"`
	Botch      bool             `json:"botch" jsonschema:"every die rolled a 1"`
	Options    []OptionView     `json:"options,omitempty" jsonschema:"best total and best effect readings"`
	Difficulty *int             `json:"difficulty,omitempty" jsonschema:"difficulty rolled against"`
	Against    []DifficultyView `json:"against,omitempty" jsonschema:"difficulty result per option"`
}

func rolledDice(results []roll.Result) []RolledDieView {
	views := make([]RolledDieView, 0, len(results))
	for _, result := range results {
		views = append(views, RolledDieView{Die: dice.Label(result.Size), Size: result.Size, Value: result.Value})
	}
	return views
}

func rollView(outcome roll.Outcome) RollView {
	view := RollView{
		Seed:       outcome.Seed,
		Results:    rolledDice(outcome.Results),
		Hitches:    rolledDice(outcome.Hitches),
		Botch:      outcome.Botch,
		Difficulty: outcome.Difficulty,
	}
	for _, option := range outcome.Options {
		view.Options = append(view.Options, OptionView{
			Dice:  rolledDice(option.Dice[:]),
			Total: option.Total,
			Effect: EffectView{
				Die:      dice.Label(option.Effect.Size),
				Size:     option.Effect.Size,
				Value:    option.Effect.Value,
				Sentinel: option.Effect.Sentinel,
			},
		})
	}
	for _, against := range outcome.Against {
		view.Against = append(view.Against, DifficultyView(against))
	}
	return view
}

// ActionView is one action log entry.
type ActionView struct {
	Seq         int64  `json:"seq" jsonschema:"sequence number"`
	ActorID     string `json:"actor_id" jsonschema:"player who acted"`
	ActionType  string `json:"action_type" jsonschema:"action type"`
	Description string `json:"description" jsonschema:"what changed"`
	Undone      bool   `json:"undone" jsonschema:"whether the action was reversed"`
	CreatedAt   string `json:"created_at" jsonschema:"time of the action (RFC 3339)"`
}

func actionView(entry storage.ActionLogEntry) ActionView {
	return ActionView{
		Seq:         entry.Seq,
		ActorID:     entry.ActorID,
		ActionType:  entry.ActionType,
		Description: entry.Description,
		Undone:      entry.Undone,
		CreatedAt:   formatTime(entry.CreatedAt),
	}
}

// SnapshotView is the full state of a campaign.
type SnapshotView struct {
	Campaign      CampaignView         `json:"campaign" jsonschema:"campaign settings"`
	Players       []storage.Player     `json:"players" jsonschema:"players with points"`
	StressTypes   []storage.StressType `json:"stress_types" jsonschema:"stress categories"`
	ActiveScene   *SceneView           `json:"active_scene,omitempty" jsonschema:"running scene, if any"`
	Assets        []TraitView          `json:"assets" jsonschema:"assets"`
	Stress        []TrackView          `json:"stress" jsonschema:"stress dice"`
	Trauma        []TrackView          `json:"trauma" jsonschema:"trauma dice"`
	Complications []TraitView          `json:"complications" jsonschema:"complications"`
	HeroDice      []DieView            `json:"hero_dice" jsonschema:"banked hero dice"`
	DoomPool      []DieView            `json:"doom_pool" jsonschema:"doom pool dice"`
	CrisisPools   []CrisisPoolView     `json:"crisis_pools" jsonschema:"crisis pools of the active scene"`
}

func snapshotView(snap engine.Snapshot) SnapshotView {
	view := SnapshotView{
		Campaign:      campaignView(snap.Campaign),
		Players:       snap.Players,
		StressTypes:   snap.StressTypes,
		Assets:        make([]TraitView, 0, len(snap.Assets)),
		Stress:        make([]TrackView, 0, len(snap.Stress)),
		Trauma:        make([]TrackView, 0, len(snap.Trauma)),
		Complications: make([]TraitView, 0, len(snap.Complications)),
		HeroDice:      make([]DieView, 0, len(snap.HeroDice)),
		DoomPool:      make([]DieView, 0, len(snap.DoomPool)),
		CrisisPools:   make([]CrisisPoolView, 0, len(snap.CrisisPools)),
	}
	if snap.ActiveScene != nil {
		scene := sceneView(*snap.ActiveScene)
		view.ActiveScene = &scene
	}
	for _, asset := range snap.Assets {
		view.Assets = append(view.Assets, assetView(asset))
	}
	for _, track := range snap.Stress {
		view.Stress = append(view.Stress, trackView(track))
	}
	for _, track := range snap.Trauma {
		view.Trauma = append(view.Trauma, trackView(track))
	}
	for _, complication := range snap.Complications {
		view.Complications = append(view.Complications, complicationView(complication))
	}
	for _, hero := range snap.HeroDice {
		view.HeroDice = append(view.HeroDice, DieView{ID: hero.ID, PlayerID: hero.PlayerID, Die: dice.Label(hero.DieSize), Size: hero.DieSize})
	}
	for _, doom := range snap.DoomPool {
		view.DoomPool = append(view.DoomPool, DieView{ID: doom.ID, Die: dice.Label(doom.DieSize), Size: doom.DieSize})
	}
	for _, pool := range snap.CrisisPools {
		view.CrisisPools = append(view.CrisisPools, crisisPoolView(pool.CrisisPool, pool.Dice))
	}
	return view
}
