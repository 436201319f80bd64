package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrParentMissing indicates an insert referenced a row that no longer exists.
	ErrParentMissing = errors.New("referenced record not found")
)

// Duration is how long an asset lasts.
type Duration string

const (
	DurationScene   Duration = "scene"
	DurationSession Duration = "session"
)

// Valid reports whether d is scene or session.
func (d Duration) Valid() bool {
	return d == DurationScene || d == DurationSession
}

// Features are per-campaign rule toggles.
type Features struct {
	DoomPool bool `json:"doom_pool" toml:"doom_pool"`
	HeroDice bool `json:"hero_dice" toml:"hero_dice"`
	Trauma   bool `json:"trauma" toml:"trauma"`
	BestMode bool `json:"best_mode" toml:"best_mode"`
}

// Campaign is the root aggregate bound to one chat channel.
type Campaign struct {
	ID        string    `json:"id"`
	ServerID  string    `json:"server_id"`
	ChannelID string    `json:"channel_id"`
	Name      string    `json:"name"`
	Features  Features  `json:"features"`
	CreatedAt time.Time `json:"created_at"`
}

// Player is a campaign participant.
type Player struct {
	ID          string `json:"id"`
	CampaignID  string `json:"campaign_id"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
	IsGM        bool   `json:"is_gm"`
	IsDelegate  bool   `json:"is_delegate"`
	PlotPoints  int    `json:"plot_points"`
	XP          int    `json:"xp"`
}

// CanGM reports whether the player holds GM-level permission.
func (p Player) CanGM() bool {
	return p.IsGM || p.IsDelegate
}

// StressType is a named stress category.
type StressType struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
}

// Scene groups scene-scoped traits and crisis pools.
type Scene struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Asset is a positive trait die owned by a player or, with no player, by the scene.
type Asset struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	PlayerID   string    `json:"player_id,omitempty"`
	SceneID    string    `json:"scene_id,omitempty"`
	Name       string    `json:"name"`
	DieSize    int       `json:"die_size"`
	Duration   Duration  `json:"duration"`
	CreatedAt  time.Time `json:"created_at"`
}

// Track is one stress or trauma row for a (player, stress type) pair.
type Track struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	PlayerID     string    `json:"player_id"`
	StressTypeID string    `json:"stress_type_id"`
	DieSize      int       `json:"die_size"`
	CreatedAt    time.Time `json:"created_at"`
}

// Complication is a negative trait die with its own scope.
type Complication struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	PlayerID   string    `json:"player_id,omitempty"`
	SceneID    string    `json:"scene_id,omitempty"`
	Name       string    `json:"name"`
	DieSize    int       `json:"die_size"`
	Scope      Duration  `json:"scope"`
	CreatedAt  time.Time `json:"created_at"`
}

// HeroDie is a banked die held by a player.
type HeroDie struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	PlayerID   string    `json:"player_id"`
	DieSize    int       `json:"die_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// DoomDie is one die in the campaign doom pool.
type DoomDie struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	DieSize    int       `json:"die_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// CrisisPool is a named, scene-scoped pool of GM dice.
type CrisisPool struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	SceneID    string    `json:"scene_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// CrisisDie is one die in a crisis pool.
type CrisisDie struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	CrisisPoolID string    `json:"crisis_pool_id"`
	DieSize      int       `json:"die_size"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActionLogEntry pairs a forward description with the instruction that reverses it.
type ActionLogEntry struct {
	Seq         int64            `json:"seq"`
	CampaignID  string           `json:"campaign_id"`
	ActorID     string           `json:"actor_id"`
	ActionType  string           `json:"action_type"`
	Description string           `json:"description"`
	Inverse     undo.Instruction `json:"-"`
	Undone      bool             `json:"undone"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SceneSweep reports what a scene end removed.
type SceneSweep struct {
	Assets        int `json:"assets"`
	Complications int `json:"complications"`
	CrisisPools   int `json:"crisis_pools"`
}

// CampaignStore persists campaigns, players, stress types and scenes.
type CampaignStore interface {
	CreateCampaign(ctx context.Context, campaign Campaign) error
	GetCampaign(ctx context.Context, id string) (Campaign, error)
	GetCampaignByChannel(ctx context.Context, serverID, channelID string) (Campaign, error)
	UpdateCampaignFeatures(ctx context.Context, id string, features Features) error
	DeleteCampaign(ctx context.Context, id string) error

	CreatePlayer(ctx context.Context, player Player) error
	GetPlayer(ctx context.Context, id string) (Player, error)
	GetPlayerByExternalID(ctx context.Context, campaignID, externalID string) (Player, error)
	ListPlayers(ctx context.Context, campaignID string) ([]Player, error)
	SetPlayerDelegate(ctx context.Context, id string, delegate bool) error

	CreateStressType(ctx context.Context, stressType StressType) error
	GetStressType(ctx context.Context, id string) (StressType, error)
	ListStressTypes(ctx context.Context, campaignID string) ([]StressType, error)

	CreateScene(ctx context.Context, scene Scene) error
	GetActiveScene(ctx context.Context, campaignID string) (Scene, error)
	SweepScene(ctx context.Context, sceneID string) (SceneSweep, error)
	DeactivateScene(ctx context.Context, sceneID string) error
}

// TraitStore reads die-bearing entities. Writes go through Apply.
type TraitStore interface {
	GetAsset(ctx context.Context, id string) (Asset, error)
	ListAssets(ctx context.Context, campaignID string) ([]Asset, error)
	GetStress(ctx context.Context, id string) (Track, error)
	FindStress(ctx context.Context, playerID, stressTypeID string) (Track, error)
	ListStress(ctx context.Context, campaignID string) ([]Track, error)
	GetTrauma(ctx context.Context, id string) (Track, error)
	FindTrauma(ctx context.Context, playerID, stressTypeID string) (Track, error)
	ListTrauma(ctx context.Context, campaignID string) ([]Track, error)
	GetComplication(ctx context.Context, id string) (Complication, error)
	ListComplications(ctx context.Context, campaignID string) ([]Complication, error)
	GetHeroDie(ctx context.Context, id string) (HeroDie, error)
	ListHeroDice(ctx context.Context, campaignID string) ([]HeroDie, error)
	GetDoomDie(ctx context.Context, id string) (DoomDie, error)
	ListDoomDice(ctx context.Context, campaignID string) ([]DoomDie, error)
	GetCrisisPool(ctx context.Context, id string) (CrisisPool, error)
	ListCrisisPools(ctx context.Context, campaignID string) ([]CrisisPool, error)
	GetCrisisDie(ctx context.Context, id string) (CrisisDie, error)
	ListCrisisDice(ctx context.Context, campaignID string) ([]CrisisDie, error)
}

// ActionLog is the append-only undo log.
type ActionLog interface {
	// Apply validates and executes one instruction. It returns ErrNotFound
	// when a Delete or Update matched no row, ErrAlreadyExists when an
	// Insert collides with an existing id and ErrParentMissing when an Insert
	// references a deleted row.
	Apply(ctx context.Context, ins undo.Instruction) error
	AppendAction(ctx context.Context, entry ActionLogEntry) (int64, error)
	// LastUndoable returns the newest entry not yet undone, limited to
	// actorID when it is non-empty.
	LastUndoable(ctx context.Context, campaignID, actorID string) (ActionLogEntry, error)
	MarkUndone(ctx context.Context, seq int64) error
	ListActions(ctx context.Context, campaignID string, limit int) ([]ActionLogEntry, error)
}

// Repository is every store contract usable inside one transaction.
type Repository interface {
	CampaignStore
	TraitStore
	ActionLog
}

// Store is a Repository that can open transactions.
type Store interface {
	Repository
	// WithinTx runs fn against a transaction-scoped repository, committing
	// when fn returns nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(Repository) error) error
	Close() error
}
