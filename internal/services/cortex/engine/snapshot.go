package engine

import (
	"context"
	"errors"

	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

// CrisisPoolState is a crisis pool with its dice.
type CrisisPoolState struct {
	storage.CrisisPool
	Dice []storage.CrisisDie `json:"dice"`
}

// Snapshot is the full state of one campaign.
type Snapshot struct {
	Campaign      storage.Campaign       `json:"campaign"`
	Players       []storage.Player       `json:"players"`
	StressTypes   []storage.StressType   `json:"stress_types"`
	ActiveScene   *storage.Scene         `json:"active_scene,omitempty"`
	Assets        []storage.Asset        `json:"assets"`
	Stress        []storage.Track        `json:"stress"`
	Trauma        []storage.Track        `json:"trauma"`
	Complications []storage.Complication `json:"complications"`
	HeroDice      []storage.HeroDie      `json:"hero_dice"`
	DoomPool      []storage.DoomDie      `json:"doom_pool"`
	CrisisPools   []CrisisPoolState      `json:"crisis_pools"`
}

// Snapshot reads every entity of a campaign in one transaction.
func (e *Engine) Snapshot(ctx context.Context, campaignID string) (snap Snapshot, err error) {
	ctx, finish := e.span(ctx, "Snapshot")
	defer func() { finish(err) }()

	err = e.store.WithinTx(ctx, func(repo storage.Repository) error {
		campaign, err := repo.GetCampaign(ctx, campaignID)
		if err != nil {
			return lookupError(err, "Campaign", campaignID)
		}
		snap.Campaign = campaign

		if snap.Players, err = repo.ListPlayers(ctx, campaignID); err != nil {
			return err
		}
		if snap.StressTypes, err = repo.ListStressTypes(ctx, campaignID); err != nil {
			return err
		}
		scene, err := repo.GetActiveScene(ctx, campaignID)
		switch {
		case err == nil:
			snap.ActiveScene = &scene
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		if snap.Assets, err = repo.ListAssets(ctx, campaignID); err != nil {
			return err
		}
		if snap.Stress, err = repo.ListStress(ctx, campaignID); err != nil {
			return err
		}
		if snap.Trauma, err = repo.ListTrauma(ctx, campaignID); err != nil {
			return err
		}
		if snap.Complications, err = repo.ListComplications(ctx, campaignID); err != nil {
			return err
		}
		if snap.HeroDice, err = repo.ListHeroDice(ctx, campaignID); err != nil {
			return err
		}
		if snap.DoomPool, err = repo.ListDoomDice(ctx, campaignID); err != nil {
			return err
		}

		pools, err := repo.ListCrisisPools(ctx, campaignID)
		if err != nil {
			return err
		}
		crisisDice, err := repo.ListCrisisDice(ctx, campaignID)
		if err != nil {
			return err
		}
		byPool := make(map[string][]storage.CrisisDie, len(pools))
		for _, crisis := range crisisDice {
			byPool[crisis.CrisisPoolID] = append(byPool[crisis.CrisisPoolID], crisis)
		}
		for _, pool := range pools {
			snap.CrisisPools = append(snap.CrisisPools, CrisisPoolState{CrisisPool: pool, Dice: byPool[pool.ID]})
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
