package engine

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/roll"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

func heroDie(hero storage.HeroDie) die {
	return die{kind: "hero_die", table: undo.TableHeroDice, id: hero.ID, size: hero.DieSize, row: hero.Row()}
}

func doomDie(doom storage.DoomDie) die {
	return die{kind: "doom_die", table: undo.TableDoomDice, id: doom.ID, size: doom.DieSize, row: doom.Row()}
}

func crisisDie(crisis storage.CrisisDie) die {
	return die{kind: "crisis_die", table: undo.TableCrisisDice, id: crisis.ID, size: crisis.DieSize, row: crisis.Row()}
}

// BankHeroDie stores a hero die for a player.
func (e *Engine) BankHeroDie(ctx context.Context, actor Actor, playerID string, size int) (Result, error) {
	var result Result
	err := e.run(ctx, "BankHeroDie", actor, func(s *session) error {
		if err := s.requireFeature("hero_dice", s.campaign.Features.HeroDice); err != nil {
			return err
		}
		if err := dice.Validate(size); err != nil {
			return err
		}
		player, err := s.player(playerID)
		if err != nil {
			return err
		}
		heroID, err := s.newID()
		if err != nil {
			return err
		}
		result, err = s.insert(heroDie(storage.HeroDie{ID: heroID, CampaignID: s.campaign.ID, PlayerID: player.ID, DieSize: size, CreatedAt: s.now()}))
		return err
	})
	return result, err
}

// SpendHeroDie consumes a banked hero die.
func (e *Engine) SpendHeroDie(ctx context.Context, actor Actor, heroDieID string) (Result, error) {
	var result Result
	err := e.run(ctx, "SpendHeroDie", actor, func(s *session) error {
		if err := s.requireFeature("hero_dice", s.campaign.Features.HeroDice); err != nil {
			return err
		}
		hero, err := s.repo.GetHeroDie(s.ctx, heroDieID)
		if err != nil {
			return lookupError(err, "Hero die", heroDieID)
		}
		if err := s.owns("Hero die", hero.CampaignID); err != nil {
			return err
		}
		result, err = s.remove(heroDie(hero), OutcomeRemoved)
		return err
	})
	return result, err
}

// doom runs fn as a GM-only doom pool command.
func (e *Engine) doom(ctx context.Context, op string, actor Actor, fn func(*session) error) error {
	return e.run(ctx, op, actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		if err := s.requireFeature("doom_pool", s.campaign.Features.DoomPool); err != nil {
			return err
		}
		return fn(s)
	})
}

func (s *session) loadDoomDie(doomDieID string) (storage.DoomDie, error) {
	doom, err := s.repo.GetDoomDie(s.ctx, doomDieID)
	if err != nil {
		return storage.DoomDie{}, lookupError(err, "Doom die", doomDieID)
	}
	return doom, s.owns("Doom die", doom.CampaignID)
}

// AddDoomDie adds a die to the doom pool.
func (e *Engine) AddDoomDie(ctx context.Context, actor Actor, size int) (Result, error) {
	var result Result
	err := e.doom(ctx, "AddDoomDie", actor, func(s *session) error {
		if err := dice.Validate(size); err != nil {
			return err
		}
		doomID, err := s.newID()
		if err != nil {
			return err
		}
		result, err = s.insert(doomDie(storage.DoomDie{ID: doomID, CampaignID: s.campaign.ID, DieSize: size, CreatedAt: s.now()}))
		return err
	})
	return result, err
}

// StepUpDoomDie grows a doom die; a d12 reports already_max.
func (e *Engine) StepUpDoomDie(ctx context.Context, actor Actor, doomDieID string) (Result, error) {
	var result Result
	err := e.doom(ctx, "StepUpDoomDie", actor, func(s *session) error {
		doom, err := s.loadDoomDie(doomDieID)
		if err != nil {
			return err
		}
		result, err = s.stepUp(doomDie(doom), OutcomeAlreadyMax)
		return err
	})
	return result, err
}

// StepDownDoomDie shrinks a doom die; a d4 is eliminated.
func (e *Engine) StepDownDoomDie(ctx context.Context, actor Actor, doomDieID string) (Result, error) {
	var result Result
	err := e.doom(ctx, "StepDownDoomDie", actor, func(s *session) error {
		doom, err := s.loadDoomDie(doomDieID)
		if err != nil {
			return err
		}
		result, err = s.stepDown(doomDie(doom))
		return err
	})
	return result, err
}

// SpendDoomDie removes a die from the doom pool.
func (e *Engine) SpendDoomDie(ctx context.Context, actor Actor, doomDieID string) (Result, error) {
	var result Result
	err := e.doom(ctx, "SpendDoomDie", actor, func(s *session) error {
		doom, err := s.loadDoomDie(doomDieID)
		if err != nil {
			return err
		}
		result, err = s.remove(doomDie(doom), OutcomeRemoved)
		return err
	})
	return result, err
}

// RollDoomPool rolls every doom die. Rolling never mutates the pool.
func (e *Engine) RollDoomPool(ctx context.Context, actor Actor, difficulty *int) (roll.Outcome, error) {
	var outcome roll.Outcome
	err := e.doom(ctx, "RollDoomPool", actor, func(s *session) error {
		pool, err := s.repo.ListDoomDice(s.ctx, s.campaign.ID)
		if err != nil {
			return err
		}
		sizes := make([]int, len(pool))
		for i, doom := range pool {
			sizes[i] = doom.DieSize
		}
		outcome, err = s.roll(sizes, difficulty)
		return err
	})
	return outcome, err
}

// CrisisPoolInput names a crisis pool and its starting dice.
type CrisisPoolInput struct {
	Name  string `json:"name"`
	Sizes []int  `json:"sizes"`
}

// CrisisPoolResult reports a created crisis pool.
type CrisisPoolResult struct {
	Outcome Outcome             `json:"outcome"`
	Pool    storage.CrisisPool  `json:"pool"`
	Dice    []storage.CrisisDie `json:"dice"`
	Seq     int64               `json:"seq"`
}

// CreateCrisisPool opens a crisis pool in the active scene. GM only. Undoing
// it deletes the pool and, by cascade, its dice.
func (e *Engine) CreateCrisisPool(ctx context.Context, actor Actor, in CrisisPoolInput) (CrisisPoolResult, error) {
	var result CrisisPoolResult
	err := e.run(ctx, "CreateCrisisPool", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		name, err := requireName(in.Name)
		if err != nil {
			return err
		}
		for _, size := range in.Sizes {
			if err := dice.Validate(size); err != nil {
				return err
			}
		}
		scene, active, err := s.activeScene()
		if err != nil {
			return err
		}
		if !active {
			return apperrors.New(apperrors.CodeNoActiveScene, "no active scene")
		}
		poolID, err := s.newID()
		if err != nil {
			return err
		}
		pool := storage.CrisisPool{ID: poolID, CampaignID: s.campaign.ID, SceneID: scene.ID, Name: name, CreatedAt: s.now()}
		forward := []undo.Instruction{undo.Insert{Table: undo.TableCrisisPools, Row: pool.Row()}}
		labels := make([]string, 0, len(in.Sizes))
		created := make([]storage.CrisisDie, 0, len(in.Sizes))
		for _, size := range in.Sizes {
			dieID, err := s.newID()
			if err != nil {
				return err
			}
			crisis := storage.CrisisDie{ID: dieID, CampaignID: s.campaign.ID, CrisisPoolID: pool.ID, DieSize: size, CreatedAt: s.now()}
			forward = append(forward, undo.Insert{Table: undo.TableCrisisDice, Row: crisis.Row()})
			labels = append(labels, dice.Label(size))
			created = append(created, crisis)
		}
		seq, err := s.write(
			"crisis_pool_create",
			fmt.Sprintf("created crisis pool %q [%s]", name, strings.Join(labels, " ")),
			undo.Delete{Table: undo.TableCrisisPools, ID: pool.ID},
			forward...,
		)
		if err != nil {
			return err
		}
		result = CrisisPoolResult{Outcome: OutcomeAdded, Pool: pool, Dice: created, Seq: seq}
		return nil
	})
	return result, err
}

func (s *session) crisisPool(poolID string) (storage.CrisisPool, error) {
	pool, err := s.repo.GetCrisisPool(s.ctx, poolID)
	if err != nil {
		return storage.CrisisPool{}, lookupError(err, "Crisis pool", poolID)
	}
	return pool, s.owns("Crisis pool", pool.CampaignID)
}

// AddCrisisDie adds a die to a crisis pool. GM only.
func (e *Engine) AddCrisisDie(ctx context.Context, actor Actor, poolID string, size int) (Result, error) {
	var result Result
	err := e.run(ctx, "AddCrisisDie", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		if err := dice.Validate(size); err != nil {
			return err
		}
		pool, err := s.crisisPool(poolID)
		if err != nil {
			return err
		}
		dieID, err := s.newID()
		if err != nil {
			return err
		}
		crisis := crisisDie(storage.CrisisDie{ID: dieID, CampaignID: s.campaign.ID, CrisisPoolID: pool.ID, DieSize: size, CreatedAt: s.now()})
		crisis.name = pool.Name
		result, err = s.insert(crisis)
		return err
	})
	return result, err
}

// SpendCrisisDie removes a die from its crisis pool. GM only.
func (e *Engine) SpendCrisisDie(ctx context.Context, actor Actor, crisisDieID string) (Result, error) {
	var result Result
	err := e.run(ctx, "SpendCrisisDie", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		crisis, err := s.repo.GetCrisisDie(s.ctx, crisisDieID)
		if err != nil {
			return lookupError(err, "Crisis die", crisisDieID)
		}
		if err := s.owns("Crisis die", crisis.CampaignID); err != nil {
			return err
		}
		pool, err := s.crisisPool(crisis.CrisisPoolID)
		if err != nil {
			return err
		}
		spent := crisisDie(crisis)
		spent.name = pool.Name
		result, err = s.remove(spent, OutcomeRemoved)
		return err
	})
	return result, err
}
