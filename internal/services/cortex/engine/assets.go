package engine

import (
	"context"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// TraitInput describes a new asset or complication. An empty PlayerID makes
// the trait belong to the active scene. Duration is the asset duration or the
// complication scope and defaults to scene.
type TraitInput struct {
	PlayerID string           `json:"player_id,omitempty"`
	Name     string           `json:"name"`
	Size     int              `json:"size"`
	Duration storage.Duration `json:"duration,omitempty"`
}

// traitPlacement resolves owner and scene binding for a new trait. Scene
// duration and scene-owned traits need an active scene.
func (s *session) traitPlacement(in TraitInput) (name string, duration storage.Duration, sceneID string, err error) {
	if name, err = requireName(in.Name); err != nil {
		return "", "", "", err
	}
	if err = dice.Validate(in.Size); err != nil {
		return "", "", "", err
	}
	if duration, err = parseDuration(in.Duration); err != nil {
		return "", "", "", err
	}
	if in.PlayerID != "" {
		if _, err = s.player(in.PlayerID); err != nil {
			return "", "", "", err
		}
	}
	scene, active, err := s.activeScene()
	if err != nil {
		return "", "", "", err
	}
	if !active && (duration == storage.DurationScene || in.PlayerID == "") {
		return "", "", "", apperrors.New(apperrors.CodeNoActiveScene, "no active scene")
	}
	if active {
		sceneID = scene.ID
	}
	return name, duration, sceneID, nil
}

func assetDie(asset storage.Asset) die {
	return die{kind: "asset", table: undo.TableAssets, id: asset.ID, name: asset.Name, size: asset.DieSize, row: asset.Row()}
}

func (s *session) asset(assetID string) (storage.Asset, error) {
	asset, err := s.repo.GetAsset(s.ctx, assetID)
	if err != nil {
		return storage.Asset{}, lookupError(err, "Asset", assetID)
	}
	return asset, s.owns("Asset", asset.CampaignID)
}

// AddAsset creates an asset die.
func (e *Engine) AddAsset(ctx context.Context, actor Actor, in TraitInput) (Result, error) {
	var result Result
	err := e.run(ctx, "AddAsset", actor, func(s *session) error {
		name, duration, sceneID, err := s.traitPlacement(in)
		if err != nil {
			return err
		}
		assetID, err := s.newID()
		if err != nil {
			return err
		}
		asset := storage.Asset{
			ID:         assetID,
			CampaignID: s.campaign.ID,
			PlayerID:   in.PlayerID,
			SceneID:    sceneID,
			Name:       name,
			DieSize:    in.Size,
			Duration:   duration,
			CreatedAt:  s.now(),
		}
		result, err = s.insert(assetDie(asset))
		return err
	})
	return result, err
}

// StepUpAsset grows an asset one size; a d12 reports already_max.
func (e *Engine) StepUpAsset(ctx context.Context, actor Actor, assetID string) (Result, error) {
	var result Result
	err := e.run(ctx, "StepUpAsset", actor, func(s *session) error {
		asset, err := s.asset(assetID)
		if err != nil {
			return err
		}
		result, err = s.stepUp(assetDie(asset), OutcomeAlreadyMax)
		return err
	})
	return result, err
}

// StepDownAsset shrinks an asset one size; a d4 is eliminated.
func (e *Engine) StepDownAsset(ctx context.Context, actor Actor, assetID string) (Result, error) {
	var result Result
	err := e.run(ctx, "StepDownAsset", actor, func(s *session) error {
		asset, err := s.asset(assetID)
		if err != nil {
			return err
		}
		result, err = s.stepDown(assetDie(asset))
		return err
	})
	return result, err
}

// RemoveAsset deletes an asset.
func (e *Engine) RemoveAsset(ctx context.Context, actor Actor, assetID string) (Result, error) {
	var result Result
	err := e.run(ctx, "RemoveAsset", actor, func(s *session) error {
		asset, err := s.asset(assetID)
		if err != nil {
			return err
		}
		result, err = s.remove(assetDie(asset), OutcomeRemoved)
		return err
	})
	return result, err
}
