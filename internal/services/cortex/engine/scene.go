package engine

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// SceneEnd reports the cleanup performed when a scene ends.
type SceneEnd struct {
	Scene storage.Scene      `json:"scene"`
	Swept storage.SceneSweep `json:"swept"`
	// Bridge counts are only set when stress was stepped down between scenes.
	BridgeSteppedDown int `json:"bridge_stepped_down"`
	BridgeEliminated  int `json:"bridge_eliminated"`
}

// StartScene opens a new scene. GM only; fails while another scene is active.
func (e *Engine) StartScene(ctx context.Context, actor Actor, name string) (storage.Scene, error) {
	var scene storage.Scene
	err := e.run(ctx, "StartScene", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		if _, active, err := s.activeScene(); err != nil {
			return err
		} else if active {
			return apperrors.New(apperrors.CodeActiveSceneExists, "a scene is already active")
		}
		sceneID, err := s.newID()
		if err != nil {
			return err
		}
		scene = storage.Scene{ID: sceneID, CampaignID: s.campaign.ID, Name: strings.TrimSpace(name), Active: true, CreatedAt: s.now()}
		if err := s.repo.CreateScene(s.ctx, scene); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return apperrors.Wrap(apperrors.CodeActiveSceneExists, "a scene is already active", err)
			}
			return err
		}
		return nil
	})
	return scene, err
}

// EndScene closes the active scene, deleting its scene-scoped traits and
// crisis pools. With bridge set, every non-GM player's stress steps down one
// size and d4 stress is cleared. Scene end is a bulk operation and is not
// recorded in the undo log.
func (e *Engine) EndScene(ctx context.Context, actor Actor, bridge bool) (SceneEnd, error) {
	var out SceneEnd
	err := e.run(ctx, "EndScene", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		scene, active, err := s.activeScene()
		if err != nil {
			return err
		}
		if !active {
			return apperrors.New(apperrors.CodeNoActiveScene, "no active scene")
		}
		swept, err := s.repo.SweepScene(s.ctx, scene.ID)
		if err != nil {
			return err
		}
		if err := s.repo.DeactivateScene(s.ctx, scene.ID); err != nil {
			return err
		}
		scene.Active = false
		out = SceneEnd{Scene: scene, Swept: swept}

		if !bridge {
			return nil
		}
		players, err := s.repo.ListPlayers(s.ctx, s.campaign.ID)
		if err != nil {
			return err
		}
		gms := make(map[string]bool, len(players))
		for _, player := range players {
			gms[player.ID] = player.IsGM
		}
		stress, err := s.repo.ListStress(s.ctx, s.campaign.ID)
		if err != nil {
			return err
		}
		for _, track := range stress {
			if gms[track.PlayerID] {
				continue
			}
			if down, ok := dice.StepDown(track.DieSize); ok {
				if err := s.repo.Apply(s.ctx, undo.Update{Table: undo.TableStress, ID: track.ID, Field: undo.FieldDieSize, Value: down}); err != nil {
					return err
				}
				out.BridgeSteppedDown++
				continue
			}
			if err := s.repo.Apply(s.ctx, undo.Delete{Table: undo.TableStress, ID: track.ID}); err != nil {
				return err
			}
			out.BridgeEliminated++
		}
		return nil
	})
	return out, err
}
