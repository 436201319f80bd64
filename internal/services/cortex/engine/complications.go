package engine

import (
	"context"

	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

func complicationDie(complication storage.Complication) die {
	return die{
		kind:  "complication",
		table: undo.TableComplications,
		id:    complication.ID,
		name:  complication.Name,
		size:  complication.DieSize,
		row:   complication.Row(),
	}
}

func (s *session) complication(complicationID string) (storage.Complication, error) {
	complication, err := s.repo.GetComplication(s.ctx, complicationID)
	if err != nil {
		return storage.Complication{}, lookupError(err, "Complication", complicationID)
	}
	return complication, s.owns("Complication", complication.CampaignID)
}

// AddComplication creates a complication die. Duration is its scope.
func (e *Engine) AddComplication(ctx context.Context, actor Actor, in TraitInput) (Result, error) {
	var result Result
	err := e.run(ctx, "AddComplication", actor, func(s *session) error {
		name, scope, sceneID, err := s.traitPlacement(in)
		if err != nil {
			return err
		}
		complicationID, err := s.newID()
		if err != nil {
			return err
		}
		complication := storage.Complication{
			ID:         complicationID,
			CampaignID: s.campaign.ID,
			PlayerID:   in.PlayerID,
			SceneID:    sceneID,
			Name:       name,
			DieSize:    in.Size,
			Scope:      scope,
			CreatedAt:  s.now(),
		}
		result, err = s.insert(complicationDie(complication))
		return err
	})
	return result, err
}

// StepUpComplication grows a complication one size. A d12 complication
// reports taken_out and is left unchanged.
func (e *Engine) StepUpComplication(ctx context.Context, actor Actor, complicationID string) (Result, error) {
	var result Result
	err := e.run(ctx, "StepUpComplication", actor, func(s *session) error {
		complication, err := s.complication(complicationID)
		if err != nil {
			return err
		}
		result, err = s.stepUp(complicationDie(complication), OutcomeTakenOut)
		return err
	})
	return result, err
}

// StepDownComplication shrinks a complication one size; a d4 is eliminated.
func (e *Engine) StepDownComplication(ctx context.Context, actor Actor, complicationID string) (Result, error) {
	var result Result
	err := e.run(ctx, "StepDownComplication", actor, func(s *session) error {
		complication, err := s.complication(complicationID)
		if err != nil {
			return err
		}
		result, err = s.stepDown(complicationDie(complication))
		return err
	})
	return result, err
}

// RemoveComplication deletes a complication.
func (e *Engine) RemoveComplication(ctx context.Context, actor Actor, complicationID string) (Result, error) {
	var result Result
	err := e.run(ctx, "RemoveComplication", actor, func(s *session) error {
		complication, err := s.complication(complicationID)
		if err != nil {
			return err
		}
		result, err = s.remove(complicationDie(complication), OutcomeRemoved)
		return err
	})
	return result, err
}
