package engine

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// Undo reverses the newest action that has not been undone. A GM or
// delegate undoes the newest action in the campaign; a player only their own.
//
// When the target row already changed shape (deleted by a scene end, or
// re-created), its parent is gone, or it belonged to a scene that has since
// ended, the entry is still marked undone and the result is Stale.
// A logged instruction that fails the allow-lists aborts with no write.
func (e *Engine) Undo(ctx context.Context, actor Actor) (Result, error) {
	var result Result
	err := e.run(ctx, "Undo", actor, func(s *session) error {
		actorFilter := s.actor.ID
		if s.actor.CanGM() {
			actorFilter = ""
		}
		entry, err := s.repo.LastUndoable(s.ctx, s.campaign.ID, actorFilter)
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.Wrap(apperrors.CodeNothingToUndo, "nothing to undo", err)
		}
		if err != nil {
			return err
		}
		result, err = s.undo(entry)
		return err
	})
	return result, err
}

func (s *session) undo(entry storage.ActionLogEntry) (Result, error) {
	result := Result{
		Outcome:     OutcomeUndone,
		Entity:      entry.Inverse.Target(),
		ID:          instructionID(entry.Inverse),
		Seq:         entry.Seq,
		ActionType:  entry.ActionType,
		Description: entry.Description,
	}
	ended, err := s.restoresEndedScene(entry.Inverse)
	if err != nil {
		return Result{}, err
	}
	if ended {
		result.Stale = true
	} else {
		err := s.repo.Apply(s.ctx, entry.Inverse)
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrAlreadyExists), errors.Is(err, storage.ErrParentMissing):
			result.Stale = true
		case err != nil:
			return Result{}, fmt.Errorf("undo action %d: %w", entry.Seq, err)
		}
	}
	if err := s.repo.MarkUndone(s.ctx, entry.Seq); err != nil {
		return Result{}, fmt.Errorf("mark action %d undone: %w", entry.Seq, err)
	}
	return result, nil
}

// restoresEndedScene reports whether ins would re-create a scene-scoped row
// for a scene that is no longer active.
func (s *session) restoresEndedScene(ins undo.Instruction) (bool, error) {
	insert, ok := ins.(undo.Insert)
	if !ok {
		return false, nil
	}
	switch insert.Table {
	case undo.TableAssets:
		if insert.Row["duration"] != string(storage.DurationScene) {
			return false, nil
		}
	case undo.TableComplications:
		if insert.Row["scope"] != string(storage.DurationScene) {
			return false, nil
		}
	case undo.TableCrisisPools:
	default:
		return false, nil
	}
	sceneID, _ := insert.Row["scene_id"].(string)
	if sceneID == "" {
		return false, nil
	}
	scene, active, err := s.activeScene()
	if err != nil {
		return false, err
	}
	return !active || scene.ID != sceneID, nil
}

func instructionID(ins undo.Instruction) string {
	switch v := ins.(type) {
	case undo.Delete:
		return v.ID
	case undo.Update:
		return v.ID
	case undo.Insert:
		return v.ID()
	default:
		return ""
	}
}

// History returns up to limit log entries for a campaign, newest first.
func (e *Engine) History(ctx context.Context, campaignID string, limit int) ([]storage.ActionLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := e.store.ListActions(ctx, campaignID, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
