package engine

import (
	"context"
	"fmt"

	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// AdjustPlotPoints adds delta to a player's plot points. Spending more than
// the player holds reports insufficient and writes nothing.
func (e *Engine) AdjustPlotPoints(ctx context.Context, actor Actor, playerID string, delta int) (Result, error) {
	return e.adjustPoints(ctx, "AdjustPlotPoints", actor, playerID, undo.FieldPlotPoints, delta)
}

// AdjustXP adds delta to a player's experience points.
func (e *Engine) AdjustXP(ctx context.Context, actor Actor, playerID string, delta int) (Result, error) {
	return e.adjustPoints(ctx, "AdjustXP", actor, playerID, undo.FieldXP, delta)
}

func (e *Engine) adjustPoints(ctx context.Context, op string, actor Actor, playerID string, field undo.Field, delta int) (Result, error) {
	var result Result
	err := e.run(ctx, op, actor, func(s *session) error {
		player, err := s.player(playerID)
		if err != nil {
			return err
		}
		current := player.PlotPoints
		if field == undo.FieldXP {
			current = player.XP
		}
		result = UpdatePoints(current, delta)
		result.Entity = undo.TablePlayers
		result.ID = player.ID
		result.Name = player.DisplayName
		if result.Outcome != OutcomeUpdated || delta == 0 {
			return nil
		}

		actionType := string(field) + "_adjust"
		seq, err := s.write(
			actionType,
			fmt.Sprintf("%s %s from %d to %d", field, player.DisplayName, result.From, result.To),
			undo.Update{Table: undo.TablePlayers, ID: player.ID, Field: field, Value: result.From},
			undo.Update{Table: undo.TablePlayers, ID: player.ID, Field: field, Value: result.To},
		)
		if err != nil {
			return err
		}
		result.Seq = seq
		result.ActionType = actionType
		return nil
	})
	return result, err
}
