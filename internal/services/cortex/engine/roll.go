package engine

import (
	"context"

	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/roll"
)

// RollInput is a parsed pool with an optional target difficulty.
type RollInput struct {
	Sizes      []int `json:"sizes"`
	Difficulty *int  `json:"difficulty,omitempty"`
}

// Roll rolls a pool for the actor. Best total and best effect options are
// included only when the campaign enables best mode. Rolls are not logged.
func (e *Engine) Roll(ctx context.Context, actor Actor, in RollInput) (roll.Outcome, error) {
	var outcome roll.Outcome
	err := e.run(ctx, "Roll", actor, func(s *session) error {
		var err error
		outcome, err = s.roll(in.Sizes, in.Difficulty)
		return err
	})
	return outcome, err
}

func (s *session) roll(sizes []int, difficulty *int) (roll.Outcome, error) {
	seed, err := s.engine.newSeed()
	if err != nil {
		return roll.Outcome{}, err
	}
	return roll.Roll(roll.Request{
		Sizes:      sizes,
		Seed:       seed,
		BestMode:   s.campaign.Features.BestMode,
		Difficulty: difficulty,
	})
}
