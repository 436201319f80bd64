// Package roll rolls Cortex Prime dice pools and ranks the ways a pool can be
// read: the highest total, and the biggest effect die.
package roll

import (
	"math/rand"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
)

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = apperrors.New(apperrors.CodeDiceMissing, "at least one die must be provided")

// sentinelEffectSize is reported as the effect die when a pool has no die
// left over after picking the two for the total.
const sentinelEffectSize = 4

// Result is one rolled die.
type Result struct {
	Size  int `json:"size"`
	Value int `json:"value"`
}

// Effect is the die that sets the size of a roll's consequence. Sentinel is
// true when no die was left over and the d4 is assumed rather than rolled.
type Effect struct {
	Size     int  `json:"size"`
	Value    int  `json:"value"`
	Sentinel bool `json:"sentinel"`
}

// Option is one way to read a pool: two dice for the total plus an effect die.
type Option struct {
	Dice   [2]Result `json:"dice"`
	Total  int       `json:"total"`
	Effect Effect    `json:"effect"`
}

// Difficulty reports how a total fared against a target.
type Difficulty struct {
	Success     bool `json:"success"`
	Margin      int  `json:"margin"`
	Heroic      bool `json:"heroic"`
	HeroicSteps int  `json:"heroic_steps"`
}

// Request describes a pool roll.
type Request struct {
	Sizes      []int
	Seed       int64
	BestMode   bool
	Difficulty *int
}

// Outcome is the full result of a pool roll.
type Outcome struct {
	Seed       int64        `json:"seed"`
	Results    []Result     `json:"results"`
	Hitches    []Result     `json:"hitches"`
	Botch      bool         `json:"botch"`
	Options    []Option     `json:"options,omitempty"`
	Difficulty *int         `json:"difficulty,omitempty"`
	Against    []Difficulty `json:"against,omitempty"`
}

// Roll rolls the requested pool and evaluates it.
//
// Roll is deterministic with respect to Seed: the same seed and sizes always
// produce the same results. Options are only computed when BestMode is set;
// Against holds one difficulty evaluation per option, in option order.
func Roll(request Request) (Outcome, error) {
	if len(request.Sizes) == 0 {
		return Outcome{}, ErrMissingDice
	}
	if len(request.Sizes) > dice.MaxPool {
		return Outcome{}, dice.ErrPoolTooLarge
	}
	for _, size := range request.Sizes {
		if err := dice.Validate(size); err != nil {
			return Outcome{}, err
		}
	}

	rng := rand.New(rand.NewSource(request.Seed))
	results := RollPool(rng, request.Sizes)
	outcome := Outcome{
		Seed:       request.Seed,
		Results:    results,
		Hitches:    FindHitches(results),
		Botch:      IsBotch(results),
		Difficulty: request.Difficulty,
	}
	if request.BestMode {
		outcome.Options = CalculateBestOptions(results)
		if request.Difficulty != nil {
			for _, option := range outcome.Options {
				outcome.Against = append(outcome.Against, EvaluateDifficulty(option.Total, *request.Difficulty))
			}
		}
	}
	return outcome, nil
}

// RollPool rolls one die per size, in input order.
func RollPool(rng *rand.Rand, sizes []int) []Result {
	results := make([]Result, len(sizes))
	for i, size := range sizes {
		results[i] = Result{Size: size, Value: rng.Intn(size) + 1}
	}
	return results
}

// FindHitches returns every die that rolled a 1.
func FindHitches(results []Result) []Result {
	var hitches []Result
	for _, r := range results {
		if r.Value == 1 {
			hitches = append(hitches, r)
		}
	}
	return hitches
}

// IsBotch reports whether every die rolled a 1. An empty pool is not a botch.
func IsBotch(results []Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.Value != 1 {
			return false
		}
	}
	return true
}

// CalculateBestOptions returns the best-total option followed by the
// best-effect option when the two differ. Hitches never count toward a total
// or an effect die. Pools with fewer than two non-hitch dice have no options.
func CalculateBestOptions(results []Result) []Option {
	usable := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Value != 1 {
			usable = append(usable, r)
		}
	}
	if len(usable) < 2 {
		return []Option{}
	}

	var bestTotal, bestEffect Option
	seen := false
	for i := 0; i < len(usable)-1; i++ {
		for j := i + 1; j < len(usable); j++ {
			candidate := Option{
				Dice:   [2]Result{usable[i], usable[j]},
				Total:  usable[i].Value + usable[j].Value,
				Effect: effectExcluding(usable, i, j),
			}
			if !seen {
				bestTotal, bestEffect = candidate, candidate
				seen = true
				continue
			}
			if candidate.Total > bestTotal.Total {
				bestTotal = candidate
			}
			if candidate.Effect.Size > bestEffect.Effect.Size ||
				(candidate.Effect.Size == bestEffect.Effect.Size && candidate.Total > bestEffect.Total) {
				bestEffect = candidate
			}
		}
	}

	options := []Option{bestTotal}
	if bestEffect != bestTotal {
		options = append(options, bestEffect)
	}
	return options
}

// EvaluateDifficulty compares a total with a difficulty. A tie fails; a
// margin of five or more is heroic, with one extra step per five points.
func EvaluateDifficulty(total, difficulty int) Difficulty {
	margin := total - difficulty
	heroic := margin >= 5
	return Difficulty{
		Success:     margin > 0,
		Margin:      margin,
		Heroic:      heroic,
		HeroicSteps: floorDiv(margin, 5),
	}
}

// effectExcluding picks the largest die outside the pair (i, j), keeping the
// first one seen on size ties.
func effectExcluding(usable []Result, i, j int) Effect {
	effect := Effect{Size: sentinelEffectSize, Value: 0, Sentinel: true}
	found := false
	for k, r := range usable {
		if k == i || k == j {
			continue
		}
		if !found || r.Size > effect.Size {
			effect = Effect{Size: r.Size, Value: r.Value}
			found = true
		}
	}
	return effect
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
