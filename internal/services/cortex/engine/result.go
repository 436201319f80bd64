package engine

import "github.com/louisbranch/cortex.space/internal/services/cortex/undo"

// Outcome is a machine-readable tag describing what an operation did.
type Outcome string

const (
	OutcomeAdded            Outcome = "added"
	OutcomeReplaced         Outcome = "replaced"
	OutcomeSteppedUp        Outcome = "stepped_up"
	OutcomeSteppedDown      Outcome = "stepped_down"
	OutcomeStressedOut      Outcome = "stressed_out"
	OutcomeEliminated       Outcome = "eliminated"
	OutcomeTakenOut         Outcome = "taken_out"
	OutcomeAlreadyMax       Outcome = "already_max"
	OutcomeInsufficient     Outcome = "insufficient"
	OutcomePermanentRemoval Outcome = "permanent_removal"
	OutcomeRemoved          Outcome = "removed"
	OutcomeUpdated          Outcome = "updated"
	OutcomeUndone           Outcome = "undone"
)

// Mutates reports whether the outcome implies a storage write.
func (o Outcome) Mutates() bool {
	switch o {
	case OutcomeStressedOut, OutcomeTakenOut, OutcomeAlreadyMax, OutcomeInsufficient, OutcomePermanentRemoval:
		return false
	default:
		return true
	}
}

// Result summarizes one operation. From and To are die sizes for trait
// operations and point totals for point operations. Trauma carries the side
// effect of a stress-out when the campaign tracks trauma.
type Result struct {
	Outcome     Outcome    `json:"outcome"`
	Entity      undo.Table `json:"entity,omitempty"`
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	From        int        `json:"from"`
	To          int        `json:"to"`
	Current     int        `json:"current,omitempty"`
	Requested   int        `json:"requested,omitempty"`
	Seq         int64      `json:"seq,omitempty"`
	ActionType  string     `json:"action_type,omitempty"`
	Description string     `json:"description,omitempty"`
	Stale       bool       `json:"stale,omitempty"`
	Trauma      *Result    `json:"trauma,omitempty"`
}

// UpdatePoints applies delta to a non-negative counter. A result below zero
// is reported as insufficient with the current value and the magnitude asked for.
func UpdatePoints(current, delta int) Result {
	next := current + delta
	if next < 0 {
		return Result{Outcome: OutcomeInsufficient, From: current, To: current, Current: current, Requested: -delta}
	}
	return Result{Outcome: OutcomeUpdated, From: current, To: next}
}
