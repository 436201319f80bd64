package engine

import (
	"fmt"

	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// die is the common shape of every die-bearing row the engine steps.
type die struct {
	kind  string
	table undo.Table
	id    string
	name  string
	size  int
	row   undo.Row
}

func (d die) label() string {
	if d.name == "" {
		return d.kind
	}
	return fmt.Sprintf("%s %q", d.kind, d.name)
}

func (d die) result(outcome Outcome, from, to int) Result {
	return Result{Outcome: outcome, Entity: d.table, ID: d.id, Name: d.name, From: from, To: to}
}

// insert writes a new die row; its inverse deletes it.
func (s *session) insert(d die) (Result, error) {
	seq, err := s.write(
		d.kind+"_add",
		fmt.Sprintf("added %s %s", dice.Label(d.size), d.label()),
		undo.Delete{Table: d.table, ID: d.id},
		undo.Insert{Table: d.table, Row: d.row},
	)
	if err != nil {
		return Result{}, err
	}
	result := d.result(OutcomeAdded, 0, d.size)
	result.Seq = seq
	result.ActionType = d.kind + "_add"
	return result, nil
}

// resize sets a new size; its inverse restores the old one.
func (s *session) resize(d die, to int, outcome Outcome, actionType string) (Result, error) {
	seq, err := s.write(
		actionType,
		fmt.Sprintf("%s %s from %s to %s", outcome, d.label(), dice.Label(d.size), dice.Label(to)),
		undo.Update{Table: d.table, ID: d.id, Field: undo.FieldDieSize, Value: d.size},
		undo.Update{Table: d.table, ID: d.id, Field: undo.FieldDieSize, Value: to},
	)
	if err != nil {
		return Result{}, err
	}
	result := d.result(outcome, d.size, to)
	result.Seq = seq
	result.ActionType = actionType
	return result, nil
}

// remove deletes the row; its inverse re-inserts the full snapshot.
func (s *session) remove(d die, outcome Outcome) (Result, error) {
	actionType := d.kind + "_remove"
	if outcome == OutcomeEliminated {
		actionType = d.kind + "_eliminate"
	}
	seq, err := s.write(
		actionType,
		fmt.Sprintf("%s %s %s", outcome, dice.Label(d.size), d.label()),
		undo.Insert{Table: d.table, Row: d.row},
		undo.Delete{Table: d.table, ID: d.id},
	)
	if err != nil {
		return Result{}, err
	}
	result := d.result(outcome, d.size, 0)
	result.Seq = seq
	result.ActionType = actionType
	return result, nil
}

// stepUp grows the die one size. At d12 nothing is written and atMax is
// reported instead.
func (s *session) stepUp(d die, atMax Outcome) (Result, error) {
	up, ok := dice.StepUp(d.size)
	if !ok {
		return d.result(atMax, d.size, d.size), nil
	}
	return s.resize(d, up, OutcomeSteppedUp, d.kind+"_step_up")
}

// stepDown shrinks the die one size. A d4 is eliminated and deleted.
func (s *session) stepDown(d die) (Result, error) {
	down, ok := dice.StepDown(d.size)
	if !ok {
		return s.remove(d, OutcomeEliminated)
	}
	return s.resize(d, down, OutcomeSteppedDown, d.kind+"_step_down")
}
