package undo

import (
	"errors"
	"testing"
)

func TestValidateAcceptsAllowedInstructions(t *testing.T) {
	tcs := []Instruction{
		Delete{Table: TableAssets, ID: "a1"},
		Insert{Table: TableStress, Row: Row{"id": "s1", "campaign_id": "c1", "player_id": "p1", "stress_type_id": "t1", "die_size": 8, "created_at": int64(1)}},
		Update{Table: TableComplications, ID: "x1", Field: FieldDieSize, Value: 10},
		Update{Table: TablePlayers, ID: "p1", Field: FieldPlotPoints, Value: 0},
		Update{Table: TablePlayers, ID: "p1", Field: FieldXP, Value: 12},
		Insert{Table: TableAssets, Row: Row{"id": "a1", "player_id": nil, "die_size": 6}},
	}
	for _, ins := range tcs {
		if err := Validate(ins); err != nil {
			t.Fatalf("Validate(%+v): %v", ins, err)
		}
	}
}

func TestValidateRejectsDisallowedInstructions(t *testing.T) {
	tcs := []struct {
		name string
		ins  Instruction
	}{
		{name: "nil", ins: nil},
		{name: "unknown table", ins: Delete{Table: "campaigns", ID: "c1"}},
		{name: "action log table", ins: Update{Table: "action_log", ID: "1", Field: "undone", Value: 0}},
		{name: "player delete", ins: Delete{Table: TablePlayers, ID: "p1"}},
		{name: "player insert", ins: Insert{Table: TablePlayers, Row: Row{"id": "p1"}}},
		{name: "field not allowed", ins: Update{Table: TablePlayers, ID: "p1", Field: "is_gm", Value: 1}},
		{name: "die field on players", ins: Update{Table: TablePlayers, ID: "p1", Field: FieldDieSize, Value: 8}},
		{name: "points field on assets", ins: Update{Table: TableAssets, ID: "a1", Field: FieldPlotPoints, Value: 3}},
		{name: "column not allowed", ins: Insert{Table: TableAssets, Row: Row{"id": "a1", "is_gm": 1}}},
		{name: "injected column", ins: Insert{Table: TableAssets, Row: Row{"id": "a1", "name) VALUES ('x'); --": "y"}}},
		{name: "value type", ins: Insert{Table: TableAssets, Row: Row{"id": "a1", "name": []string{"x"}}}},
		{name: "insert missing id", ins: Insert{Table: TableAssets, Row: Row{"name": "x"}}},
		{name: "delete missing id", ins: Delete{Table: TableAssets}},
		{name: "crisis pool update", ins: Update{Table: TableCrisisPools, ID: "cp", Field: FieldDieSize, Value: 6}},
		{name: "off ladder update", ins: Update{Table: TableAssets, ID: "a1", Field: FieldDieSize, Value: 20}},
		{name: "off ladder insert", ins: Insert{Table: TableAssets, Row: Row{"id": "a1", "die_size": 2}}},
		{name: "negative points", ins: Update{Table: TablePlayers, ID: "p1", Field: FieldXP, Value: -1}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.ins); !errors.Is(err, ErrDisallowed) {
				t.Fatalf("Validate error = %v, want %v", err, ErrDisallowed)
			}
		})
	}
}

func TestColumnsIsACopy(t *testing.T) {
	columns := Columns(TableAssets)
	columns[0] = "mutated"
	if Columns(TableAssets)[0] != "id" {
		t.Fatal("expected Columns to return a copy")
	}
	if Columns(TablePlayers) != nil {
		t.Fatal("expected players to have no insert columns")
	}
	if Columns("unknown") != nil {
		t.Fatal("expected unknown table to have no columns")
	}
}
