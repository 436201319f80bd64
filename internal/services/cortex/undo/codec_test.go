package undo

import (
	"errors"
	"testing"
)

func TestMarshalUnmarshalInsertNormalizesIntegers(t *testing.T) {
	data, err := Marshal(Insert{Table: TableAssets, Row: Row{
		"id":          "a1",
		"campaign_id": "c1",
		"player_id":   nil,
		"scene_id":    "s1",
		"name":        "Rope",
		"die_size":    8,
		"duration":    "scene",
		"created_at":  int64(1700000000000),
	}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	insert, ok := decoded.(Insert)
	if !ok {
		t.Fatalf("decoded %T, want Insert", decoded)
	}
	if insert.Row["die_size"] != int64(8) {
		t.Fatalf("die_size = %#v, want int64(8)", insert.Row["die_size"])
	}
	if insert.Row["created_at"] != int64(1700000000000) {
		t.Fatalf("created_at = %#v", insert.Row["created_at"])
	}
	if insert.Row["player_id"] != nil {
		t.Fatalf("player_id = %#v, want nil", insert.Row["player_id"])
	}

	columns, args := Args(insert)
	if len(columns) != len(args) || columns[0] != "id" || args[0] != "a1" {
		t.Fatalf("unexpected args: %v %v", columns, args)
	}
}

func TestMarshalUnmarshalUpdateAndDelete(t *testing.T) {
	for _, ins := range []Instruction{
		Update{Table: TablePlayers, ID: "p1", Field: FieldPlotPoints, Value: 0},
		Delete{Table: TableDoomDice, ID: "d1"},
	} {
		data, err := Marshal(ins)
		if err != nil {
			t.Fatalf("marshal %+v: %v", ins, err)
		}
		decoded, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if decoded != ins {
			t.Fatalf("decoded %+v, want %+v", decoded, ins)
		}
	}
}

func TestUnmarshalRejectsTamperedPayloads(t *testing.T) {
	payloads := []string{
		`not json`,
		`{"op":"drop","table":"assets","id":"a1"}`,
		`{"op":"delete","table":"campaigns","id":"c1"}`,
		`{"op":"update","table":"players","id":"p1","field":"is_gm","value":1}`,
		`{"op":"update","table":"players","id":"p1","field":"xp"}`,
		`{"op":"insert","table":"assets","row":{"id":"a1","secret":"x"}}`,
		`{"op":"insert","table":"assets","row":{"id":"a1","die_size":8.5}}`,
	}
	for _, payload := range payloads {
		if _, err := Unmarshal([]byte(payload)); !errors.Is(err, ErrDisallowed) {
			t.Fatalf("Unmarshal(%s) error = %v, want %v", payload, err, ErrDisallowed)
		}
	}
}

func TestMarshalRejectsDisallowed(t *testing.T) {
	if _, err := Marshal(Delete{Table: "campaigns", ID: "c1"}); !errors.Is(err, ErrDisallowed) {
		t.Fatalf("marshal error = %v, want %v", err, ErrDisallowed)
	}
}
