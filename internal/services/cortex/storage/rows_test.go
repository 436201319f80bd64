package storage

import (
	"testing"
	"time"

	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

func TestRowsPassUndoValidation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 3, 20, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		table undo.Table
		row   undo.Row
	}{
		{"asset", undo.TableAssets, Asset{ID: "a1", CampaignID: "c1", PlayerID: "p1", Name: "Rope", DieSize: 6, Duration: DurationScene, CreatedAt: now}.Row()},
		{"scene asset", undo.TableAssets, Asset{ID: "a2", CampaignID: "c1", SceneID: "s1", Name: "Fog", DieSize: 8, Duration: DurationScene, CreatedAt: now}.Row()},
		{"stress", undo.TableStress, Track{ID: "t1", CampaignID: "c1", PlayerID: "p1", StressTypeID: "st1", DieSize: 10, CreatedAt: now}.Row()},
		{"trauma", undo.TableTrauma, Track{ID: "t2", CampaignID: "c1", PlayerID: "p1", StressTypeID: "st1", DieSize: 6, CreatedAt: now}.Row()},
		{"complication", undo.TableComplications, Complication{ID: "k1", CampaignID: "c1", Name: "Broken arm", DieSize: 8, Scope: DurationSession, CreatedAt: now}.Row()},
		{"hero die", undo.TableHeroDice, HeroDie{ID: "h1", CampaignID: "c1", PlayerID: "p1", DieSize: 12, CreatedAt: now}.Row()},
		{"doom die", undo.TableDoomDice, DoomDie{ID: "d1", CampaignID: "c1", DieSize: 4, CreatedAt: now}.Row()},
		{"crisis pool", undo.TableCrisisPools, CrisisPool{ID: "cp1", CampaignID: "c1", SceneID: "s1", Name: "Flood", CreatedAt: now}.Row()},
		{"crisis die", undo.TableCrisisDice, CrisisDie{ID: "cd1", CampaignID: "c1", CrisisPoolID: "cp1", DieSize: 10, CreatedAt: now}.Row()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := undo.Validate(undo.Insert{Table: tc.table, Row: tc.row}); err != nil {
				t.Fatalf("validate row: %v", err)
			}
			if got := len(tc.row); got != len(undo.Columns(tc.table)) {
				t.Fatalf("row has %d columns, want %d", got, len(undo.Columns(tc.table)))
			}
		})
	}
}

func TestAssetRowNullsEmptyOwner(t *testing.T) {
	t.Parallel()

	row := Asset{ID: "a1", CampaignID: "c1", SceneID: "s1", Name: "Fog", DieSize: 8, Duration: DurationScene}.Row()
	if row["player_id"] != nil {
		t.Fatalf("player_id = %v, want nil", row["player_id"])
	}
	if row["scene_id"] != "s1" {
		t.Fatalf("scene_id = %v, want s1", row["scene_id"])
	}
}

func TestMillisRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 3, 20, 15, 30, 250_000_000, time.UTC)
	if got := FromMillis(ToMillis(now)); !got.Equal(now) {
		t.Fatalf("round trip = %v, want %v", got, now)
	}
}

func TestPlayerCanGM(t *testing.T) {
	t.Parallel()

	if (Player{}).CanGM() {
		t.Fatal("plain player should not have gm permission")
	}
	if !(Player{IsDelegate: true}).CanGM() {
		t.Fatal("delegate should have gm permission")
	}
	if !(Player{IsGM: true}).CanGM() {
		t.Fatal("gm should have gm permission")
	}
}
