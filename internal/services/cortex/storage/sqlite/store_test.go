package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlitemigrate "github.com/louisbranch/cortex.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

var testTime = time.Date(2026, time.March, 3, 20, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "cortex.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

// seedCampaign creates campaign c1 with GM p-gm, player p1 and stress type st1.
func seedCampaign(t *testing.T, store *Store) {
	t.Helper()

	ctx := context.Background()
	if err := store.CreateCampaign(ctx, storage.Campaign{ID: "c1", ServerID: "srv", ChannelID: "chan", Name: "Sunfall", CreatedAt: testTime}); err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	for _, player := range []storage.Player{
		{ID: "p-gm", CampaignID: "c1", ExternalID: "u-gm", DisplayName: "Gia", IsGM: true},
		{ID: "p1", CampaignID: "c1", ExternalID: "u-1", DisplayName: "Rook", PlotPoints: 1},
	} {
		if err := store.CreatePlayer(ctx, player); err != nil {
			t.Fatalf("create player %s: %v", player.ID, err)
		}
	}
	if err := store.CreateStressType(ctx, storage.StressType{ID: "st1", CampaignID: "c1", Name: "Physical"}); err != nil {
		t.Fatalf("create stress type: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cortex.sqlite")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	applied, err := sqlitemigrate.Applied(context.Background(), second.sqlDB)
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(applied) != 1 || applied[0].Name != "0001_cortex.sql" {
		t.Fatalf("expected single recorded migration, got %+v", applied)
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	var enabled int
	if err := store.sqlDB.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}
}

func TestApplyInsertWithMissingParent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	orphan := storage.CrisisDie{ID: "cd1", CampaignID: "c1", CrisisPoolID: "gone", DieSize: 8, CreatedAt: testTime}
	if err := store.Apply(ctx, undo.Insert{Table: undo.TableCrisisDice, Row: orphan.Row()}); !errors.Is(err, storage.ErrParentMissing) {
		t.Fatalf("insert orphan crisis die error = %v, want %v", err, storage.ErrParentMissing)
	}
	if _, err := store.GetCrisisDie(ctx, "cd1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get orphan crisis die error = %v, want %v", err, storage.ErrNotFound)
	}
}

func countRows(t *testing.T, store *Store, table string) int {
	t.Helper()

	var n int
	if err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestCloseNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestCampaignChannelIsUnique(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)

	err := store.CreateCampaign(context.Background(), storage.Campaign{ID: "c2", ServerID: "srv", ChannelID: "chan", Name: "Other"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate channel error = %v, want %v", err, storage.ErrAlreadyExists)
	}

	got, err := store.GetCampaignByChannel(context.Background(), "srv", "chan")
	if err != nil {
		t.Fatalf("get by channel: %v", err)
	}
	if got.ID != "c1" || !got.CreatedAt.Equal(testTime) {
		t.Fatalf("campaign = %+v, want c1 created at %v", got, testTime)
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetCampaign(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing campaign error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestUpdateCampaignFeatures(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	features := storage.Features{DoomPool: true, Trauma: true}
	if err := store.UpdateCampaignFeatures(ctx, "c1", features); err != nil {
		t.Fatalf("update features: %v", err)
	}
	got, err := store.GetCampaign(ctx, "c1")
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.Features != features {
		t.Fatalf("features = %+v, want %+v", got.Features, features)
	}
}

func TestStressTypeNamesCollideCaseInsensitively(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)

	err := store.CreateStressType(context.Background(), storage.StressType{ID: "st2", CampaignID: "c1", Name: "PHYSICAL"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate stress type error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestOnlyOneActiveScene(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	if err := store.CreateScene(ctx, storage.Scene{ID: "s1", CampaignID: "c1", Name: "Docks"}); err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if err := store.CreateScene(ctx, storage.Scene{ID: "s2", CampaignID: "c1"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("second active scene error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if err := store.DeactivateScene(ctx, "s1"); err != nil {
		t.Fatalf("deactivate scene: %v", err)
	}
	if _, err := store.GetActiveScene(ctx, "c1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("active scene after deactivate error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.CreateScene(ctx, storage.Scene{ID: "s2", CampaignID: "c1"}); err != nil {
		t.Fatalf("create scene after deactivate: %v", err)
	}
}

func TestSweepSceneKeepsSessionTraits(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	if err := store.CreateScene(ctx, storage.Scene{ID: "s1", CampaignID: "c1"}); err != nil {
		t.Fatalf("create scene: %v", err)
	}
	writes := []undo.Instruction{
		undo.Insert{Table: undo.TableAssets, Row: storage.Asset{ID: "a-scene", CampaignID: "c1", PlayerID: "p1", SceneID: "s1", Name: "Cover", DieSize: 6, Duration: storage.DurationScene, CreatedAt: testTime}.Row()},
		undo.Insert{Table: undo.TableAssets, Row: storage.Asset{ID: "a-session", CampaignID: "c1", PlayerID: "p1", SceneID: "s1", Name: "Map", DieSize: 8, Duration: storage.DurationSession, CreatedAt: testTime}.Row()},
		undo.Insert{Table: undo.TableComplications, Row: storage.Complication{ID: "k-scene", CampaignID: "c1", SceneID: "s1", Name: "Smoke", DieSize: 8, Scope: storage.DurationScene, CreatedAt: testTime}.Row()},
		undo.Insert{Table: undo.TableComplications, Row: storage.Complication{ID: "k-session", CampaignID: "c1", PlayerID: "p1", SceneID: "s1", Name: "Limp", DieSize: 6, Scope: storage.DurationSession, CreatedAt: testTime}.Row()},
		undo.Insert{Table: undo.TableCrisisPools, Row: storage.CrisisPool{ID: "cp1", CampaignID: "c1", SceneID: "s1", Name: "Flood", CreatedAt: testTime}.Row()},
		undo.Insert{Table: undo.TableCrisisDice, Row: storage.CrisisDie{ID: "cd1", CampaignID: "c1", CrisisPoolID: "cp1", DieSize: 10, CreatedAt: testTime}.Row()},
	}
	for _, ins := range writes {
		if err := store.Apply(ctx, ins); err != nil {
			t.Fatalf("apply %+v: %v", ins, err)
		}
	}

	sweep, err := store.SweepScene(ctx, "s1")
	if err != nil {
		t.Fatalf("sweep scene: %v", err)
	}
	want := storage.SceneSweep{Assets: 1, Complications: 1, CrisisPools: 1}
	if sweep != want {
		t.Fatalf("sweep = %+v, want %+v", sweep, want)
	}

	if _, err := store.GetAsset(ctx, "a-session"); err != nil {
		t.Fatalf("session asset should survive: %v", err)
	}
	if _, err := store.GetComplication(ctx, "k-session"); err != nil {
		t.Fatalf("session complication should survive: %v", err)
	}
	if _, err := store.GetCrisisDie(ctx, "cd1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("crisis die after sweep error = %v, want %v", err, storage.ErrNotFound)
	}
	if n := countRows(t, store, "crisis_dice"); n != 0 {
		t.Fatalf("crisis_dice rows after sweep = %d, want 0", n)
	}
}

func TestApplyInsertUpdateDeleteRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	asset := storage.Asset{ID: "a1", CampaignID: "c1", PlayerID: "p1", Name: "Rope", DieSize: 6, Duration: storage.DurationSession, CreatedAt: testTime}
	if err := store.Apply(ctx, undo.Insert{Table: undo.TableAssets, Row: asset.Row()}); err != nil {
		t.Fatalf("insert asset: %v", err)
	}
	got, err := store.GetAsset(ctx, "a1")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if !got.CreatedAt.Equal(asset.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, asset.CreatedAt)
	}
	got.CreatedAt = asset.CreatedAt
	if got != asset {
		t.Fatalf("asset = %+v, want %+v", got, asset)
	}

	if err := store.Apply(ctx, undo.Update{Table: undo.TableAssets, ID: "a1", Field: undo.FieldDieSize, Value: 10}); err != nil {
		t.Fatalf("update asset: %v", err)
	}
	got, err = store.GetAsset(ctx, "a1")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.DieSize != 10 {
		t.Fatalf("die size = %d, want 10", got.DieSize)
	}

	if err := store.Apply(ctx, undo.Delete{Table: undo.TableAssets, ID: "a1"}); err != nil {
		t.Fatalf("delete asset: %v", err)
	}
	if _, err := store.GetAsset(ctx, "a1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted asset error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestApplyReportsStaleTargets(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	if err := store.Apply(ctx, undo.Delete{Table: undo.TableAssets, ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.Apply(ctx, undo.Update{Table: undo.TableAssets, ID: "missing", Field: undo.FieldDieSize, Value: 6}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update missing error = %v, want %v", err, storage.ErrNotFound)
	}

	stress := storage.Track{ID: "t1", CampaignID: "c1", PlayerID: "p1", StressTypeID: "st1", DieSize: 6, CreatedAt: testTime}
	if err := store.Apply(ctx, undo.Insert{Table: undo.TableStress, Row: stress.Row()}); err != nil {
		t.Fatalf("insert stress: %v", err)
	}
	if err := store.Apply(ctx, undo.Insert{Table: undo.TableStress, Row: stress.Row()}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate insert error = %v, want %v", err, storage.ErrAlreadyExists)
	}

	second := storage.Track{ID: "t2", CampaignID: "c1", PlayerID: "p1", StressTypeID: "st1", DieSize: 8, CreatedAt: testTime}
	if err := store.Apply(ctx, undo.Insert{Table: undo.TableStress, Row: second.Row()}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("second stress row for pair error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestApplyRejectsDisallowedWithoutWriting(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	cases := []undo.Instruction{
		undo.Delete{Table: "campaigns", ID: "c1"},
		undo.Update{Table: undo.TablePlayers, ID: "p-gm", Field: "is_gm", Value: 0},
		undo.Delete{Table: undo.TablePlayers, ID: "p1"},
		undo.Insert{Table: undo.TableAssets, Row: undo.Row{"id": "a9", "campaign_id": "c1", "name": "x", "die_size": int64(6), "duration": "scene", "created_at": int64(0), "is_gm": int64(1)}},
		undo.Update{Table: undo.TablePlayers, ID: "p1", Field: undo.FieldPlotPoints, Value: -1},
	}
	for _, ins := range cases {
		if err := store.Apply(ctx, ins); !errors.Is(err, undo.ErrDisallowed) {
			t.Fatalf("apply %+v error = %v, want %v", ins, err, undo.ErrDisallowed)
		}
	}

	if _, err := store.GetCampaign(ctx, "c1"); err != nil {
		t.Fatalf("campaign should remain: %v", err)
	}
	gm, err := store.GetPlayer(ctx, "p-gm")
	if err != nil {
		t.Fatalf("get gm: %v", err)
	}
	if !gm.IsGM {
		t.Fatal("gm flag should be unchanged")
	}
	player, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.PlotPoints != 1 {
		t.Fatalf("plot points = %d, want 1", player.PlotPoints)
	}
	if _, err := store.GetAsset(ctx, "a9"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("disallowed insert should not write: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(repo storage.Repository) error {
		if err := repo.Apply(ctx, undo.Update{Table: undo.TablePlayers, ID: "p1", Field: undo.FieldXP, Value: 5}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("within tx error = %v, want %v", err, boom)
	}
	player, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.XP != 0 {
		t.Fatalf("xp = %d, want rollback to 0", player.XP)
	}
}

func TestActionLogUndoableScoping(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	entries := []storage.ActionLogEntry{
		{CampaignID: "c1", ActorID: "p1", ActionType: "asset_add", Description: "add Rope", Inverse: undo.Delete{Table: undo.TableAssets, ID: "a1"}},
		{CampaignID: "c1", ActorID: "p-gm", ActionType: "doom_add", Description: "add d6 doom", Inverse: undo.Delete{Table: undo.TableDoomDice, ID: "d1"}},
	}
	var seqs []int64
	for _, entry := range entries {
		seq, err := store.AppendAction(ctx, entry)
		if err != nil {
			t.Fatalf("append action: %v", err)
		}
		seqs = append(seqs, seq)
	}
	if seqs[1] <= seqs[0] {
		t.Fatalf("seqs = %v, want increasing", seqs)
	}

	last, err := store.LastUndoable(ctx, "c1", "")
	if err != nil {
		t.Fatalf("last undoable: %v", err)
	}
	if last.Seq != seqs[1] {
		t.Fatalf("last seq = %d, want %d", last.Seq, seqs[1])
	}

	mine, err := store.LastUndoable(ctx, "c1", "p1")
	if err != nil {
		t.Fatalf("last undoable for p1: %v", err)
	}
	if mine.ActorID != "p1" || mine.Seq != seqs[0] {
		t.Fatalf("entry = %+v, want p1 seq %d", mine, seqs[0])
	}
	if got, ok := mine.Inverse.(undo.Delete); !ok || got.ID != "a1" {
		t.Fatalf("inverse = %#v, want delete a1", mine.Inverse)
	}

	if err := store.MarkUndone(ctx, seqs[0]); err != nil {
		t.Fatalf("mark undone: %v", err)
	}
	if err := store.MarkUndone(ctx, seqs[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second mark undone error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.LastUndoable(ctx, "c1", "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("last undoable after undo error = %v, want %v", err, storage.ErrNotFound)
	}

	history, err := store.ListActions(ctx, "c1", 10)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(history) != 2 || history[0].Seq != seqs[1] || !history[1].Undone {
		t.Fatalf("history = %+v", history)
	}
}

func TestAppendActionRejectsDisallowedInverse(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)

	_, err := store.AppendAction(context.Background(), storage.ActionLogEntry{
		CampaignID: "c1",
		ActorID:    "p1",
		ActionType: "evil",
		Inverse:    undo.Delete{Table: "campaigns", ID: "c1"},
	})
	if !errors.Is(err, undo.ErrDisallowed) {
		t.Fatalf("append error = %v, want %v", err, undo.ErrDisallowed)
	}
}

func TestTamperedLogEntryFailsClosed(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	_, err := store.sqlDB.ExecContext(
		ctx,
		`INSERT INTO action_log (campaign_id, actor_id, action_type, description, inverse_json, undone, created_at)
		 VALUES ('c1', 'p1', 'asset_add', 'tampered', '{"op":"delete","table":"campaigns","id":"c1"}', 0, 0)`,
	)
	if err != nil {
		t.Fatalf("insert tampered entry: %v", err)
	}
	if _, err := store.LastUndoable(ctx, "c1", ""); !errors.Is(err, undo.ErrDisallowed) {
		t.Fatalf("last undoable error = %v, want %v", err, undo.ErrDisallowed)
	}
}

func TestDeleteCampaignCascades(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedCampaign(t, store)
	ctx := context.Background()

	if err := store.Apply(ctx, undo.Insert{Table: undo.TableStress, Row: storage.Track{ID: "t1", CampaignID: "c1", PlayerID: "p1", StressTypeID: "st1", DieSize: 8, CreatedAt: testTime}.Row()}); err != nil {
		t.Fatalf("insert stress: %v", err)
	}
	if _, err := store.AppendAction(ctx, storage.ActionLogEntry{CampaignID: "c1", ActorID: "p1", ActionType: "stress_add", Inverse: undo.Delete{Table: undo.TableStress, ID: "t1"}}); err != nil {
		t.Fatalf("append action: %v", err)
	}

	if err := store.DeleteCampaign(ctx, "c1"); err != nil {
		t.Fatalf("delete campaign: %v", err)
	}
	if _, err := store.GetPlayer(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("player after cascade error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetStress(ctx, "t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stress after cascade error = %v, want %v", err, storage.ErrNotFound)
	}
	actions, err := store.ListActions(ctx, "c1", 10)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("actions after cascade = %d, want 0", len(actions))
	}
	for _, table := range []string{"players", "stress_types", "stress", "action_log"} {
		if n := countRows(t, store, table); n != 0 {
			t.Fatalf("%s rows after cascade = %d, want 0", table, n)
		}
	}
}
