package storage

import (
	"time"

	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// ToMillis converts a timestamp to the stored unix-millisecond form.
func ToMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// FromMillis converts a stored unix-millisecond value back to UTC time.
func FromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// Row snapshots the asset for an insert instruction.
func (a Asset) Row() undo.Row {
	return undo.Row{
		"id":          a.ID,
		"campaign_id": a.CampaignID,
		"player_id":   nullable(a.PlayerID),
		"scene_id":    nullable(a.SceneID),
		"name":        a.Name,
		"die_size":    int64(a.DieSize),
		"duration":    string(a.Duration),
		"created_at":  ToMillis(a.CreatedAt),
	}
}

// Row snapshots the stress or trauma track for an insert instruction.
func (t Track) Row() undo.Row {
	return undo.Row{
		"id":             t.ID,
		"campaign_id":    t.CampaignID,
		"player_id":      t.PlayerID,
		"stress_type_id": t.StressTypeID,
		"die_size":       int64(t.DieSize),
		"created_at":     ToMillis(t.CreatedAt),
	}
}

// Row snapshots the complication for an insert instruction.
func (c Complication) Row() undo.Row {
	return undo.Row{
		"id":          c.ID,
		"campaign_id": c.CampaignID,
		"player_id":   nullable(c.PlayerID),
		"scene_id":    nullable(c.SceneID),
		"name":        c.Name,
		"die_size":    int64(c.DieSize),
		"scope":       string(c.Scope),
		"created_at":  ToMillis(c.CreatedAt),
	}
}

// Row snapshots the hero die for an insert instruction.
func (h HeroDie) Row() undo.Row {
	return undo.Row{
		"id":          h.ID,
		"campaign_id": h.CampaignID,
		"player_id":   h.PlayerID,
		"die_size":    int64(h.DieSize),
		"created_at":  ToMillis(h.CreatedAt),
	}
}

// Row snapshots the doom die for an insert instruction.
func (d DoomDie) Row() undo.Row {
	return undo.Row{
		"id":          d.ID,
		"campaign_id": d.CampaignID,
		"die_size":    int64(d.DieSize),
		"created_at":  ToMillis(d.CreatedAt),
	}
}

// Row snapshots the crisis pool header for an insert instruction.
func (p CrisisPool) Row() undo.Row {
	return undo.Row{
		"id":          p.ID,
		"campaign_id": p.CampaignID,
		"scene_id":    p.SceneID,
		"name":        p.Name,
		"created_at":  ToMillis(p.CreatedAt),
	}
}

// Row snapshots the crisis die for an insert instruction.
func (d CrisisDie) Row() undo.Row {
	return undo.Row{
		"id":             d.ID,
		"campaign_id":    d.CampaignID,
		"crisis_pool_id": d.CrisisPoolID,
		"die_size":       int64(d.DieSize),
		"created_at":     ToMillis(d.CreatedAt),
	}
}
