package undo

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
)

// Kind names an instruction variant.
type Kind string

const (
	KindDelete Kind = "delete"
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
)

// Table names a storage table an instruction may target.
type Table string

const (
	TableAssets        Table = "assets"
	TableStress        Table = "stress"
	TableTrauma        Table = "trauma"
	TableComplications Table = "complications"
	TableHeroDice      Table = "hero_dice"
	TableDoomDice      Table = "doom_dice"
	TableCrisisPools   Table = "crisis_pools"
	TableCrisisDice    Table = "crisis_dice"
	TablePlayers       Table = "players"
)

// Field names a numeric column an Update may restore.
type Field string

const (
	FieldDieSize    Field = "die_size"
	FieldPlotPoints Field = "plot_points"
	FieldXP         Field = "xp"
)

// Row is a full column snapshot keyed by column name. Values are string,
// int64 (or int) and nil.
type Row map[string]any

// Instruction is one of Delete, Insert or Update.
type Instruction interface {
	Kind() Kind
	Target() Table
	isInstruction()
}

// Delete removes the row with ID from Table.
type Delete struct {
	Table Table
	ID    string
}

// Insert writes Row into Table.
type Insert struct {
	Table Table
	Row   Row
}

// Update sets Field on the row with ID in Table.
type Update struct {
	Table Table
	ID    string
	Field Field
	Value int
}

func (Delete) Kind() Kind { return KindDelete }
func (Insert) Kind() Kind { return KindInsert }
func (Update) Kind() Kind { return KindUpdate }
func (d Delete) Target() Table { return d.Table }
func (i Insert) Target() Table { return i.Table }
func (u Update) Target() Table { return u.Table }
func (Delete) isInstruction() {}
func (Insert) isInstruction() {}
func (Update) isInstruction() {}

// ID returns the row id carried by the snapshot.
func (i Insert) ID() string {
	value, _ := i.Row["id"].(string)
	return value
}

// ErrDisallowed matches every allow-list violation.
var ErrDisallowed = apperrors.New(apperrors.CodeUndoDisallowed, "undo instruction is not allowed")

type tablePolicy struct {
	// columns lists every insertable column in statement order; empty means
	// rows in this table are never inserted or deleted.
	columns []string
	fields  map[Field]struct{}
}

var dieField = map[Field]struct{}{FieldDieSize: {}}

var policies = map[Table]tablePolicy{
	TableAssets: {
		columns: []string{"id", "campaign_id", "player_id", "scene_id", "name", "die_size", "duration", "created_at"},
		fields:  dieField,
	},
	TableStress: {
		columns: []string{"id", "campaign_id", "player_id", "stress_type_id", "die_size", "created_at"},
		fields:  dieField,
	},
	TableTrauma: {
		columns: []string{"id", "campaign_id", "player_id", "stress_type_id", "die_size", "created_at"},
		fields:  dieField,
	},
	TableComplications: {
		columns: []string{"id", "campaign_id", "player_id", "scene_id", "name", "die_size", "scope", "created_at"},
		fields:  dieField,
	},
	TableHeroDice: {
		columns: []string{"id", "campaign_id", "player_id", "die_size", "created_at"},
		fields:  dieField,
	},
	TableDoomDice: {
		columns: []string{"id", "campaign_id", "die_size", "created_at"},
		fields:  dieField,
	},
	TableCrisisPools: {
		columns: []string{"id", "campaign_id", "scene_id", "name", "created_at"},
	},
	TableCrisisDice: {
		columns: []string{"id", "campaign_id", "crisis_pool_id", "die_size", "created_at"},
		fields:  dieField,
	},
	TablePlayers: {
		fields: map[Field]struct{}{FieldPlotPoints: {}, FieldXP: {}},
	},
}

// Columns returns the ordered insert columns for table, or nil when the table
// does not accept row inserts.
func Columns(table Table) []string {
	policy, ok := policies[table]
	if !ok || len(policy.columns) == 0 {
		return nil
	}
	out := make([]string, len(policy.columns))
	copy(out, policy.columns)
	return out
}

// Validate checks an instruction against the allow-lists.
func Validate(ins Instruction) error {
	if ins == nil {
		return disallowed("instruction is nil", nil)
	}
	policy, ok := policies[ins.Target()]
	if !ok {
		return disallowed("table is not allowed", map[string]string{"Table": string(ins.Target())})
	}

	switch v := ins.(type) {
	case Delete:
		if len(policy.columns) == 0 {
			return disallowed("table does not allow deletes", map[string]string{"Table": string(v.Table)})
		}
		if strings.TrimSpace(v.ID) == "" {
			return disallowed("delete id is required", nil)
		}
	case Insert:
		if len(policy.columns) == 0 {
			return disallowed("table does not allow inserts", map[string]string{"Table": string(v.Table)})
		}
		if v.ID() == "" {
			return disallowed("insert row id is required", nil)
		}
		allowed := make(map[string]struct{}, len(policy.columns))
		for _, column := range policy.columns {
			allowed[column] = struct{}{}
		}
		for column, value := range v.Row {
			if _, ok := allowed[column]; !ok {
				return disallowed("column is not allowed", map[string]string{"Table": string(v.Table), "Column": column})
			}
			if !allowedValue(value) {
				return disallowed("column value type is not allowed", map[string]string{"Table": string(v.Table), "Column": column})
			}
		}
		if size, ok := v.Row[string(FieldDieSize)]; ok {
			n, _ := toInt64(size)
			if !dice.IsValidSize(int(n)) {
				return disallowed("insert die size is not on the ladder", map[string]string{"Table": string(v.Table)})
			}
		}
	case Update:
		if _, ok := policy.fields[v.Field]; !ok {
			return disallowed("field is not allowed", map[string]string{"Table": string(v.Table), "Field": string(v.Field)})
		}
		if strings.TrimSpace(v.ID) == "" {
			return disallowed("update id is required", nil)
		}
		if v.Field == FieldDieSize && !dice.IsValidSize(v.Value) {
			return disallowed("update die size is not on the ladder", map[string]string{"Table": string(v.Table)})
		}
		if v.Field != FieldDieSize && v.Value < 0 {
			return disallowed("update value must not be negative", map[string]string{"Table": string(v.Table), "Field": string(v.Field)})
		}
	default:
		return disallowed(fmt.Sprintf("unknown instruction %T", ins), nil)
	}
	return nil
}

func allowedValue(value any) bool {
	switch value.(type) {
	case nil, string:
		return true
	default:
		_, ok := toInt64(value)
		return ok
	}
}

func disallowed(message string, metadata map[string]string) error {
	return apperrors.WrapWithMetadata(apperrors.CodeUndoDisallowed, "undo: "+message, metadata, ErrDisallowed)
}
