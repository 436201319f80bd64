package undo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// envelope is the persisted JSON shape of an instruction.
type envelope struct {
	Op    Kind   `json:"op"`
	Table Table  `json:"table"`
	ID    string `json:"id,omitempty"`
	Field Field  `json:"field,omitempty"`
	Value *int   `json:"value,omitempty"`
	Row   Row    `json:"row,omitempty"`
}

// Marshal encodes a valid instruction for the action log.
func Marshal(ins Instruction) ([]byte, error) {
	if err := Validate(ins); err != nil {
		return nil, err
	}
	var env envelope
	switch v := ins.(type) {
	case Delete:
		env = envelope{Op: KindDelete, Table: v.Table, ID: v.ID}
	case Insert:
		env = envelope{Op: KindInsert, Table: v.Table, Row: v.Row}
	case Update:
		value := v.Value
		env = envelope{Op: KindUpdate, Table: v.Table, ID: v.ID, Field: v.Field, Value: &value}
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal undo instruction: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a logged instruction. Row integers are
// normalized to int64.
func Unmarshal(data []byte) (Instruction, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, disallowed("instruction is not decodable", nil)
	}

	var ins Instruction
	switch env.Op {
	case KindDelete:
		ins = Delete{Table: env.Table, ID: env.ID}
	case KindInsert:
		row := make(Row, len(env.Row))
		for column, value := range env.Row {
			if n, ok := value.(json.Number); ok {
				i, err := n.Int64()
				if err != nil {
					return nil, disallowed("row value is not an integer", map[string]string{"Column": column})
				}
				row[column] = i
				continue
			}
			row[column] = value
		}
		ins = Insert{Table: env.Table, Row: row}
	case KindUpdate:
		if env.Value == nil {
			return nil, disallowed("update value is required", nil)
		}
		ins = Update{Table: env.Table, ID: env.ID, Field: env.Field, Value: *env.Value}
	default:
		return nil, disallowed("unknown op", map[string]string{"Op": string(env.Op)})
	}
	if err := Validate(ins); err != nil {
		return nil, err
	}
	return ins, nil
}

// Args returns the row values for the table's insert columns in order, with
// integers widened to int64 and absent columns as nil.
func Args(ins Insert) ([]string, []any) {
	columns := Columns(ins.Table)
	args := make([]any, len(columns))
	for i, column := range columns {
		value := ins.Row[column]
		if n, ok := toInt64(value); ok {
			args[i] = n
			continue
		}
		args[i] = value
	}
	return columns, args
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v == math.Trunc(v) {
			return int64(v), true
		}
	}
	return 0, false
}
