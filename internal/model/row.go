package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Column is a result column and the database type reported by the driver.
type Column struct {
	Name string
	Type string
}

// Row is one table row as returned by SELECT *. It marshals to a JSON
// object with the columns in table order and values encoded per column type.
type Row struct {
	Columns []Column
	Values  []any
}

// Value returns the raw scanned value of the named column.
func (r Row) Value(name string) (any, bool) {
	for i, c := range r.Columns {
		if c.Name == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		wire, err := EncodeValue(col.Type, r.Values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		val, err := json.Marshal(wire)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
