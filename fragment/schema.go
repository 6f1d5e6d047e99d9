package fragment

import (
	"fmt"
	"reflect"

	stgpsr "github.com/yuin/stagparser"

	"compassevb/physics"
)

// ColumnKind classifies a physics.Row field for schema validation: a
// plain scalar column, or a Sabre list-of-struct column.
type ColumnKind string

const (
	KindScalar ColumnKind = "scalar"
	KindSabre  ColumnKind = "sabre"
)

// ColumnDef is one output column's name, declared kind and declared dtype,
// as read off physics.Row's own struct tags.
type ColumnDef struct {
	Name  string
	Kind  ColumnKind
	DType string
}

// columns reflects over physics.Row once at package init, deriving the
// fixed column order and kind from the `schema:"dtype=...,kind=..."` tags
// instead of a hand-maintained list, the same way the teacher derives a
// TileDB schema from `tiledb:"..."` tags.
var columns = mustColumns()

func mustColumns() []ColumnDef {
	cols, err := parseColumns(physics.Row{})
	if err != nil {
		panic(fmt.Sprintf("fragment: physics.Row schema tags: %v", err))
	}
	return cols
}

func parseColumns(row physics.Row) ([]ColumnDef, error) {
	defs, err := stgpsr.ParseStruct(&row, "schema")
	if err != nil {
		return nil, fmt.Errorf("fragment: parse schema tags: %w", err)
	}

	t := reflect.TypeOf(row)
	cols := make([]ColumnDef, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		fieldDefs := defs[name]

		byKey := make(map[string]stgpsr.Definition, len(fieldDefs))
		for _, d := range fieldDefs {
			byKey[d.Name()] = d
		}

		kindDef, ok := byKey["kind"]
		if !ok {
			return nil, fmt.Errorf("fragment: field %s: missing kind tag", name)
		}
		kind, _ := kindDef.Attribute("kind")

		dtype := ""
		if dtypeDef, ok := byKey["dtype"]; ok {
			dtype, _ = dtypeDef.Attribute("dtype")
		}

		cols = append(cols, ColumnDef{Name: name, Kind: ColumnKind(kind), DType: dtype})
	}
	return cols, nil
}

// Columns returns the fixed output column schema in declaration order.
func Columns() []ColumnDef {
	return columns
}
