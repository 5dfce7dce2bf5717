// Package schema describes output table layouts and their Apache Arrow form
package schema

import (
	"github.com/apache/arrow/go/v18/arrow"
)

// ColumnType is the logical type of an output column
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt32
)

// String returns the type name used in schema descriptions
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt32:
		return "int32"
	default:
		return "unknown"
	}
}

// Column is one column of an output table
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is an ordered list of columns. Cell values travel as strings and are
// converted to the column type only by typed sinks.
type Schema struct {
	ID      string
	Columns []Column
}

// Names returns the header row for the schema
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Strings builds a schema where every column is a non-nullable string
func Strings(id string, names ...string) Schema {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Type: TypeString}
	}
	return Schema{ID: id, Columns: cols}
}

// ArrowSchemaManager provides utilities for working with Apache Arrow schemas
type ArrowSchemaManager struct{}

// NewArrowSchemaManager creates a new Arrow schema manager
func NewArrowSchemaManager() *ArrowSchemaManager {
	return &ArrowSchemaManager{}
}

// ToArrow converts an output schema to an Arrow schema, keeping column order
func (m *ArrowSchemaManager) ToArrow(s Schema) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(s.Columns))
	for _, col := range s.Columns {
		fields = append(fields, arrow.Field{
			Name:     col.Name,
			Type:     m.columnTypeToArrow(col.Type),
			Nullable: col.Nullable,
		})
	}

	md := arrow.NewMetadata([]string{"schema_id"}, []string{s.ID})
	return arrow.NewSchema(fields, &md)
}

func (m *ArrowSchemaManager) columnTypeToArrow(t ColumnType) arrow.DataType {
	switch t {
	case TypeInt32:
		return arrow.PrimitiveTypes.Int32
	default:
		return arrow.BinaryTypes.String
	}
}
