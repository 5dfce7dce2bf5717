package schema

import (
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		ID: "bom_v1",
		Columns: []Column{
			{Name: "ParentKey", Type: TypeString},
			{Name: "StageId", Type: TypeInt32, Nullable: true},
		},
	}
}

func TestToArrow(t *testing.T) {
	m := NewArrowSchemaManager()
	as := m.ToArrow(testSchema())

	require.Equal(t, 2, as.NumFields())
	assert.Equal(t, "ParentKey", as.Field(0).Name)
	assert.Equal(t, arrow.STRING, as.Field(0).Type.ID())
	assert.False(t, as.Field(0).Nullable)
	assert.Equal(t, arrow.INT32, as.Field(1).Type.ID())
	assert.True(t, as.Field(1).Nullable)
}

func TestToArrow_KeepsSchemaID(t *testing.T) {
	as := NewArrowSchemaManager().ToArrow(testSchema())

	idx := as.Metadata().FindKey("schema_id")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "bom_v1", as.Metadata().Values()[idx])
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "string", TypeString.String())
	assert.Equal(t, "int32", TypeInt32.String())
}

func TestStrings(t *testing.T) {
	s := Strings("errors_v1", "PN#", "error")
	assert.Equal(t, []string{"PN#", "error"}, s.Names())
	for _, col := range s.Columns {
		assert.Equal(t, TypeString, col.Type)
	}
}
