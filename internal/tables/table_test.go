package tables

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffITEM GROUP,PN#,DESCRIPTION\nWIDGET,W-1,\"WIDGET ASSY, BIG\"\n"

	table, err := ReadCSV("items", strings.NewReader(input), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"ITEM GROUP", "PN#", "DESCRIPTION"}, table.Header)
	require.Equal(t, 1, table.Len())

	col, err := table.Column("DESCRIPTION")
	require.NoError(t, err)
	assert.Equal(t, "WIDGET ASSY, BIG", table.Rows[0][col])
}

func TestReadCSV_CustomDelimiter(t *testing.T) {
	table, err := ReadCSV("itt", strings.NewReader("ParentKey;ItemCode;Quantity\nW-1;C-1;\n"), ';')
	require.NoError(t, err)

	cols, err := table.Columns("ParentKey", "Quantity")
	require.NoError(t, err)
	assert.Equal(t, "W-1", table.Rows[0][cols[0]])
	assert.Equal(t, "", table.Rows[0][cols[1]])
}

func TestReadCSV_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV("items", strings.NewReader(""), ',')
		assert.ErrorContains(t, err, "expected a header row")
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := ReadCSV("items", strings.NewReader("a,b\n1,2,3\n"), ',')
		assert.ErrorContains(t, err, "failed to read row")
	})
}

func TestTable_MissingColumn(t *testing.T) {
	table := NewTable("stages", []string{"Code"}, nil)

	_, err := table.Columns("Code", "Internal Number")

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "stages", missing.Table)
	assert.Equal(t, "Internal Number", missing.Column)
}

func TestTable_DuplicateHeaderFirstWins(t *testing.T) {
	table := NewTable("routes", []string{"ItemCode", "ItemCode"}, nil)
	col, err := table.Column("ItemCode")
	require.NoError(t, err)
	assert.Equal(t, 0, col)
}

func TestBlankAndCell(t *testing.T) {
	assert.True(t, Blank([]string{"", "  ", ""}))
	assert.False(t, Blank([]string{"", "x"}))
	assert.Equal(t, "", Cell([]string{"a"}, 3))
	assert.Equal(t, "a", Cell([]string{"a"}, 0))
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf, schema.Strings("t", "ParentKey", "Warnings"), ',')
	require.NoError(t, err)

	require.NoError(t, w.Write(streaming.Row{"W-1", "a;b"}))
	require.NoError(t, w.Write(streaming.Row{"W-2", "has, comma"}))
	require.NoError(t, w.Close())

	assert.Equal(t, "ParentKey,Warnings\nW-1,a;b\nW-2,\"has, comma\"\n", buf.String())
}

func TestArrowWriter_RoundTrip(t *testing.T) {
	s := schema.Schema{
		ID: "bom_v1",
		Columns: []schema.Column{
			{Name: "ParentKey", Type: schema.TypeString},
			{Name: "StageId", Type: schema.TypeInt32, Nullable: true},
		},
	}

	var buf bytes.Buffer
	w, err := NewArrowWriter(&buf, s, 2)
	require.NoError(t, err)
	require.NoError(t, w.Write(streaming.Row{"W-1", "1"}))
	require.NoError(t, w.Write(streaming.Row{"W-1", "2"}))
	require.NoError(t, w.Write(streaming.Row{"ORPHAN", ""}))
	require.NoError(t, w.Close())

	arrowSchema, records, err := readArrowRecords(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()

	assert.Equal(t, 2, arrowSchema.NumFields())
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].NumRows())
	assert.Equal(t, int64(1), records[1].NumRows())

	keys := records[1].Column(0).(*array.String)
	stageIDs := records[1].Column(1).(*array.Int32)
	assert.Equal(t, "ORPHAN", keys.Value(0))
	assert.True(t, stageIDs.IsNull(0))
	assert.Equal(t, int32(2), records[0].Column(1).(*array.Int32).Value(1))
}

func TestArrowWriter_RejectsBadInt(t *testing.T) {
	s := schema.Schema{ID: "t", Columns: []schema.Column{{Name: "SeqNum", Type: schema.TypeInt32}}}

	var buf bytes.Buffer
	w, err := NewArrowWriter(&buf, s, 0)
	require.NoError(t, err)

	assert.ErrorContains(t, w.Write(streaming.Row{"x"}), "column SeqNum (int32)")
	assert.ErrorContains(t, w.Write(streaming.Row{"1", "2"}), "2 cells")
}

type mapSource map[string]string

func (m mapSource) ReadTable(ctx context.Context, name string) (*Table, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no such table")
	}
	return ReadCSV(name, strings.NewReader(data), ',')
}

func (m mapSource) Close() error { return nil }

func TestLoadSet(t *testing.T) {
	src := mapSource{
		"items.csv":  "PN#\nW-1\n",
		"routes.csv": "ItemCode\n",
		"itt.csv":    "ParentKey\n",
		"stages.csv": "Code\n",
	}
	names := Names{Items: "items.csv", Routes: "routes.csv", Consumption: "itt.csv", StageNumbers: "stages.csv"}

	set, err := LoadSet(context.Background(), src, names)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Items.Len())
	assert.Equal(t, "stages.csv", set.StageNumbers.Name)

	delete(src, "itt.csv")
	_, err = LoadSet(context.Background(), src, names)
	assert.ErrorContains(t, err, "failed to read table itt.csv")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("ARROW")
	require.NoError(t, err)
	assert.Equal(t, FormatArrow, f)
	assert.Equal(t, ".arrow", f.Extension())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

// readArrowRecords reads back every record batch of an Arrow IPC file. Callers
// must release the returned records.
func readArrowRecords(r ipc.ReadAtSeeker) (*arrow.Schema, []arrow.Record, error) {
	reader, err := ipc.NewFileReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Arrow file: %w", err)
	}
	defer reader.Close()

	records := make([]arrow.Record, 0, reader.NumRecords())
	for i := 0; i < reader.NumRecords(); i++ {
		rec, err := reader.Record(i)
		if err != nil {
			for _, r := range records {
				r.Release()
			}
			return nil, nil, fmt.Errorf("failed to read Arrow record %d: %w", i, err)
		}
		rec.Retain()
		records = append(records, rec)
	}

	return reader.Schema(), records, nil
}
