// Package export turns aggregation results into output table rows
package export

import (
	"context"
	"strconv"
	"strings"

	"github.com/aarondill/TaraBomSheets/internal/routing"
	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

// ItemType codes expected by the import tooling
const (
	ItemTypeItem     = 4
	ItemTypeResource = 290
)

// WarningSeparator joins the warnings of a parent into one cell
const WarningSeparator = ";"

// BOMSchema is the layout of the component and resource file
var BOMSchema = schema.Schema{
	ID: "bom_v1",
	Columns: []schema.Column{
		{Name: "Quantity", Type: schema.TypeString},
		{Name: "ParentKey", Type: schema.TypeString},
		{Name: "ItemCode", Type: schema.TypeString},
		{Name: "Warehouse", Type: schema.TypeString},
		{Name: "ItemType", Type: schema.TypeInt32},
		{Name: "StageId", Type: schema.TypeInt32, Nullable: true},
		{Name: "SeqNum", Type: schema.TypeInt32},
		{Name: "LineNum", Type: schema.TypeInt32},
		{Name: "Warnings", Type: schema.TypeString},
	},
}

// StageSchema is the layout of the route stage file
var StageSchema = schema.Schema{
	ID: "stages_v1",
	Columns: []schema.Column{
		{Name: "ParentKey", Type: schema.TypeString},
		{Name: "ItemCode", Type: schema.TypeString},
		{Name: "StgEntry", Type: schema.TypeString},
		{Name: "Warehouse", Type: schema.TypeString},
		{Name: "StageId", Type: schema.TypeInt32, Nullable: true},
		{Name: "SeqNum", Type: schema.TypeInt32},
		{Name: "LineNum", Type: schema.TypeInt32},
		{Name: "Warnings", Type: schema.TypeString},
	},
}

// ErrorColumn is appended to the items header in the error file
const ErrorColumn = "error"

// ErrorSchema is the layout of the error file: the items table columns plus
// the error message
func ErrorSchema(itemsHeader []string) schema.Schema {
	names := make([]string, 0, len(itemsHeader)+1)
	names = append(names, itemsHeader...)
	names = append(names, ErrorColumn)
	return schema.Strings("errors_v1", names...)
}

// Ordered returns the lines of res in emission order: the first two stage
// list entries, all component items, then the rest of the stage list.
func Ordered(res *routing.Result) []routing.Staged {
	out := make([]routing.Staged, 0, len(res.Items)+len(res.Stages))
	head := min(2, len(res.Stages))
	out = append(out, res.Stages[:head]...)
	out = append(out, res.Items...)
	out = append(out, res.Stages[head:]...)
	return out
}

// ItemType returns the numeric item type of a BOM row
func ItemType(k routing.Kind) int {
	if k == routing.KindResource {
		return ItemTypeResource
	}
	return ItemTypeItem
}

// Rows splits res into BOM rows and stage rows. SeqNum and LineNum count from
// zero within each file.
func Rows(res *routing.Result) (bom []streaming.Row, stages []streaming.Row) {
	warnings := strings.Join(res.Warnings, WarningSeparator)

	for _, line := range Ordered(res) {
		base := line.Base()

		if rs, ok := line.LineItem.(routing.RouteStage); ok {
			seq := strconv.Itoa(len(stages))
			stages = append(stages, streaming.Row{
				base.ParentKey,
				base.ItemCode,
				rs.StageEntry,
				base.Warehouse,
				line.StageID.String(),
				seq,
				seq,
				warnings,
			})
			continue
		}

		seq := strconv.Itoa(len(bom))
		bom = append(bom, streaming.Row{
			base.Quantity,
			base.ParentKey,
			base.ItemCode,
			base.Warehouse,
			strconv.Itoa(ItemType(line.Kind())),
			line.StageID.String(),
			seq,
			seq,
			warnings,
		})
	}

	return bom, stages
}

// Emit sends the rows of every result, in result order, to the BOM and stage
// streams. It closes neither stream.
func Emit(ctx context.Context, results []*routing.Result, bom, stages streaming.RowSender) error {
	for _, res := range results {
		bomRows, stageRows := Rows(res)
		for _, row := range bomRows {
			if err := bom.Send(ctx, row); err != nil {
				return err
			}
		}
		for _, row := range stageRows {
			if err := stages.Send(ctx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ErrorRows returns one error file row per discarded duplicate
func ErrorRows(dups []*routing.DuplicateKeyError) []streaming.Row {
	rows := make([]streaming.Row, 0, len(dups))
	for _, dup := range dups {
		row := make(streaming.Row, 0, len(dup.Item.Raw)+1)
		row = append(row, dup.Item.Raw...)
		row = append(row, dup.Error())
		rows = append(rows, row)
	}
	return rows
}
