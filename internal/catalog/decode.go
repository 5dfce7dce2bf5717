package catalog

import (
	"fmt"

	"github.com/aarondill/TaraBomSheets/internal/tables"
)

// DecodeItems reads catalog items from the items table. An unknown MAKE / BUY
// or BOM Type value fails the whole table.
func DecodeItems(t *tables.Table) ([]CatalogItem, error) {
	cols, err := t.Columns(ColItemGroup, ColPartNumber, ColDescription, ColMakeOrBuy, ColBOMType)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, t.Len())
	for i, row := range t.Rows {
		if tables.Blank(row) {
			continue
		}

		mob, err := ParseMakeOrBuy(tables.Cell(row, cols[3]))
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", t.Name, i+1, err)
		}
		bomType, err := ParseBOMType(tables.Cell(row, cols[4]))
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", t.Name, i+1, err)
		}

		items = append(items, CatalogItem{
			Group:       tables.Cell(row, cols[0]),
			PartNumber:  tables.Cell(row, cols[1]),
			Description: tables.Cell(row, cols[2]),
			MakeOrBuy:   mob,
			BOMType:     bomType,
			Line:        i + 1,
			Raw:         row,
		})
	}
	return items, nil
}

// DecodeRouteResources reads the route/resource table in table order
func DecodeRouteResources(t *tables.Table) ([]RouteResourceRecord, error) {
	cols, err := t.Columns(ColGroupTypeKey, ColItemCode, ColQuantity)
	if err != nil {
		return nil, err
	}

	records := make([]RouteResourceRecord, 0, t.Len())
	for _, row := range t.Rows {
		if tables.Blank(row) {
			continue
		}
		records = append(records, RouteResourceRecord{
			GroupTypeKey: tables.Cell(row, cols[0]),
			ItemCode:     tables.Cell(row, cols[1]),
			Quantity:     tables.Cell(row, cols[2]),
		})
	}
	return records, nil
}

// DecodeConsumption reads the ITT table in table order
func DecodeConsumption(t *tables.Table) ([]ConsumptionRecord, error) {
	cols, err := t.Columns(ColParentKey, ColItemCode, ColQuantity)
	if err != nil {
		return nil, err
	}

	records := make([]ConsumptionRecord, 0, t.Len())
	for _, row := range t.Rows {
		if tables.Blank(row) {
			continue
		}
		records = append(records, ConsumptionRecord{
			ParentKey: tables.Cell(row, cols[0]),
			ItemCode:  tables.Cell(row, cols[1]),
			Quantity:  tables.Cell(row, cols[2]),
		})
	}
	return records, nil
}

// DecodeStageNumbers reads the stage-number lookup table
func DecodeStageNumbers(t *tables.Table) ([]StageNumberRecord, error) {
	cols, err := t.Columns(ColInternalNumber, ColCode)
	if err != nil {
		return nil, err
	}

	records := make([]StageNumberRecord, 0, t.Len())
	for _, row := range t.Rows {
		if tables.Blank(row) {
			continue
		}
		records = append(records, StageNumberRecord{
			InternalNumber: tables.Cell(row, cols[0]),
			Code:           tables.Cell(row, cols[1]),
		})
	}
	return records, nil
}

// RequiredColumns lists the header names each input table must carry
func RequiredColumns() map[string][]string {
	return map[string][]string{
		"items":        {ColItemGroup, ColPartNumber, ColDescription, ColMakeOrBuy, ColBOMType},
		"routes":       {ColGroupTypeKey, ColItemCode, ColQuantity},
		"consumption":  {ColParentKey, ColItemCode, ColQuantity},
		"stageNumbers": {ColInternalNumber, ColCode},
	}
}
