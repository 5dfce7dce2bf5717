package routing

import (
	"github.com/aarondill/TaraBomSheets/internal/catalog"
)

// fakeLookup is a map-backed Lookup
type fakeLookup struct {
	routes map[string][]catalog.RouteResourceRecord
	stages map[string]string
}

func (f fakeLookup) RouteResources(key string) []catalog.RouteResourceRecord {
	return f.routes[key]
}

func (f fakeLookup) StageEntry(code string) (string, bool) {
	entry, ok := f.stages[code]
	return entry, ok
}

func item(group, pn, desc string, mob catalog.MakeOrBuy, bt catalog.BOMType) catalog.CatalogItem {
	return catalog.CatalogItem{
		Group:       group,
		PartNumber:  pn,
		Description: desc,
		MakeOrBuy:   mob,
		BOMType:     bt,
	}
}

func stage(key, code string) catalog.RouteResourceRecord {
	return catalog.RouteResourceRecord{GroupTypeKey: key, ItemCode: code}
}

func resource(key, code, qty string) catalog.RouteResourceRecord {
	return catalog.RouteResourceRecord{GroupTypeKey: key, ItemCode: code, Quantity: qty}
}

func component(parent, code, qty string) ComponentItem {
	return ComponentItem{Line: Line{ParentKey: parent, ItemCode: code, Quantity: qty, Warehouse: Warehouse}}
}

// widgetStore is the single-widget catalog used across tests
func widgetStore() *catalog.Store {
	return catalog.NewStore(
		[]catalog.CatalogItem{
			item("WIDGET", "W-1", "WIDGET ASSY", catalog.Make, catalog.Production),
		},
		[]catalog.RouteResourceRecord{
			stage("WIDGET - ASSY", "WELD"),
			resource("WIDGET - ASSY", "R-WELDER", "1"),
		},
		[]catalog.ConsumptionRecord{
			{ParentKey: "W-1", ItemCode: "C-1", Quantity: "2"},
		},
		[]catalog.StageNumberRecord{
			{InternalNumber: "10", Code: "WELD"},
		},
	)
}

func stageIDs(lines []Staged) []StageID {
	ids := make([]StageID, len(lines))
	for i, l := range lines {
		ids[i] = l.StageID
	}
	return ids
}
