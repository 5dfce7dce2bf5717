package routing

import (
	"fmt"

	"github.com/aarondill/TaraBomSheets/internal/catalog"
)

// Lookup is the part of the reference store the resolver reads
type Lookup interface {
	RouteResources(groupTypeKey string) []catalog.RouteResourceRecord
	StageEntry(code string) (string, bool)
}

// ignoredGroups never get a route
var ignoredGroups = map[string]struct{}{
	"ARCHIVE":             {},
	"OBSOLETE PARTS":      {},
	"OUTSIDE PROCESSES":   {},
	"QC-TOOLING / GAUGES": {},
	"R & D":               {},
	"CSS-OBSO PARTS":      {},
}

// IsIgnoredGroup reports whether items of group are skipped by the resolver
func IsIgnoredGroup(group string) bool {
	_, ok := ignoredGroups[group]
	return ok
}

// GroupTypeKey builds the route/resource table key for a group
func GroupTypeKey(group string, c Classification) string {
	return group + " - " + c.Suffix()
}

// Warning messages
const (
	warnNoResources  = "No resources found for %s"
	warnOneResource  = "Only one resource found for %s"
	warnNoStageEntry = "No StgEntry found for %s"
)

// Resolve returns the route stages and resources of item in table order,
// along with the warnings raised while resolving them.
//
// Purchased non-BOM items and items of an ignored group have no route. A key
// with no records, or with a single record, is reported as incomplete data
// and yields no stages.
func Resolve(lookup Lookup, item catalog.CatalogItem, c Classification) ([]StageLine, []string) {
	if item.MakeOrBuy == catalog.Buy && item.BOMType == catalog.NotABOM {
		return nil, nil
	}
	if IsIgnoredGroup(item.Group) {
		return nil, nil
	}

	key := GroupTypeKey(item.Group, c)
	records := lookup.RouteResources(key)

	switch len(records) {
	case 0:
		return nil, []string{fmt.Sprintf(warnNoResources, key)}
	case 1:
		return nil, []string{fmt.Sprintf(warnOneResource, key)}
	}

	var warnings []string
	stages := make([]StageLine, 0, len(records))
	for _, rec := range records {
		line := Line{
			ParentKey: item.PartNumber,
			ItemCode:  rec.ItemCode,
			Quantity:  rec.Quantity,
			Warehouse: Warehouse,
		}

		if !rec.IsStage() {
			stages = append(stages, ResourceConsumption{Line: line})
			continue
		}

		entry, ok := lookup.StageEntry(rec.ItemCode)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(warnNoStageEntry, rec.ItemCode))
		}
		stages = append(stages, RouteStage{Line: line, StageEntry: entry})
	}

	return stages, warnings
}
