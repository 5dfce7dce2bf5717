// Package catalog holds the four reference tables of a batch and the indexed,
// read-only Store built from them.
package catalog

import (
	"fmt"
	"strings"
)

// Column names of the input tables
const (
	ColItemGroup   = "ITEM GROUP"
	ColPartNumber  = "PN#"
	ColDescription = "DESCRIPTION"
	ColMakeOrBuy   = "MAKE / BUY"
	ColBOMType     = "BOM Type"

	ColGroupTypeKey = "Item Groups - Type"
	ColItemCode     = "ItemCode"
	ColQuantity     = "Quantity"

	ColParentKey = "ParentKey"

	ColInternalNumber = "Internal Number"
	ColCode           = "Code"
)

// MakeOrBuy says whether a part is produced in house or purchased
type MakeOrBuy string

const (
	Make MakeOrBuy = "Make"
	Buy  MakeOrBuy = "Buy"
)

// ParseMakeOrBuy parses the MAKE / BUY column
func ParseMakeOrBuy(s string) (MakeOrBuy, error) {
	switch v := MakeOrBuy(strings.TrimSpace(s)); v {
	case Make, Buy:
		return v, nil
	default:
		return "", fmt.Errorf("invalid %s value %q", ColMakeOrBuy, s)
	}
}

// BOMType is the BOM Type column
type BOMType string

const (
	NotABOM    BOMType = "Not a BOM"
	Production BOMType = "Production"
)

// ParseBOMType parses the BOM Type column
func ParseBOMType(s string) (BOMType, error) {
	switch v := BOMType(strings.TrimSpace(s)); v {
	case NotABOM, Production:
		return v, nil
	default:
		return "", fmt.Errorf("invalid %s value %q", ColBOMType, s)
	}
}

// CatalogItem is one row of the items table
type CatalogItem struct {
	Group       string
	PartNumber  string
	Description string
	MakeOrBuy   MakeOrBuy
	BOMType     BOMType

	// Line is the 1-based data row number in the items table.
	Line int
	// Raw is the source row as read, in items table column order.
	Raw []string
}

// RouteResourceRecord is one row of the route/resource table. An empty
// Quantity marks a route stage; anything else is a resource consumed with
// that quantity.
type RouteResourceRecord struct {
	GroupTypeKey string
	ItemCode     string
	Quantity     string
}

// IsStage reports whether the record is a route stage marker
func (r RouteResourceRecord) IsStage() bool {
	return r.Quantity == ""
}

// ConsumptionRecord is one row of the ITT table
type ConsumptionRecord struct {
	ParentKey string
	ItemCode  string
	Quantity  string
}

// StageNumberRecord maps a route stage item code to its internal number
type StageNumberRecord struct {
	InternalNumber string
	Code           string
}
