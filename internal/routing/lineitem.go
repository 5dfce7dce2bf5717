package routing

import "strconv"

// Warehouse is the warehouse code stamped on every line
const Warehouse = "040"

// Kind tags the LineItem variants
type Kind int

const (
	KindItem Kind = iota
	KindResource
	KindRouteStage
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindResource:
		return "resource"
	case KindRouteStage:
		return "route_stage"
	default:
		return "unknown"
	}
}

// Line holds the fields shared by every LineItem variant
type Line struct {
	ParentKey string
	ItemCode  string
	Quantity  string
	Warehouse string
}

// LineItem is implemented by ComponentItem, ResourceConsumption and RouteStage
type LineItem interface {
	Base() Line
	Kind() Kind
}

// StageLine is a LineItem that belongs to a route: RouteStage or ResourceConsumption
type StageLine interface {
	LineItem
	stageLine()
}

// ComponentItem is a component consumed by the parent product
type ComponentItem struct {
	Line
}

func (c ComponentItem) Base() Line { return c.Line }
func (c ComponentItem) Kind() Kind { return KindItem }

// ResourceConsumption is a resource consumed within the preceding route stage
type ResourceConsumption struct {
	Line
}

func (r ResourceConsumption) Base() Line { return r.Line }
func (r ResourceConsumption) Kind() Kind { return KindResource }
func (ResourceConsumption) stageLine()   {}

// RouteStage opens a new stage of the route. Quantity is always empty.
type RouteStage struct {
	Line
	// StageEntry is the internal routing number of the stage code, empty when unknown.
	StageEntry string
}

func (r RouteStage) Base() Line { return r.Line }
func (r RouteStage) Kind() Kind { return KindRouteStage }
func (RouteStage) stageLine()   {}

// StageID is a 1-based stage number. The zero value means unstaged.
type StageID int

// Unstaged marks lines with no stage context
const Unstaged StageID = 0

// String renders the id as written to output tables: "" when unstaged
func (id StageID) String() string {
	if id == Unstaged {
		return ""
	}
	return strconv.Itoa(int(id))
}

// Staged is a LineItem after stage sequencing
type Staged struct {
	LineItem
	StageID StageID
}

// Result is the expansion of one parent key
type Result struct {
	ParentKey string
	Warnings  []string
	// Items are the component items.
	Items []Staged
	// Stages are route stages and resources in resolver order.
	Stages []Staged
}
