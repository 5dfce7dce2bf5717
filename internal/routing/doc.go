// Package routing expands catalog items into per-product BOM and route
// results.
//
// Pipeline, per catalog item:
//  1. Collect component items from the ITT records of the part number
//  2. Classify the item as an assembly or a manufactured part
//  3. Resolve route stages and resources for "<group> - <ASSY|MFG>"
//  4. Assign stage ids across the stage list and the components
//
// The Aggregator runs that pipeline over the catalog, rejects repeated part
// numbers (first row wins) and merges ITT records whose parent key has no
// catalog item into results of their own.
package routing
