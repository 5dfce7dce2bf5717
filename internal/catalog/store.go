package catalog

import (
	"fmt"

	"github.com/aarondill/TaraBomSheets/internal/tables"
)

// Store is an in-memory, read-only view over the four reference tables.
// Lookups of unknown keys return empty results, never errors.
type Store struct {
	items        []CatalogItem
	partNumbers  map[string]struct{}
	consumption  []ConsumptionRecord
	byParent     map[string][]ConsumptionRecord
	byGroupType  map[string][]RouteResourceRecord
	stageEntries map[string]string
}

// NewStore indexes the given records. Route/resource and consumption records
// keep their table order within each key. When a stage code repeats, the
// first internal number wins.
func NewStore(items []CatalogItem, routes []RouteResourceRecord, consumption []ConsumptionRecord, stages []StageNumberRecord) *Store {
	s := &Store{
		items:        items,
		partNumbers:  make(map[string]struct{}, len(items)),
		consumption:  consumption,
		byParent:     make(map[string][]ConsumptionRecord),
		byGroupType:  make(map[string][]RouteResourceRecord),
		stageEntries: make(map[string]string, len(stages)),
	}

	for _, item := range items {
		s.partNumbers[item.PartNumber] = struct{}{}
	}
	for _, rec := range consumption {
		s.byParent[rec.ParentKey] = append(s.byParent[rec.ParentKey], rec)
	}
	for _, rec := range routes {
		s.byGroupType[rec.GroupTypeKey] = append(s.byGroupType[rec.GroupTypeKey], rec)
	}
	for _, rec := range stages {
		if _, exists := s.stageEntries[rec.Code]; !exists {
			s.stageEntries[rec.Code] = rec.InternalNumber
		}
	}

	return s
}

// FromTables decodes a loaded table set and indexes it
func FromTables(set *tables.Set) (*Store, error) {
	items, err := DecodeItems(set.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	routes, err := DecodeRouteResources(set.Routes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode route resources: %w", err)
	}
	consumption, err := DecodeConsumption(set.Consumption)
	if err != nil {
		return nil, fmt.Errorf("failed to decode consumption records: %w", err)
	}
	stages, err := DecodeStageNumbers(set.StageNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stage numbers: %w", err)
	}
	return NewStore(items, routes, consumption, stages), nil
}

// Items returns the catalog in source order, duplicates included
func (s *Store) Items() []CatalogItem {
	return s.items
}

// HasItem reports whether any catalog row carries the part number
func (s *Store) HasItem(partNumber string) bool {
	_, ok := s.partNumbers[partNumber]
	return ok
}

// Consumption returns the ITT records of a parent key in table order
func (s *Store) Consumption(parentKey string) []ConsumptionRecord {
	return s.byParent[parentKey]
}

// RouteResources returns the route/resource records of a group-type key in table order
func (s *Store) RouteResources(groupTypeKey string) []RouteResourceRecord {
	return s.byGroupType[groupTypeKey]
}

// StageEntry returns the internal routing number for a stage item code
func (s *Store) StageEntry(code string) (string, bool) {
	entry, ok := s.stageEntries[code]
	return entry, ok
}

// Orphans returns, in table order, the ITT records whose parent key has no
// catalog item
func (s *Store) Orphans() []ConsumptionRecord {
	var orphans []ConsumptionRecord
	for _, rec := range s.consumption {
		if !s.HasItem(rec.ParentKey) {
			orphans = append(orphans, rec)
		}
	}
	return orphans
}
